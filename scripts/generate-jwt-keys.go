// Generates an ECDSA P-256 key for ES256 token signing. The API uses
// JWT_SECRET as an HS256 key unless it holds a PEM encoded EC key.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"os"
	"strings"
)

func main() {
	out := flag.String("out", "jwt-private-key.pem", "file to write the private key to, empty to skip")
	flag.Parse()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate key: %v\n", err)
		os.Exit(1)
	}

	privateKeyBytes, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal private key: %v\n", err)
		os.Exit(1)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	// godotenv expands \n only inside double quotes
	fmt.Println("Add this line to your .env file:")
	fmt.Printf("JWT_SECRET=\"%s\"\n", strings.ReplaceAll(string(privateKeyPEM), "\n", `\n`))

	if *out == "" {
		return
	}
	if err := os.WriteFile(*out, privateKeyPEM, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write private key file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nPrivate key saved to %s\n", *out)
	fmt.Printf("For Vault, store it under the %q key of VAULT_SECRET_PATH.\n", "jwt_secret")
}
