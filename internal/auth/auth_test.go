package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"me-platform/internal/config"
	"me-platform/internal/models"
)

func testUser() *models.User {
	org := int64(3)
	return &models.User{ID: 42, Username: "jdoe", RoleID: models.RoleOMA, OrganisationID: &org}
}

func TestHashPassword(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: "test-secret", Expiration: time.Hour})

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "" || hash == password {
		t.Error("Hash should be non-empty and differ from the password")
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}
	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: "test-secret", Expiration: time.Hour})
	user := testUser()

	token, jti, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" || jti == "" {
		t.Fatal("token and jti should not be empty")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, claims.UserID)
	}
	if claims.RoleID != models.RoleOMA {
		t.Errorf("Expected role %d, got %d", models.RoleOMA, claims.RoleID)
	}
	if claims.OrganisationID == nil || *claims.OrganisationID != 3 {
		t.Errorf("Expected organisation 3, got %v", claims.OrganisationID)
	}
	if claims.ID != jti {
		t.Errorf("Expected jti %s, got %s", jti, claims.ID)
	}

	p := claims.Principal()
	if p.UserID != 42 || p.Role != models.RoleOMA || !p.InOrganisation(3) {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc := NewService(&config.JWTConfig{Secret: "test-secret", Expiration: -time.Hour})

	token, _, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}

	// logout still needs the jti of an expired token
	jti, err := svc.ExtractJTI(token)
	if err != nil || jti == "" {
		t.Errorf("ExtractJTI() = %q, %v", jti, err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewService(&config.JWTConfig{Secret: "secret-a", Expiration: time.Hour})
	verifier := NewService(&config.JWTConfig{Secret: "secret-b", Expiration: time.Hour})

	token, _, err := issuer.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestES256FromPEM(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	secret := string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))

	svc := NewService(&config.JWTConfig{Secret: secret, Expiration: time.Hour})
	if svc.method.Alg() != "ES256" {
		t.Fatalf("expected ES256, got %s", svc.method.Alg())
	}

	token, _, err := svc.GenerateToken(testUser())
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := svc.ValidateToken(token); err != nil {
		t.Errorf("Failed to validate ES256 token: %v", err)
	}

	hmac := NewService(&config.JWTConfig{Secret: "plain", Expiration: time.Hour})
	if _, err := hmac.ValidateToken(token); err == nil {
		t.Error("HS256 service should reject an ES256 token")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	token1, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate random token: %v", err)
	}
	token2, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("Failed to generate second random token: %v", err)
	}
	if token1 == "" || token1 == token2 {
		t.Error("Random tokens should be non-empty and different")
	}
}
