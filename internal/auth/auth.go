package auth

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"me-platform/internal/config"
	"me-platform/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	UserID         int64         `json:"user_id"`
	RoleID         models.RoleID `json:"role_id"`
	OrganisationID *int64        `json:"organisation_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the caller identity carried by the claims
func (c *JWTClaims) Principal() models.Principal {
	return models.Principal{UserID: c.UserID, Role: c.RoleID, OrganisationID: c.OrganisationID}
}

// Service issues and verifies tokens and hashes passwords.
//
// A PEM encoded EC private key as secret selects ES256, anything else is used
// as an HS256 key.
type Service struct {
	method     jwt.SigningMethod
	signKey    interface{}
	verifyKey  interface{}
	expiration time.Duration
}

// NewService creates a new authentication service
func NewService(cfg *config.JWTConfig) *Service {
	s := &Service{expiration: cfg.Expiration}
	if key := parseECKey(cfg.Secret); key != nil {
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodES256, key, &key.PublicKey
	} else {
		secret := []byte(cfg.Secret)
		s.method, s.signKey, s.verifyKey = jwt.SigningMethodHS256, secret, secret
	}
	return s
}

// Expiration returns the lifetime of issued tokens
func (s *Service) Expiration() time.Duration {
	return s.expiration
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against a hash
func (s *Service) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateToken issues an access token for user and returns it with its JTI
func (s *Service) GenerateToken(user *models.User) (string, string, error) {
	jti, err := GenerateRandomToken(16)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate JTI: %w", err)
	}

	now := time.Now()
	claims := JWTClaims{
		UserID:         user.ID,
		RoleID:         user.RoleID,
		OrganisationID: user.OrganisationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, jti, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.verifyKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractJTI reads the JTI without verifying signature or expiry, so logout
// can end sessions for tokens that have already expired.
func (s *Service) ExtractJTI(tokenString string) (string, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, &JWTClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

// GenerateRandomToken returns length random bytes, base64url encoded
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func parseECKey(secret string) *ecdsa.PrivateKey {
	block, _ := pem.Decode([]byte(secret))
	if block == nil {
		return nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		if ec, ok := key.(*ecdsa.PrivateKey); ok {
			return ec
		}
	}
	return nil
}
