package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/vault/api"

	"me-platform/internal/config"
)

// Secret keys read from the KV v2 entry
const (
	KeyJWTSecret    = "jwt_secret"
	KeyDBPassword   = "db_password"
	KeySMTPPassword = "smtp_password"
)

// ErrSecretNotFound is returned when the configured path holds no secret
var ErrSecretNotFound = errors.New("secret not found")

// Client wraps HashiCorp Vault API
type Client struct {
	client *api.Client
}

// NewClient creates a new Vault client
func NewClient(cfg *config.VaultConfig) (*Client, error) {
	vcfg := api.DefaultConfig()
	vcfg.Address = cfg.Address

	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{client: client}, nil
}

// StoreSecret writes data to a KV v2 data path such as "secret/data/app"
func (c *Client) StoreSecret(ctx context.Context, path string, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"data": data,
	}
	if _, err := c.client.Logical().WriteWithContext(ctx, path, payload); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}
	return nil
}

// GetSecret reads a KV v2 data path and returns the inner data map
func (c *Client) GetSecret(ctx context.Context, path string) (map[string]interface{}, error) {
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w at %s", ErrSecretNotFound, path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid secret data format at %s", path)
	}
	return data, nil
}

// Health checks Vault health status
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if !health.Initialized {
		return fmt.Errorf("vault is not initialized")
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

// ApplySecrets overlays the secrets stored at cfg.Vault.SecretPath onto cfg.
// Keys that are missing or empty leave the environment value in place.
func (c *Client) ApplySecrets(ctx context.Context, cfg *config.Config) error {
	data, err := c.GetSecret(ctx, cfg.Vault.SecretPath)
	if err != nil {
		return err
	}

	applied := Overlay(cfg, data)
	slog.Info("Applied secrets from Vault", "path", cfg.Vault.SecretPath, "keys", applied)
	return nil
}

// Overlay copies known string keys from data onto cfg and returns the keys used
func Overlay(cfg *config.Config, data map[string]interface{}) []string {
	targets := map[string]*string{
		KeyJWTSecret:    &cfg.JWT.Secret,
		KeyDBPassword:   &cfg.Database.Password,
		KeySMTPPassword: &cfg.Email.SMTPPassword,
	}

	var applied []string
	for _, key := range []string{KeyJWTSecret, KeyDBPassword, KeySMTPPassword} {
		v, ok := data[key].(string)
		if !ok || v == "" {
			continue
		}
		*targets[key] = v
		applied = append(applied, key)
	}
	return applied
}
