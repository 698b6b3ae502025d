// Package bot – keyring.go resolves secrets through the operating system's
// native keyring (Linux: Secret Service, macOS: Keychain, Windows: Credential
// Manager).
//
// Priority for each secret:
//  1. OS keyring (encrypted by the OS, requires user session)
//  2. Environment variable (AVITO_CLIENT_SECRET, OPENAI_API_KEY)
//  3. config.yaml value (least secure — plaintext on disk)
package bot

import (
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// keyringService is the service name used in the OS keyring.
	keyringService = "avitobot"

	// KeyClientSecret is the keyring entry for the Avito client secret.
	KeyClientSecret = "avito_client_secret"

	// KeyClassifierAPIKey is the keyring entry for the classifier API key.
	KeyClassifierAPIKey = "openai_api_key"
)

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring.
// Returns empty string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// ResolveSecrets fills the two startup secrets using the priority chain
// keyring → env → config, updating cfg in place.
func ResolveSecrets(cfg *Config, logger *slog.Logger) {
	cfg.Avito.ClientSecret = resolveSecret(
		cfg.Avito.ClientSecret, KeyClientSecret, "AVITO_CLIENT_SECRET", logger)
	cfg.Classifier.APIKey = resolveSecret(
		cfg.Classifier.APIKey, KeyClassifierAPIKey, "OPENAI_API_KEY", logger)
}

func resolveSecret(current, keyringKey, envVar string, logger *slog.Logger) string {
	if val := GetKeyring(keyringKey); val != "" {
		logger.Debug("secret loaded from OS keyring", "key", keyringKey)
		return val
	}
	if val := os.Getenv(envVar); val != "" {
		logger.Debug("secret loaded from environment", "var", envVar)
		return val
	}
	if current != "" && !IsEnvReference(current) {
		logger.Debug("secret loaded from config", "key", keyringKey)
		return current
	}
	return ""
}
