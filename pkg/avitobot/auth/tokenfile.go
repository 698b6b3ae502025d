// Package auth – tokenfile.go reads and writes the persisted credential file,
// a one-key YAML document:
//
//	token: <bearer value>
package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tokenFile is the on-disk shape of the persisted credential.
type tokenFile struct {
	Token string `yaml:"token"`
}

// loadTokenFile reads the persisted token. Any failure (missing file,
// unreadable, malformed) is reported so the caller can fall back to a
// synchronous refresh.
func loadTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}

	var tf tokenFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return "", fmt.Errorf("parsing token file: %w", err)
	}
	return tf.Token, nil
}

// saveTokenFile writes the token with owner-only permissions.
func saveTokenFile(path, token string) error {
	data, err := yaml.Marshal(tokenFile{Token: token})
	if err != nil {
		return fmt.Errorf("marshaling token file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
