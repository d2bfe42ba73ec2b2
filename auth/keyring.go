// Package auth provides a high-level API for persisting and resolving the remote-control API key.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Ducheved/sharpmote/constant"
	"github.com/Ducheved/sharpmote/key"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	service = constant.Sharpmote
	user    = "api-key"
)

// SetAPIKey persists the API key to the system keyring.
func SetAPIKey(apiKey string) error {
	return keyring.Set(service, user, apiKey)
}

// GetAPIKey retrieves the API key from the system keyring.
func GetAPIKey() (string, error) {
	return keyring.Get(service, user)
}

// DeleteAPIKey removes the API key from the system keyring.
func DeleteAPIKey() error {
	return keyring.Delete(service, user)
}

// GenerateAPIKey returns a fresh random key made of two dash-less UUIDs.
func GenerateAPIKey() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// APIKey resolves the effective key: api.key from config first, then the keyring when allowed.
// An empty result means the API is not configured.
func APIKey() string {
	if configured := strings.TrimSpace(viper.GetString(key.APIKey)); configured != "" {
		return configured
	}

	if !viper.GetBool(key.APIKeyUseKeyring) {
		return ""
	}

	stored, err := GetAPIKey()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(stored)
}

// Equal compares two keys in constant time.
func Equal(expected, provided string) bool {
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// IsNotFound reports whether err means no key is stored in the keyring.
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
