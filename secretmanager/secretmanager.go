// Package secretmanager resolves provider API keys. The primary path for
// this module is a caller-supplied key per request (the RPC operations in
// package api build a StaticSecretManager per call from the credentials
// the front-end passed in), but an EnvSecretManager is kept for tooling
// (the cmd/assistant-core CLI) that runs outside an RPC call.
package secretmanager

import (
	"fmt"
	"os"

	"github.com/AlvinPlayz23/void-core/apperror"
)

// SecretManager resolves a named secret (an API key) to its value.
type SecretManager interface {
	GetSecret(name string) (string, error)
}

// StaticSecretManager wraps a single already-known API key. It is what the
// RPC layer constructs per call from caller-supplied credentials (spec:
// provider/agent instances are built fresh per request and hold no
// long-lived credential state).
type StaticSecretManager struct {
	APIKey string
}

func (s StaticSecretManager) GetSecret(name string) (string, error) {
	if s.APIKey == "" {
		return "", fmt.Errorf("%w: %s", apperror.ErrSecretNotFound, name)
	}
	return s.APIKey, nil
}

// EnvSecretManager reads "VOIDCORE_<NAME>" from the process environment.
type EnvSecretManager struct{}

func (EnvSecretManager) GetSecret(name string) (string, error) {
	envName := "VOIDCORE_" + name
	value := os.Getenv(envName)
	if value == "" {
		return "", fmt.Errorf("%w: %s not found in environment", apperror.ErrSecretNotFound, envName)
	}
	return value, nil
}
