//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	Endpoint string
	Email    string
	Password string
	AppID    string
	NATSURL  string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Endpoint: os.Getenv("TDAPI_ENDPOINT"),
		Email:    os.Getenv("TDAPI_EMAIL"),
		Password: os.Getenv("TDAPI_PASSWORD"),
		AppID:    os.Getenv("TDAPI_APP_ID"),
		NATSURL:  os.Getenv("TDAPI_NATS_URL"),
		Verbose:  os.Getenv("TDAPI_VERBOSE") == "true",
	}
}

// SkipIfNotConfigured skips the test when no live account is configured.
func (c *TestConfig) SkipIfNotConfigured(t *testing.T) {
	t.Helper()

	if c.Email == "" || c.Password == "" {
		t.Skip("TDAPI_EMAIL and TDAPI_PASSWORD must be set for integration tests")
	}
}

// ClientConfig builds a library configuration for the live account.
func (c *TestConfig) ClientConfig(t *testing.T) *tdapi.Config {
	t.Helper()

	return &tdapi.Config{
		APIEndpoint: c.Endpoint,
		AppID:       c.AppID,
		Email:       c.Email,
		Password:    c.Password,
		TokenCache: &tdapi.TokenCacheConfig{
			Type: tdapi.TokenCacheFile,
			Path: filepath.Join(t.TempDir(), "tokens.yml"),
		},
		RequestsPerSecond: 1,
	}
}
