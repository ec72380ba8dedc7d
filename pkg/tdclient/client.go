// Package tdclient provides the main entry point for creating task service clients
package tdclient

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/tdapi-client/internal/client"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// New creates a new client. When an email is configured and
// SkipInitialAuth is false, the login protocol runs before New returns, so
// bad credentials surface here. Call Close on the client when done.
func New(ctx context.Context, config *tdapi.Config) (tdapi.Client, error) {
	if config == nil {
		return nil, tdapi.ErrConfigRequired
	}

	c, err := client.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if needsAuth(config) && !config.SkipInitialAuth {
		_, err = c.Authenticate(ctx)
		if err != nil {
			_ = c.Close()

			return nil, err
		}
	}

	return c, nil
}

// needsAuth checks if the config requires running the login protocol.
func needsAuth(config *tdapi.Config) bool {
	return config.Credential == "" && config.Email != ""
}

// NewWithEndpoint creates a client without credentials. Only the
// unauthenticated calls and calls with tdapi.WithCredential work.
func NewWithEndpoint(ctx context.Context, endpoint string) (tdapi.Client, error) {
	return New(ctx, &tdapi.Config{APIEndpoint: endpoint})
}

// NewWithCredential creates a client using a previously derived credential.
func NewWithCredential(ctx context.Context, endpoint, credential string) (tdapi.Client, error) {
	return New(ctx, &tdapi.Config{
		APIEndpoint: endpoint,
		Credential:  credential,
	})
}

// NewWithPassword creates a client and logs in with email and password.
func NewWithPassword(ctx context.Context, endpoint, email, password string) (tdapi.Client, error) {
	return New(ctx, &tdapi.Config{
		APIEndpoint: endpoint,
		Email:       email,
		Password:    password,
	})
}

// NewWithTokenCache creates a client that reuses session tokens stored in
// the given cache backend.
func NewWithTokenCache(ctx context.Context, endpoint, email, password string, cache *tdapi.TokenCacheConfig) (tdapi.Client, error) {
	return New(ctx, &tdapi.Config{
		APIEndpoint: endpoint,
		Email:       email,
		Password:    password,
		TokenCache:  cache,
	})
}

// Logout drops the credential held by c and its cached session token. It
// fails for clients not using a token cache.
func Logout(ctx context.Context, c tdapi.Client) error {
	concrete, ok := c.(*client.Client)
	if !ok {
		return client.ErrNotForgettable
	}

	return concrete.Logout(ctx)
}
