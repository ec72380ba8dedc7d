package tdapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
)

// TokenEntry is a persisted session token.
type TokenEntry struct {
	UserID    string    `json:"userid"     yaml:"userid"`
	Email     string    `json:"email"      yaml:"email"`
	Token     string    `json:"token"      yaml:"token"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

// Expired reports whether the token is past its expiry at the given time.
// A zero expiry never expires.
func (e *TokenEntry) Expired(now time.Time) bool {
	if e == nil || e.Token == "" {
		return true
	}

	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// TokenCache stores session tokens keyed by user ID, with a secondary index
// from email to user ID. Implementations assume a single writer.
type TokenCache interface {
	// Load returns the entry for a user, or ErrTokenNotCached.
	Load(ctx context.Context, userID string) (*TokenEntry, error)
	// LookupUserID resolves an email through the secondary index, or ErrTokenNotCached.
	LookupUserID(ctx context.Context, email string) (string, error)
	// Save stores the entry, replacing any entry of the same user.
	Save(ctx context.Context, entry *TokenEntry) error
	// Delete drops the entry of a user. Deleting a missing entry is not an error.
	Delete(ctx context.Context, userID string) error
}

// TokenCacheType represents the type of token cache backend.
type TokenCacheType string

const (
	// TokenCacheFile stores tokens in a local file.
	TokenCacheFile TokenCacheType = "file"

	// TokenCacheMemory keeps tokens for the lifetime of the process.
	TokenCacheMemory TokenCacheType = "memory"

	// TokenCacheNATS stores tokens in a NATS key-value bucket.
	TokenCacheNATS TokenCacheType = "nats"

	// TokenCacheNone disables persistence.
	TokenCacheNone TokenCacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired       = errors.New("NATS configuration required for NATS token cache")
	ErrTokenCachePathRequired   = errors.New("file path required for file token cache")
	ErrUnsupportedTokenCache    = errors.New("unsupported token cache type")
	ErrTokenEntryUserIDRequired = errors.New("token entry requires a user ID")
)

// TokenCacheConfig configures the token cache backend.
type TokenCacheConfig struct {
	// Type is the backend type.
	Type TokenCacheType
	// Path is the cache file for TokenCacheFile.
	Path string
	// MaxEntries bounds TokenCacheMemory. Zero selects the default.
	MaxEntries int
	// NATS configures TokenCacheNATS.
	NATS *NATSTokenCacheConfig
	// Cache, when set, is used as is and the other fields are ignored. It
	// lets several clients share one backend. The caller owns its lifetime.
	Cache TokenCache
}

// NewTokenCacheFromConfig creates a token cache backend from configuration.
func NewTokenCacheFromConfig(config *TokenCacheConfig) (TokenCache, error) {
	if config == nil {
		return NewNoOpTokenCache(), nil
	}

	if config.Cache != nil {
		return config.Cache, nil
	}

	switch config.Type {
	case TokenCacheFile:
		if config.Path == "" {
			return nil, ErrTokenCachePathRequired
		}

		return NewFileTokenCache(config.Path), nil

	case TokenCacheMemory:
		size := config.MaxEntries
		if size <= 0 {
			size = constants.DefaultTokenCacheSize
		}

		return NewMemoryTokenCache(size)

	case TokenCacheNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSTokenCache(config.NATS)

	case TokenCacheNone, "":
		return NewNoOpTokenCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTokenCache, config.Type)
	}
}

// NoOpTokenCache never stores anything.
type NoOpTokenCache struct{}

// NewNoOpTokenCache creates a new no-op token cache.
func NewNoOpTokenCache() *NoOpTokenCache {
	return &NoOpTokenCache{}
}

// Load always reports a miss.
func (c *NoOpTokenCache) Load(ctx context.Context, userID string) (*TokenEntry, error) {
	return nil, ErrTokenNotCached
}

// LookupUserID always reports a miss.
func (c *NoOpTokenCache) LookupUserID(ctx context.Context, email string) (string, error) {
	return "", ErrTokenNotCached
}

// Save does nothing.
func (c *NoOpTokenCache) Save(ctx context.Context, entry *TokenEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpTokenCache) Delete(ctx context.Context, userID string) error {
	return nil
}
