package tdapi

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// MemoryTokenCache keeps tokens in bounded LRU maps for the lifetime of the
// process. Useful for long-running hosts and tests.
type MemoryTokenCache struct {
	tokens *lru.Cache[string, TokenEntry]
	users  *lru.Cache[string, string]
}

// NewMemoryTokenCache creates a memory token cache holding at most maxEntries users.
func NewMemoryTokenCache(maxEntries int) (*MemoryTokenCache, error) {
	tokens, err := lru.New[string, TokenEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("creating token LRU: %w", err)
	}

	users, err := lru.New[string, string](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("creating user LRU: %w", err)
	}

	return &MemoryTokenCache{tokens: tokens, users: users}, nil
}

// Load implements TokenCache.Load.
func (c *MemoryTokenCache) Load(ctx context.Context, userID string) (*TokenEntry, error) {
	entry, ok := c.tokens.Get(userID)
	if !ok {
		return nil, ErrTokenNotCached
	}

	return &entry, nil
}

// LookupUserID implements TokenCache.LookupUserID.
func (c *MemoryTokenCache) LookupUserID(ctx context.Context, email string) (string, error) {
	userID, ok := c.users.Get(email)
	if !ok {
		return "", ErrTokenNotCached
	}

	return userID, nil
}

// Save implements TokenCache.Save.
func (c *MemoryTokenCache) Save(ctx context.Context, entry *TokenEntry) error {
	if entry == nil || entry.UserID == "" {
		return ErrTokenEntryUserIDRequired
	}

	c.tokens.Add(entry.UserID, *entry)

	if entry.Email != "" {
		c.users.Add(entry.Email, entry.UserID)
	}

	return nil
}

// Delete implements TokenCache.Delete.
func (c *MemoryTokenCache) Delete(ctx context.Context, userID string) error {
	c.tokens.Remove(userID)

	return nil
}

// Len returns the number of cached tokens.
func (c *MemoryTokenCache) Len() int {
	return c.tokens.Len()
}
