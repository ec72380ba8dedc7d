package tdapi

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/nats-io/nats.go"
	"gopkg.in/yaml.v3"
)

// NATSTokenCacheConfig configures the NATS key-value token cache.
type NATSTokenCacheConfig struct {
	// URL is the NATS server URL. Defaults to nats.DefaultURL.
	URL string
	// Bucket is the key-value bucket name.
	Bucket string
	// TTL expires entries in the bucket. Zero keeps them until deleted.
	TTL time.Duration
	// Options are passed to nats.Connect.
	Options []nats.Option
}

// NATSTokenCache stores tokens in a JetStream key-value bucket so several
// hosts can share a session. Keys are "user.<base64url(userid)>" and
// "email.<base64url(email)>".
type NATSTokenCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSTokenCache connects to NATS and binds (or creates) the bucket.
func NewNATSTokenCache(config *NATSTokenCacheConfig) (*NATSTokenCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(url, config.Options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding key-value bucket %q: %w", bucket, err)
	}

	return &NATSTokenCache{conn: conn, kv: kv}, nil
}

// Close drains and closes the NATS connection. Closing twice is not an error.
func (c *NATSTokenCache) Close() error {
	err := c.conn.Drain()
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) && !errors.Is(err, nats.ErrConnectionDraining) {
		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// Load implements TokenCache.Load.
func (c *NATSTokenCache) Load(ctx context.Context, userID string) (*TokenEntry, error) {
	kvEntry, err := c.kv.Get(userKey(userID))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrTokenNotCached
	}

	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}

	var entry TokenEntry

	err = yaml.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	return &entry, nil
}

// LookupUserID implements TokenCache.LookupUserID.
func (c *NATSTokenCache) LookupUserID(ctx context.Context, email string) (string, error) {
	kvEntry, err := c.kv.Get(emailKey(email))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", ErrTokenNotCached
	}

	if err != nil {
		return "", fmt.Errorf("looking up user ID: %w", err)
	}

	return string(kvEntry.Value()), nil
}

// Save implements TokenCache.Save.
func (c *NATSTokenCache) Save(ctx context.Context, entry *TokenEntry) error {
	if entry == nil || entry.UserID == "" {
		return ErrTokenEntryUserIDRequired
	}

	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	_, err = c.kv.Put(userKey(entry.UserID), data)
	if err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	if entry.Email != "" {
		_, err = c.kv.Put(emailKey(entry.Email), []byte(entry.UserID))
		if err != nil {
			return fmt.Errorf("storing email index: %w", err)
		}
	}

	return nil
}

// Delete implements TokenCache.Delete.
func (c *NATSTokenCache) Delete(ctx context.Context, userID string) error {
	err := c.kv.Delete(userKey(userID))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting token: %w", err)
	}

	return nil
}

func userKey(userID string) string {
	return "user." + base64.RawURLEncoding.EncodeToString([]byte(userID))
}

func emailKey(email string) string {
	return "email." + base64.RawURLEncoding.EncodeToString([]byte(email))
}
