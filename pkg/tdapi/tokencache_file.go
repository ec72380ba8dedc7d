package tdapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"gopkg.in/yaml.v3"
)

// tokenCacheDocument is the on-disk layout. It is only ever written and read
// by FileTokenCache and carries no version.
type tokenCacheDocument struct {
	Tokens map[string]*TokenEntry `yaml:"tokens"`
	Users  map[string]string      `yaml:"users"`
}

// FileTokenCache persists tokens in a single YAML file. Every operation reads
// the whole file; writes replace it through a temporary file and a rename.
// Concurrent writers from several processes are not supported.
type FileTokenCache struct {
	path string
}

// NewFileTokenCache creates a token cache stored at path.
func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

// Path returns the cache file location.
func (c *FileTokenCache) Path() string {
	return c.path
}

// Load implements TokenCache.Load.
func (c *FileTokenCache) Load(ctx context.Context, userID string) (*TokenEntry, error) {
	doc, err := c.read()
	if err != nil {
		return nil, err
	}

	entry, ok := doc.Tokens[userID]
	if !ok || entry == nil {
		return nil, ErrTokenNotCached
	}

	copied := *entry

	return &copied, nil
}

// LookupUserID implements TokenCache.LookupUserID.
func (c *FileTokenCache) LookupUserID(ctx context.Context, email string) (string, error) {
	doc, err := c.read()
	if err != nil {
		return "", err
	}

	userID, ok := doc.Users[email]
	if !ok || userID == "" {
		return "", ErrTokenNotCached
	}

	return userID, nil
}

// Save implements TokenCache.Save.
func (c *FileTokenCache) Save(ctx context.Context, entry *TokenEntry) error {
	if entry == nil || entry.UserID == "" {
		return ErrTokenEntryUserIDRequired
	}

	doc, err := c.read()
	if err != nil {
		return err
	}

	copied := *entry
	doc.Tokens[entry.UserID] = &copied

	if entry.Email != "" {
		doc.Users[entry.Email] = entry.UserID
	}

	return c.write(doc)
}

// Delete implements TokenCache.Delete. The email index is kept since user IDs
// are stable.
func (c *FileTokenCache) Delete(ctx context.Context, userID string) error {
	doc, err := c.read()
	if err != nil {
		return err
	}

	if _, ok := doc.Tokens[userID]; !ok {
		return nil
	}

	delete(doc.Tokens, userID)

	return c.write(doc)
}

func (c *FileTokenCache) read() (*tokenCacheDocument, error) {
	doc := &tokenCacheDocument{}

	// path is supplied by the application configuration
	// #nosec G304
	data, err := os.ReadFile(c.path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		// no cache yet
	case err != nil:
		return nil, fmt.Errorf("reading token cache: %w", err)
	default:
		err = yaml.Unmarshal(data, doc)
		if err != nil {
			return nil, fmt.Errorf("parsing token cache: %w", err)
		}
	}

	if doc.Tokens == nil {
		doc.Tokens = make(map[string]*TokenEntry)
	}

	if doc.Users == nil {
		doc.Users = make(map[string]string)
	}

	return doc, nil
}

func (c *FileTokenCache) write(doc *tokenCacheDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding token cache: %w", err)
	}

	dir := filepath.Dir(c.path)

	err = os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating token cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary token cache: %w", err)
	}

	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(constants.ConfigFilePerm)
	}

	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing token cache: %w", err)
	}

	err = os.Rename(tmpName, c.path)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replacing token cache: %w", err)
	}

	return nil
}
