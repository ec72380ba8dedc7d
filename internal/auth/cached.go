package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// errStaleToken marks a cached token that failed validation. It never leaves
// this package.
var errStaleToken = errors.New("cached session token is stale")

// CachedAuthenticator reuses session tokens persisted in a tdapi.TokenCache.
//
// A cached token is validated once with a server info call before its
// credential is used. A token that fails validation, or that has expired, is
// dropped from the cache and a new one is requested. A user ID taken from the
// cache is confirmed with the login protocol before any new token is
// requested, so a wrong password fails instead of replacing the entry. Fresh
// tokens are saved keyed by user ID. Cache write failures are logged and
// otherwise ignored.
type CachedAuthenticator struct {
	email    string
	password string
	cache    tdapi.TokenCache
	opts     options

	mutex      sync.RWMutex
	state      State
	userID     string
	fromCache  bool
	pending    *tdapi.TokenEntry
	credential string
}

// NewCachedAuthenticator creates an authenticator and loads any token cached
// for the account. Cache read failures are treated as misses.
func NewCachedAuthenticator(ctx context.Context, email, password string, cache tdapi.TokenCache, opts ...Option) *CachedAuthenticator {
	if cache == nil {
		cache = tdapi.NewNoOpTokenCache()
	}

	auth := &CachedAuthenticator{
		email:    email,
		password: password,
		cache:    cache,
		opts:     newOptions(opts),
	}

	auth.loadCached(ctx)

	return auth
}

func (a *CachedAuthenticator) loadCached(ctx context.Context) {
	if a.email == "" {
		return
	}

	userID, err := a.cache.LookupUserID(ctx, a.email)
	if err != nil {
		a.logCacheMiss("Token cache lookup failed", err)

		return
	}

	a.userID = userID
	a.fromCache = true
	a.state = UserIDResolved

	entry, err := a.cache.Load(ctx, userID)
	if err != nil {
		a.logCacheMiss("Token cache load failed", err)

		return
	}

	a.pending = entry
}

func (a *CachedAuthenticator) logCacheMiss(msg string, err error) {
	if errors.Is(err, tdapi.ErrTokenNotCached) {
		return
	}

	a.opts.log("warn", msg, map[string]interface{}{
		"email": a.email,
		"error": err.Error(),
	})
}

// HasCachedToken reports whether a cached token awaits validation.
func (a *CachedAuthenticator) HasCachedToken() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.pending != nil
}

// Authenticate implements Authenticator.
func (a *CachedAuthenticator) Authenticate(ctx context.Context, caller Caller, appID string) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.credential != "" {
		return a.credential, nil
	}

	var staleUserID string

	if a.pending != nil {
		err := a.useCached(ctx, caller)
		if err == nil {
			return a.credential, nil
		}

		a.opts.log("debug", "Discarding cached session token", map[string]interface{}{
			"userid": a.userID,
			"reason": err.Error(),
		})

		a.pending = nil
		staleUserID = a.userID
	}

	if a.userID == "" || a.fromCache {
		userID, err := ResolveUserID(ctx, caller, a.email, a.password)
		if err != nil {
			return "", err
		}

		a.userID = userID
		a.fromCache = false
		a.state = UserIDResolved
	}

	if staleUserID != "" {
		a.deleteEntry(ctx, staleUserID)
	}

	token, err := RequestToken(ctx, caller, a.userID, appID)
	if err != nil {
		return "", err
	}

	a.state = TokenObtained

	entry := &tdapi.TokenEntry{
		UserID:    a.userID,
		Email:     a.email,
		Token:     token,
		ExpiresAt: a.opts.now().Add(a.opts.tokenValidity),
	}

	a.credential = DeriveCredential(a.userID, token, a.password)
	a.state = CredentialDerived

	a.saveEntry(ctx, entry)

	return a.credential, nil
}

// useCached validates the pending token and adopts its credential.
func (a *CachedAuthenticator) useCached(ctx context.Context, caller Caller) error {
	entry := a.pending
	now := a.opts.now()

	if entry.Expired(now) {
		return fmt.Errorf("%w: expired at %s", errStaleToken, entry.ExpiresAt.Format("2006-01-02 15:04:05"))
	}

	credential := DeriveCredential(a.userID, entry.Token, a.password)

	remaining, err := ValidateCredential(ctx, caller, credential)
	if err != nil {
		return fmt.Errorf("%w: %w", errStaleToken, err)
	}

	a.credential = credential
	a.state = CredentialDerived
	a.pending = nil

	if remaining > 0 {
		refreshed := *entry
		refreshed.UserID = a.userID
		refreshed.Email = a.email
		refreshed.ExpiresAt = now.Add(remaining)
		a.saveEntry(ctx, &refreshed)
	}

	return nil
}

func (a *CachedAuthenticator) saveEntry(ctx context.Context, entry *tdapi.TokenEntry) {
	err := a.cache.Save(ctx, entry)
	if err != nil {
		a.opts.log("warn", "Failed to save session token", map[string]interface{}{
			"userid": entry.UserID,
			"error":  err.Error(),
		})
	}
}

func (a *CachedAuthenticator) deleteEntry(ctx context.Context, userID string) {
	err := a.cache.Delete(ctx, userID)
	if err != nil {
		a.opts.log("warn", "Failed to delete session token", map[string]interface{}{
			"userid": userID,
			"error":  err.Error(),
		})
	}
}

// Forget drops the held credential and the cached token of the account.
func (a *CachedAuthenticator) Forget(ctx context.Context) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.credential = ""
	a.pending = nil

	if a.userID == "" {
		a.state = Unauthenticated

		return nil
	}

	a.state = UserIDResolved

	err := a.cache.Delete(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("deleting cached token: %w", err)
	}

	return nil
}

// IsAuthenticated implements Authenticator.
func (a *CachedAuthenticator) IsAuthenticated() bool {
	return a.Credential() != ""
}

// Credential implements Authenticator.
func (a *CachedAuthenticator) Credential() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.credential
}

// UserID implements Authenticator.
func (a *CachedAuthenticator) UserID() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.userID
}

// State implements Authenticator.
func (a *CachedAuthenticator) State() State {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.state
}
