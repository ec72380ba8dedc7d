package auth

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// State is the progress of an authenticator through the login protocol.
type State int

const (
	// Unauthenticated means no protocol step has completed.
	Unauthenticated State = iota
	// UserIDResolved means the account's user ID is known.
	UserIDResolved
	// TokenObtained means a session token is held.
	TokenObtained
	// CredentialDerived means the session key is ready for use.
	CredentialDerived
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case UserIDResolved:
		return "userid-resolved"
	case TokenObtained:
		return "token-obtained"
	case CredentialDerived:
		return "credential-derived"
	default:
		return "unknown"
	}
}

// Authenticator produces the session credential for API calls.
type Authenticator interface {
	// Authenticate runs the login protocol against caller. Once a credential
	// is held it is returned without further calls.
	Authenticate(ctx context.Context, caller Caller, appID string) (string, error)
	// IsAuthenticated reports whether a credential is held.
	IsAuthenticated() bool
	// Credential returns the held credential, or "".
	Credential() string
	// UserID returns the resolved user ID, or "".
	UserID() string
	// State returns the protocol state.
	State() State
}

type options struct {
	logger        tdapi.Logger
	now           func() time.Time
	tokenValidity time.Duration
}

// Option configures an authenticator.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger tdapi.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithTokenValidity overrides how long a freshly issued token is trusted.
func WithTokenValidity(validity time.Duration) Option {
	return func(o *options) {
		o.tokenValidity = validity
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:           time.Now,
		tokenValidity: constants.TokenValidity,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (o options) log(level, msg string, fields map[string]interface{}) {
	if o.logger == nil {
		return
	}

	switch level {
	case "debug":
		o.logger.Debug(msg, fields)
	case "warn":
		o.logger.Warn(msg, fields)
	default:
		o.logger.Info(msg, fields)
	}
}

// PasswordAuthenticator derives a fresh credential from email and password
// on every login.
type PasswordAuthenticator struct {
	email    string
	password string
	opts     options

	mutex      sync.RWMutex
	state      State
	userID     string
	token      string
	credential string
}

// NewPasswordAuthenticator creates an authenticator for the given account.
func NewPasswordAuthenticator(email, password string, opts ...Option) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		email:    email,
		password: password,
		opts:     newOptions(opts),
	}
}

// Authenticate implements Authenticator.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, caller Caller, appID string) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.credential != "" {
		return a.credential, nil
	}

	if a.userID == "" {
		userID, err := ResolveUserID(ctx, caller, a.email, a.password)
		if err != nil {
			return "", err
		}

		a.userID = userID
		a.state = UserIDResolved
	}

	token, err := RequestToken(ctx, caller, a.userID, appID)
	if err != nil {
		return "", err
	}

	a.token = token
	a.state = TokenObtained

	a.credential = DeriveCredential(a.userID, a.token, a.password)
	a.state = CredentialDerived

	a.opts.log("debug", "Derived session credential", map[string]interface{}{
		"userid": a.userID,
	})

	return a.credential, nil
}

// IsAuthenticated implements Authenticator.
func (a *PasswordAuthenticator) IsAuthenticated() bool {
	return a.Credential() != ""
}

// Credential implements Authenticator.
func (a *PasswordAuthenticator) Credential() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.credential
}

// UserID implements Authenticator.
func (a *PasswordAuthenticator) UserID() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.userID
}

// State implements Authenticator.
func (a *PasswordAuthenticator) State() State {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.state
}

// StaticAuthenticator holds a caller-supplied credential. The credential is
// trusted as is and never checked.
type StaticAuthenticator struct {
	credential string
	userID     string
}

// NewStaticAuthenticator creates an authenticator for a known credential.
func NewStaticAuthenticator(credential, userID string) *StaticAuthenticator {
	return &StaticAuthenticator{credential: credential, userID: userID}
}

// Authenticate returns the held credential, or tdapi.ErrMissingCredential
// when it is empty.
func (a *StaticAuthenticator) Authenticate(context.Context, Caller, string) (string, error) {
	if a.credential == "" {
		return "", tdapi.ErrMissingCredential
	}

	return a.credential, nil
}

// IsAuthenticated implements Authenticator.
func (a *StaticAuthenticator) IsAuthenticated() bool {
	return a.credential != ""
}

// Credential implements Authenticator.
func (a *StaticAuthenticator) Credential() string {
	return a.credential
}

// UserID implements Authenticator.
func (a *StaticAuthenticator) UserID() string {
	return a.userID
}

// State implements Authenticator.
func (a *StaticAuthenticator) State() State {
	if a.credential == "" {
		return Unauthenticated
	}

	return CredentialDerived
}
