package tdapi

import (
	"context"
	"time"
)

// Params carries request parameters. A trailing underscore on a key is
// stripped on the wire, so "pass_" is sent as "pass".
type Params map[string]string

// NewParams creates an empty parameter set.
func NewParams() Params {
	return make(Params)
}

// With sets a parameter and returns the receiver for chaining.
func (p Params) With(key, value string) Params {
	p[key] = value

	return p
}

// Clone returns a copy of the parameters; a nil receiver yields an empty set.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for key, value := range p {
		out[key] = value
	}

	return out
}

// CallOptions holds per-call settings.
type CallOptions struct {
	// Credential overrides the client's own credential for a single call.
	Credential string
}

// CallOption customizes a single call.
type CallOption func(*CallOptions)

// WithCredential supplies the credential for a single call explicitly.
func WithCredential(credential string) CallOption {
	return func(o *CallOptions) {
		o.Credential = credential
	}
}

// ApplyCallOptions folds the options into a CallOptions value.
func ApplyCallOptions(opts []CallOption) CallOptions {
	var options CallOptions

	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	return options
}

// AuthClient covers the unauthenticated account calls and session handling.
type AuthClient interface {
	// Authenticate derives (or returns the already held) credential.
	Authenticate(ctx context.Context) (string, error)
	// IsAuthenticated reports whether a credential is available.
	IsAuthenticated() bool
	// UserID returns the resolved user ID, if known.
	UserID() string
	GetUserID(ctx context.Context, email, password string) (string, error)
	GetToken(ctx context.Context, userID string) (string, error)
	CreateAccount(ctx context.Context, email, password string) (string, error)
}

// InfoClient provides access to server and account information.
type InfoClient interface {
	GetServerInfo(ctx context.Context, opts ...CallOption) (*Record, error)
	GetAccountInfo(ctx context.Context, opts ...CallOption) (*Record, error)
}

// FoldersClient manages folders.
type FoldersClient interface {
	List(ctx context.Context, opts ...CallOption) ([]*Record, error)
	Add(ctx context.Context, params Params, opts ...CallOption) (string, error)
	Edit(ctx context.Context, id string, params Params, opts ...CallOption) (string, error)
	Delete(ctx context.Context, id string, opts ...CallOption) (string, error)
}

// ContextsClient manages contexts.
type ContextsClient interface {
	List(ctx context.Context, opts ...CallOption) ([]*Record, error)
	Add(ctx context.Context, params Params, opts ...CallOption) (string, error)
	Delete(ctx context.Context, id string, opts ...CallOption) (string, error)
}

// GoalsClient manages goals.
type GoalsClient interface {
	List(ctx context.Context, opts ...CallOption) ([]*Record, error)
	Add(ctx context.Context, params Params, opts ...CallOption) (string, error)
	Delete(ctx context.Context, id string, opts ...CallOption) (string, error)
}

// TasksClient manages tasks.
type TasksClient interface {
	List(ctx context.Context, params Params, opts ...CallOption) ([]*Record, error)
	ListDeleted(ctx context.Context, after string, opts ...CallOption) ([]*Record, error)
	Add(ctx context.Context, params Params, opts ...CallOption) (string, error)
	Edit(ctx context.Context, id string, params Params, opts ...CallOption) (string, error)
	Delete(ctx context.Context, id string, opts ...CallOption) (string, error)
}

// NotesClient manages notebook entries.
type NotesClient interface {
	List(ctx context.Context, opts ...CallOption) ([]*Record, error)
	ListDeleted(ctx context.Context, after string, opts ...CallOption) ([]*Record, error)
	Add(ctx context.Context, params Params, opts ...CallOption) (string, error)
	Edit(ctx context.Context, id string, params Params, opts ...CallOption) (string, error)
	Delete(ctx context.Context, id string, opts ...CallOption) (string, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Folders() FoldersClient
	Contexts() ContextsClient
	Goals() GoalsClient
	Tasks() TasksClient
	Notes() NotesClient
}

type Client interface {
	AuthClient
	InfoClient
	ResourceClients

	// Close releases the token cache the client opened from its config.
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a tdapi.Client.
//
// # Authentication precedence
//
// The concrete client (see pkg/tdclient) selects one strategy:
//  1. Credential: used as is for every call; it is trusted without a check.
//  2. Email/Password with TokenCache: the session token is persisted and
//     reused across runs after a one-off validation call.
//  3. Email/Password: user ID, token and credential are derived on every run.
//  4. Nothing: only unauthenticated calls (GetUserID, GetToken,
//     CreateAccount) and calls with an explicit WithCredential option work.
type Config struct {
	// APIEndpoint is the service URL without query string. Defaults to the
	// public service endpoint.
	APIEndpoint string
	// AppID identifies the application when requesting session tokens.
	AppID string

	// Email and Password of the account.
	Email    string
	Password string
	// Credential is a previously derived session credential.
	Credential string
	// TokenCache enables session token persistence when set.
	TokenCache *TokenCacheConfig
	// SkipInitialAuth defers authentication until Authenticate is called.
	SkipInitialAuth bool

	// HTTPTimeout bounds a single HTTP attempt.
	HTTPTimeout time.Duration
	// RetryMax is the maximum number of retries for transient failures
	// (>=500, 429 and connection errors). Zero selects the default.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration
	// RequestsPerSecond enables client-side rate limiting when positive.
	RequestsPerSecond float64
	// Debug enables request/response logging when a Logger is provided.
	Debug bool
	// Logger is an optional structured logger.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}
