package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/fivetwenty-io/tdapi-client/internal/auth"
	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/internal/http"
	"github.com/fivetwenty-io/tdapi-client/internal/records"
	"github.com/fivetwenty-io/tdapi-client/internal/xmltree"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
)

// Static errors for err113 compliance.
var (
	ErrNoAuthenticatorConfigured = errors.New("no email/password or credential configured")
	ErrNotForgettable            = errors.New("authenticator holds no cached token")
	ErrRecordIDRequired          = errors.New("record ID is required")
	ErrAfterRequired             = errors.New("after timestamp is required")
)

// Client implements the tdapi.Client interface.
type Client struct {
	exec *executor

	// cacheCloser closes a token cache opened from the config.
	cacheCloser io.Closer

	folders  *FoldersClient
	contexts *ContextsClient
	goals    *GoalsClient
	tasks    *TasksClient
	notes    *NotesClient
}

// executor runs API calls for the top-level client and the resource clients.
type executor struct {
	httpClient    *http.Client
	authenticator auth.Authenticator
	appID         string
}

// createAuthenticator picks the authentication strategy from config. The
// returned closer is set when a token cache was opened and must be closed
// with the client.
func createAuthenticator(ctx context.Context, config *tdapi.Config) (auth.Authenticator, io.Closer, error) {
	authOpts := []auth.Option{}
	if config.Logger != nil {
		authOpts = append(authOpts, auth.WithLogger(config.Logger))
	}

	switch {
	case config.Credential != "":
		return auth.NewStaticAuthenticator(config.Credential, ""), nil, nil

	case config.Email != "" && config.TokenCache != nil:
		cache, err := tdapi.NewTokenCacheFromConfig(config.TokenCache)
		if err != nil {
			return nil, nil, fmt.Errorf("creating token cache: %w", err)
		}

		var closer io.Closer
		if config.TokenCache.Cache == nil {
			closer, _ = cache.(io.Closer)
		}

		return auth.NewCachedAuthenticator(ctx, config.Email, config.Password, cache, authOpts...), closer, nil

	case config.Email != "":
		return auth.NewPasswordAuthenticator(config.Email, config.Password, authOpts...), nil, nil
	}

	return nil, nil, nil
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *tdapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond, 1))
	}

	return httpOpts
}

// validateEndpoint returns the endpoint to use, defaulting to the public service.
func validateEndpoint(endpoint string) (string, error) {
	if endpoint == "" {
		return constants.DefaultAPIEndpoint, nil
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", tdapi.ErrAPIEndpointInvalid, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", tdapi.ErrAPIEndpointInvalid, endpoint)
	}

	return endpoint, nil
}

// New creates a client and selects the authenticator from config. It does not
// authenticate.
func New(ctx context.Context, config *tdapi.Config, extraOpts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, tdapi.ErrConfigRequired
	}

	authenticator, cacheCloser, err := createAuthenticator(ctx, config)
	if err != nil {
		return nil, err
	}

	client, err := NewWithAuthenticator(config, authenticator, extraOpts...)
	if err != nil {
		if cacheCloser != nil {
			_ = cacheCloser.Close()
		}

		return nil, err
	}

	client.cacheCloser = cacheCloser

	return client, nil
}

// Close implements tdapi.Client.Close. A token cache passed in through
// tdapi.TokenCacheConfig.Cache is left open.
func (c *Client) Close() error {
	if c.cacheCloser == nil {
		return nil
	}

	err := c.cacheCloser.Close()
	c.cacheCloser = nil

	if err != nil {
		return fmt.Errorf("closing token cache: %w", err)
	}

	return nil
}

// NewWithAuthenticator creates a client with a custom authenticator. A nil
// authenticator allows only unauthenticated calls and calls with an explicit
// credential.
func NewWithAuthenticator(config *tdapi.Config, authenticator auth.Authenticator, extraOpts ...http.Option) (*Client, error) {
	if config == nil {
		return nil, tdapi.ErrConfigRequired
	}

	endpoint, err := validateEndpoint(config.APIEndpoint)
	if err != nil {
		return nil, err
	}

	appID := config.AppID
	if appID == "" {
		appID = constants.DefaultAppID
	}

	httpOpts := append(createHTTPClientOptions(config), extraOpts...)

	client := &Client{
		exec: &executor{
			httpClient:    http.NewClient(endpoint, httpOpts...),
			authenticator: authenticator,
			appID:         appID,
		},
	}

	client.initializeResourceClients()

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.folders = newFoldersClient(c.exec)
	c.contexts = newContextsClient(c.exec)
	c.goals = newGoalsClient(c.exec)
	c.tasks = newTasksClient(c.exec)
	c.notes = newNotesClient(c.exec)
}

// GetAuthenticator returns the authenticator for this client, or nil.
func (c *Client) GetAuthenticator() auth.Authenticator {
	return c.exec.authenticator
}

// Authenticate implements tdapi.AuthClient.Authenticate.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.exec.authenticator == nil {
		return "", fmt.Errorf("%w: %w", tdapi.ErrMissingCredential, ErrNoAuthenticatorConfigured)
	}

	credential, err := c.exec.authenticator.Authenticate(ctx, c.exec.httpClient, c.exec.appID)
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}

	return credential, nil
}

// IsAuthenticated implements tdapi.AuthClient.IsAuthenticated.
func (c *Client) IsAuthenticated() bool {
	return c.exec.authenticator != nil && c.exec.authenticator.IsAuthenticated()
}

// UserID implements tdapi.AuthClient.UserID.
func (c *Client) UserID() string {
	if c.exec.authenticator == nil {
		return ""
	}

	return c.exec.authenticator.UserID()
}

// Logout drops the held credential and, for cached authentication, the
// persisted session token.
func (c *Client) Logout(ctx context.Context) error {
	cached, ok := c.exec.authenticator.(*auth.CachedAuthenticator)
	if !ok {
		return ErrNotForgettable
	}

	err := cached.Forget(ctx)
	if err != nil {
		return fmt.Errorf("logging out: %w", err)
	}

	return nil
}

// GetUserID implements tdapi.AuthClient.GetUserID.
func (c *Client) GetUserID(ctx context.Context, email, password string) (string, error) {
	return auth.ResolveUserID(ctx, c.exec.httpClient, email, password)
}

// GetToken implements tdapi.AuthClient.GetToken. An empty userID selects the
// user ID resolved by the authenticator.
func (c *Client) GetToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		userID = c.UserID()
	}

	return auth.RequestToken(ctx, c.exec.httpClient, userID, c.exec.appID)
}

// CreateAccount implements tdapi.AuthClient.CreateAccount and returns the new user ID.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	root, err := c.exec.httpClient.Call(ctx, map[string]string{
		constants.ParamMethod:   constants.MethodCreateAccount,
		constants.ParamEmail:    email,
		constants.ParamPassword: password,
	})
	if err != nil {
		return "", fmt.Errorf("creating account: %w", err)
	}

	return root.Text, nil
}

// GetServerInfo implements tdapi.InfoClient.GetServerInfo.
func (c *Client) GetServerInfo(ctx context.Context, opts ...tdapi.CallOption) (*tdapi.Record, error) {
	return c.exec.callItem(ctx, constants.MethodGetServerInfo, nil, opts)
}

// GetAccountInfo implements tdapi.InfoClient.GetAccountInfo.
func (c *Client) GetAccountInfo(ctx context.Context, opts ...tdapi.CallOption) (*tdapi.Record, error) {
	return c.exec.callItem(ctx, constants.MethodGetAccountInfo, nil, opts)
}

// Folders implements tdapi.Client.Folders.
func (c *Client) Folders() tdapi.FoldersClient {
	return c.folders
}

// Contexts implements tdapi.Client.Contexts.
func (c *Client) Contexts() tdapi.ContextsClient {
	return c.contexts
}

// Goals implements tdapi.Client.Goals.
func (c *Client) Goals() tdapi.GoalsClient {
	return c.goals
}

// Tasks implements tdapi.Client.Tasks.
func (c *Client) Tasks() tdapi.TasksClient {
	return c.tasks
}

// Notes implements tdapi.Client.Notes.
func (c *Client) Notes() tdapi.NotesClient {
	return c.notes
}

// credential resolves the key for an authenticated call: an explicit
// per-call credential, then the authenticator's held credential.
func (e *executor) credential(method string, opts []tdapi.CallOption) (string, error) {
	options := tdapi.ApplyCallOptions(opts)
	if options.Credential != "" {
		return options.Credential, nil
	}

	if e.authenticator != nil && e.authenticator.IsAuthenticated() {
		return e.authenticator.Credential(), nil
	}

	return "", fmt.Errorf("%w to call %s", tdapi.ErrMissingCredential, method)
}

// call sends an authenticated request.
func (e *executor) call(ctx context.Context, method string, params tdapi.Params, opts []tdapi.CallOption) (*xmltree.Node, error) {
	key, err := e.credential(method, opts)
	if err != nil {
		return nil, err
	}

	request := params.Clone()
	request[constants.ParamMethod] = method
	request[constants.ParamKey] = key

	root, err := e.httpClient.Call(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	return root, nil
}

// callItem sends a request whose response is a single record.
func (e *executor) callItem(ctx context.Context, method string, params tdapi.Params, opts []tdapi.CallOption) (*tdapi.Record, error) {
	root, err := e.call(ctx, method, params, opts)
	if err != nil {
		return nil, err
	}

	record, err := records.Materialize(root)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", method, err)
	}

	return record, nil
}

// callList sends a request whose response is a list of records.
func (e *executor) callList(ctx context.Context, method string, params tdapi.Params, opts []tdapi.CallOption) ([]*tdapi.Record, error) {
	root, err := e.call(ctx, method, params, opts)
	if err != nil {
		return nil, err
	}

	list, err := records.MaterializeList(root)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", method, err)
	}

	return list, nil
}

// callText sends a write request and returns the response text, usually an
// ID or a status flag.
func (e *executor) callText(ctx context.Context, method string, params tdapi.Params, opts []tdapi.CallOption) (string, error) {
	root, err := e.call(ctx, method, params, opts)
	if err != nil {
		return "", err
	}

	return root.Text, nil
}

// withID returns params plus the record ID parameter.
func withID(id string, params tdapi.Params) (tdapi.Params, error) {
	if id == "" {
		return nil, ErrRecordIDRequired
	}

	return params.Clone().With(constants.ParamID, id), nil
}

// afterParams returns the parameters of a deleted-records query.
func afterParams(after string) (tdapi.Params, error) {
	if after == "" {
		return nil, ErrAfterRequired
	}

	return tdapi.NewParams().With(constants.ParamAfter, after), nil
}
