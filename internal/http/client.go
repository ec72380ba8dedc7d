// Package http implements the request transport: URL construction, fetching
// and XML parsing of responses.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/fivetwenty-io/tdapi-client/internal/constants"
	"github.com/fivetwenty-io/tdapi-client/internal/xmltree"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Static errors for err113 compliance.
var (
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// StatusError is returned when the server answers with an HTTP error status.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %d", ErrUnexpectedStatus, e.StatusCode)
	}

	return fmt.Sprintf("%v: %d: %s", ErrUnexpectedStatus, e.StatusCode, e.Body)
}

// Unwrap returns ErrUnexpectedStatus.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Fetcher performs the HTTP GET of a fully built URL. The caller closes the body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, rawURL string) (io.ReadCloser, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return f(ctx, rawURL)
}

// Client sends API calls and returns the parsed root element.
type Client struct {
	endpoint     string
	fetcher      Fetcher
	parser       xmltree.Parser
	logger       tdapi.Logger
	debug        bool
	userAgent    string
	timeout      time.Duration
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	limiter      *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger tdapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithTimeout bounds a single HTTP attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig sets the retry policy of the default fetcher.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithRateLimit limits outgoing calls to requestsPerSecond with the given burst.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil

			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithFetcher replaces the HTTP fetch mechanism, e.g. with a test double.
func WithFetcher(fetcher Fetcher) Option {
	return func(c *Client) {
		c.fetcher = fetcher
	}
}

// WithParser replaces the XML parser.
func WithParser(parser xmltree.Parser) Option {
	return func(c *Client) {
		c.parser = parser
	}
}

// NewClient creates a transport for the given service endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	client := &Client{
		endpoint:     strings.TrimSuffix(endpoint, "?"),
		userAgent:    constants.DefaultUserAgent,
		timeout:      constants.DefaultHTTPTimeout,
		retryMax:     constants.DefaultRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.parser == nil {
		client.parser = xmltree.NewParser()
	}

	if client.fetcher == nil {
		client.fetcher = client.newRetryingFetcher()
	}

	return client
}

// RequestURL builds the URL for a set of parameters.
func (c *Client) RequestURL(params map[string]string) string {
	return BuildRequestURL(c.endpoint, params)
}

// Call performs one API call. A root element named "error" is returned as a
// *tdapi.ServerError carrying the element text.
func (c *Client) Call(ctx context.Context, params map[string]string) (*xmltree.Node, error) {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	requestURL := c.RequestURL(params)
	start := time.Now()

	c.logDebug("HTTP Request", map[string]interface{}{
		"method": params[constants.ParamMethod],
		"url":    redactURL(requestURL),
	})

	body, err := c.fetcher.Fetch(ctx, requestURL)
	if err != nil {
		c.logError("HTTP Request Failed", params, err)

		return nil, fmt.Errorf("fetching %s: %w", params[constants.ParamMethod], err)
	}

	defer func() {
		_ = body.Close()
	}()

	root, err := c.parser.Parse(body)
	if err != nil {
		c.logError("HTTP Response Unparseable", params, err)

		return nil, fmt.Errorf("reading %s response: %w", params[constants.ParamMethod], err)
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"method":   params[constants.ParamMethod],
		"root":     root.Tag,
		"duration": time.Since(start).String(),
	})

	if root.Tag == constants.ErrorTag {
		return nil, &tdapi.ServerError{Message: strings.TrimSpace(root.Text)}
	}

	return root, nil
}

// BuildRequestURL joins the endpoint and the parameters as "key=value" pairs
// separated by ";" in key order. A trailing underscore is stripped from each
// key and values are percent-encoded.
func BuildRequestURL(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, strings.TrimSuffix(key, "_")+"="+escapeValue(params[key]))
	}

	return strings.TrimSuffix(endpoint, "?") + "?" + strings.Join(pairs, ";")
}

func escapeValue(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.logger != nil && c.debug {
		c.logger.Debug(msg, fields)
	}
}

func (c *Client) logError(msg string, params map[string]string, err error) {
	if c.logger == nil {
		return
	}

	c.logger.Error(msg, map[string]interface{}{
		"method": params[constants.ParamMethod],
		"error":  err.Error(),
	})
}

// retryingFetcher is the default Fetcher.
type retryingFetcher struct {
	client    *retryablehttp.Client
	userAgent string
}

func (c *Client) newRetryingFetcher() *retryingFetcher {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = c.retryMax
	retryClient.RetryWaitMin = c.retryWaitMin
	retryClient.RetryWaitMax = c.retryWaitMax
	retryClient.HTTPClient.Timeout = c.timeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if c.logger != nil && c.debug {
		retryClient.Logger = &leveledLogger{logger: c.logger}
	}

	return &retryingFetcher{client: retryClient, userAgent: c.userAgent}
}

// Fetch implements Fetcher.
func (f *retryingFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/xml, text/xml")

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() {
			_ = resp.Body.Close()
		}()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))

		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp.Body, nil
}

// leveledLogger adapts tdapi.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger tdapi.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])

		value := keysAndValues[i+1]
		if key == "url" {
			value = redactURL(fmt.Sprint(value))
		}

		fields[key] = value
	}

	return fields
}

// redactURL masks secret values in a logged request URL.
func redactURL(rawURL string) string {
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return rawURL
	}

	pairs := strings.Split(query, ";")
	for i, pair := range pairs {
		key, _, ok := strings.Cut(pair, "=")
		if ok && (key == "pass" || key == constants.ParamKey) {
			pairs[i] = key + "=" + constants.MaskedSecret
		}
	}

	return base + "?" + strings.Join(pairs, ";")
}
