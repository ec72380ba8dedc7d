package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tdhttp "github.com/fivetwenty-io/tdapi-client/internal/http"
	"github.com/fivetwenty-io/tdapi-client/pkg/tdapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msg, _ := entry["msg"].(string)
		out = append(out, msg)
	}

	return out
}

// staticFetcher answers every call with the same document and records the URLs.
type staticFetcher struct {
	mu       sync.Mutex
	document string
	err      error
	urls     []string
}

func (f *staticFetcher) Fetch(_ context.Context, rawURL string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.urls = append(f.urls, rawURL)
	if f.err != nil {
		return nil, f.err
	}

	return io.NopCloser(strings.NewReader(f.document)), nil
}

func TestBuildRequestURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   map[string]string
		expected string
	}{
		{
			name:     "sorted keys joined by semicolons",
			params:   map[string]string{"method": "getUserid", "email": "me@example.com", "pass_": "secret"},
			expected: "http://api.test/api.php?email=me%40example.com;method=getUserid;pass=secret",
		},
		{
			name:     "trailing underscore stripped",
			params:   map[string]string{"id_": "42", "method": "deleteTask"},
			expected: "http://api.test/api.php?id=42;method=deleteTask",
		},
		{
			name:     "spaces and reserved characters escaped",
			params:   map[string]string{"title": "Buy milk & eggs; now", "method": "addTask"},
			expected: "http://api.test/api.php?method=addTask;title=Buy%20milk%20%26%20eggs%3B%20now",
		},
		{
			name:     "no parameters",
			params:   map[string]string{},
			expected: "http://api.test/api.php?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tdhttp.BuildRequestURL("http://api.test/api.php", tt.params))
		})
	}
}

func TestBuildRequestURL_Deterministic(t *testing.T) {
	t.Parallel()

	first := map[string]string{}
	first["method"] = "getToken"
	first["userid"] = "u1"
	first["appid"] = "app"

	second := map[string]string{}
	second["appid"] = "app"
	second["userid"] = "u1"
	second["method"] = "getToken"

	assert.Equal(t,
		tdhttp.BuildRequestURL("http://api.test/api.php", first),
		tdhttp.BuildRequestURL("http://api.test/api.php?", second),
	)
}

func TestClient_Call(t *testing.T) {
	t.Parallel()

	t.Run("returns the root element", func(t *testing.T) {
		t.Parallel()

		fetcher := &staticFetcher{document: `<userid>sampleuserid156</userid>`}
		client := tdhttp.NewClient("http://api.test/api.php", tdhttp.WithFetcher(fetcher))

		root, err := client.Call(context.Background(), map[string]string{"method": "getUserid"})
		require.NoError(t, err)

		assert.Equal(t, "userid", root.Tag)
		assert.Equal(t, "sampleuserid156", root.Text)
		assert.Equal(t, []string{"http://api.test/api.php?method=getUserid"}, fetcher.urls)
	})

	t.Run("error root becomes server error", func(t *testing.T) {
		t.Parallel()

		fetcher := &staticFetcher{document: `<error>invalid key</error>`}
		client := tdhttp.NewClient("http://api.test/api.php", tdhttp.WithFetcher(fetcher))

		_, err := client.Call(context.Background(), map[string]string{"method": "getTasks"})
		require.Error(t, err)

		var serverErr *tdapi.ServerError
		require.ErrorAs(t, err, &serverErr)
		assert.Equal(t, "invalid key", serverErr.Message)
		assert.True(t, tdapi.IsServerError(err))
	})

	t.Run("fetch failure is wrapped", func(t *testing.T) {
		t.Parallel()

		fetchErr := errors.New("connection refused")
		client := tdhttp.NewClient("http://api.test/api.php", tdhttp.WithFetcher(&staticFetcher{err: fetchErr}))

		_, err := client.Call(context.Background(), map[string]string{"method": "getTasks"})
		require.ErrorIs(t, err, fetchErr)
		assert.Contains(t, err.Error(), "getTasks")
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()

		client := tdhttp.NewClient("http://api.test/api.php", tdhttp.WithFetcher(&staticFetcher{document: `<tasks><task>`}))

		_, err := client.Call(context.Background(), map[string]string{"method": "getTasks"})
		require.Error(t, err)
	})

	t.Run("fetcher func", func(t *testing.T) {
		t.Parallel()

		var calls int32

		fetcher := tdhttp.FetcherFunc(func(_ context.Context, rawURL string) (io.ReadCloser, error) {
			atomic.AddInt32(&calls, 1)
			assert.Contains(t, rawURL, "method=getServerInfo")

			return io.NopCloser(strings.NewReader(`<server><unixtime>1</unixtime></server>`)), nil
		})

		client := tdhttp.NewClient("http://api.test/api.php", tdhttp.WithFetcher(fetcher))

		root, err := client.Call(context.Background(), map[string]string{"method": "getServerInfo"})
		require.NoError(t, err)
		assert.Equal(t, "server", root.Tag)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestClient_DebugLoggingRedactsSecrets(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	client := tdhttp.NewClient("http://api.test/api.php",
		tdhttp.WithFetcher(&staticFetcher{document: `<userid>abc</userid>`}),
		tdhttp.WithLogger(logger),
		tdhttp.WithDebug(true),
	)

	_, err := client.Call(context.Background(), map[string]string{
		"method": "getUserid",
		"email":  "me@example.com",
		"pass_":  "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"HTTP Request", "HTTP Response"}, logger.messages())

	fields, ok := logger.logs[0]["fields"].(map[string]interface{})
	require.True(t, ok)

	loggedURL, ok := fields["url"].(string)
	require.True(t, ok)
	assert.NotContains(t, loggedURL, "hunter2")
	assert.Contains(t, loggedURL, "pass=***")
}

func TestClient_NoDebugLogsWithoutDebug(t *testing.T) {
	t.Parallel()

	logger := &MockLogger{}
	client := tdhttp.NewClient("http://api.test/api.php",
		tdhttp.WithFetcher(&staticFetcher{document: `<userid>abc</userid>`}),
		tdhttp.WithLogger(logger),
	)

	_, err := client.Call(context.Background(), map[string]string{"method": "getUserid"})
	require.NoError(t, err)
	assert.Empty(t, logger.messages())
}

func TestClient_DefaultFetcher(t *testing.T) {
	t.Parallel()

	t.Run("sends a GET with the raw query", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "/api.php", request.URL.Path)
			assert.Equal(t, "appid=app;method=getToken;userid=u1", request.URL.RawQuery)
			assert.Equal(t, "test-agent", request.Header.Get("User-Agent"))

			_, _ = writer.Write([]byte(`<token>td12345</token>`))
		}))
		defer server.Close()

		client := tdhttp.NewClient(server.URL+"/api.php", tdhttp.WithUserAgent("test-agent"))

		root, err := client.Call(context.Background(), map[string]string{
			"method": "getToken",
			"userid": "u1",
			"appid":  "app",
		})
		require.NoError(t, err)
		assert.Equal(t, "td12345", root.Text)
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var attempts int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&attempts, 1) < 3 {
				writer.WriteHeader(http.StatusServiceUnavailable)

				return
			}

			_, _ = writer.Write([]byte(`<server><unixtime>1</unixtime></server>`))
		}))
		defer server.Close()

		client := tdhttp.NewClient(server.URL,
			tdhttp.WithRetryConfig(3, time.Millisecond, 5*time.Millisecond),
		)

		root, err := client.Call(context.Background(), map[string]string{"method": "getServerInfo"})
		require.NoError(t, err)
		assert.Equal(t, "server", root.Tag)
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("client errors surface as status errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte("not here"))
		}))
		defer server.Close()

		client := tdhttp.NewClient(server.URL, tdhttp.WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Call(context.Background(), map[string]string{"method": "getServerInfo"})
		require.ErrorIs(t, err, tdhttp.ErrUnexpectedStatus)

		var statusErr *tdhttp.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, "not here", statusErr.Body)
	})
}

func TestClient_RateLimit(t *testing.T) {
	t.Parallel()

	fetcher := &staticFetcher{document: `<server/>`}
	client := tdhttp.NewClient("http://api.test/api.php",
		tdhttp.WithFetcher(fetcher),
		tdhttp.WithRateLimit(1, 1),
	)

	_, err := client.Call(context.Background(), map[string]string{"method": "getServerInfo"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = client.Call(ctx, map[string]string{"method": "getServerInfo"})
	require.Error(t, err)
	assert.Len(t, fetcher.urls, 1)
}
