package client_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const (
	fixtureEmail    = "test@example.com"
	fixturePassword = "mypassword"
	fixtureUserID   = "sampleuserid156"
	fixtureToken    = "td493900752ca4d"
	fixtureKey      = "83210ee13e69133d9b241e2f24cf5850"
)

// fakeService is an httptest server speaking the ";"-separated query protocol.
// Responses are registered per API method.
type fakeService struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]string
	requests  []map[string]string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()

	service := &fakeService{
		responses: map[string]string{
			"getUserid": `<userid>` + fixtureUserID + `</userid>`,
			"getToken":  `<token>` + fixtureToken + `</token>`,
		},
	}

	service.Server = httptest.NewServer(http.HandlerFunc(service.handle))
	t.Cleanup(service.Close)

	return service
}

func (s *fakeService) respond(method, document string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[method] = document
}

func (s *fakeService) handle(writer http.ResponseWriter, request *http.Request) {
	params := parseQuery(request.URL.RawQuery)

	s.mu.Lock()
	s.requests = append(s.requests, params)
	document, ok := s.responses[params["method"]]
	s.mu.Unlock()

	if !ok {
		document = `<error>unknown method</error>`
	}

	writer.Header().Set("Content-Type", "text/xml")
	_, _ = writer.Write([]byte(document))
}

// calls returns the parameters of every request with the given method.
func (s *fakeService) calls(method string) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]string

	for _, params := range s.requests {
		if params["method"] == method {
			out = append(out, params)
		}
	}

	return out
}

func (s *fakeService) endpoint() string {
	return s.URL + "/api.php"
}

func parseQuery(rawQuery string) map[string]string {
	params := map[string]string{}

	for _, pair := range strings.Split(rawQuery, ";") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}

		unescaped, err := url.QueryUnescape(value)
		if err != nil {
			unescaped = value
		}

		params[key] = unescaped
	}

	return params
}
