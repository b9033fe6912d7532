package webui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-bakker/searchai/internal/search"
	"github.com/ben-bakker/searchai/internal/types"
)

type stubProvider struct {
	calls int
	raw   []types.RawResult
	err   error
	opts  types.SearchOptions
}

func (p *stubProvider) Search(ctx context.Context, query string, opts types.SearchOptions) ([]types.RawResult, error) {
	p.calls++
	p.opts = opts
	return p.raw, p.err
}

type stubAnswerer struct{}

func (stubAnswerer) GenerateAnswer(ctx context.Context, query string, results []types.SearchResult) (*types.AIAnswer, error) {
	return &types.AIAnswer{Answer: "ответ", Model: "mixtral-8x7b-32768"}, nil
}

func newTestServer(t *testing.T, provider *stubProvider) *Server {
	t.Helper()
	svc, err := search.NewService(search.ServiceConfig{
		Provider:        provider,
		Answerer:        stubAnswerer{},
		UpstreamTimeout: time.Second,
		Logger:          log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)

	cfg := DefaultServerConfig()
	cfg.MaxRequestBytes = 1024
	server, err := NewServer(cfg, svc, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return server
}

func doRequest(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestNewServerRequiresSearcher(t *testing.T) {
	_, err := NewServer(nil, nil, nil)
	require.Error(t, err)
}

func TestHandleSearch(t *testing.T) {
	provider := &stubProvider{raw: []types.RawResult{
		{"url": "https://go.dev", "title": "Go", "content": "The Go language", "score": 0.9},
		{"url": "https://go.dev", "content": "The Go language"},
		{"url": "https://pkg.go.dev", "content": "Packages", "published_date": "2024-01-02"},
	}}
	server := newTestServer(t, provider)

	w := doRequest(t, server, http.MethodPost, "/api/search",
		`{"query":"golang","options":{"maxResults":3,"includeDomains":["go.dev"]}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "aiAnswer")

	results := resp["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "Go", first["title"])
	assert.Nil(t, first["published_date"])
	assert.Equal(t, "2024-01-02", results[1].(map[string]any)["published_date"])

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 3, provider.opts.MaxResults)
	assert.Equal(t, []string{"go.dev"}, provider.opts.IncludeDomains)
}

func TestHandleSearchWithAnswer(t *testing.T) {
	provider := &stubProvider{raw: []types.RawResult{{"url": "https://go.dev", "title": "Go", "content": "x"}}}
	server := newTestServer(t, provider)

	w := doRequest(t, server, http.MethodPost, "/api/search", `{"query":"golang","options":{"generateAnswer":true}}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.AIAnswer)
	assert.Equal(t, "ответ", resp.AIAnswer.Answer)
	assert.Equal(t, []types.Source{{Title: "Go", URL: "https://go.dev"}}, resp.AIAnswer.Sources)
}

func TestHandleSearchInvalidQuery(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"missing query", `{}`},
		{"null query", `{"query":null}`},
		{"numeric query", `{"query":42}`},
		{"object query", `{"query":{"q":"go"}}`},
		{"empty query", `{"query":""}`},
		{"whitespace query", `{"query":"  \t "}`},
		{"bad options", `{"query":"go","options":{"maxResults":"ten"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{}
			server := newTestServer(t, provider)

			w := doRequest(t, server, http.MethodPost, "/api/search", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, msgInvalidQuery, decodeError(t, w))
			assert.Zero(t, provider.calls)
		})
	}
}

func TestHandleSearchMethodNotAllowed(t *testing.T) {
	server := newTestServer(t, &stubProvider{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := doRequest(t, server, method, "/api/search", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, msgMethodNotAllowed, decodeError(t, w))
	}
}

func TestHandleSearchUpstreamFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("Tavily API error (502): bad gateway, key=tvly-secret")}
	server := newTestServer(t, provider)

	w := doRequest(t, server, http.MethodPost, "/api/search", `{"query":"golang"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgInternalError, decodeError(t, w))
	assert.NotContains(t, w.Body.String(), "tvly-secret")
}

func TestHandleSearchBodyTooLarge(t *testing.T) {
	provider := &stubProvider{}
	server := newTestServer(t, provider)

	body := `{"query":"` + strings.Repeat("a", 2048) + `"}`
	w := doRequest(t, server, http.MethodPost, "/api/search", body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, provider.calls)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, &stubProvider{})

	w := doRequest(t, server, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(t, server, http.MethodPost, "/api/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(t, &stubProvider{})

	w := doRequest(t, server, http.MethodOptions, "/api/search", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	w = doRequest(t, server, http.MethodOptions, "/api/search", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	svc, err := search.NewService(search.ServiceConfig{Provider: &stubProvider{}})
	require.NoError(t, err)

	cfg := DefaultServerConfig()
	cfg.AllowedOrigins = []string{"*"}
	server, err := NewServer(cfg, svc, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	w := doRequest(t, server, http.MethodGet, "/api/health", "", map[string]string{"Origin": "https://any.example"})
	assert.Equal(t, "https://any.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	server := newTestServer(t, &stubProvider{})

	w := doRequest(t, server, http.MethodGet, "/api/health", "", nil)
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	require.NoError(t, err)

	id := uuid.NewString()
	w = doRequest(t, server, http.MethodGet, "/api/health", "", map[string]string{requestIDHeader: id})
	assert.Equal(t, id, w.Header().Get(requestIDHeader))

	w = doRequest(t, server, http.MethodGet, "/api/health", "", map[string]string{requestIDHeader: "not-a-uuid\n"})
	assert.NotEqual(t, "not-a-uuid\n", w.Header().Get(requestIDHeader))
}

func TestStaticPage(t *testing.T) {
	server := newTestServer(t, &stubProvider{})

	w := doRequest(t, server, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "/api/search")
}

func TestServerConfigFromConfig(t *testing.T) {
	cfg := &types.Config{
		ServerHost:            "127.0.0.1",
		ServerPort:            8080,
		ServerReadTimeout:     time.Second,
		ServerWriteTimeout:    2 * time.Second,
		ServerIdleTimeout:     3 * time.Second,
		ServerShutdownTimeout: 4 * time.Second,
		MaxRequestBytes:       4096,
		CORSAllowedOrigins:    []string{"*"},
	}

	got := ServerConfigFromConfig(cfg)
	assert.Equal(t, int64(4096), got.MaxRequestBytes)
	assert.Equal(t, []string{"*"}, got.AllowedOrigins)

	svc, err := search.NewService(search.ServiceConfig{Provider: &stubProvider{}})
	require.NoError(t, err)
	server, err := NewServer(got, svc, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", server.Addr())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	svc, err := search.NewService(search.ServiceConfig{Provider: &stubProvider{}})
	require.NoError(t, err)

	cfg := DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = time.Second
	server, err := NewServer(cfg, svc, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
