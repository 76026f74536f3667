// Package testutil provides test doubles shared across packages.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// MockDiscordServer is an httptest server standing in for the Discord REST
// API. Handlers are keyed by "METHOD /path" (for example
// "GET /api/v9/channels/123"). Unmatched requests get 404 with a Discord
// style error body.
type MockDiscordServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	mu       sync.Mutex
	requests []*http.Request
}

// NewMockDiscordServer creates a new mock Discord API server.
func NewMockDiscordServer(t *testing.T) *MockDiscordServer {
	t.Helper()
	m := &MockDiscordServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests = append(m.requests, r.Clone(r.Context()))
		m.mu.Unlock()
		key := r.Method + " " + r.URL.Path
		if handler, ok := m.Handlers[key]; ok {
			handler(w, r)
			return
		}
		WriteJSON(w, http.StatusNotFound, map[string]any{"code": 10003, "message": "Unknown Channel"})
	}))
	t.Cleanup(m.Close)
	return m
}

// Client returns an http.Client that sends every request, whatever its
// host, to the mock server.
func (m *MockDiscordServer) Client() *http.Client {
	target, _ := url.Parse(m.URL)
	return &http.Client{Transport: rewriteTransport{target: target, base: http.DefaultTransport}}
}

// Requests returns the requests received so far.
func (m *MockDiscordServer) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// Respond registers a handler returning status and body as JSON.
func (m *MockDiscordServer) Respond(key string, status int, body any) {
	m.Handlers[key] = func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	}
}

// WriteJSON writes body as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // test mock response
	}
}

type rewriteTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = t.target.Host
	return t.base.RoundTrip(r)
}
