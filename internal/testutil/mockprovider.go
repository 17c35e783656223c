// Package testutil provides a configurable mock provider server for gateway
// tests: per-path handlers, scripted status sequences and request counting.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines one scripted response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is an httptest-backed fake upstream provider.
type MockProvider struct {
	server *httptest.Server

	mu        sync.Mutex
	handlers  map[string]http.HandlerFunc
	sequences map[string][]MockResponse

	requestCount int
	pathCounts   map[string]int
	lastQuery    url.Values
	lastHeader   http.Header
}

// NewMockProvider starts the mock server. Callers must Close it.
func NewMockProvider() *MockProvider {
	m := &MockProvider{
		handlers:   make(map[string]http.HandlerFunc),
		sequences:  make(map[string][]MockResponse),
		pathCounts: make(map[string]int),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requestCount++
		m.pathCounts[r.URL.Path]++
		m.lastQuery = r.URL.Query()
		m.lastHeader = r.Header.Clone()

		if seq, ok := m.sequences[r.URL.Path]; ok && len(seq) > 0 {
			resp := seq[0]
			// The last scripted response repeats forever.
			if len(seq) > 1 {
				m.sequences[r.URL.Path] = seq[1:]
			}
			m.mu.Unlock()
			m.write(w, resp)
			return
		}

		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found","message":"no handler for path"}}`))
	}))

	return m
}

func (m *MockProvider) write(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
}

// URL returns the mock server base URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Handle installs a custom handler for path.
func (m *MockProvider) Handle(path string, fn http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = fn
}

// Script installs a sequence of responses for path. Responses are served in
// order; the final one repeats for any further requests.
func (m *MockProvider) Script(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = responses
}

// RequestCount returns the total number of requests served.
func (m *MockProvider) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// PathCount returns the number of requests served for one path.
func (m *MockProvider) PathCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pathCounts[path]
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockProvider) LastQuery() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// LastHeader returns the headers of the most recent request.
func (m *MockProvider) LastHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHeader
}

// Reset clears counters and scripted sequences.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.sequences = make(map[string][]MockResponse)
	m.lastQuery = nil
	m.lastHeader = nil
}
