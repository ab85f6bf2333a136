package ecp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockDevice provides a configurable control-channel mock for testing.
type MockDevice struct {
	*httptest.Server
	mu       sync.RWMutex
	requests []string       // request paths with query, in arrival order
	status   map[string]int // status override per path prefix
}

// NewMockDevice creates a mock device that accepts every command.
func NewMockDevice() *MockDevice {
	mock := &MockDevice{
		status: make(map[string]int),
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockDevice) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	// Record the escaped form so tests observe the wire format, not the
	// decoded path.
	path := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	m.mu.Lock()
	m.requests = append(m.requests, path)
	code := http.StatusOK
	for prefix, s := range m.status {
		if strings.HasPrefix(r.URL.Path, prefix) {
			code = s
		}
	}
	m.mu.Unlock()

	w.WriteHeader(code)
}

// FailWith makes every request whose path starts with prefix return the given
// status code.
func (m *MockDevice) FailWith(prefix string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[prefix] = status
}

// Requests returns a copy of the request paths seen so far.
func (m *MockDevice) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and status overrides.
func (m *MockDevice) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.status = make(map[string]int)
}
