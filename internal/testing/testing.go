// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/playlistinator/internal/models"
)

// GatewayFunc adapts a function to the services.Gateway interface.
type GatewayFunc func(ctx context.Context) models.GenerationResult

func (f GatewayFunc) Generate(ctx context.Context) models.GenerationResult { return f(ctx) }

// BlockingGateway holds every Generate call until Release is called, so
// tests can observe the busy window.
type BlockingGateway struct {
	Result  models.GenerationResult
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func NewBlockingGateway(result models.GenerationResult) *BlockingGateway {
	return &BlockingGateway{
		Result:  result,
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (b *BlockingGateway) Generate(ctx context.Context) models.GenerationResult {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return b.Result
}

// Started is signalled once per Generate call, before it blocks.
func (b *BlockingGateway) Started() <-chan struct{} { return b.started }

// Release unblocks all pending and future calls.
func (b *BlockingGateway) Release() { b.once.Do(func() { close(b.release) }) }

// Calls reports how many times Generate was entered.
func (b *BlockingGateway) Calls() int { return int(b.calls.Load()) }

// Backend is an httptest server standing in for the generation backend.
type Backend struct {
	*httptest.Server
	hits atomic.Int32

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

// NewBackend starts a backend that answers every request with status and body.
func NewBackend(t *testing.T, status int, body string) *Backend {
	t.Helper()

	b := &Backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		buf := make([]byte, 512)
		n, _ := r.Body.Read(buf)

		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(context.Background()))
		b.bodies = append(b.bodies, buf[:n])
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(b.Close)
	return b
}

// Hits returns how many requests the backend received.
func (b *Backend) Hits() int { return int(b.hits.Load()) }

// LastRequest returns the most recent request and its body, or nil.
func (b *Backend) LastRequest() (*http.Request, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return nil, nil
	}
	i := len(b.requests) - 1
	return b.requests[i], b.bodies[i]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// ClosedURL returns the URL of a server that has already been shut down, so
// connecting to it is refused.
func ClosedURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
