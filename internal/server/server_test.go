package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/shared"
	tu "github.com/desertthunder/playlistinator/internal/testing"
	"golang.org/x/time/rate"
)

type fakeRecorder struct {
	mu   sync.Mutex
	runs []*models.Run
}

func (f *fakeRecorder) RecordRun(run *models.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return nil
}

type fakePage struct{}

func (fakePage) Routes() []string { return []string{"/"} }

func (fakePage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/boom" {
		panic("page exploded")
	}
	w.Write([]byte("page"))
}

func quietLogger() *bytes.Buffer { return &bytes.Buffer{} }

func newTestApp(t *testing.T, upstreamURL string, opts AppOpts) *httptest.Server {
	t.Helper()
	opts.Upstream = services.NewGatewayService(upstreamURL, nil).WithPath("/generate")
	opts.Logger = shared.NewLogger(quietLogger())
	srv := httptest.NewServer(NewApp(opts))
	t.Cleanup(srv.Close)
	return srv
}

func postGenerate(t *testing.T, base string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, base+"/api/generate", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, r io.Reader) Envelope {
	t.Helper()
	var e Envelope
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return e
}

func TestRelay(t *testing.T) {
	t.Run("passes through a 2xx result", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":true,"message":"Playlist created","count":25}`)
		recorder := &fakeRecorder{}
		app := newTestApp(t, backend.URL, AppOpts{Recorder: recorder})

		resp := postGenerate(t, app.URL, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var result models.GenerationResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}
		if !result.Success || result.Message != "Playlist created" {
			t.Errorf("unexpected result %+v", result)
		}
		if n, ok := result.TrackCount(); !ok || n != 25 {
			t.Errorf("expected count 25, got %d", n)
		}

		req, _ := backend.LastRequest()
		if req.URL.Path != "/generate" || req.Method != http.MethodPost {
			t.Errorf("expected POST /generate upstream, got %s %s", req.Method, req.URL.Path)
		}

		if len(recorder.runs) != 1 || recorder.runs[0].Surface() != models.SurfaceWeb {
			t.Errorf("expected one web run recorded, got %d", len(recorder.runs))
		}
	})

	t.Run("logical failure is still passed through", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":false,"message":"No scrobbles"}`)
		app := newTestApp(t, backend.URL, AppOpts{})

		resp := postGenerate(t, app.URL, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if e := decodeEnvelope(t, resp.Body); e.Success || e.Message != "No scrobbles" {
			t.Errorf("unexpected body %+v", e)
		}
	})

	tc := []struct {
		name   string
		status int
		body   string
	}{
		{name: "upstream 500", status: http.StatusInternalServerError, body: ``},
		{name: "upstream 404", status: http.StatusNotFound, body: `{"success":true,"message":"lies"}`},
		{name: "malformed body", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			backend := tu.NewBackend(t, tt.status, tt.body)
			recorder := &fakeRecorder{}
			app := newTestApp(t, backend.URL, AppOpts{Recorder: recorder})

			resp := postGenerate(t, app.URL, nil)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", resp.StatusCode)
			}

			e := decodeEnvelope(t, resp.Body)
			if e.Success || e.Message != RelayFailureMessage || e.Error != RelayFailureMessage {
				t.Errorf("unexpected envelope %+v", e)
			}
			if len(recorder.runs) != 1 || recorder.runs[0].Success() {
				t.Error("expected one failed run recorded")
			}
		})
	}

	t.Run("upstream unreachable", func(t *testing.T) {
		app := newTestApp(t, tu.ClosedURL(t), AppOpts{})

		resp := postGenerate(t, app.URL, nil)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		if e := decodeEnvelope(t, resp.Body); e.Error != RelayFailureMessage {
			t.Errorf("unexpected envelope %+v", e)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":true,"message":"ok"}`)
		app := newTestApp(t, backend.URL, AppOpts{})

		resp, err := http.Get(app.URL + "/api/generate")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
		if backend.Hits() != 0 {
			t.Error("upstream must not be called")
		}
	})

	t.Run("rate limit answers 429", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":true,"message":"ok"}`)
		app := newTestApp(t, backend.URL, AppOpts{Limiter: rate.NewLimiter(rate.Every(time.Hour), 2)})

		for i := range 2 {
			if resp := postGenerate(t, app.URL, nil); resp.StatusCode != http.StatusOK {
				t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
			}
		}

		resp := postGenerate(t, app.URL, nil)
		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
		if e := decodeEnvelope(t, resp.Body); e.Success || e.Message != RelayFailureMessage {
			t.Errorf("unexpected envelope %+v", e)
		}
		if backend.Hits() != 2 {
			t.Errorf("expected 2 upstream hits, got %d", backend.Hits())
		}
	})

	t.Run("CORS for allowed origins", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":true,"message":"ok"}`)
		app := newTestApp(t, backend.URL, AppOpts{AllowedOrigins: []string{"http://localhost:3001"}})

		resp := postGenerate(t, app.URL, http.Header{"Origin": {"http://localhost:3001"}})
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3001" {
			t.Errorf("expected allow-origin header, got %q", got)
		}
	})
}

func TestApp(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		app := newTestApp(t, tu.ClosedURL(t), AppOpts{})

		resp, err := http.Get(app.URL + "/healthz")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != `{"status":"ok"}` {
			t.Errorf("unexpected health response %d %s", resp.StatusCode, body)
		}
	})

	t.Run("page and recovery", func(t *testing.T) {
		app := newTestApp(t, tu.ClosedURL(t), AppOpts{Page: fakePage{}})

		resp, err := http.Get(app.URL + "/")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 for page, got %d", resp.StatusCode)
		}

		resp, err = http.Get(app.URL + "/boom")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("expected 500 after panic, got %d", resp.StatusCode)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		backend := tu.NewBackend(t, http.StatusOK, `{"success":true,"message":"ok","count":3}`)
		app := newTestApp(t, backend.URL, AppOpts{Metrics: NewMetrics()})

		postGenerate(t, app.URL, nil)

		resp, err := http.Get(app.URL + "/metrics")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		for _, want := range []string{
			`playlistinator_generate_runs_total{outcome="success",surface="web"} 1`,
			`playlistinator_http_requests_total{method="POST",route="/api/generate",status="200"} 1`,
		} {
			if !strings.Contains(string(body), want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})

	t.Run("no metrics route without metrics", func(t *testing.T) {
		app := newTestApp(t, tu.ClosedURL(t), AppOpts{})

		resp, err := http.Get(app.URL + "/metrics")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Pattern))
	})

	t.Run("method patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/metrics", ok)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "GET /metrics" {
			t.Errorf("unexpected GET response %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order and unmatched requests", func(t *testing.T) {
		var order []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(tag("outer"), nil, tag("inner"))
		r.Handle(http.MethodGet, "/healthz", ok)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if strings.Join(order, ",") != "outer,inner" {
			t.Errorf("unexpected middleware order %v", order)
		}
	})

	t.Run("patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(HealthHandler{})
		r.Handle(http.MethodGet, "/metrics", ok)

		want := []string{"/healthz", "GET /metrics"}
		if got := r.Patterns(); strings.Join(got, " | ") != strings.Join(want, " | ") {
			t.Errorf("Patterns() = %v, want %v", got, want)
		}
	})
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Error("non-positive rate should disable limiting")
	}
	l := NewLimiter(1, 0)
	if l == nil || l.Burst() != 1 {
		t.Error("burst should be at least one")
	}
}

func TestServer(t *testing.T) {
	srv := New("127.0.0.1:0", HealthHandler{}, shared.NewLogger(quietLogger()))

	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
