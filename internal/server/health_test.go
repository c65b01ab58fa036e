package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/embedder"
)

// ---------------------------------------------------------------------------
// Fake Pinger for readiness tests
// ---------------------------------------------------------------------------

// fakePinger is a test double for the Pinger interface.
type fakePinger struct {
	// name is returned by Name().
	name string
	// err is returned by Ping(); nil means healthy.
	err error
}

func (f *fakePinger) Name() string                 { return f.name }
func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// newReadyTestServer builds a *Server with the given pingers wired in.
func newReadyTestServer(t *testing.T, pingers ...Pinger) *Server {
	t.Helper()
	s := newTestServer(t, &fakeRecommender{}, catalog.Default())
	s.pingers = pingers
	return s
}

// ---------------------------------------------------------------------------
// GET /api/health: liveness
// ---------------------------------------------------------------------------

func TestHandleHealth_OK(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: expected application/json, got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status: expected %q, got %q", "ok", body["status"])
	}
}

// ---------------------------------------------------------------------------
// GET /api/ready: readiness
// ---------------------------------------------------------------------------

func TestHandleReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingers    []Pinger
		wantStatus int
		wantReady  bool
		wantFailed []string
	}{
		{
			name:       "no pingers",
			wantStatus: http.StatusOK,
			wantReady:  true,
		},
		{
			name: "all healthy",
			pingers: []Pinger{
				&fakePinger{name: "catalog"},
				&fakePinger{name: "embedder"},
			},
			wantStatus: http.StatusOK,
			wantReady:  true,
		},
		{
			name: "embedder down",
			pingers: []Pinger{
				&fakePinger{name: "catalog"},
				&fakePinger{name: "embedder", err: errors.New("connection refused")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: []string{"embedder"},
		},
		{
			name: "all failing",
			pingers: []Pinger{
				&fakePinger{name: "catalog", err: errors.New("database is locked")},
				&fakePinger{name: "embedder", err: errors.New("timeout")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: []string{"catalog", "embedder"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newReadyTestServer(t, tc.pingers...)
			req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
			w := httptest.NewRecorder()

			s.handleReady(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d, body: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type: expected application/json, got %q", ct)
			}

			var resp readyResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Ready != tc.wantReady {
				t.Errorf("ready: expected %v, got %v", tc.wantReady, resp.Ready)
			}
			if len(resp.Checks) != len(tc.pingers) {
				t.Fatalf("expected %d checks, got %d", len(tc.pingers), len(resp.Checks))
			}

			failed := map[string]bool{}
			for _, c := range resp.Checks {
				if !c.OK {
					failed[c.Name] = true
					if c.Error == "" {
						t.Errorf("check %q: expected non-empty error", c.Name)
					}
				}
			}
			if len(failed) != len(tc.wantFailed) {
				t.Errorf("failed checks = %v, want %v", failed, tc.wantFailed)
			}
			for _, n := range tc.wantFailed {
				if !failed[n] {
					t.Errorf("check %q: expected ok:false", n)
				}
			}
		})
	}
}

// barrierPinger succeeds only once its peer has also started probing.
type barrierPinger struct {
	name string
	mine chan struct{}
	peer chan struct{}
}

func (b *barrierPinger) Name() string { return b.name }

func (b *barrierPinger) Ping(ctx context.Context) error {
	close(b.mine)
	select {
	case <-b.peer:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestHandleReady_ProbesRunConcurrently(t *testing.T) {
	t.Parallel()

	a, b := make(chan struct{}), make(chan struct{})
	s := newReadyTestServer(t,
		&barrierPinger{name: "catalog", mine: a, peer: b},
		&barrierPinger{name: "embedder", mine: b, peer: a},
	)

	w := httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body: %s", w.Code, w.Body.String())
	}
	var resp readyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks[0].Name != "catalog" || resp.Checks[1].Name != "embedder" {
		t.Errorf("checks out of order: %+v", resp.Checks)
	}
}

// ---------------------------------------------------------------------------
// Concrete pingers
// ---------------------------------------------------------------------------

// errStore is a catalogue whose reads always fail.
type errStore struct{ *catalog.Static }

func (errStore) ListContent(context.Context) ([]domain.ContentItem, error) {
	return nil, errors.New("disk on fire")
}

func TestCatalogPinger(t *testing.T) {
	t.Parallel()

	if err := NewCatalogPinger(catalog.Default()).Ping(t.Context()); err != nil {
		t.Errorf("static catalogue: unexpected error %v", err)
	}
	if err := NewCatalogPinger(errStore{catalog.Default()}).Ping(t.Context()); err == nil {
		t.Error("failing catalogue: expected error")
	}

	db, err := catalog.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := NewCatalogPinger(db).Ping(t.Context()); err != nil {
		t.Errorf("sqlite catalogue: unexpected error %v", err)
	}
}

// plainEmbedder implements only embedder.Embedder.
type plainEmbedder struct{ err error }

func (p plainEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if p.err != nil {
		return nil, p.err
	}
	return make([][]float32, len(texts)), nil
}

func TestEmbedderPinger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		emb     embedder.Embedder
		wantErr bool
	}{
		{name: "local", emb: embedder.NewLocalEmbedder(0)},
		{name: "plain ok", emb: plainEmbedder{}},
		{name: "plain failing", emb: plainEmbedder{err: errors.New("503")}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := NewEmbedderPinger(tc.emb, "embedder")
			if p.Name() != "embedder" {
				t.Errorf("Name() = %q", p.Name())
			}
			err := p.Ping(t.Context())
			if (err != nil) != tc.wantErr {
				t.Errorf("Ping() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
