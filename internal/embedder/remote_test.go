package embedder

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/54b3r/edurec-go/internal/domain"
)

// newTestRemote starts an httptest server running handler and returns a
// RemoteEmbedder pointed at it.
func newTestRemote(t *testing.T, handler http.HandlerFunc, mutate func(*RemoteConfig)) *RemoteEmbedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &RemoteConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "text-embedding-3-small"}
	if mutate != nil {
		mutate(cfg)
	}
	return NewRemoteEmbedder(cfg)
}

func Test_RemoteEmbedder_Success(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	var gotReq embedRequest
	e := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)
		// Deliberately out of order.
		_, _ = io.WriteString(w, `{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`)
	}, nil)

	vecs, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth header: got %q", gotAuth)
	}
	if gotPath != "/embeddings" {
		t.Errorf("path: got %q", gotPath)
	}
	if gotReq.Model != "text-embedding-3-small" || len(gotReq.Input) != 2 {
		t.Errorf("request body: %+v", gotReq)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("vectors not placed by index: %v", vecs)
	}
}

func Test_RemoteEmbedder_Azure(t *testing.T) {
	t.Parallel()

	var gotKey, gotURI string
	e := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		gotURI = r.URL.RequestURI()
		_, _ = io.WriteString(w, `{"data":[{"index":0,"embedding":[0.5]}]}`)
	}, func(c *RemoteConfig) {
		c.Azure = true
		c.APIVersion = "2025-04-01-preview"
		c.Model = "embed-deploy"
	})

	if _, err := e.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if gotKey != "sk-test" {
		t.Errorf("api-key header: got %q", gotKey)
	}
	if gotURI != "/deployments/embed-deploy/embeddings?api-version=2025-04-01-preview" {
		t.Errorf("uri: got %q", gotURI)
	}
}

func Test_RemoteEmbedder_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "server error with message",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, `{"error":{"message":"rate limited"}}`)
			},
			wantMsg: "rate limited",
		},
		{
			name: "server error plain body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			wantMsg: "HTTP 502",
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `not json`)
			},
			wantMsg: "decode response",
		},
		{
			name: "count mismatch",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"data":[{"index":0,"embedding":[1]}]}`)
			},
			wantMsg: "expected 2 embeddings",
		},
		{
			name: "index out of range",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"data":[{"index":0,"embedding":[1]},{"index":5,"embedding":[1]}]}`)
			},
			wantMsg: "out of range",
		},
		{
			name: "mixed dimensions",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"data":[{"index":0,"embedding":[1]},{"index":1,"embedding":[1,2]}]}`)
			},
			wantMsg: "dimension",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestRemote(t, tc.handler, nil)
			_, err := e.Embed(context.Background(), []string{"a", "b"})
			if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
				t.Fatalf("want ErrEmbeddingUnavailable, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q should contain %q", err, tc.wantMsg)
			}
		})
	}
}

func Test_RemoteEmbedder_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	e := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(c *RemoteConfig) { c.Timeout = 50 * time.Millisecond })
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := e.Embed(context.Background(), []string{"slow"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Fatalf("want ErrEmbeddingUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout not enforced: took %s", elapsed)
	}
}

func Test_RemoteEmbedder_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	e := NewRemoteEmbedder(&RemoteConfig{BaseURL: url, Model: "m"})
	if err := e.Ping(context.Background()); !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("want ErrEmbeddingUnavailable, got %v", err)
	}
}

func Test_RemoteEmbedder_EmptyInputSkipsRequest(t *testing.T) {
	t.Parallel()

	called := false
	e := newTestRemote(t, func(http.ResponseWriter, *http.Request) { called = true }, nil)
	vecs, err := e.Embed(context.Background(), nil)
	if err != nil || len(vecs) != 0 {
		t.Fatalf("want empty result, got %v err=%v", vecs, err)
	}
	if called {
		t.Error("empty input must not hit the endpoint")
	}
}
