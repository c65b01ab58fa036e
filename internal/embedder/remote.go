package embedder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/54b3r/edurec-go/internal/domain"
)

// DefaultRemoteTimeout bounds a single remote embedding call.
const DefaultRemoteTimeout = 30 * time.Second

// maxErrorBody caps how much of a non-2xx response body is read for the
// error message.
const maxErrorBody = 4 << 10

// RemoteEmbedder implements Embedder using the OpenAI (or Azure OpenAI)
// embeddings REST API. Ollama is reached through its OpenAI-compatible /v1
// surface. Each Embed call makes exactly one HTTP request; every failure is
// wrapped with domain.ErrEmbeddingUnavailable. It is safe for concurrent use.
type RemoteEmbedder struct {
	// baseURL is the API base (e.g. "https://api.openai.com/v1" or an Azure endpoint).
	baseURL string
	// apiKey is the Bearer token (OpenAI) or api-key header value (Azure).
	apiKey string
	// model is the embedding model name (e.g. "text-embedding-3-small").
	model string
	// dimensions is the desired embedding vector length (0 = model default).
	dimensions int
	// azure selects Azure-style auth (api-key header) over Bearer token.
	azure bool
	// apiVersion is the Azure OpenAI API version query param (ignored for OpenAI).
	apiVersion string
	// client carries the per-call timeout.
	client *http.Client
}

// RemoteConfig holds the settings for constructing a RemoteEmbedder.
type RemoteConfig struct {
	// BaseURL is the API base URL. For OpenAI: "https://api.openai.com/v1".
	// For Azure: "https://<resource>.openai.azure.com/openai".
	BaseURL string
	// APIKey is the authentication key. May be empty for local servers.
	APIKey string
	// Model is the embedding model name.
	Model string
	// Dimensions is the desired vector length (0 = model default).
	Dimensions int
	// Azure enables Azure OpenAI mode (api-key header + api-version param).
	Azure bool
	// APIVersion is the Azure OpenAI API version. Ignored when Azure is false.
	APIVersion string
	// Timeout bounds each call. Zero selects DefaultRemoteTimeout.
	Timeout time.Duration
}

// NewRemoteEmbedder constructs a RemoteEmbedder from the given config.
func NewRemoteEmbedder(cfg *RemoteConfig) *RemoteEmbedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteEmbedder{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		azure:      cfg.Azure,
		apiVersion: cfg.APIVersion,
		client:     &http.Client{Timeout: timeout},
	}
}

// embedRequest is the JSON body sent to the embeddings endpoint.
type embedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embedResponse is the JSON body returned from the embeddings endpoint.
type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *RemoteEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(embedRequest{Input: texts, Model: e.model, Dimensions: e.dimensions})
	if err != nil {
		return nil, unavailable("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url(), bytes.NewReader(payload))
	if err != nil {
		return nil, unavailable("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	e.authorize(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, unavailable("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var result embedResponse
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if json.Unmarshal(body, &result) == nil && result.Error != nil && result.Error.Message != "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, result.Error.Message)
		}
		return nil, unavailable("%s", msg)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, unavailable("decode response: %w", err)
	}

	if len(result.Data) != len(texts) {
		return nil, unavailable("expected %d embeddings, got %d", len(texts), len(result.Data))
	}

	// The API may return data out of order; place by index.
	embeddings := make([][]float32, len(texts))
	dim := -1
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, unavailable("index %d out of range [0, %d)", d.Index, len(texts))
		}
		if embeddings[d.Index] != nil {
			return nil, unavailable("duplicate index %d", d.Index)
		}
		if len(d.Embedding) == 0 || (dim >= 0 && len(d.Embedding) != dim) {
			return nil, unavailable("inconsistent embedding dimension at index %d", d.Index)
		}
		dim = len(d.Embedding)
		embeddings[d.Index] = d.Embedding
	}

	return embeddings, nil
}

// Ping checks the endpoint is reachable by embedding a single short string.
func (e *RemoteEmbedder) Ping(ctx context.Context) error {
	_, err := e.Embed(ctx, []string{"ping"})
	return err
}

func (e *RemoteEmbedder) url() string {
	if e.azure {
		return e.baseURL + "/deployments/" + e.model + "/embeddings?api-version=" + e.apiVersion
	}
	return e.baseURL + "/embeddings"
}

func (e *RemoteEmbedder) authorize(req *http.Request) {
	if e.apiKey == "" {
		return
	}
	if e.azure {
		req.Header.Set("api-key", e.apiKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
}

// unavailable wraps a remote failure so callers can match it with
// errors.Is(err, domain.ErrEmbeddingUnavailable).
func unavailable(format string, args ...any) error {
	return fmt.Errorf("remote embedder: %w: %w", domain.ErrEmbeddingUnavailable, fmt.Errorf(format, args...))
}
