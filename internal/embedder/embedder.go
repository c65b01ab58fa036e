// Package embedder turns catalogue items and learner profiles into dense
// vectors. Two variants implement Embedder: LocalEmbedder, an in-process
// hashed bag-of-words vectoriser that needs no network, and RemoteEmbedder,
// which calls an OpenAI-compatible /embeddings endpoint (OpenAI, Azure
// OpenAI, or Ollama's /v1 surface) over plain HTTP.
package embedder

import "context"

// Embedder converts a batch of texts into vectors. The returned slice is
// parallel to texts and every vector has the same dimension. Implementations
// must be safe for concurrent use.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Pinger is implemented by embedders that can check their backend is
// reachable. The server's readiness probe uses it when present.
type Pinger interface {
	// Ping returns nil when the embedding backend is reachable.
	Ping(ctx context.Context) error
}
