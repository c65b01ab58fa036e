package server

import (
	"context"
	"fmt"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/embedder"
)

// CatalogPinger probes the catalogue store. Stores with their own Ping (the
// SQLite catalogue) are pinged directly; others are probed with ListContent.
type CatalogPinger struct {
	// store is the catalogue to probe.
	store catalog.Store
}

// NewCatalogPinger constructs a CatalogPinger for store.
func NewCatalogPinger(store catalog.Store) *CatalogPinger {
	return &CatalogPinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *CatalogPinger) Name() string { return "catalog" }

// Ping checks that the catalogue can be read.
func (p *CatalogPinger) Ping(ctx context.Context) error {
	if pp, ok := p.store.(interface{ Ping(context.Context) error }); ok {
		if err := pp.Ping(ctx); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}
		return nil
	}
	if _, err := p.store.ListContent(ctx); err != nil {
		return fmt.Errorf("list content failed: %w", err)
	}
	return nil
}

// EmbedderPinger probes the embedding provider. Embedders implementing
// embedder.Pinger are asked directly; others embed a single short text.
type EmbedderPinger struct {
	// emb is the embedder to probe.
	emb embedder.Embedder
	// name identifies the provider in readiness responses (e.g. "embedder:remote").
	name string
}

// NewEmbedderPinger constructs an EmbedderPinger labelled name.
func NewEmbedderPinger(emb embedder.Embedder, name string) *EmbedderPinger {
	return &EmbedderPinger{emb: emb, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *EmbedderPinger) Name() string { return p.name }

// Ping checks that the provider can produce a vector.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	if pp, ok := p.emb.(embedder.Pinger); ok {
		return pp.Ping(ctx)
	}
	vecs, err := p.emb.Embed(ctx, []string{"ping"})
	if err != nil {
		return err
	}
	if len(vecs) != 1 {
		return fmt.Errorf("expected 1 vector, got %d", len(vecs))
	}
	return nil
}
