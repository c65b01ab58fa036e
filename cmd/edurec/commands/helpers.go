package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/embedder"
	"github.com/54b3r/edurec-go/internal/pipeline"
	"github.com/54b3r/edurec-go/internal/provider"
	"github.com/54b3r/edurec-go/internal/rerank"
)

// stack is everything a recommendation needs, built once per process.
type stack struct {
	store    catalog.Store
	embedder embedder.Embedder
	embCfg   *embedder.Config
	pipeline *pipeline.Orchestrator
	close    func()
}

// openStore returns the SQLite catalogue named by CATALOG_DB, or the built-in
// fixtures when it is unset. The returned close func is never nil.
func openStore(log *slog.Logger) (catalog.Store, func(), error) {
	path := os.Getenv("CATALOG_DB")
	if path == "" {
		log.Info("catalog: using built-in fixtures")
		return catalog.Default(), func() {}, nil
	}
	db, err := catalog.OpenSQLite(path)
	if err != nil {
		return nil, nil, err
	}
	log.Info("catalog: opened SQLite catalogue", slog.String("path", path))
	return db, func() { _ = db.Close() }, nil
}

// buildEmbedder validates the embedding config and constructs the embedder.
func buildEmbedder(log *slog.Logger) (embedder.Embedder, *embedder.Config, error) {
	cfg, err := embedder.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if err := embedder.Validate(cfg, log); err != nil {
		return nil, nil, err
	}
	emb, err := embedder.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("embedder initialised",
		slog.String("provider", string(cfg.Provider)),
		slog.String("model", cfg.Model),
	)
	return emb, cfg, nil
}

// buildStack wires catalogue, embedder, re-ranker and orchestrator from the
// environment. reg may be nil for one-shot commands.
func buildStack(ctx context.Context, reg prometheus.Registerer, log *slog.Logger) (*stack, error) {
	store, closeStore, err := openStore(log)
	if err != nil {
		return nil, err
	}

	emb, embCfg, err := buildEmbedder(log)
	if err != nil {
		closeStore()
		return nil, err
	}

	rr, err := rerank.New(ctx, provider.ConfigFromEnv(), rerank.OptionsFromEnv(), log)
	if err != nil {
		closeStore()
		return nil, err
	}

	opts := pipeline.OptionsFromEnv()
	opts.Registerer = reg
	opts.Logger = log

	return &stack{
		store:    store,
		embedder: emb,
		embCfg:   embCfg,
		pipeline: pipeline.New(store, emb, rr, opts),
		close:    closeStore,
	}, nil
}

// embedderLabel names the embedder in readiness responses.
func embedderLabel(cfg *embedder.Config) string {
	if cfg == nil || cfg.Provider == "" {
		return "embedder:" + string(embedder.ProviderLocal)
	}
	return fmt.Sprintf("embedder:%s", cfg.Provider)
}
