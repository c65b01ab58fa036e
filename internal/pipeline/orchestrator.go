// Package pipeline runs one recommendation request end to end: embed the
// catalogue (through the shared cache), embed the learner, retrieve the
// nearest candidates, and re-rank them. Every step is timed and recorded in
// an append-only log that is returned with the response, or with the error
// when an embedding step fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/edurec-go/internal/catalog"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/embedder"
	"github.com/54b3r/edurec-go/internal/logging"
	"github.com/54b3r/edurec-go/internal/rerank"
	"github.com/54b3r/edurec-go/internal/retrieval"
)

// Step labels, in execution order.
const (
	StepEmbedContent = "Embed content catalogue"
	StepEmbedUser    = "Embed user profile"
	StepRetrieve     = "Cosine similarity retrieval"
	StepRerankLLM    = "LLM re-ranking"
	StepRerankRules  = "Rule-based ranking"
)

// detailEmptyCatalogue is the detail of steps skipped for an empty catalogue.
const detailEmptyCatalogue = "empty catalogue"

// Response is the result of a successful Recommend call.
type Response struct {
	// UserID echoes the learner id.
	UserID string `json:"user_id"`
	// Recommendations is the ranked list, at most three entries.
	Recommendations []domain.Recommendation `json:"recommendations"`
	// PipelineLog records every step in order.
	PipelineLog []domain.PipelineStep `json:"pipeline_log"`
	// Method is the re-ranking strategy that produced Recommendations.
	Method rerank.Method `json:"method"`
	// Outcome reports how the re-rank step went.
	Outcome rerank.Outcome `json:"outcome"`
	// Reasoning is the model's reasoning text or the rule-based note.
	Reasoning string `json:"reasoning,omitempty"`
	// TotalDurationMS is the wall-clock time of the whole request.
	TotalDurationMS int64 `json:"total_duration_ms"`
}

// Error is returned when a pipeline step fails fatally. It carries the step
// log up to and including the failure, with later steps marked skipped.
type Error struct {
	// Step is the label of the failed step.
	Step string
	// Err is the underlying failure.
	Err error
	// Log is the pipeline log at the time of failure.
	Log []domain.PipelineStep
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("pipeline: %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying failure.
func (e *Error) Unwrap() error { return e.Err }

// Options configures an Orchestrator.
type Options struct {
	// TopK is the number of candidates kept by retrieval. <= 0 selects
	// retrieval.DefaultTopK.
	TopK int
	// Cache is the content embedding cache. Nil creates a private one.
	Cache *embedder.Cache
	// Registerer receives the pipeline metrics. Nil uses a throwaway registry.
	Registerer prometheus.Registerer
	// Logger is used when the request context carries none.
	Logger *slog.Logger
}

// OptionsFromEnv reads RETRIEVAL_TOP_K.
func OptionsFromEnv() Options {
	var o Options
	if n, err := strconv.Atoi(os.Getenv("RETRIEVAL_TOP_K")); err == nil && n > 0 {
		o.TopK = n
	}
	return o
}

// Orchestrator wires the catalogue, embedder, cache and re-ranker. It is safe
// for concurrent use; the cache is the only shared mutable state.
type Orchestrator struct {
	store    catalog.Store
	embedder embedder.Embedder
	reranker rerank.Reranker
	cache    *embedder.Cache
	topK     int
	metrics  *pipelineMetrics
	log      *slog.Logger
}

// New returns an Orchestrator.
func New(store catalog.Store, emb embedder.Embedder, rr rerank.Reranker, opts Options) *Orchestrator {
	if opts.Cache == nil {
		opts.Cache = embedder.NewCache()
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = retrieval.DefaultTopK
	}
	return &Orchestrator{
		store:    store,
		embedder: emb,
		reranker: rr,
		cache:    opts.Cache,
		topK:     opts.TopK,
		metrics:  newPipelineMetrics(opts.Registerer),
		log:      opts.Logger,
	}
}

// Cache returns the orchestrator's embedding cache.
func (o *Orchestrator) Cache() *embedder.Cache { return o.cache }

// run accumulates the step log of one request.
type run struct {
	o     *Orchestrator
	log   *slog.Logger
	steps []domain.PipelineStep
}

func (r *run) add(step string, status domain.StepStatus, detail string, d time.Duration) {
	r.steps = append(r.steps, domain.PipelineStep{
		Step:       step,
		Status:     status,
		Detail:     detail,
		DurationMS: d.Milliseconds(),
	})
	r.o.metrics.stepDurationSeconds.WithLabelValues(step, string(status)).Observe(d.Seconds())
	r.log.Debug("pipeline: step finished",
		slog.String("step", step),
		slog.String("status", string(status)),
		slog.String("detail", detail),
		slog.Int64("duration_ms", d.Milliseconds()),
	)
}

// step times fn and records it as done or error.
func (r *run) step(name string, fn func() (string, error)) error {
	start := time.Now()
	detail, err := fn()
	if err != nil {
		r.add(name, domain.StatusError, err.Error(), time.Since(start))
		return err
	}
	r.add(name, domain.StatusDone, detail, time.Since(start))
	return nil
}

func (r *run) skip(detail string, names ...string) {
	for _, n := range names {
		r.add(n, domain.StatusSkipped, detail, 0)
	}
}

// Recommend validates profile and runs the pipeline. It returns a
// *domain.ValidationError for an invalid profile (no pipeline log), a *Error
// wrapping domain.ErrEmbeddingUnavailable when an embedding step fails, and
// otherwise a Response. Re-ranking failures never surface as errors.
func (o *Orchestrator) Recommend(ctx context.Context, profile *domain.UserProfile) (*Response, error) {
	if err := domain.ValidateProfile(profile); err != nil {
		o.metrics.requestsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	start := time.Now()
	r := &run{
		o:   o,
		log: logging.FromContextOr(ctx, o.log).With(slog.String("user_id", profile.UserID)),
	}
	rerankLabel := o.rerankLabel()

	fail := func(step string, err error, skipped ...string) (*Response, error) {
		r.skip("skipped after "+step+" failed", skipped...)
		o.metrics.requestsTotal.WithLabelValues("error").Inc()
		r.log.Error("pipeline: request failed", slog.String("step", step), slog.String("error", err.Error()))
		return nil, &Error{Step: step, Err: err, Log: r.steps}
	}

	var (
		items       []domain.ContentItem
		contentVecs [][]float32
	)
	err := r.step(StepEmbedContent, func() (string, error) {
		var err error
		items, err = o.store.ListContent(ctx)
		if err != nil {
			return "", fmt.Errorf("load catalogue: %w", err)
		}
		if len(items) == 0 {
			return "0 items", nil
		}
		vecs, cached, err := o.cache.ContentVectors(ctx, items, o.embedder)
		if err != nil {
			return "", embeddingFailure(err)
		}
		contentVecs = vecs
		if cached {
			o.metrics.cacheLookupsTotal.WithLabelValues("hit").Inc()
			return fmt.Sprintf("%d items (cached)", len(items)), nil
		}
		o.metrics.cacheLookupsTotal.WithLabelValues("miss").Inc()
		return fmt.Sprintf("%d items embedded", len(items)), nil
	})
	if err != nil {
		return fail(StepEmbedContent, err, StepEmbedUser, StepRetrieve, rerankLabel)
	}

	if len(items) == 0 {
		r.skip(detailEmptyCatalogue, StepEmbedUser, StepRetrieve, rerankLabel)
		return o.finish(r, profile, start, rerank.Result{
			Recommendations: []domain.Recommendation{},
			Method:          rerank.MethodRules,
			Outcome:         rerank.OutcomeFallback,
		}), nil
	}

	var userVec []float32
	err = r.step(StepEmbedUser, func() (string, error) {
		vecs, err := o.embedder.Embed(ctx, []string{embedder.UserText(profile)})
		if err != nil {
			return "", embeddingFailure(err)
		}
		if len(vecs) != 1 {
			return "", fmt.Errorf("%w: expected 1 user vector, got %d", domain.ErrEmbeddingUnavailable, len(vecs))
		}
		userVec = vecs[0]
		return fmt.Sprintf("dim=%d", len(userVec)), nil
	})
	if err != nil {
		return fail(StepEmbedUser, err, StepRetrieve, rerankLabel)
	}

	var candidates []domain.Candidate
	err = r.step(StepRetrieve, func() (string, error) {
		var err error
		candidates, err = retrieval.Retrieve(userVec, contentVecs, items, o.topK, profile.ViewedSet())
		if err != nil {
			return "", err
		}
		ids := make([]int, len(candidates))
		for i, c := range candidates {
			ids[i] = c.Item.ID
		}
		return fmt.Sprintf("top-%d candidates %v", o.topK, ids), nil
	})
	if err != nil {
		return fail(StepRetrieve, err, rerankLabel)
	}

	rerankStart := time.Now()
	res := o.reranker.Rerank(ctx, profile, candidates)
	label := StepRerankRules
	if res.Method == rerank.MethodLLM {
		label = StepRerankLLM
	}
	r.add(label, domain.StatusDone, rerankDetail(res), time.Since(rerankStart))

	return o.finish(r, profile, start, res), nil
}

func (o *Orchestrator) finish(r *run, profile *domain.UserProfile, start time.Time, res rerank.Result) *Response {
	recs := res.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	o.metrics.requestsTotal.WithLabelValues(string(res.Outcome)).Inc()
	resp := &Response{
		UserID:          profile.UserID,
		Recommendations: recs,
		PipelineLog:     r.steps,
		Method:          res.Method,
		Outcome:         res.Outcome,
		Reasoning:       res.Reasoning,
		TotalDurationMS: time.Since(start).Milliseconds(),
	}
	r.log.Info("pipeline: request complete",
		slog.String("method", string(res.Method)),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("recommendations", len(recs)),
		slog.Int64("duration_ms", resp.TotalDurationMS),
	)
	return resp
}

// rerankLabel is the label used for the re-rank step when it is skipped.
func (o *Orchestrator) rerankLabel() string {
	if _, ok := o.reranker.(*rerank.LLMReranker); ok {
		return StepRerankLLM
	}
	return StepRerankRules
}

// embeddingFailure ensures err matches domain.ErrEmbeddingUnavailable.
func embeddingFailure(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}

func rerankDetail(res rerank.Result) string {
	n := len(res.Recommendations)
	switch res.Outcome {
	case rerank.OutcomeRemoteSuccess:
		return fmt.Sprintf("%d recommendations from model", n)
	case rerank.OutcomeRemoteFailure:
		msg := "unknown error"
		if res.Err != nil {
			msg = res.Err.Error()
			if errors.Is(res.Err, context.DeadlineExceeded) {
				msg = "model call timed out"
			}
		}
		return fmt.Sprintf("fell back to rules after remote failure (%s): %d recommendations", msg, n)
	default:
		return fmt.Sprintf("%d recommendations", n)
	}
}
