package rerank

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/54b3r/edurec-go/internal/budget"
	"github.com/54b3r/edurec-go/internal/provider"
)

// Defaults for Options.
const (
	DefaultTimeout         = 60 * time.Second
	DefaultBreakerFailures = 5
	DefaultBreakerCooldown = 30 * time.Second
)

// Options tunes the LLMReranker.
type Options struct {
	// Timeout bounds a single model call.
	Timeout time.Duration
	// MaxPromptTokens caps the estimated prompt size; lower-scored
	// candidates are dropped from the prompt to fit.
	MaxPromptTokens int
	// BreakerFailures is the consecutive-failure count that opens the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open before a probe.
	BreakerCooldown time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxPromptTokens <= 0 {
		o.MaxPromptTokens = budget.DefaultMaxPromptTokens
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = DefaultBreakerFailures
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = DefaultBreakerCooldown
	}
	return o
}

// OptionsFromEnv reads RERANK_TIMEOUT, RERANK_MAX_PROMPT_TOKENS,
// RERANK_BREAKER_FAILURES and RERANK_BREAKER_COOLDOWN. Unset or invalid
// values fall back to the defaults.
func OptionsFromEnv() Options {
	o := Options{}
	if d, err := time.ParseDuration(os.Getenv("RERANK_TIMEOUT")); err == nil {
		o.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("RERANK_MAX_PROMPT_TOKENS")); err == nil {
		o.MaxPromptTokens = n
	}
	if n, err := strconv.ParseUint(os.Getenv("RERANK_BREAKER_FAILURES"), 10, 32); err == nil {
		o.BreakerFailures = uint32(n)
	}
	if d, err := time.ParseDuration(os.Getenv("RERANK_BREAKER_COOLDOWN")); err == nil {
		o.BreakerCooldown = d
	}
	return o.withDefaults()
}

// New selects the re-ranker for cfg. The rules backend, or a backend with no
// usable credential, yields a RuleReranker. Otherwise the chat model is
// constructed and wrapped in an LLMReranker; a broken provider config is
// returned as an error so it surfaces at start-up.
func New(ctx context.Context, cfg *provider.Config, opts Options, log *slog.Logger) (Reranker, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg == nil || cfg.Backend == provider.BackendRules || !cfg.HasCredential() {
		backend := "none"
		if cfg != nil {
			backend = string(cfg.Backend)
		}
		log.Info("rerank: no LLM credential configured, using rule-based ranking",
			slog.String("backend", backend),
		)
		return RuleReranker{}, nil
	}

	m, err := provider.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	log.Info("rerank: LLM re-ranking enabled",
		slog.String("backend", string(cfg.Backend)),
		slog.String("model", cfg.ModelName()),
	)
	return NewLLMReranker(m, opts, log), nil
}
