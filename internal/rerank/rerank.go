// Package rerank orders retrieval candidates into the final top-3 list. The
// LLMReranker asks a chat model to pick and explain; whenever that fails (no
// credential, timeout, open breaker, malformed or invalid output) the
// deterministic RuleReranker produces the list instead. Rerank therefore
// never returns an error: the failure is reported in Result.Outcome and
// Result.Err.
package rerank

import (
	"context"

	"github.com/54b3r/edurec-go/internal/domain"
)

// MaxRecommendations is the length cap of every ranked list.
const MaxRecommendations = 3

// Method names the strategy that produced a Result.
type Method string

const (
	// MethodLLM means the chat model's ranking was used.
	MethodLLM Method = "llm"
	// MethodRules means the rule-based scorer produced the ranking.
	MethodRules Method = "rule-based"
)

// Outcome describes how the re-rank step went.
type Outcome string

const (
	// OutcomeRemoteSuccess means the remote model answered with a valid list.
	OutcomeRemoteSuccess Outcome = "remote_success"
	// OutcomeRemoteFailure means a remote attempt failed and rules were used.
	OutcomeRemoteFailure Outcome = "remote_failure"
	// OutcomeFallback means rules were used without attempting a remote call.
	OutcomeFallback Outcome = "fallback"
)

// Result is the outcome of one Rerank call.
type Result struct {
	// Recommendations is the ranked list, ranks 1..n with n <= 3.
	Recommendations []domain.Recommendation
	// Method is the strategy that produced Recommendations.
	Method Method
	// Outcome reports whether a remote call was made and how it ended.
	Outcome Outcome
	// Reasoning is the model's raw reasoning text, or a note describing the
	// rule-based scoring.
	Reasoning string
	// Err is the absorbed remote failure, wrapping domain.ErrRerankTransient.
	// Nil unless Outcome is OutcomeRemoteFailure.
	Err error
}

// Reranker orders candidates for a learner. Implementations must be safe for
// concurrent use and must never recommend viewed content.
type Reranker interface {
	// Rerank returns at most three recommendations drawn from candidates.
	Rerank(ctx context.Context, profile *domain.UserProfile, candidates []domain.Candidate) Result
}
