// Package budget estimates prompt sizes for the LLM re-ranker. Because the
// re-ranker supports several backends with different tokenizers, this
// package uses a conservative character-based heuristic: 1 token ≈ 4
// characters (English prose and JSON).
package budget

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxPromptTokens is the default input budget for one re-rank
	// prompt. It fits 8k-context models while leaving room for the
	// 2048-token response.
	DefaultMaxPromptTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// Fits reports whether msgs are estimated to fit within maxTokens.
func Fits(msgs []*schema.Message, maxTokens int) bool {
	return EstimateMessages(msgs) <= maxTokens
}

// TrimTail drops elements from the end of items until the prompt rendered
// from the remainder fits within maxTokens. Items are expected in priority
// order (best first), so the least relevant are dropped first.
//
// It returns the kept prefix, which may be empty when even a single item
// does not fit.
func TrimTail[T any](items []T, render func([]T) []*schema.Message, maxTokens int) []T {
	for len(items) > 0 {
		if Fits(render(items), maxTokens) {
			break
		}
		items = items[:len(items)-1]
	}
	return items
}
