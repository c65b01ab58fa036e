package embedder

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultLocalDimensions is the vector length produced by LocalEmbedder when
// no dimension is configured.
const DefaultLocalDimensions = 384

// tokenPattern matches runs of letters or digits, keeping intra-word
// apostrophes so "don't" stays one token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// LocalEmbedder is a deterministic, in-process embedder. Each text is
// tokenised, stopwords are dropped, and every remaining token is hashed into
// one of dim buckets (the feature-hashing trick) with a hash-derived sign.
// Bucket weights use sublinear term frequency (1 + ln tf) and the result is
// L2-normalised, so cosine similarity reduces to a dot product.
//
// No vocabulary is fitted, so vectors for the same text are identical across
// processes and catalogue changes. It is safe for concurrent use.
type LocalEmbedder struct {
	// dim is the output vector length.
	dim int
	// stopwords are dropped before hashing.
	stopwords map[string]struct{}
}

// NewLocalEmbedder returns a LocalEmbedder producing vectors of length dim.
// A non-positive dim selects DefaultLocalDimensions.
func NewLocalEmbedder(dim int) *LocalEmbedder {
	if dim <= 0 {
		dim = DefaultLocalDimensions
	}
	return &LocalEmbedder{dim: dim, stopwords: defaultStopwords()}
}

// Dimensions returns the output vector length.
func (e *LocalEmbedder) Dimensions() int { return e.dim }

// Embed vectorises every text. It only fails when ctx is already done.
func (e *LocalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

// Ping always succeeds; there is no backend.
func (e *LocalEmbedder) Ping(context.Context) error { return nil }

func (e *LocalEmbedder) vector(text string) []float32 {
	counts := make(map[string]int)
	for _, tok := range e.tokenize(text) {
		counts[tok]++
	}

	acc := make([]float64, e.dim)
	for tok, n := range counts {
		h := xxhash.Sum64String(tok)
		idx := int(h % uint64(e.dim))
		w := 1 + math.Log(float64(n))
		if h>>63 == 1 {
			w = -w
		}
		acc[idx] += w
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	vec := make([]float32, e.dim)
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func (e *LocalEmbedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := e.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off",
		"own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "i", "my", "me", "we",
		"our", "you", "your", "using", "use",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
