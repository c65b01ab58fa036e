// Package retrieval ranks catalogue items by cosine similarity to a
// learner's profile vector. Everything here is pure and in-process: the same
// inputs always produce the same candidates in the same order.
package retrieval

import (
	"fmt"
	"math"
	"slices"

	"github.com/54b3r/edurec-go/internal/domain"
)

// DefaultTopK is the number of candidates kept when the caller passes k <= 0.
const DefaultTopK = 5

// Cosine returns dot(a,b) / (|a|·|b|). Vectors of different length, or with
// zero magnitude, score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Retrieve scores every item against user, drops items whose id is in
// exclude, and returns the k best candidates ordered by descending score with
// ties broken by ascending id. contentVecs must be parallel to items.
// k <= 0 selects DefaultTopK.
func Retrieve(user []float32, contentVecs [][]float32, items []domain.ContentItem, k int, exclude map[int]struct{}) ([]domain.Candidate, error) {
	if len(contentVecs) != len(items) {
		return nil, fmt.Errorf("retrieval: %d vectors for %d items", len(contentVecs), len(items))
	}
	if k <= 0 {
		k = DefaultTopK
	}

	out := make([]domain.Candidate, 0, len(items))
	for i, it := range items {
		if _, skip := exclude[it.ID]; skip {
			continue
		}
		out = append(out, domain.Candidate{Item: it, Score: Cosine(user, contentVecs[i])})
	}

	slices.SortStableFunc(out, func(a, b domain.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return a.Item.ID - b.Item.ID
	})

	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
