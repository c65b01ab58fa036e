package rerank

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/54b3r/edurec-go/internal/domain"
)

// Rule weights.
const (
	formatBonus       = 0.2
	difficultyPenalty = 0.15
)

// ruleReasoning is reported as Result.Reasoning on the rule path.
const ruleReasoning = "Rule-based scoring: tag overlap + format match + difficulty proximity."

// RuleReranker scores candidates with a fixed formula:
//
//	score = |tags ∩ interests| / max(|interests|, 1)
//	      + 0.2 if the format suits the learning style
//	      - 0.15 × |difficulty rank - preferred rank|
//
// Viewed items and items longer than the learner's daily budget are dropped
// first. It is pure: the same inputs always give the same output.
type RuleReranker struct{}

// Rerank implements Reranker. The outcome is always OutcomeFallback.
func (RuleReranker) Rerank(_ context.Context, profile *domain.UserProfile, candidates []domain.Candidate) Result {
	return Result{
		Recommendations: RuleRank(profile, candidates),
		Method:          MethodRules,
		Outcome:         OutcomeFallback,
		Reasoning:       ruleReasoning,
	}
}

type scored struct {
	item    domain.ContentItem
	score   float64
	matched []string
}

// RuleRank applies the rule formula and returns the top three, ranked 1..n.
// Ties are broken by ascending content id.
func RuleRank(profile *domain.UserProfile, candidates []domain.Candidate) []domain.Recommendation {
	pool := rulePool(profile, candidates)
	n := min(len(pool), MaxRecommendations)
	out := make([]domain.Recommendation, 0, n)
	for i, s := range pool[:n] {
		rec := domain.NewRecommendation(i+1, s.item, ruleExplanation(profile, s))
		ms := math.Round(s.score*1000) / 1000
		rec.MatchScore = &ms
		out = append(out, rec)
	}
	return out
}

// rulePool scores every eligible candidate and sorts best first.
func rulePool(profile *domain.UserProfile, candidates []domain.Candidate) []scored {
	interests := profile.InterestSet()
	viewed := profile.ViewedSet()
	prefRank := profile.PreferredDifficulty.Rank()

	pool := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		it := c.Item
		if _, seen := viewed[it.ID]; seen {
			continue
		}
		if it.DurationMinutes > profile.TimePerDay {
			continue
		}

		var matched []string
		for _, tag := range it.Tags {
			if _, ok := interests[strings.ToLower(tag)]; ok {
				matched = append(matched, tag)
			}
		}
		score := float64(len(matched)) / float64(max(len(interests), 1))
		if profile.LearningStyle.Prefers(it.Format) {
			score += formatBonus
		}
		score -= difficultyPenalty * math.Abs(float64(it.Difficulty.Rank()-prefRank))

		pool = append(pool, scored{item: it, score: score, matched: matched})
	}

	slices.SortStableFunc(pool, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return a.item.ID - b.item.ID
	})
	return pool
}

// topUp appends rule-ranked items not already in recs until the list holds
// MaxRecommendations or the eligible pool runs out. Ranks continue from
// len(recs)+1.
func topUp(profile *domain.UserProfile, candidates []domain.Candidate, recs []domain.Recommendation) []domain.Recommendation {
	if len(recs) >= MaxRecommendations {
		return recs
	}
	picked := make(map[int]struct{}, len(recs))
	for _, r := range recs {
		picked[r.ID] = struct{}{}
	}
	for _, s := range rulePool(profile, candidates) {
		if len(recs) == MaxRecommendations {
			break
		}
		if _, ok := picked[s.item.ID]; ok {
			continue
		}
		recs = append(recs, domain.NewRecommendation(len(recs)+1, s.item, ruleExplanation(profile, s)))
	}
	return recs
}

func ruleExplanation(profile *domain.UserProfile, s scored) string {
	tags := "No direct tag match"
	if len(s.matched) > 0 {
		tags = "Matched on tags (" + strings.Join(s.matched, ", ") + ")"
	}
	format := fmt.Sprintf("format fits your %s style", profile.LearningStyle)
	if !profile.LearningStyle.Prefers(s.item.Format) {
		format = fmt.Sprintf("%s format is outside your %s preference", s.item.Format, profile.LearningStyle)
	}
	return fmt.Sprintf("%s, %s, and difficulty is %s.", tags, format, s.item.Difficulty)
}
