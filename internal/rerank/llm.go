package rerank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/54b3r/edurec-go/internal/budget"
	"github.com/54b3r/edurec-go/internal/domain"
	"github.com/54b3r/edurec-go/internal/logging"
)

const systemPrompt = `You are an expert educational content recommender. Re-rank the candidate
items for the learner below and return the top 3 as a strict JSON array.

CONSTRAINTS:
1. Prefer items matching the learner's preferred difficulty.
2. Each item's duration_minutes must fit the learner's time_per_day budget.
3. Favour formats that suit the learning style (visual -> video, reading -> slides/lecture, hands-on -> video/lecture).
4. Never recommend already-viewed content.
5. Provide a concise, personalised explanation (1-2 sentences) per pick.

Return ONLY a JSON array with exactly 3 objects, each having:
  rank (int 1-3), id (int), title (str), format (str), difficulty (str),
  duration_minutes (int), tags (list[str]), explanation (str).
No text outside the JSON array.`

// defaultExplanation is used when the model omits an explanation.
const defaultExplanation = "Recommended based on your profile."

// LLMReranker asks a chat model to choose and explain the top picks. One
// model call is made per Rerank, under a per-call timeout and behind a
// circuit breaker; any failure falls back to RuleRank.
type LLMReranker struct {
	// model is the chat model; only Generate is used.
	model model.BaseChatModel
	// breaker short-circuits calls after repeated failures. Unusable
	// answers count as failures, not only transport errors.
	breaker *gobreaker.CircuitBreaker[answer]
	// timeout bounds each model call.
	timeout time.Duration
	// maxPromptTokens caps the estimated prompt size.
	maxPromptTokens int
	// log is the fallback logger when ctx carries none.
	log *slog.Logger
}

// NewLLMReranker wraps m with the given options.
func NewLLMReranker(m model.BaseChatModel, opts Options, log *slog.Logger) *LLMReranker {
	opts = opts.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker[answer](gobreaker.Settings{
		Name:        "rerank-llm",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("rerank: circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return &LLMReranker{
		model:           m,
		breaker:         breaker,
		timeout:         opts.Timeout,
		maxPromptTokens: opts.MaxPromptTokens,
		log:             log,
	}
}

// answer is a model reply that passed parsing and validation.
type answer struct {
	recs      []domain.Recommendation
	reasoning string
}

// Rerank implements Reranker. A short but valid model answer is topped up
// from the rule order so the list is only shorter than three when fewer
// eligible candidates exist. An open breaker skips the call entirely and is
// reported as OutcomeFallback.
func (r *LLMReranker) Rerank(ctx context.Context, profile *domain.UserProfile, candidates []domain.Candidate) Result {
	if len(candidates) == 0 {
		return RuleReranker{}.Rerank(ctx, profile, candidates)
	}

	ans, err := r.remote(ctx, profile, candidates)
	if err != nil {
		log := logging.FromContextOr(ctx, r.log)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Debug("rerank: circuit breaker open, using rules")
			return RuleReranker{}.Rerank(ctx, profile, candidates)
		}
		log.Warn("rerank: LLM call failed, falling back to rules", slog.String("error", err.Error()))
		return Result{
			Recommendations: RuleRank(profile, candidates),
			Method:          MethodRules,
			Outcome:         OutcomeRemoteFailure,
			Reasoning:       ruleReasoning,
			Err:             fmt.Errorf("%w: %w", domain.ErrRerankTransient, err),
		}
	}
	return Result{
		Recommendations: topUp(profile, candidates, ans.recs),
		Method:          MethodLLM,
		Outcome:         OutcomeRemoteSuccess,
		Reasoning:       ans.reasoning,
	}
}

func (r *LLMReranker) remote(ctx context.Context, profile *domain.UserProfile, candidates []domain.Candidate) (answer, error) {
	render := func(cs []domain.Candidate) []*schema.Message {
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userPrompt(profile, cs)),
		}
	}
	kept := budget.TrimTail(candidates, render, r.maxPromptTokens)
	if len(kept) == 0 {
		return answer{}, fmt.Errorf("prompt exceeds %d-token budget", r.maxPromptTokens)
	}
	msgs := render(kept)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      "edurec-rerank",
		Type:      "ChatModel",
		Component: components.ComponentOfChatModel,
	})

	return r.breaker.Execute(func() (answer, error) {
		out, err := r.model.Generate(ctx, msgs)
		if err != nil {
			return answer{}, err
		}
		if out == nil || (strings.TrimSpace(out.Content) == "" && strings.TrimSpace(out.ReasoningContent) == "") {
			return answer{}, errors.New("model returned an empty response")
		}
		return parseAnswer(profile, kept, out)
	})
}

// parseAnswer extracts and validates the picks in a model reply.
func parseAnswer(profile *domain.UserProfile, candidates []domain.Candidate, out *schema.Message) (answer, error) {
	reasoning := strings.TrimSpace(out.ReasoningContent)
	text := strings.TrimSpace(out.Content)
	if text == "" {
		text = reasoning
	}
	picks, err := extractPicks(stripFences(text))
	if err != nil {
		return answer{}, err
	}
	recs := validatePicks(profile, candidates, picks)
	if len(recs) == 0 {
		return answer{}, errors.New("model output contained no valid candidate ids")
	}
	return answer{recs: recs, reasoning: reasoning}, nil
}

// validatePicks maps picks to recommendations, dropping ids that are not
// candidates, already viewed, duplicated, or longer than the daily budget.
// Ranks are renumbered 1..n in the model's order.
func validatePicks(profile *domain.UserProfile, candidates []domain.Candidate, picks []pick) []domain.Recommendation {
	byID := make(map[int]domain.ContentItem, len(candidates))
	for _, c := range candidates {
		byID[c.Item.ID] = c.Item
	}
	viewed := profile.ViewedSet()
	seen := make(map[int]struct{}, len(picks))

	out := make([]domain.Recommendation, 0, MaxRecommendations)
	for _, p := range picks {
		id := int(p.ID)
		item, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, v := viewed[id]; v {
			continue
		}
		if item.DurationMinutes > profile.TimePerDay {
			continue
		}
		seen[id] = struct{}{}
		explanation := strings.TrimSpace(p.Explanation)
		if explanation == "" {
			explanation = defaultExplanation
		}
		out = append(out, domain.NewRecommendation(len(out)+1, item, explanation))
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}

// promptItem is the candidate shape shown to the model.
type promptItem struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Difficulty      string   `json:"difficulty"`
	DurationMinutes int      `json:"duration_minutes"`
	Tags            []string `json:"tags"`
	Format          string   `json:"format"`
}

func userPrompt(p *domain.UserProfile, candidates []domain.Candidate) string {
	items := make([]promptItem, len(candidates))
	for i, c := range candidates {
		it := c.Item
		items[i] = promptItem{
			ID:              it.ID,
			Title:           it.Title,
			Description:     it.Description,
			Difficulty:      string(it.Difficulty),
			DurationMinutes: it.DurationMinutes,
			Tags:            it.Tags,
			Format:          string(it.Format),
		}
	}
	itemsJSON, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		itemsJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("### Learner Profile\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Goal: %s\n", p.Goal)
	fmt.Fprintf(&b, "- Learning style: %s\n", p.LearningStyle)
	fmt.Fprintf(&b, "- Preferred difficulty: %s\n", p.PreferredDifficulty)
	fmt.Fprintf(&b, "- Time per day: %d minutes\n", p.TimePerDay)
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(p.InterestTags, ", "))
	fmt.Fprintf(&b, "- Already viewed IDs: %v\n\n", p.ViewedContentIDs)
	b.WriteString("### Candidate Items\n```json\n")
	b.Write(itemsJSON)
	b.WriteString("\n```\n\nRe-rank and return the top 3 as a JSON array.")
	return b.String()
}
