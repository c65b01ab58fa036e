package embedder

import (
	"fmt"
	"strings"

	"github.com/54b3r/edurec-go/internal/domain"
)

// ContentText renders the text embedded for a catalogue item:
// "{title}. {description} Tags: {tag, tag}".
func ContentText(item domain.ContentItem) string {
	return fmt.Sprintf("%s. %s Tags: %s", item.Title, item.Description, strings.Join(item.Tags, ", "))
}

// ContentTexts renders ContentText for every item, preserving order.
func ContentTexts(items []domain.ContentItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = ContentText(it)
	}
	return out
}

// UserText renders the text embedded for a learner profile:
// "Goal: {goal}. Interests: {tags}. Learning style: {style}."
func UserText(p *domain.UserProfile) string {
	return fmt.Sprintf("Goal: %s. Interests: %s. Learning style: %s.",
		p.Goal, strings.Join(p.InterestTags, ", "), p.LearningStyle)
}
