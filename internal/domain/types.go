// Package domain defines the records that flow through the recommendation
// pipeline: catalogue content, learner profiles, retrieval candidates, ranked
// recommendations, and the per-step pipeline log. It has no dependencies on
// any other package in this module so every layer can import it.
package domain

import "strings"

// Format enumerates the delivery formats of a content item.
type Format string

const (
	// FormatVideo is recorded video content.
	FormatVideo Format = "video"
	// FormatSlides is a slide deck.
	FormatSlides Format = "slides"
	// FormatLecture is a long-form lecture or written course.
	FormatLecture Format = "lecture"
)

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case FormatVideo, FormatSlides, FormatLecture:
		return true
	}
	return false
}

// Difficulty enumerates the difficulty tiers shared by content and learners.
type Difficulty string

const (
	// DifficultyBeginner is the entry tier.
	DifficultyBeginner Difficulty = "Beginner"
	// DifficultyIntermediate is the middle tier.
	DifficultyIntermediate Difficulty = "Intermediate"
	// DifficultyAdvanced is the top tier.
	DifficultyAdvanced Difficulty = "Advanced"
)

// Rank returns the ordinal position of d (Beginner=0, Intermediate=1,
// Advanced=2). Unknown values rank as Intermediate.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyBeginner:
		return 0
	case DifficultyAdvanced:
		return 2
	default:
		return 1
	}
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// LearningStyle enumerates how a learner prefers to consume material.
type LearningStyle string

const (
	// StyleVisual prefers video.
	StyleVisual LearningStyle = "visual"
	// StyleReading prefers slides and lectures.
	StyleReading LearningStyle = "reading"
	// StyleHandsOn prefers video walkthroughs and lectures with exercises.
	StyleHandsOn LearningStyle = "hands-on"
)

// Valid reports whether s is one of the known styles.
func (s LearningStyle) Valid() bool {
	switch s {
	case StyleVisual, StyleReading, StyleHandsOn:
		return true
	}
	return false
}

// PreferredFormats returns the formats aligned with s:
// visual→video, reading→slides/lecture, hands-on→video/lecture.
func (s LearningStyle) PreferredFormats() []Format {
	switch s {
	case StyleVisual:
		return []Format{FormatVideo}
	case StyleReading:
		return []Format{FormatSlides, FormatLecture}
	case StyleHandsOn:
		return []Format{FormatVideo, FormatLecture}
	}
	return nil
}

// Prefers reports whether f is aligned with s.
func (s LearningStyle) Prefers(f Format) bool {
	for _, p := range s.PreferredFormats() {
		if p == f {
			return true
		}
	}
	return false
}

// ContentItem is a single educational resource in the catalogue.
// Items are treated as immutable once loaded from a catalogue.Store.
type ContentItem struct {
	// ID is the unique positive identifier of the item.
	ID int `json:"id" yaml:"id"`
	// Title is the display title.
	Title string `json:"title" yaml:"title"`
	// Description is a short free-text summary of the item.
	Description string `json:"description" yaml:"description"`
	// Difficulty is the tier the item is pitched at.
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
	// DurationMinutes is the expected time to complete the item.
	DurationMinutes int `json:"duration_minutes" yaml:"duration_minutes"`
	// Tags are lowercase topic labels.
	Tags []string `json:"tags" yaml:"tags"`
	// Format is the delivery format.
	Format Format `json:"format" yaml:"format"`
}

// UserProfile is a learner's preferences. A profile is immutable for the
// lifetime of one request.
type UserProfile struct {
	// UserID identifies the learner.
	UserID string `json:"user_id" yaml:"user_id"`
	// Name is the learner's display name.
	Name string `json:"name" yaml:"name"`
	// Goal is a free-text description of what the learner wants to achieve.
	Goal string `json:"goal" yaml:"goal"`
	// LearningStyle is the learner's preferred modality.
	LearningStyle LearningStyle `json:"learning_style" yaml:"learning_style" validate:"learning_style"`
	// PreferredDifficulty is the tier the learner is comfortable with.
	PreferredDifficulty Difficulty `json:"preferred_difficulty" yaml:"preferred_difficulty" validate:"difficulty"`
	// TimePerDay is the learner's daily time budget in minutes.
	TimePerDay int `json:"time_per_day" yaml:"time_per_day" validate:"gt=0"`
	// ViewedContentIDs lists items the learner has already consumed.
	ViewedContentIDs []int `json:"viewed_content_ids" yaml:"viewed_content_ids" validate:"dive,gte=0"`
	// InterestTags are topic labels the learner cares about.
	InterestTags []string `json:"interest_tags" yaml:"interest_tags"`
}

// Viewed reports whether the learner has already consumed item id.
func (p *UserProfile) Viewed(id int) bool {
	for _, v := range p.ViewedContentIDs {
		if v == id {
			return true
		}
	}
	return false
}

// ViewedSet returns the viewed ids as a set.
func (p *UserProfile) ViewedSet() map[int]struct{} {
	set := make(map[int]struct{}, len(p.ViewedContentIDs))
	for _, id := range p.ViewedContentIDs {
		set[id] = struct{}{}
	}
	return set
}

// InterestSet returns the lowercased interest tags as a set.
func (p *UserProfile) InterestSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.InterestTags))
	for _, t := range p.InterestTags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

// Candidate is a content item that survived retrieval, paired with its
// cosine similarity to the learner's profile vector.
type Candidate struct {
	// Item is the retrieved content item.
	Item ContentItem `json:"item"`
	// Score is the cosine similarity in [-1, 1].
	Score float64 `json:"score"`
}

// Recommendation is one ranked suggestion returned to the learner.
type Recommendation struct {
	// Rank is the 1-based position in the final list.
	Rank int `json:"rank"`
	// ID is the recommended content item id.
	ID int `json:"id"`
	// Title is copied from the content item.
	Title string `json:"title"`
	// Format is copied from the content item.
	Format Format `json:"format"`
	// Difficulty is copied from the content item.
	Difficulty Difficulty `json:"difficulty"`
	// DurationMinutes is copied from the content item.
	DurationMinutes int `json:"duration_minutes"`
	// Tags are copied from the content item.
	Tags []string `json:"tags"`
	// Explanation says why the item suits this learner.
	Explanation string `json:"explanation"`
	// MatchScore is the rule-based score, set only on the fallback path.
	MatchScore *float64 `json:"match_score,omitempty"`
}

// NewRecommendation builds a Recommendation for item at rank.
func NewRecommendation(rank int, item ContentItem, explanation string) Recommendation {
	return Recommendation{
		Rank:            rank,
		ID:              item.ID,
		Title:           item.Title,
		Format:          item.Format,
		Difficulty:      item.Difficulty,
		DurationMinutes: item.DurationMinutes,
		Tags:            item.Tags,
		Explanation:     explanation,
	}
}

// StepStatus is the outcome of one pipeline step.
type StepStatus string

const (
	// StatusDone means the step completed.
	StatusDone StepStatus = "done"
	// StatusSkipped means the step was not run because an earlier step made
	// it meaningless.
	StatusSkipped StepStatus = "skipped"
	// StatusError means the step failed.
	StatusError StepStatus = "error"
)

// PipelineStep is one append-only entry in the pipeline log.
type PipelineStep struct {
	// Step is the human-readable step label.
	Step string `json:"step"`
	// Status is the step outcome.
	Status StepStatus `json:"status"`
	// Detail is a short description of what happened, or the error message.
	Detail string `json:"detail"`
	// DurationMS is the wall-clock duration of the step in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}
