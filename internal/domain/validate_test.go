package domain

import (
	"errors"
	"strings"
	"testing"
)

func validProfile() UserProfile {
	return UserProfile{
		UserID:              "u1",
		Name:                "Alice",
		Goal:                "Learn Kubernetes deployment",
		LearningStyle:       StyleVisual,
		PreferredDifficulty: DifficultyIntermediate,
		TimePerDay:          60,
		ViewedContentIDs:    []int{1},
		InterestTags:        []string{"ml", "kubernetes"},
	}
}

func TestValidateProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(p *UserProfile)
		wantField string
	}{
		{name: "valid", mutate: func(*UserProfile) {}},
		{name: "valid/no viewed", mutate: func(p *UserProfile) { p.ViewedContentIDs = nil }},
		{name: "zero time", mutate: func(p *UserProfile) { p.TimePerDay = 0 }, wantField: "time_per_day"},
		{name: "negative time", mutate: func(p *UserProfile) { p.TimePerDay = -5 }, wantField: "time_per_day"},
		{name: "bad style", mutate: func(p *UserProfile) { p.LearningStyle = "auditory" }, wantField: "learning_style"},
		{name: "empty style", mutate: func(p *UserProfile) { p.LearningStyle = "" }, wantField: "learning_style"},
		{name: "bad difficulty", mutate: func(p *UserProfile) { p.PreferredDifficulty = "expert" }, wantField: "preferred_difficulty"},
		{name: "lowercase difficulty", mutate: func(p *UserProfile) { p.PreferredDifficulty = "intermediate" }, wantField: "preferred_difficulty"},
		{name: "negative viewed id", mutate: func(p *UserProfile) { p.ViewedContentIDs = []int{1, -3} }, wantField: "viewed_content_ids[1]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := validProfile()
			tc.mutate(&p)
			err := ValidateProfile(&p)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateProfile() unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ValidateProfile() error = %v, want *ValidationError", err)
			}
			found := false
			for _, f := range ve.Fields {
				if f.Field == tc.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("fields = %+v, want one named %q", ve.Fields, tc.wantField)
			}
		})
	}
}

func TestValidateProfile_MultipleFields(t *testing.T) {
	t.Parallel()

	p := validProfile()
	p.TimePerDay = 0
	p.LearningStyle = "nope"

	err := ValidateProfile(&p)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "time_per_day") || !strings.Contains(msg, "learning_style") {
		t.Errorf("error message %q should mention both fields", msg)
	}
}

func TestValidateProfile_Nil(t *testing.T) {
	t.Parallel()
	if err := ValidateProfile(nil); !IsValidation(err) {
		t.Errorf("nil profile: expected validation error, got %v", err)
	}
}

func TestLearningStyle_Prefers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		style LearningStyle
		f     Format
		want  bool
	}{
		{StyleVisual, FormatVideo, true},
		{StyleVisual, FormatSlides, false},
		{StyleReading, FormatSlides, true},
		{StyleReading, FormatLecture, true},
		{StyleReading, FormatVideo, false},
		{StyleHandsOn, FormatVideo, true},
		{StyleHandsOn, FormatLecture, true},
		{StyleHandsOn, FormatSlides, false},
		{"unknown", FormatVideo, false},
	}
	for _, tc := range tests {
		if got := tc.style.Prefers(tc.f); got != tc.want {
			t.Errorf("%s.Prefers(%s) = %v, want %v", tc.style, tc.f, got, tc.want)
		}
	}
}

func TestDifficulty_Rank(t *testing.T) {
	t.Parallel()
	if DifficultyBeginner.Rank() != 0 || DifficultyIntermediate.Rank() != 1 || DifficultyAdvanced.Rank() != 2 {
		t.Error("difficulty ranks must be 0,1,2 in tier order")
	}
	if Difficulty("other").Rank() != 1 {
		t.Error("unknown difficulty should rank as Intermediate")
	}
}
