package budget

import (
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func Test_Estimate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},        // < 4 chars → 1
		{"abcd", 1},     // exactly 4 chars → 1
		{"abcde", 1},    // 5 chars → 1
		{"abcdefgh", 2}, // 8 chars → 2
		{strings.Repeat("x", 400), 100},
	}
	for _, tc := range cases {
		got := Estimate(tc.input)
		if got != tc.want {
			t.Errorf("Estimate(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func Test_EstimateMessages(t *testing.T) {
	t.Parallel()
	msgs := []*schema.Message{
		schema.UserMessage("hello world"), // 4 overhead + 1 (role) + 2 (content) = 7
		schema.UserMessage("hello world"),
	}
	got := EstimateMessages(msgs)
	// Each message: 4 overhead + Estimate("user")=1 + Estimate("hello world")=2 = 7
	// Two messages: 14
	if got != 14 {
		t.Errorf("EstimateMessages = %d, want 14", got)
	}
}

func Test_Fits(t *testing.T) {
	t.Parallel()
	msgs := []*schema.Message{schema.UserMessage("hello world")} // 7 tokens
	if !Fits(msgs, 7) {
		t.Error("7-token prompt should fit a 7-token budget")
	}
	if Fits(msgs, 6) {
		t.Error("7-token prompt should not fit a 6-token budget")
	}
}

// renderJoined renders one user message containing every item.
func renderJoined(items []string) []*schema.Message {
	return []*schema.Message{schema.UserMessage(strings.Join(items, ""))}
}

func Test_TrimTail_NoTrimNeeded(t *testing.T) {
	t.Parallel()
	items := []string{"aaaa", "bbbb"}
	got := TrimTail(items, renderJoined, DefaultMaxPromptTokens)
	if len(got) != 2 {
		t.Errorf("want 2 items, got %d", len(got))
	}
}

func Test_TrimTail_DropsLeastRelevant(t *testing.T) {
	t.Parallel()
	// Each item adds 10 tokens; base overhead is 4 + Estimate("user")=1.
	items := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	// 5 + 20 = 25 fits, 5 + 30 = 35 does not.
	got := TrimTail(items, renderJoined, 25)
	if len(got) != 2 {
		t.Fatalf("want 2 items after trim, got %d", len(got))
	}
	if got[0][0] != 'a' || got[1][0] != 'b' {
		t.Errorf("want the first two items kept, got %q", got)
	}
}

func Test_TrimTail_AllDroppedWhenNothingFits(t *testing.T) {
	t.Parallel()
	items := []string{strings.Repeat("x", 4*7000)}
	got := TrimTail(items, renderJoined, 6000)
	if len(got) != 0 {
		t.Errorf("want 0 items, got %d", len(got))
	}
}
