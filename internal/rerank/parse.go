package rerank

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// fencePattern matches opening markdown code fences, with or without a
// language tag.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*")

// stripFences removes markdown code fences from model output.
func stripFences(s string) string {
	s = fencePattern.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
}

// pick is one element of the model's JSON answer. Only id and explanation
// are trusted; display fields are copied from the candidate item.
type pick struct {
	Rank        int     `json:"rank"`
	ID          flexInt `json:"id"`
	Explanation string  `json:"explanation"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("rerank: id %q is not a number", b)
	}
	*f = flexInt(int(v))
	return nil
}

// extractPicks finds the largest JSON array of objects embedded in raw and
// decodes it. Model output often wraps the array in prose, so every '['
// is tried as a start position and the longest well-formed match wins.
func extractPicks(raw string) ([]pick, error) {
	var best []pick
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		end := matchBracket(raw, i)
		if end < 0 {
			continue
		}
		var objs []json.RawMessage
		if err := json.Unmarshal([]byte(raw[i:end+1]), &objs); err != nil || len(objs) <= len(best) {
			continue
		}
		picks := make([]pick, 0, len(objs))
		for _, o := range objs {
			o = bytes.TrimSpace(o)
			if len(o) == 0 || o[0] != '{' {
				picks = nil
				break
			}
			var p pick
			if err := json.Unmarshal(o, &p); err != nil {
				picks = nil
				break
			}
			picks = append(picks, p)
		}
		if len(picks) > len(best) {
			best = picks
		}
	}
	if len(best) == 0 {
		return nil, fmt.Errorf("rerank: no JSON array of objects found in model output")
	}
	return best, nil
}

// matchBracket returns the index of the ']' closing the '[' at start, or -1.
// Brackets inside JSON strings are ignored.
func matchBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for j := start; j < len(s); j++ {
		c := s[j]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
