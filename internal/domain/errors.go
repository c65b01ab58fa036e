package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmbeddingUnavailable is returned (wrapped) when an embedding provider
// cannot produce vectors: network failure, timeout, bad status, or a
// malformed response. It is fatal for a recommendation request.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// ErrRerankTransient marks a failed remote re-rank attempt. It is always
// absorbed by the rule-based fallback and never returned to callers; it is
// carried in the re-rank result for logging.
var ErrRerankTransient = errors.New("rerank transient failure")

// FieldError describes one invalid field of an inbound profile.
type FieldError struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field"`
	// Tag is the failed rule (e.g. "gt", "learning_style").
	Tag string `json:"tag"`
	// Message is a human-readable description of the failure.
	Message string `json:"message"`
}

// ValidationError is returned when an inbound profile is malformed. It is
// raised before the pipeline runs and maps to HTTP 400.
type ValidationError struct {
	// Fields lists every invalid field, in struct order.
	Fields []FieldError
}

// Error joins the per-field messages.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
