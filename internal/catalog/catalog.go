// Package catalog supplies the immutable content catalogue and learner
// personas consumed by the recommendation pipeline. Two implementations are
// provided: Static, backed by the built-in fixtures, and SQLite, which reads
// a catalogue file prepared with `edurec catalog import`.
package catalog

import (
	"context"
	"errors"
	"slices"

	"github.com/54b3r/edurec-go/internal/domain"
)

// ErrUserNotFound is returned by Store.User when no persona has the given id.
var ErrUserNotFound = errors.New("catalog: user not found")

// Store is the read-only collaborator interface for content and personas.
// Implementations must be safe to call from multiple goroutines and must
// return results in a stable order (ascending content id, persona order).
type Store interface {
	// ListContent returns every content item in the catalogue.
	ListContent(ctx context.Context) ([]domain.ContentItem, error)
	// ListUsers returns every stored learner persona.
	ListUsers(ctx context.Context) ([]domain.UserProfile, error)
	// User returns the persona with the given id, or ErrUserNotFound.
	User(ctx context.Context, userID string) (domain.UserProfile, error)
}

// Static is a Store over in-memory slices. The zero value is an empty
// catalogue, which is valid and produces empty recommendation lists.
type Static struct {
	// items is the content catalogue.
	items []domain.ContentItem
	// users is the persona list.
	users []domain.UserProfile
}

// NewStatic returns a Static store over copies of items and users.
func NewStatic(items []domain.ContentItem, users []domain.UserProfile) *Static {
	return &Static{
		items: slices.Clone(items),
		users: slices.Clone(users),
	}
}

// Default returns a Static store over the built-in fixtures.
func Default() *Static {
	return NewStatic(Content(), Users())
}

// ListContent returns a copy of the catalogue.
func (s *Static) ListContent(_ context.Context) ([]domain.ContentItem, error) {
	return slices.Clone(s.items), nil
}

// ListUsers returns a copy of the persona list.
func (s *Static) ListUsers(_ context.Context) ([]domain.UserProfile, error) {
	return slices.Clone(s.users), nil
}

// User looks up a persona by id.
func (s *Static) User(_ context.Context, userID string) (domain.UserProfile, error) {
	for _, u := range s.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return domain.UserProfile{}, ErrUserNotFound
}
