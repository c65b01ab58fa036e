package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/54b3r/edurec-go/internal/domain"
)

// openTestCatalog opens an in-memory SQLite catalogue for use in tests.
func openTestCatalog(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open in-memory catalogue: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Fixtures_Shape(t *testing.T) {
	t.Parallel()

	items := Content()
	if len(items) != 10 {
		t.Fatalf("want 10 items, got %d", len(items))
	}
	seen := map[int]bool{}
	for i, it := range items {
		if it.ID != i+1 {
			t.Errorf("item %d: want ascending ids starting at 1, got %d", i, it.ID)
		}
		if seen[it.ID] {
			t.Errorf("duplicate id %d", it.ID)
		}
		seen[it.ID] = true
		if !it.Format.Valid() || !it.Difficulty.Valid() || it.DurationMinutes <= 0 {
			t.Errorf("item %d is malformed: %+v", it.ID, it)
		}
	}
	if got := len(Users()); got != 3 {
		t.Errorf("want 3 personas, got %d", got)
	}
}

func Test_Static_UserLookup(t *testing.T) {
	t.Parallel()
	s := Default()
	ctx := context.Background()

	u, err := s.User(ctx, "u2")
	if err != nil {
		t.Fatalf("user u2: %v", err)
	}
	if u.Name != "Bob" {
		t.Errorf("want Bob, got %q", u.Name)
	}
	if _, err := s.User(ctx, "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: want ErrUserNotFound, got %v", err)
	}
}

func Test_Static_ReturnsCopies(t *testing.T) {
	t.Parallel()
	s := Default()
	ctx := context.Background()

	items, _ := s.ListContent(ctx)
	items[0].Title = "mutated"
	again, _ := s.ListContent(ctx)
	if again[0].Title == "mutated" {
		t.Error("ListContent must not expose the backing slice")
	}
}

func Test_Static_ZeroValueIsEmpty(t *testing.T) {
	t.Parallel()
	var s Static
	items, err := s.ListContent(context.Background())
	if err != nil || len(items) != 0 {
		t.Errorf("zero Static: want empty catalogue, got %d items err=%v", len(items), err)
	}
}

func Test_SQLite_ImportAndList(t *testing.T) {
	t.Parallel()
	s := openTestCatalog(t)
	ctx := context.Background()

	if err := s.Import(ctx, Content(), Users()); err != nil {
		t.Fatalf("import: %v", err)
	}

	items, err := s.ListContent(ctx)
	if err != nil {
		t.Fatalf("list content: %v", err)
	}
	want := Content()
	if len(items) != len(want) {
		t.Fatalf("want %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i].ID != want[i].ID || items[i].Title != want[i].Title ||
			items[i].Format != want[i].Format || !slices.Equal(items[i].Tags, want[i].Tags) {
			t.Errorf("item %d round-trip mismatch: got %+v", want[i].ID, items[i])
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 || users[0].UserID != "u1" || users[2].UserID != "u3" {
		t.Fatalf("users out of import order: %+v", users)
	}
	if !slices.Equal(users[0].ViewedContentIDs, []int{1}) {
		t.Errorf("u1 viewed ids: got %v", users[0].ViewedContentIDs)
	}
}

func Test_SQLite_ImportReplaces(t *testing.T) {
	t.Parallel()
	s := openTestCatalog(t)
	ctx := context.Background()

	if err := s.Import(ctx, Content(), Users()); err != nil {
		t.Fatalf("first import: %v", err)
	}
	if err := s.Import(ctx, Content()[:2], nil); err != nil {
		t.Fatalf("second import: %v", err)
	}
	items, _ := s.ListContent(ctx)
	if len(items) != 2 {
		t.Errorf("want 2 items after re-import, got %d", len(items))
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("want no users after re-import, got %d", len(users))
	}
}

func Test_SQLite_UserNotFound(t *testing.T) {
	t.Parallel()
	s := openTestCatalog(t)

	if _, err := s.User(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func Test_SQLite_EmptyListsRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestCatalog(t)
	ctx := context.Background()

	u := Users()[0]
	u.ViewedContentIDs = nil
	if err := s.Import(ctx, nil, []domain.UserProfile{u}); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, err := s.User(ctx, u.UserID)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if got.Goal != u.Goal || got.TimePerDay != u.TimePerDay {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.ViewedContentIDs == nil || len(got.ViewedContentIDs) != 0 {
		t.Errorf("nil viewed ids should read back as an empty list, got %#v", got.ViewedContentIDs)
	}
}

func Test_LoadFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid",
			body: `content:
  - id: 1
    title: Intro
    description: Basics
    difficulty: Beginner
    duration_minutes: 10
    tags: [go]
    format: video
users:
  - user_id: x
    name: X
    goal: learn go
    learning_style: visual
    preferred_difficulty: Beginner
    time_per_day: 30
    viewed_content_ids: []
    interest_tags: [go]
`,
		},
		{
			name: "duplicate id",
			body: `content:
  - {id: 1, title: a, description: a, difficulty: Beginner, duration_minutes: 5, tags: [], format: video}
  - {id: 1, title: b, description: b, difficulty: Beginner, duration_minutes: 5, tags: [], format: video}
`,
			wantErr: true,
		},
		{
			name:    "bad format",
			body:    "content:\n  - {id: 2, title: a, description: a, difficulty: Beginner, duration_minutes: 5, tags: [], format: podcast}\n",
			wantErr: true,
		},
		{
			name:    "invalid persona",
			body:    "users:\n  - {user_id: y, learning_style: auditory, preferred_difficulty: Beginner, time_per_day: 10}\n",
			wantErr: true,
		},
		{
			name:    "not yaml",
			body:    "content: [",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			if err := os.WriteFile(path, []byte(tc.body), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
			f, err := LoadFile(path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("LoadFile() err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && (len(f.Content) != 1 || len(f.Users) != 1) {
				t.Errorf("want 1 item and 1 user, got %d/%d", len(f.Content), len(f.Users))
			}
		})
	}
}
