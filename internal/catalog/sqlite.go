package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/54b3r/edurec-go/internal/domain"
)

// SQLite is a Store backed by a local SQLite catalogue file. The pipeline
// only reads from it; rows are written by Import (the `catalog import`
// command) ahead of time.
type SQLite struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default catalogue path, ~/.edurec/catalog.db,
// creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("catalog: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".edurec")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("catalog: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "catalog.db"), nil
}

// OpenSQLite opens (or creates) a catalogue at path and runs the schema
// migration. Use ":memory:" in tests.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist. List-valued
// fields are stored as JSON text.
func (s *SQLite) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS content (
    id               INTEGER PRIMARY KEY CHECK(id > 0),
    title            TEXT    NOT NULL,
    description      TEXT    NOT NULL,
    difficulty       TEXT    NOT NULL CHECK(difficulty IN ('Beginner','Intermediate','Advanced')),
    duration_minutes INTEGER NOT NULL CHECK(duration_minutes > 0),
    tags             TEXT    NOT NULL,  -- JSON array of strings
    format           TEXT    NOT NULL CHECK(format IN ('video','slides','lecture'))
);
CREATE TABLE IF NOT EXISTS users (
    position             INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id              TEXT    NOT NULL UNIQUE,
    name                 TEXT    NOT NULL,
    goal                 TEXT    NOT NULL,
    learning_style       TEXT    NOT NULL,
    preferred_difficulty TEXT    NOT NULL,
    time_per_day         INTEGER NOT NULL CHECK(time_per_day > 0),
    viewed_content_ids   TEXT    NOT NULL,  -- JSON array of ints
    interest_tags        TEXT    NOT NULL   -- JSON array of strings
);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// Import replaces the catalogue contents with items and users in a single
// transaction.
func (s *SQLite) Import(ctx context.Context, items []domain.ContentItem, users []domain.UserProfile) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: import begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM content; DELETE FROM users;`); err != nil {
		return fmt.Errorf("catalog: import clear: %w", err)
	}

	const insertContent = `INSERT INTO content (id, title, description, difficulty, duration_minutes, tags, format) VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, it := range items {
		tags, mErr := json.Marshal(nonNil(it.Tags))
		if mErr != nil {
			return fmt.Errorf("catalog: import item %d tags: %w", it.ID, mErr)
		}
		if _, err = tx.ExecContext(ctx, insertContent, it.ID, it.Title, it.Description,
			string(it.Difficulty), it.DurationMinutes, string(tags), string(it.Format)); err != nil {
			return fmt.Errorf("catalog: import item %d: %w", it.ID, err)
		}
	}

	const insertUser = `INSERT INTO users (user_id, name, goal, learning_style, preferred_difficulty, time_per_day, viewed_content_ids, interest_tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, u := range users {
		viewed, mErr := json.Marshal(nonNilInts(u.ViewedContentIDs))
		if mErr != nil {
			return fmt.Errorf("catalog: import user %s viewed ids: %w", u.UserID, mErr)
		}
		interests, mErr := json.Marshal(nonNil(u.InterestTags))
		if mErr != nil {
			return fmt.Errorf("catalog: import user %s interests: %w", u.UserID, mErr)
		}
		if _, err = tx.ExecContext(ctx, insertUser, u.UserID, u.Name, u.Goal, string(u.LearningStyle),
			string(u.PreferredDifficulty), u.TimePerDay, string(viewed), string(interests)); err != nil {
			return fmt.Errorf("catalog: import user %s: %w", u.UserID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("catalog: import commit: %w", err)
	}
	return nil
}

// ListContent returns every item ordered by ascending id.
func (s *SQLite) ListContent(ctx context.Context) ([]domain.ContentItem, error) {
	const q = `SELECT id, title, description, difficulty, duration_minutes, tags, format FROM content ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: list content: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		var it domain.ContentItem
		var difficulty, format, tags string
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &difficulty, &it.DurationMinutes, &tags, &format); err != nil {
			return nil, fmt.Errorf("catalog: list content scan: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("catalog: item %d tags: %w", it.ID, err)
		}
		it.Difficulty = domain.Difficulty(difficulty)
		it.Format = domain.Format(format)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list content rows: %w", err)
	}
	return items, nil
}

// ListUsers returns every persona in import order.
func (s *SQLite) ListUsers(ctx context.Context) ([]domain.UserProfile, error) {
	const q = `SELECT user_id, name, goal, learning_style, preferred_difficulty, time_per_day, viewed_content_ids, interest_tags FROM users ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list users rows: %w", err)
	}
	return users, nil
}

// User looks up a persona by id.
func (s *SQLite) User(ctx context.Context, userID string) (domain.UserProfile, error) {
	const q = `SELECT user_id, name, goal, learning_style, preferred_difficulty, time_per_day, viewed_content_ids, interest_tags FROM users WHERE user_id = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, ErrUserNotFound
	}
	return u, err
}

// Ping checks that the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("catalog: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("catalog: close: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (domain.UserProfile, error) {
	var u domain.UserProfile
	var style, difficulty, viewed, interests string
	if err := r.Scan(&u.UserID, &u.Name, &u.Goal, &style, &difficulty, &u.TimePerDay, &viewed, &interests); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, err
		}
		return u, fmt.Errorf("catalog: scan user: %w", err)
	}
	if err := json.Unmarshal([]byte(viewed), &u.ViewedContentIDs); err != nil {
		return u, fmt.Errorf("catalog: user %s viewed ids: %w", u.UserID, err)
	}
	if err := json.Unmarshal([]byte(interests), &u.InterestTags); err != nil {
		return u, fmt.Errorf("catalog: user %s interests: %w", u.UserID, err)
	}
	u.LearningStyle = domain.LearningStyle(style)
	u.PreferredDifficulty = domain.Difficulty(difficulty)
	return u, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
