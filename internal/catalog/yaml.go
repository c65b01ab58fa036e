package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/54b3r/edurec-go/internal/domain"
)

// File is the on-disk YAML catalogue layout accepted by LoadFile:
//
//	content:
//	  - id: 1
//	    title: ...
//	users:
//	  - user_id: u1
//	    ...
type File struct {
	Content []domain.ContentItem `yaml:"content"`
	Users   []domain.UserProfile `yaml:"users"`
}

// LoadFile reads and checks a YAML catalogue. Content ids must be positive
// and unique, formats and difficulties must be known values, and every
// persona must pass profile validation.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if err := f.check(); err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return &f, nil
}

func (f *File) check() error {
	seen := make(map[int]struct{}, len(f.Content))
	for i, it := range f.Content {
		switch {
		case it.ID <= 0:
			return fmt.Errorf("content[%d]: id must be positive", i)
		case it.DurationMinutes <= 0:
			return fmt.Errorf("content[%d]: duration_minutes must be positive", i)
		case !it.Format.Valid():
			return fmt.Errorf("content[%d]: unknown format %q", i, it.Format)
		case !it.Difficulty.Valid():
			return fmt.Errorf("content[%d]: unknown difficulty %q", i, it.Difficulty)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("content[%d]: duplicate id %d", i, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	for i := range f.Users {
		if err := domain.ValidateProfile(&f.Users[i]); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}
	return nil
}
