// Package prefs persists list preferences in ~/.config/threadbox/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/glabrego/threadbox/internal/tui/state"
)

// Prefs holds the sort and scalar filter choices that survive restarts.
// User and process filters depend on the dataset and are not persisted.
type Prefs struct {
	SortBy       string `toml:"sort_by"`
	SortReversed bool   `toml:"sort_reversed"`
	FilterState  string `toml:"filter_state"`
	MyThreads    bool   `toml:"my_threads"`
}

const defaultPrefsPath = "~/.config/threadbox/prefs.toml"

func Default() Prefs {
	return Prefs{
		SortBy:      string(state.SortByModified),
		FilterState: string(state.FilterAll),
	}
}

func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path, falling back to defaults when the file is
// missing. A broken file also yields defaults, together with the reason so
// the caller can warn.
func Load(path string) (Prefs, error) {
	p := Default()
	resolved, err := resolvePath(path)
	if err != nil {
		return p, err
	}
	raw, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read prefs: %w", err)
	}
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Default(), fmt.Errorf("parse prefs %s: %w", resolved, err)
	}
	return p.normalize(), nil
}

func (p Prefs) normalize() Prefs {
	p.SortBy = string(p.Sort().Field)
	p.FilterState = string(p.State())
	return p
}

// Sort returns the persisted sort spec.
func (p Prefs) Sort() state.SortSpec {
	field, err := state.ParseSortField(p.SortBy)
	if err != nil {
		field = state.SortByModified
	}
	return state.SortSpec{Field: field, Reversed: p.SortReversed}
}

func (p Prefs) State() state.FilterByState {
	f, err := state.ParseFilterByState(p.FilterState)
	if err != nil {
		return state.FilterAll
	}
	return f
}

// FromStore captures the persistable choices of a store.
func FromStore(s *state.Store) Prefs {
	sort := s.Sort()
	filters := s.Filters()
	return Prefs{
		SortBy:       string(sort.Field),
		SortReversed: sort.Reversed,
		FilterState:  string(filters.ByState),
		MyThreads:    filters.ByMyThreads,
	}
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
