package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glabrego/threadbox/internal/tui/state"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Fatalf("prefs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".config", "threadbox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	raw := "sort_by = \"name\"\nsort_reversed = true\nfilter_state = \"open\"\nmy_threads = true\n"
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Prefs{SortBy: "name", SortReversed: true, FilterState: "open", MyThreads: true}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("prefs mismatch (-want +got):\n%s", diff)
	}
	if p.Sort() != (state.SortSpec{Field: state.SortByName, Reversed: true}) || p.State() != state.FilterOpen {
		t.Fatalf("unexpected typed prefs: %+v %s", p.Sort(), p.State())
	}
}

func TestLoad_UnknownValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("sort_by = \"size\"\nfilter_state = \"closed\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.SortBy != "modified" || p.FilterState != "all" {
		t.Fatalf("expected fallbacks, got %+v", p)
	}
}

func TestLoad_BrokenFileReportsAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("sort_by = [broken"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	p, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if diff := cmp.Diff(Default(), p); diff != "" {
		t.Fatalf("prefs mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesDirectoriesAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")
	s := state.NewStore()
	s.SetSortBy(state.SortByReporter)
	s.SetSortReversed(true)
	s.SetFilterByState(state.FilterResolved)

	if err := Save(path, FromStore(s)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Prefs{SortBy: "reporter", SortReversed: true, FilterState: "resolved"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("prefs mismatch (-want +got):\n%s", diff)
	}
}
