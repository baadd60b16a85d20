package comments

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBuildSnapshot_DerivesIndices(t *testing.T) {
	p, err := DecodePayload(strings.NewReader(samplePayload))
	if err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	snap, err := BuildSnapshot(p, "")
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}

	if diff := cmp.Diff([]int64{10, 11}, snap.CommentsByThreads[1]); diff != "" {
		t.Fatalf("comments by thread mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{10, 11}, snap.Threads[0].CommentIDs); diff != "" {
		t.Fatalf("thread comment ids mismatch (-want +got):\n%s", diff)
	}
	if len(snap.CommentsByThreads[2]) != 0 {
		t.Fatalf("expected no comments for thread 2, got %v", snap.CommentsByThreads[2])
	}
	if diff := cmp.Diff([]string{"alice", "bob"}, snap.Users); diff != "" {
		t.Fatalf("users mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{7}, snap.ProcessIDs); diff != "" {
		t.Fatalf("process ids mismatch (-want +got):\n%s", diff)
	}
	if snap.SharedParams.CurrentUser != "alice" {
		t.Fatalf("unexpected current user %q", snap.SharedParams.CurrentUser)
	}
	want := time.Date(2023, 8, 12, 12, 36, 8, 0, time.UTC)
	if !snap.Threads[0].Created.Equal(want) {
		t.Fatalf("unexpected created date: %v", snap.Threads[0].Created)
	}
}

func TestBuildSnapshot_CurrentUserOverride(t *testing.T) {
	p, _ := DecodePayload(strings.NewReader(samplePayload))
	snap, err := BuildSnapshot(p, "carol")
	if err != nil {
		t.Fatalf("BuildSnapshot returned error: %v", err)
	}
	if snap.SharedParams.CurrentUser != "carol" {
		t.Fatalf("expected override, got %q", snap.SharedParams.CurrentUser)
	}
}

func TestBuildSnapshot_RejectsOrphanComment(t *testing.T) {
	p := Payload{
		Threads:  []ThreadPayload{{ID: 1}},
		Comments: []CommentPayload{{ID: 5, Thread: 2}},
	}
	if _, err := BuildSnapshot(p, ""); !errors.Is(err, ErrOrphanComment) {
		t.Fatalf("expected ErrOrphanComment, got %v", err)
	}
}

func TestBuildSnapshot_RejectsDuplicateComment(t *testing.T) {
	p := Payload{
		Threads:  []ThreadPayload{{ID: 1}},
		Comments: []CommentPayload{{ID: 5, Thread: 1}, {ID: 5, Thread: 1}},
	}
	if _, err := BuildSnapshot(p, ""); !errors.Is(err, ErrDuplicateComment) {
		t.Fatalf("expected ErrDuplicateComment, got %v", err)
	}
}

func TestNewSnapshot_RejectsDuplicateThread(t *testing.T) {
	_, err := NewSnapshot([]Thread{{ID: 1, Name: "a"}, {ID: 2}, {ID: 1, Name: "b"}}, nil, "alice")
	if !errors.Is(err, ErrDuplicateThread) {
		t.Fatalf("expected ErrDuplicateThread, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time, got %v (%v)", got, err)
	}
	if _, err := ParseDate("yesterday"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	got, err := ParseDate("2023-02-01T00:00:00+02:00")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if got.Location() != time.UTC || got.Hour() != 22 {
		t.Fatalf("expected UTC normalization, got %v", got)
	}
}

func TestProcessDisplayName(t *testing.T) {
	if got := (Process{ID: 3}).DisplayName(); got != "#3" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := (Process{ID: 3, Name: "Steel"}).DisplayName(); got != "Steel (#3)" {
		t.Fatalf("unexpected name: %q", got)
	}
}
