package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/debug"
)

// ErrReadOnly is returned for writes while threads come from a local file.
var ErrReadOnly = errors.New("snapshot file source is read-only")

type CommentsClient interface {
	ReadSnapshot(ctx context.Context) (comments.Payload, error)
	ReadThread(ctx context.Context, threadID int64) (comments.Payload, error)
	ResolveThread(ctx context.Context, threadID int64, resolved bool) (comments.Thread, error)
	CreateComment(ctx context.Context, threadID int64, content string) (comments.Comment, error)
}

type Repository interface {
	SaveSnapshot(ctx context.Context, snap comments.Snapshot) error
	MergeItems(ctx context.Context, threads []comments.Thread, cs []comments.Comment) error
	LoadSnapshot(ctx context.Context) (comments.Snapshot, bool, error)
}

// Service loads thread snapshots from the comments API, or from a local
// snapshot file, and keeps the sqlite cache in step.
type Service struct {
	client       CommentsClient
	repo         Repository
	user         string
	snapshotPath string
}

type Option func(*Service)

// WithUser overrides the current user reported by the data source.
func WithUser(user string) Option {
	return func(s *Service) { s.user = user }
}

// WithSnapshotFile reads threads from a JSON file instead of the API.
func WithSnapshotFile(path string) Option {
	return func(s *Service) { s.snapshotPath = path }
}

func NewService(client CommentsClient, repo Repository, opts ...Option) *Service {
	s := &Service{client: client, repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) FileMode() bool {
	return s.snapshotPath != ""
}

// Load fetches a full snapshot. API snapshots are written to the cache.
func (s *Service) Load(ctx context.Context) (comments.Snapshot, error) {
	if s.FileMode() {
		return s.readFile()
	}
	payload, err := s.client.ReadSnapshot(ctx)
	if err != nil {
		return comments.Snapshot{}, fmt.Errorf("fetch threads: %w", err)
	}
	snap, err := comments.BuildSnapshot(payload, s.user)
	if err != nil {
		return comments.Snapshot{}, fmt.Errorf("build snapshot: %w", err)
	}
	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
			return comments.Snapshot{}, fmt.Errorf("save threads to cache: %w", err)
		}
	}
	debug.Log("loaded %d threads, %d comments", len(snap.Threads), len(snap.CommentsHash))
	return snap, nil
}

// ListCached returns the cached snapshot; ok is false when there is none.
func (s *Service) ListCached(ctx context.Context) (comments.Snapshot, bool, error) {
	if s.repo == nil || s.FileMode() {
		return comments.Snapshot{}, false, nil
	}
	snap, ok, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return comments.Snapshot{}, false, fmt.Errorf("load threads from cache: %w", err)
	}
	if ok && s.user != "" {
		snap.SharedParams.CurrentUser = s.user
	}
	return snap, ok, nil
}

// LoadThread fetches one thread with its comments for an incremental merge.
func (s *Service) LoadThread(ctx context.Context, threadID int64) ([]comments.Thread, []comments.Comment, error) {
	if s.FileMode() {
		snap, err := s.readFile()
		if err != nil {
			return nil, nil, err
		}
		return threadFromSnapshot(snap, threadID)
	}
	payload, err := s.client.ReadThread(ctx, threadID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch thread %d: %w", threadID, err)
	}
	threads, cs, err := payload.Items()
	if err != nil {
		return nil, nil, fmt.Errorf("decode thread %d: %w", threadID, err)
	}
	if err := s.cacheItems(ctx, threads, cs); err != nil {
		return nil, nil, err
	}
	return threads, cs, nil
}

func threadFromSnapshot(snap comments.Snapshot, threadID int64) ([]comments.Thread, []comments.Comment, error) {
	for _, t := range snap.Threads {
		if t.ID != threadID {
			continue
		}
		cs := make([]comments.Comment, 0, len(t.CommentIDs))
		for _, id := range t.CommentIDs {
			cs = append(cs, snap.CommentsHash[id])
		}
		return []comments.Thread{t}, cs, nil
	}
	return nil, nil, fmt.Errorf("thread %d not found in snapshot file", threadID)
}

// ResolveThread sets the resolved flag on the server and returns the updated
// thread.
func (s *Service) ResolveThread(ctx context.Context, threadID int64, resolved bool) (comments.Thread, error) {
	if s.FileMode() {
		return comments.Thread{}, ErrReadOnly
	}
	t, err := s.client.ResolveThread(ctx, threadID, resolved)
	if err != nil {
		return comments.Thread{}, fmt.Errorf("resolve thread %d: %w", threadID, err)
	}
	if err := s.cacheItems(ctx, []comments.Thread{t}, nil); err != nil {
		return comments.Thread{}, err
	}
	return t, nil
}

// AddComment posts a comment and returns it as stored by the server.
func (s *Service) AddComment(ctx context.Context, threadID int64, content string) (comments.Comment, error) {
	if s.FileMode() {
		return comments.Comment{}, ErrReadOnly
	}
	c, err := s.client.CreateComment(ctx, threadID, content)
	if err != nil {
		return comments.Comment{}, fmt.Errorf("add comment to thread %d: %w", threadID, err)
	}
	if err := s.cacheItems(ctx, nil, []comments.Comment{c}); err != nil {
		return comments.Comment{}, err
	}
	return c, nil
}

func (s *Service) cacheItems(ctx context.Context, threads []comments.Thread, cs []comments.Comment) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.MergeItems(ctx, threads, cs); err != nil {
		return fmt.Errorf("save items to cache: %w", err)
	}
	return nil
}

func (s *Service) readFile() (comments.Snapshot, error) {
	f, err := os.Open(s.snapshotPath)
	if err != nil {
		return comments.Snapshot{}, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	payload, err := comments.DecodePayload(f)
	if err != nil {
		return comments.Snapshot{}, fmt.Errorf("read snapshot file %s: %w", s.snapshotPath, err)
	}
	snap, err := comments.BuildSnapshot(payload, s.user)
	if err != nil {
		return comments.Snapshot{}, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}
