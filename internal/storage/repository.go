package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/threadbox/internal/comments"
)

const (
	metaCurrentUser = "current_user"
	metaFetchedAt   = "fetched_at"
)

// Repository caches the last known thread snapshot so the list can be shown
// before the network answers.
type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS processes (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS threads (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  created TEXT NOT NULL,
  modified TEXT NOT NULL,
  reporter TEXT NOT NULL,
  resolved INTEGER NOT NULL,
  process_id INTEGER
);
CREATE TABLE IF NOT EXISTS comments (
  id INTEGER PRIMARY KEY,
  thread_id INTEGER NOT NULL,
  position INTEGER NOT NULL,
  user TEXT NOT NULL,
  content TEXT NOT NULL,
  created TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS comments_thread_idx ON comments(thread_id);
CREATE TABLE IF NOT EXISTS meta (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CheckWritable fails early when the cache file cannot be written.
func (r *Repository) CheckWritable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('write_check', '') ON CONFLICT(key) DO UPDATE SET value=excluded.value`); err != nil {
		return fmt.Errorf("cache is not writable: %w", err)
	}
	return nil
}

// SaveSnapshot replaces the cached dataset.
func (r *Repository) SaveSnapshot(ctx context.Context, snap comments.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"comments", "threads", "processes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	processes := make([]comments.Process, 0, len(snap.ProcessesHash))
	for _, p := range snap.ProcessesHash {
		processes = append(processes, p)
	}
	if err := upsertItems(ctx, tx, snap.Threads, snap.Comments(), processes); err != nil {
		return err
	}
	if err := setMeta(ctx, tx, metaCurrentUser, snap.SharedParams.CurrentUser); err != nil {
		return err
	}
	if err := setMeta(ctx, tx, metaFetchedAt, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// MergeItems upserts threads and comments by id, like an incremental merge.
func (r *Repository) MergeItems(ctx context.Context, threads []comments.Thread, cs []comments.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var processes []comments.Process
	for _, t := range threads {
		if t.Process != nil {
			processes = append(processes, *t.Process)
		}
	}
	if err := upsertItems(ctx, tx, threads, cs, processes); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func upsertItems(ctx context.Context, tx *sql.Tx, threads []comments.Thread, cs []comments.Comment, processes []comments.Process) error {
	if len(processes) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO processes (id, name) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name
`)
		if err != nil {
			return fmt.Errorf("prepare process statement: %w", err)
		}
		defer stmt.Close()
		for _, p := range processes {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Name); err != nil {
				return fmt.Errorf("save process %d: %w", p.ID, err)
			}
		}
	}

	if len(threads) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO threads (id, name, created, modified, reporter, resolved, process_id)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  created=excluded.created,
  modified=excluded.modified,
  reporter=excluded.reporter,
  resolved=excluded.resolved,
  process_id=excluded.process_id
`)
		if err != nil {
			return fmt.Errorf("prepare thread statement: %w", err)
		}
		defer stmt.Close()
		for _, t := range threads {
			var processID sql.NullInt64
			if id, ok := t.ProcessID(); ok {
				processID = sql.NullInt64{Int64: id, Valid: true}
			}
			_, err := stmt.ExecContext(ctx,
				t.ID,
				t.Name,
				formatTime(t.Created),
				formatTime(t.Modified),
				t.Reporter,
				t.Resolved,
				processID,
			)
			if err != nil {
				return fmt.Errorf("save thread %d: %w", t.ID, err)
			}
		}
	}

	if len(cs) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO comments (id, thread_id, position, user, content, created)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  thread_id=excluded.thread_id,
  position=excluded.position,
  user=excluded.user,
  content=excluded.content,
  created=excluded.created
`)
		if err != nil {
			return fmt.Errorf("prepare comment statement: %w", err)
		}
		defer stmt.Close()
		for _, c := range cs {
			if _, err := stmt.ExecContext(ctx, c.ID, c.ThreadID, c.Position, c.User, c.Content, formatTime(c.Created)); err != nil {
				return fmt.Errorf("save comment %d: %w", c.ID, err)
			}
		}
	}
	return nil
}

func setMeta(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO meta (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, key, value)
	if err != nil {
		return fmt.Errorf("save meta %s: %w", key, err)
	}
	return nil
}

// LoadSnapshot returns the cached dataset. ok is false when nothing has been
// cached yet.
func (r *Repository) LoadSnapshot(ctx context.Context) (comments.Snapshot, bool, error) {
	var fetchedAt string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaFetchedAt).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return comments.Snapshot{}, false, nil
	}
	if err != nil {
		return comments.Snapshot{}, false, fmt.Errorf("query cache meta: %w", err)
	}
	var user string
	if err := r.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaCurrentUser).Scan(&user); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return comments.Snapshot{}, false, fmt.Errorf("query current user: %w", err)
	}

	processes, err := r.listProcesses(ctx)
	if err != nil {
		return comments.Snapshot{}, false, err
	}
	threads, err := r.listThreads(ctx, processes)
	if err != nil {
		return comments.Snapshot{}, false, err
	}
	cs, err := r.listComments(ctx)
	if err != nil {
		return comments.Snapshot{}, false, err
	}

	snap, err := comments.NewSnapshot(threads, cs, user)
	if err != nil {
		return comments.Snapshot{}, false, fmt.Errorf("build cached snapshot: %w", err)
	}
	return snap, true, nil
}

func (r *Repository) listProcesses(ctx context.Context) (map[int64]comments.Process, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM processes`)
	if err != nil {
		return nil, fmt.Errorf("query processes: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]comments.Process)
	for rows.Next() {
		var p comments.Process
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan process: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processes: %w", err)
	}
	return out, nil
}

func (r *Repository) listThreads(ctx context.Context, processes map[int64]comments.Process) ([]comments.Thread, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created, modified, reporter, resolved, process_id
FROM threads
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	var threads []comments.Thread
	for rows.Next() {
		var (
			t                 comments.Thread
			created, modified string
			processID         sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Name, &created, &modified, &t.Reporter, &t.Resolved, &processID); err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		if t.Created, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse thread %d created %q: %w", t.ID, created, err)
		}
		if t.Modified, err = parseTime(modified); err != nil {
			return nil, fmt.Errorf("parse thread %d modified %q: %w", t.ID, modified, err)
		}
		if processID.Valid {
			p, ok := processes[processID.Int64]
			if !ok {
				p = comments.Process{ID: processID.Int64}
			}
			t.Process = &p
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate threads: %w", err)
	}
	return threads, nil
}

func (r *Repository) listComments(ctx context.Context) ([]comments.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, thread_id, position, user, content, created
FROM comments
ORDER BY thread_id, position, id
`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var cs []comments.Comment
	for rows.Next() {
		var (
			c       comments.Comment
			created string
		)
		if err := rows.Scan(&c.ID, &c.ThreadID, &c.Position, &c.User, &c.Content, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if c.Created, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse comment %d created %q: %w", c.ID, created, err)
		}
		cs = append(cs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return cs, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}
