package comments

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

var (
	ErrOrphanComment    = errors.New("comment references unknown thread")
	ErrDuplicateComment = errors.New("duplicate comment id")
	ErrDuplicateThread  = errors.New("duplicate thread id")
)

// Process is the domain entity a thread can be attached to.
type Process struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DisplayName is the label used in headers and filter options.
func (p Process) DisplayName() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Sprintf("#%d", p.ID)
	}
	return fmt.Sprintf("%s (#%d)", name, p.ID)
}

type Thread struct {
	ID         int64
	Name       string
	Created    time.Time
	Modified   time.Time
	Reporter   string
	Resolved   bool
	Process    *Process
	CommentIDs []int64
}

// ProcessID returns the associated process id and whether there is one.
func (t Thread) ProcessID() (int64, bool) {
	if t.Process == nil {
		return 0, false
	}
	return t.Process.ID, true
}

type Comment struct {
	ID       int64
	ThreadID int64
	Position int
	User     string
	Content  string
	Created  time.Time
}

type SharedParams struct {
	CurrentUser string
}

// Snapshot is a complete dataset as consumed by the thread list.
type Snapshot struct {
	Threads           []Thread
	CommentsHash      map[int64]Comment
	CommentsByThreads map[int64][]int64
	SharedParams      SharedParams
	Users             []string
	ProcessIDs        []int64
	ProcessesHash     map[int64]Process
}

// Payload is the wire shape of /comments/read and of local snapshot files.
type Payload struct {
	Threads      []ThreadPayload  `json:"threads"`
	Comments     []CommentPayload `json:"comments"`
	SharedParams struct {
		CurrentUser string `json:"current_user"`
	} `json:"shared_params"`
}

type ThreadPayload struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Created  string   `json:"created"`
	Modified string   `json:"modified"`
	Reporter string   `json:"reporter"`
	Resolved bool     `json:"resolved"`
	Process  *Process `json:"process,omitempty"`
}

type CommentPayload struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Thread   int64  `json:"thread"`
	User     string `json:"user"`
	Content  string `json:"content"`
	Created  string `json:"created"`
}

// DecodePayload reads a JSON payload.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode comments payload: %w", err)
	}
	return p, nil
}

// ParseDate accepts the GMT strings the server emits
// ("Sat, 12 Aug 2023 12:36:08 GMT") and RFC 3339. Empty input is the zero time.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC1123)
}

func (p ThreadPayload) Thread() (Thread, error) {
	created, err := ParseDate(p.Created)
	if err != nil {
		return Thread{}, fmt.Errorf("thread %d created: %w", p.ID, err)
	}
	modified, err := ParseDate(p.Modified)
	if err != nil {
		return Thread{}, fmt.Errorf("thread %d modified: %w", p.ID, err)
	}
	t := Thread{
		ID:       p.ID,
		Name:     p.Name,
		Created:  created,
		Modified: modified,
		Reporter: p.Reporter,
		Resolved: p.Resolved,
	}
	if p.Process != nil {
		proc := *p.Process
		t.Process = &proc
	}
	return t, nil
}

func (p CommentPayload) Comment() (Comment, error) {
	created, err := ParseDate(p.Created)
	if err != nil {
		return Comment{}, fmt.Errorf("comment %d created: %w", p.ID, err)
	}
	return Comment{
		ID:       p.ID,
		ThreadID: p.Thread,
		Position: p.Position,
		User:     p.User,
		Content:  p.Content,
		Created:  created,
	}, nil
}

// Items converts the payload into domain values without cross-checking them.
func (p Payload) Items() ([]Thread, []Comment, error) {
	threads := make([]Thread, 0, len(p.Threads))
	for _, tp := range p.Threads {
		t, err := tp.Thread()
		if err != nil {
			return nil, nil, err
		}
		threads = append(threads, t)
	}
	comments := make([]Comment, 0, len(p.Comments))
	for _, cp := range p.Comments {
		c, err := cp.Comment()
		if err != nil {
			return nil, nil, err
		}
		comments = append(comments, c)
	}
	return threads, comments, nil
}

// BuildSnapshot derives the snapshot shape from a payload. currentUser
// overrides the payload's shared params when non-empty.
func BuildSnapshot(p Payload, currentUser string) (Snapshot, error) {
	threads, comments, err := p.Items()
	if err != nil {
		return Snapshot{}, err
	}
	if currentUser == "" {
		currentUser = p.SharedParams.CurrentUser
	}
	return NewSnapshot(threads, comments, currentUser)
}

// NewSnapshot indexes threads and comments. Thread and comment ids must be
// unique and every comment must reference one of the threads.
func NewSnapshot(threads []Thread, comments []Comment, currentUser string) (Snapshot, error) {
	snap := Snapshot{
		Threads:           append([]Thread(nil), threads...),
		CommentsHash:      make(map[int64]Comment, len(comments)),
		CommentsByThreads: make(map[int64][]int64, len(threads)),
		SharedParams:      SharedParams{CurrentUser: currentUser},
		ProcessesHash:     make(map[int64]Process),
	}

	threadIndex := make(map[int64]int, len(threads))
	for i, t := range snap.Threads {
		if _, dup := threadIndex[t.ID]; dup {
			return Snapshot{}, fmt.Errorf("thread %d: %w", t.ID, ErrDuplicateThread)
		}
		threadIndex[t.ID] = i
		snap.CommentsByThreads[t.ID] = nil
		if t.Process != nil {
			snap.ProcessesHash[t.Process.ID] = *t.Process
		}
	}
	for _, c := range comments {
		if _, ok := threadIndex[c.ThreadID]; !ok {
			return Snapshot{}, fmt.Errorf("comment %d: %w %d", c.ID, ErrOrphanComment, c.ThreadID)
		}
		if _, dup := snap.CommentsHash[c.ID]; dup {
			return Snapshot{}, fmt.Errorf("comment %d: %w", c.ID, ErrDuplicateComment)
		}
		snap.CommentsHash[c.ID] = c
		snap.CommentsByThreads[c.ThreadID] = append(snap.CommentsByThreads[c.ThreadID], c.ID)
	}
	for id, ids := range snap.CommentsByThreads {
		SortCommentIDs(ids, snap.CommentsHash)
		snap.Threads[threadIndex[id]].CommentIDs = append([]int64(nil), ids...)
	}

	snap.Users = CollectUsers(snap.Threads, snap.CommentsHash)
	for id := range snap.ProcessesHash {
		snap.ProcessIDs = append(snap.ProcessIDs, id)
	}
	sort.Slice(snap.ProcessIDs, func(i, j int) bool { return snap.ProcessIDs[i] < snap.ProcessIDs[j] })
	return snap, nil
}

// Comments flattens CommentsHash in thread order, then position.
func (s Snapshot) Comments() []Comment {
	out := make([]Comment, 0, len(s.CommentsHash))
	for _, t := range s.Threads {
		for _, id := range s.CommentsByThreads[t.ID] {
			out = append(out, s.CommentsHash[id])
		}
	}
	return out
}

// SortCommentIDs orders ids by comment position, then id.
func SortCommentIDs(ids []int64, hash map[int64]Comment) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := hash[ids[i]], hash[ids[j]]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

// CollectUsers returns the sorted set of reporters and comment authors.
func CollectUsers(threads []Thread, hash map[int64]Comment) []string {
	seen := make(map[string]struct{}, len(threads))
	for _, t := range threads {
		if t.Reporter != "" {
			seen[t.Reporter] = struct{}{}
		}
	}
	for _, c := range hash {
		if c.User != "" {
			seen[c.User] = struct{}{}
		}
	}
	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}
