package state

import (
	"fmt"
	"sort"

	"github.com/glabrego/threadbox/internal/comments"
)

type FilterByState string

const (
	FilterAll      FilterByState = "all"
	FilterOpen     FilterByState = "open"
	FilterResolved FilterByState = "resolved"
)

func ParseFilterByState(raw string) (FilterByState, error) {
	switch f := FilterByState(raw); f {
	case FilterAll, FilterOpen, FilterResolved:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("unknown state filter %q", raw)
	}
}

// Next cycles all -> open -> resolved -> all.
func (f FilterByState) Next() FilterByState {
	switch f {
	case FilterAll:
		return FilterOpen
	case FilterOpen:
		return FilterResolved
	default:
		return FilterAll
	}
}

type SortField string

const (
	SortByModified SortField = "modified"
	SortByCreated  SortField = "created"
	SortByName     SortField = "name"
	SortByReporter SortField = "reporter"
)

var sortFields = []SortField{SortByModified, SortByCreated, SortByName, SortByReporter}

func ParseSortField(raw string) (SortField, error) {
	if raw == "" {
		return SortByModified, nil
	}
	for _, f := range sortFields {
		if string(f) == raw {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", raw)
}

func (f SortField) Next() SortField {
	for i, candidate := range sortFields {
		if candidate == f {
			return sortFields[(i+1)%len(sortFields)]
		}
	}
	return SortByModified
}

type SortSpec struct {
	Field    SortField
	Reversed bool
}

// Filters combine with AND across dimensions. An empty set means no
// restriction for that dimension.
type Filters struct {
	ByUsers     []string
	ByProcesses []int64
	ByState     FilterByState
	ByMyThreads bool
}

// MergeResult lists the thread ids touched by MergeIncremental.
type MergeResult struct {
	Added           []int64
	Updated         []int64
	CommentsChanged []int64
}

func (r MergeResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Updated) == 0 && len(r.CommentsChanged) == 0
}

// Store holds the canonical dataset. The thread list is kept in sort order.
type Store struct {
	threads       []comments.Thread
	commentsHash  map[int64]comments.Comment
	processesHash map[int64]comments.Process
	currentUser   string

	filters Filters
	sort    SortSpec

	loading       bool
	hasData       bool
	err           error
	totalThreads  int
	totalComments int

	idx *index
}

type index struct {
	threadPos        map[int64]int
	commentsByThread map[int64][]int64
	users            []string
	processIDs       []int64
}

func NewStore() *Store {
	return &Store{
		commentsHash:  make(map[int64]comments.Comment),
		processesHash: make(map[int64]comments.Process),
		filters:       Filters{ByState: FilterAll},
		sort:          SortSpec{Field: SortByModified},
	}
}

// IngestSnapshot replaces the dataset wholesale. Filters and sort survive.
func (s *Store) IngestSnapshot(snap comments.Snapshot) {
	s.threads = make([]comments.Thread, len(snap.Threads))
	copy(s.threads, snap.Threads)
	s.commentsHash = make(map[int64]comments.Comment, len(snap.CommentsHash))
	for id, c := range snap.CommentsHash {
		s.commentsHash[id] = c
	}
	s.processesHash = make(map[int64]comments.Process, len(snap.ProcessesHash))
	for id, p := range snap.ProcessesHash {
		s.processesHash[id] = p
	}
	for _, t := range s.threads {
		if t.Process != nil {
			s.processesHash[t.Process.ID] = *t.Process
		}
	}
	s.currentUser = snap.SharedParams.CurrentUser
	s.hasData = len(s.threads) > 0
	s.invalidate()
	SortThreads(s.threads, s.sort)
}

// MergeIncremental appends unknown threads and comments and overwrites known
// ones by id (last write wins). The batch is validated before anything is
// applied: a comment whose thread is neither stored nor in the batch rejects
// the whole merge.
func (s *Store) MergeIncremental(threads []comments.Thread, cs []comments.Comment) (MergeResult, error) {
	known := make(map[int64]struct{}, len(threads))
	for _, t := range threads {
		known[t.ID] = struct{}{}
	}
	for _, c := range cs {
		if _, ok := known[c.ThreadID]; ok {
			continue
		}
		if _, ok := s.Thread(c.ThreadID); !ok {
			return MergeResult{}, fmt.Errorf("merge comment %d: %w %d", c.ID, comments.ErrOrphanComment, c.ThreadID)
		}
	}

	var res MergeResult
	pos := s.ensureIndex().threadPos
	for _, t := range threads {
		if t.Process != nil {
			s.processesHash[t.Process.ID] = *t.Process
		}
		if i, ok := pos[t.ID]; ok {
			t.CommentIDs = s.threads[i].CommentIDs
			s.threads[i] = t
			res.Updated = append(res.Updated, t.ID)
			continue
		}
		t.CommentIDs = nil
		s.threads = append(s.threads, t)
		pos[t.ID] = len(s.threads) - 1
		res.Added = append(res.Added, t.ID)
	}

	changed := make(map[int64]struct{})
	touch := func(threadID int64) {
		if _, seen := changed[threadID]; !seen {
			changed[threadID] = struct{}{}
			res.CommentsChanged = append(res.CommentsChanged, threadID)
		}
	}
	for _, c := range cs {
		// A comment that moved still sits in its old thread's body.
		if prev, ok := s.commentsHash[c.ID]; ok && prev.ThreadID != c.ThreadID {
			touch(prev.ThreadID)
		}
		s.commentsHash[c.ID] = c
		touch(c.ThreadID)
	}

	if !res.Empty() {
		s.hasData = len(s.threads) > 0
		s.invalidate()
		SortThreads(s.threads, s.sort)
	}
	return res, nil
}

// Clear drops all data but keeps filters and sort.
func (s *Store) Clear() {
	s.threads = nil
	s.commentsHash = make(map[int64]comments.Comment)
	s.processesHash = make(map[int64]comments.Process)
	s.hasData = false
	s.invalidate()
}

func (s *Store) invalidate() {
	s.idx = nil
}

func (s *Store) ensureIndex() *index {
	if s.idx != nil {
		return s.idx
	}
	idx := &index{
		threadPos:        make(map[int64]int, len(s.threads)),
		commentsByThread: make(map[int64][]int64, len(s.threads)),
	}
	for i, t := range s.threads {
		idx.threadPos[t.ID] = i
	}
	for id, c := range s.commentsHash {
		if _, ok := idx.threadPos[c.ThreadID]; !ok {
			continue
		}
		idx.commentsByThread[c.ThreadID] = append(idx.commentsByThread[c.ThreadID], id)
	}
	for i, t := range s.threads {
		ids := idx.commentsByThread[t.ID]
		comments.SortCommentIDs(ids, s.commentsHash)
		s.threads[i].CommentIDs = ids
	}
	idx.users = comments.CollectUsers(s.threads, s.commentsHash)
	seen := make(map[int64]struct{})
	for _, t := range s.threads {
		if id, ok := t.ProcessID(); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				idx.processIDs = append(idx.processIDs, id)
			}
		}
	}
	sort.Slice(idx.processIDs, func(i, j int) bool { return idx.processIDs[i] < idx.processIDs[j] })
	s.idx = idx
	return idx
}

// Threads returns a copy of the thread list in sort order.
func (s *Store) Threads() []comments.Thread {
	s.ensureIndex()
	out := make([]comments.Thread, len(s.threads))
	copy(out, s.threads)
	return out
}

func (s *Store) ThreadIDs() []int64 {
	s.ensureIndex()
	ids := make([]int64, len(s.threads))
	for i, t := range s.threads {
		ids[i] = t.ID
	}
	return ids
}

func (s *Store) Thread(id int64) (comments.Thread, bool) {
	i, ok := s.ensureIndex().threadPos[id]
	if !ok {
		return comments.Thread{}, false
	}
	return s.threads[i], true
}

// Comments returns the thread's comments in position order.
func (s *Store) Comments(threadID int64) []comments.Comment {
	ids := s.ensureIndex().commentsByThread[threadID]
	out := make([]comments.Comment, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.commentsHash[id])
	}
	return out
}

func (s *Store) CommentCount() int {
	return len(s.commentsHash)
}

func (s *Store) Users() []string {
	return append([]string(nil), s.ensureIndex().users...)
}

func (s *Store) ProcessIDs() []int64 {
	return append([]int64(nil), s.ensureIndex().processIDs...)
}

func (s *Store) Process(id int64) (comments.Process, bool) {
	p, ok := s.processesHash[id]
	return p, ok
}

func (s *Store) CurrentUser() string { return s.currentUser }

func (s *Store) SetCurrentUser(user string) { s.currentUser = user }

// Filters returns a copy; mutating it does not affect the store.
func (s *Store) Filters() Filters {
	f := s.filters
	f.ByUsers = append([]string(nil), s.filters.ByUsers...)
	f.ByProcesses = append([]int64(nil), s.filters.ByProcesses...)
	return f
}

func (s *Store) SetFilterByUsers(users []string) {
	s.filters.ByUsers = append([]string(nil), users...)
}

func (s *Store) SetFilterByProcesses(ids []int64) {
	s.filters.ByProcesses = append([]int64(nil), ids...)
}

func (s *Store) SetFilterByState(f FilterByState) {
	s.filters.ByState = f
}

func (s *Store) SetFilterByMyThreads(on bool) {
	s.filters.ByMyThreads = on
}

func (s *Store) Sort() SortSpec { return s.sort }

func (s *Store) SetSortBy(field SortField) {
	s.sort.Field = field
}

func (s *Store) SetSortReversed(reversed bool) {
	s.sort.Reversed = reversed
}

// Resort re-applies the current sort spec to the thread list.
func (s *Store) Resort() {
	SortThreads(s.threads, s.sort)
	s.invalidate()
}

func (s *Store) Loading() bool { return s.loading }

func (s *Store) SetLoading(on bool) { s.loading = on }

func (s *Store) HasData() bool { return s.hasData }

func (s *Store) SetHasData(has bool) { s.hasData = has }

func (s *Store) Err() error { return s.err }

func (s *Store) IsError() bool { return s.err != nil }

func (s *Store) SetError(err error) { s.err = err }

// Totals returns the thread and comment counts reported by the data source.
func (s *Store) Totals() (int, int) { return s.totalThreads, s.totalComments }

func (s *Store) SetTotalCounts(threads, comments int) {
	s.totalThreads = threads
	s.totalComments = comments
}
