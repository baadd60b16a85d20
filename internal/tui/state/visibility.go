package state

import (
	"sort"
	"strings"

	"github.com/glabrego/threadbox/internal/comments"
)

// IsThreadVisible reports whether the thread passes every active filter.
// Unknown threads are not visible.
func IsThreadVisible(s *Store, threadID int64) bool {
	t, ok := s.Thread(threadID)
	if !ok {
		return false
	}
	return ThreadVisible(t, s.Comments(threadID), s.filters, s.currentUser)
}

// ThreadVisible is the visibility predicate over explicit inputs. Filtering
// is thread-level only: a passing thread shows all of its comments.
func ThreadVisible(t comments.Thread, cs []comments.Comment, f Filters, currentUser string) bool {
	return matchesState(t, f.ByState) &&
		matchesUsers(t, cs, f.ByUsers) &&
		matchesProcesses(t, f.ByProcesses) &&
		matchesMyThreads(t, cs, f.ByMyThreads, currentUser)
}

func matchesState(t comments.Thread, state FilterByState) bool {
	switch state {
	case FilterOpen:
		return !t.Resolved
	case FilterResolved:
		return t.Resolved
	default:
		return true
	}
}

func matchesUsers(t comments.Thread, cs []comments.Comment, users []string) bool {
	if len(users) == 0 {
		return true
	}
	wanted := make(map[string]struct{}, len(users))
	for _, u := range users {
		wanted[u] = struct{}{}
	}
	if _, ok := wanted[t.Reporter]; ok {
		return true
	}
	for _, c := range cs {
		if _, ok := wanted[c.User]; ok {
			return true
		}
	}
	return false
}

func matchesProcesses(t comments.Thread, ids []int64) bool {
	if len(ids) == 0 {
		return true
	}
	pid, ok := t.ProcessID()
	if !ok {
		return false
	}
	for _, id := range ids {
		if id == pid {
			return true
		}
	}
	return false
}

func matchesMyThreads(t comments.Thread, cs []comments.Comment, on bool, currentUser string) bool {
	if !on {
		return true
	}
	if t.Reporter == currentUser {
		return true
	}
	for _, c := range cs {
		if c.User == currentUser {
			return true
		}
	}
	return false
}

// SortThreads sorts in place by spec.Field ascending. Reversed negates the
// field comparison only; ties always fall back to ascending id.
func SortThreads(threads []comments.Thread, spec SortSpec) {
	sort.SliceStable(threads, func(i, j int) bool {
		c := compareField(threads[i], threads[j], spec.Field)
		if spec.Reversed {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return threads[i].ID < threads[j].ID
	})
}

func compareField(a, b comments.Thread, field SortField) int {
	switch field {
	case SortByCreated:
		return a.Created.Compare(b.Created)
	case SortByName:
		return compareText(a.Name, b.Name)
	case SortByReporter:
		return compareText(a.Reporter, b.Reporter)
	default:
		return a.Modified.Compare(b.Modified)
	}
}

func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// CompareComments orders comments by position. Thread sort direction never
// applies here.
func CompareComments(a, b comments.Comment) int {
	switch {
	case a.Position < b.Position:
		return -1
	case a.Position > b.Position:
		return 1
	default:
		return 0
	}
}
