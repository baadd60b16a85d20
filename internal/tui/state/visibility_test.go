package state

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/glabrego/threadbox/internal/comments"
)

var users = []string{"alice", "bob", "carol", "dave"}

func day(d int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func genThreads(t *rapid.T) ([]comments.Thread, []comments.Comment) {
	n := rapid.IntRange(0, 12).Draw(t, "threads")
	threads := make([]comments.Thread, 0, n)
	var cs []comments.Comment
	nextComment := int64(100)
	for i := 0; i < n; i++ {
		th := comments.Thread{
			ID:       int64(i + 1),
			Name:     rapid.SampledFrom([]string{"alpha", "Beta", "gamma", "beta"}).Draw(t, "name"),
			Created:  day(rapid.IntRange(0, 4).Draw(t, "created")),
			Modified: day(rapid.IntRange(0, 4).Draw(t, "modified")),
			Reporter: rapid.SampledFrom(users).Draw(t, "reporter"),
			Resolved: rapid.Bool().Draw(t, "resolved"),
		}
		if rapid.Bool().Draw(t, "hasProcess") {
			th.Process = &comments.Process{ID: int64(rapid.IntRange(1, 3).Draw(t, "process"))}
		}
		threads = append(threads, th)
		for j := rapid.IntRange(0, 3).Draw(t, "comments"); j > 0; j-- {
			cs = append(cs, comments.Comment{
				ID:       nextComment,
				ThreadID: th.ID,
				Position: rapid.IntRange(0, 5).Draw(t, "position"),
				User:     rapid.SampledFrom(users).Draw(t, "author"),
			})
			nextComment++
		}
	}
	return threads, cs
}

func genFilters(t *rapid.T) Filters {
	return Filters{
		ByUsers:     rapid.SliceOfNDistinct(rapid.SampledFrom(users), 0, 2, rapid.ID[string]).Draw(t, "byUsers"),
		ByProcesses: rapid.SliceOfNDistinct(rapid.Int64Range(1, 3), 0, 2, rapid.ID[int64]).Draw(t, "byProcesses"),
		ByState:     rapid.SampledFrom([]FilterByState{FilterAll, FilterOpen, FilterResolved}).Draw(t, "byState"),
		ByMyThreads: rapid.Bool().Draw(t, "byMyThreads"),
	}
}

func storeWith(t fatalfer, threads []comments.Thread, cs []comments.Comment, user string) *Store {
	snap, err := comments.NewSnapshot(threads, cs, user)
	if err != nil {
		t.Fatalf("NewSnapshot returned error: %v", err)
	}
	s := NewStore()
	s.IngestSnapshot(snap)
	return s
}

type fatalfer interface {
	Fatalf(format string, args ...any)
}

func TestIsThreadVisible_Pure(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threads, cs := genThreads(rt)
		f := genFilters(rt)
		s := storeWith(rt, threads, cs, "alice")
		s.SetFilterByUsers(f.ByUsers)
		s.SetFilterByProcesses(f.ByProcesses)
		s.SetFilterByState(f.ByState)
		s.SetFilterByMyThreads(f.ByMyThreads)

		for _, th := range threads {
			first := IsThreadVisible(s, th.ID)
			if again := IsThreadVisible(s, th.ID); again != first {
				rt.Fatalf("thread %d: visibility changed between calls", th.ID)
			}
			if direct := ThreadVisible(th, s.Comments(th.ID), f, "alice"); direct != first {
				rt.Fatalf("thread %d: store visibility %v differs from predicate %v", th.ID, first, direct)
			}
		}
	})
}

func TestIsThreadVisible_EmptyFiltersShowEverything(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threads, cs := genThreads(rt)
		s := storeWith(rt, threads, cs, "alice")
		for _, th := range threads {
			if !IsThreadVisible(s, th.ID) {
				rt.Fatalf("thread %d hidden without filters", th.ID)
			}
		}
	})
}

func TestSortThreads_ReversalKeepsTieOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threads, _ := genThreads(rt)
		field := rapid.SampledFrom(sortFields).Draw(rt, "field")

		asc := append([]comments.Thread(nil), threads...)
		SortThreads(asc, SortSpec{Field: field})
		desc := append([]comments.Thread(nil), threads...)
		SortThreads(desc, SortSpec{Field: field, Reversed: true})

		for i := 1; i < len(asc); i++ {
			c := compareField(asc[i-1], asc[i], field)
			if c > 0 || (c == 0 && asc[i-1].ID > asc[i].ID) {
				rt.Fatalf("ascending order broken at %d", i)
			}
		}
		for i := 1; i < len(desc); i++ {
			c := compareField(desc[i-1], desc[i], field)
			if c < 0 || (c == 0 && desc[i-1].ID > desc[i].ID) {
				rt.Fatalf("descending order broken at %d", i)
			}
		}
		if got, want := groupKeys(desc, field), reverseGroups(groupKeys(asc, field)); !cmp.Equal(got, want) {
			rt.Fatalf("primary order not reversed (-want +got):\n%s", cmp.Diff(want, got))
		}
	})
}

// groupKeys returns the ids of each run of equal primary fields.
func groupKeys(threads []comments.Thread, field SortField) [][]int64 {
	var groups [][]int64
	for i, th := range threads {
		if i == 0 || compareField(threads[i-1], th, field) != 0 {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], th.ID)
	}
	return groups
}

func reverseGroups(groups [][]int64) [][]int64 {
	out := make([][]int64, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		out = append(out, groups[i])
	}
	return out
}

func TestScenario_FilterByState(t *testing.T) {
	s := storeWith(t, []comments.Thread{
		{ID: 1, Modified: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Modified: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Resolved: true},
	}, nil, "alice")

	cases := []struct {
		state FilterByState
		want  []bool
	}{
		{FilterOpen, []bool{true, false}},
		{FilterResolved, []bool{false, true}},
		{FilterAll, []bool{true, true}},
	}
	for _, tc := range cases {
		s.SetFilterByState(tc.state)
		got := []bool{IsThreadVisible(s, 1), IsThreadVisible(s, 2)}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("state %s visibility mismatch (-want +got):\n%s", tc.state, diff)
		}
	}
}

func TestScenario_SortReversed(t *testing.T) {
	s := storeWith(t, []comments.Thread{
		{ID: 3, Modified: day(3)},
		{ID: 1, Modified: day(1)},
		{ID: 2, Modified: day(2)},
	}, nil, "alice")
	if diff := cmp.Diff([]int64{1, 2, 3}, s.ThreadIDs()); diff != "" {
		t.Fatalf("ascending order mismatch (-want +got):\n%s", diff)
	}
	s.SetSortReversed(true)
	s.Resort()
	if diff := cmp.Diff([]int64{3, 2, 1}, s.ThreadIDs()); diff != "" {
		t.Fatalf("reversed order mismatch (-want +got):\n%s", diff)
	}
	s.SetSortReversed(true)
	s.Resort()
	if diff := cmp.Diff([]int64{3, 2, 1}, s.ThreadIDs()); diff != "" {
		t.Fatalf("second reverse changed order (-want +got):\n%s", diff)
	}
}

func TestVisibility_UserAndMyThreadFilters(t *testing.T) {
	threads := []comments.Thread{
		{ID: 1, Reporter: "alice"},
		{ID: 2, Reporter: "bob"},
		{ID: 3, Reporter: "carol", Process: &comments.Process{ID: 9}},
	}
	cs := []comments.Comment{{ID: 10, ThreadID: 2, User: "alice"}}
	s := storeWith(t, threads, cs, "carol")

	s.SetFilterByUsers([]string{"alice"})
	if !IsThreadVisible(s, 1) || !IsThreadVisible(s, 2) || IsThreadVisible(s, 3) {
		t.Fatal("expected reporter or author match for alice")
	}
	s.SetFilterByUsers(nil)
	s.SetFilterByMyThreads(true)
	if IsThreadVisible(s, 1) || !IsThreadVisible(s, 3) {
		t.Fatal("expected only carol's thread with my-threads")
	}
	s.SetFilterByMyThreads(false)
	s.SetFilterByProcesses([]int64{9})
	if IsThreadVisible(s, 1) || !IsThreadVisible(s, 3) {
		t.Fatal("expected process filter to keep thread 3 only")
	}
	if IsThreadVisible(s, 99) {
		t.Fatal("expected unknown thread to be hidden")
	}
}

func TestCompareComments_PositionOnly(t *testing.T) {
	a := comments.Comment{ID: 2, Position: 1}
	b := comments.Comment{ID: 1, Position: 2}
	if CompareComments(a, b) >= 0 || CompareComments(b, a) <= 0 {
		t.Fatal("expected position ordering")
	}
	if CompareComments(a, comments.Comment{ID: 9, Position: 1}) != 0 {
		t.Fatal("expected equal positions to compare equal")
	}
}
