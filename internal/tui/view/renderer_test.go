package view

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/tui/state"
	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

type fatalfer interface {
	Fatalf(format string, args ...any)
}

func day(d int) time.Time {
	return time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC).AddDate(0, 0, d)
}

func fixture(t fatalfer, threads []comments.Thread, cs []comments.Comment) (*state.Store, *tuitree.Tree, *Renderer) {
	snap, err := comments.NewSnapshot(threads, cs, "alice")
	if err != nil {
		t.Fatalf("NewSnapshot returned error: %v", err)
	}
	store := state.NewStore()
	store.IngestSnapshot(snap)
	vt := tuitree.New()
	r := NewRenderer(store, vt, tuitheme.Default())
	if err := r.RenderData(RenderOptions{}); err != nil {
		t.Fatalf("RenderData returned error: %v", err)
	}
	return store, vt, r
}

func sampleData() ([]comments.Thread, []comments.Comment) {
	threads := []comments.Thread{
		{ID: 1, Name: "Pump pressure", Reporter: "alice", Modified: day(0)},
		{ID: 2, Name: "Valve", Reporter: "bob", Modified: day(1), Resolved: true},
		{ID: 3, Name: "Mixer", Reporter: "carol", Modified: day(2), Process: &comments.Process{ID: 7, Name: "Steel"}},
	}
	cs := []comments.Comment{
		{ID: 11, ThreadID: 1, Position: 2, User: "bob", Content: "<p>second</p>"},
		{ID: 10, ThreadID: 1, Position: 1, User: "alice", Content: "<p>first</p>"},
		{ID: 12, ThreadID: 3, Position: 1, User: "carol", Content: "mixer note"},
	}
	return threads, cs
}

func renderedOrder(t fatalfer, vt *tuitree.Tree) []int64 {
	list, err := vt.ThreadList()
	if err != nil {
		t.Fatalf("ThreadList returned error: %v", err)
	}
	var ids []int64
	for _, n := range list.Children() {
		id, _ := tuitree.ThreadIDOf(n)
		ids = append(ids, id)
	}
	return ids
}

func body(t fatalfer, vt *tuitree.Tree, id int64) tuitree.Node {
	n, err := vt.Comments(id)
	if err != nil {
		t.Fatalf("Comments(%d) returned error: %v", id, err)
	}
	return n
}

func TestRenderData_NewThreadsStartCollapsedNotReady(t *testing.T) {
	threads, cs := sampleData()
	_, vt, _ := fixture(t, threads, cs)

	if diff := cmp.Diff([]int64{1, 2, 3}, renderedOrder(t, vt)); diff != "" {
		t.Fatalf("rendered order mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []int64{1, 2, 3} {
		n, _ := vt.Thread(id)
		if n.HasClass(tuitree.ClassExpanded) || body(t, vt, id).HasClass(tuitree.ClassReady) {
			t.Fatalf("thread %d: expected collapsed and not ready", id)
		}
	}
	two, _ := vt.Thread(2)
	if !two.HasClass(tuitree.ClassResolved) {
		t.Fatal("expected resolved class on thread 2")
	}
}

func TestRenderData_MissingListIsFatal(t *testing.T) {
	store := state.NewStore()
	r := NewRenderer(store, tuitree.NewBare(), tuitheme.Default())
	if err := r.RenderData(RenderOptions{}); !errors.Is(err, tuitree.ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
	if err := r.EnsureThreadCommentsReady(1); !errors.Is(err, tuitree.ErrMissingNode) {
		t.Fatalf("expected ErrMissingNode, got %v", err)
	}
}

func TestRenderData_AppendKeepsExistingNodes(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)
	one, _ := vt.Thread(1)
	one.ToggleClass(tuitree.ClassExpanded, true)
	if err := r.EnsureThreadCommentsReady(1); err != nil {
		t.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
	}

	if _, err := store.MergeIncremental([]comments.Thread{{ID: 4, Name: "New", Modified: day(-1)}}, nil); err != nil {
		t.Fatalf("MergeIncremental returned error: %v", err)
	}
	if err := r.RenderData(RenderOptions{Append: true}); err != nil {
		t.Fatalf("RenderData returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 4}, renderedOrder(t, vt)); diff != "" {
		t.Fatalf("append order mismatch (-want +got):\n%s", diff)
	}
	if again, _ := vt.Thread(1); again != one || !body(t, vt, 1).HasClass(tuitree.ClassReady) {
		t.Fatal("expected existing node and body to survive append")
	}

	moved, err := r.ReorderRenderedThreads()
	if err != nil {
		t.Fatalf("ReorderRenderedThreads returned error: %v", err)
	}
	if moved == 0 {
		t.Fatal("expected relocations")
	}
	if diff := cmp.Diff([]int64{4, 1, 2, 3}, renderedOrder(t, vt)); diff != "" {
		t.Fatalf("reordered mismatch (-want +got):\n%s", diff)
	}
	if again, _ := vt.Thread(1); again != one || !body(t, vt, 1).HasClass(tuitree.ClassReady) {
		t.Fatal("expected reorder to keep node identity and rendered body")
	}
}

func TestRenderData_AppendRendersOnlyNewThreads(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)
	r.ResetStats()

	if _, err := store.MergeIncremental([]comments.Thread{
		{ID: 4, Name: "New", Modified: day(-1)},
		{ID: 5, Name: "Newer", Modified: day(-2)},
		{ID: 2, Name: "Renamed", Modified: day(1)},
	}, nil); err != nil {
		t.Fatalf("MergeIncremental returned error: %v", err)
	}
	if err := r.RenderData(RenderOptions{Append: true}); err != nil {
		t.Fatalf("RenderData returned error: %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 5, 4}, renderedOrder(t, vt)); diff != "" {
		t.Fatalf("append order mismatch (-want +got):\n%s", diff)
	}
	if got := r.Stats().HeaderRenders; got != 2 {
		t.Fatalf("expected headers rendered for the 2 new threads only, got %d", got)
	}
}

func TestEnsureThreadCommentsReady_RendersOnce(t *testing.T) {
	threads, cs := sampleData()
	_, vt, r := fixture(t, threads, cs)
	r.ResetStats()

	for i := 0; i < 2; i++ {
		if err := r.EnsureThreadCommentsReady(1); err != nil {
			t.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
		}
	}
	if got := r.Stats().BodyRenders; got != 1 {
		t.Fatalf("expected one body render, got %d", got)
	}
	if err := r.UpdateThreadComments(1); err != nil {
		t.Fatalf("UpdateThreadComments returned error: %v", err)
	}
	if got := r.Stats().BodyRenders; got != 2 {
		t.Fatalf("expected forced re-render, got %d", got)
	}
	if !body(t, vt, 1).HasClass(tuitree.ClassReady) {
		t.Fatal("expected ready body")
	}
}

func TestScenario_CommentsInPositionOrder(t *testing.T) {
	threads, cs := sampleData()
	for _, reversed := range []bool{false, true} {
		store, vt, r := fixture(t, threads, cs)
		store.SetSortReversed(reversed)
		store.Resort()
		if err := r.RenderData(RenderOptions{}); err != nil {
			t.Fatalf("RenderData returned error: %v", err)
		}
		if err := r.EnsureThreadCommentsReady(1); err != nil {
			t.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
		}
		content := body(t, vt, 1).Content()
		first, second := strings.Index(content, "first"), strings.Index(content, "second")
		if first < 0 || second < 0 || first > second {
			t.Fatalf("reversed=%v: expected first before second, got %q", reversed, content)
		}
	}
}

func TestScenario_EvictionRoundTrip(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)

	if err := r.SetThreadExpanded(1, true); err != nil {
		t.Fatalf("SetThreadExpanded returned error: %v", err)
	}
	if err := r.EnsureThreadCommentsReady(1); err != nil {
		t.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
	}
	original := body(t, vt, 1).Content()
	if original == "" {
		t.Fatal("expected rendered body")
	}

	store.SetFilterByState(state.FilterResolved)
	if err := r.UpdateVisibleThreads(); err != nil {
		t.Fatalf("UpdateVisibleThreads returned error: %v", err)
	}
	if err := r.ClearAllHiddenThreadsComments(); err != nil {
		t.Fatalf("ClearAllHiddenThreadsComments returned error: %v", err)
	}
	b := body(t, vt, 1)
	if b.Content() != "" || b.HasClass(tuitree.ClassReady) {
		t.Fatalf("expected evicted body, got %q ready=%v", b.Content(), b.HasClass(tuitree.ClassReady))
	}

	store.SetFilterByState(state.FilterAll)
	if err := r.UpdateVisibleThreads(); err != nil {
		t.Fatalf("UpdateVisibleThreads returned error: %v", err)
	}
	if got := body(t, vt, 1).Content(); got != original {
		t.Fatalf("expected identical body after round trip:\n%q\n%q", original, got)
	}
}

func TestClearAllHiddenThreadsComments_KeepsExpandedVisible(t *testing.T) {
	threads, cs := sampleData()
	_, vt, r := fixture(t, threads, cs)
	_ = r.SetThreadExpanded(1, true)
	_ = r.EnsureThreadCommentsReady(1)
	_ = r.EnsureThreadCommentsReady(3)

	if err := r.ClearAllHiddenThreadsComments(); err != nil {
		t.Fatalf("ClearAllHiddenThreadsComments returned error: %v", err)
	}
	if !body(t, vt, 1).HasClass(tuitree.ClassReady) {
		t.Fatal("expected expanded visible body to stay ready")
	}
	if body(t, vt, 3).HasClass(tuitree.ClassReady) {
		t.Fatal("expected collapsed body to be evicted")
	}
}

func TestReorderRenderedThreads_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "threads")
		threads := make([]comments.Thread, 0, n)
		for i := 0; i < n; i++ {
			threads = append(threads, comments.Thread{
				ID:       int64(i + 1),
				Modified: day(rapid.IntRange(0, 3).Draw(rt, "modified")),
				Name:     rapid.SampledFrom([]string{"a", "b", "c"}).Draw(rt, "name"),
			})
		}
		store, vt, r := fixture(rt, threads, nil)
		store.SetSortBy(rapid.SampledFrom([]state.SortField{state.SortByModified, state.SortByName}).Draw(rt, "field"))
		store.SetSortReversed(rapid.Bool().Draw(rt, "reversed"))
		store.Resort()

		if _, err := r.ReorderRenderedThreads(); err != nil {
			rt.Fatalf("ReorderRenderedThreads returned error: %v", err)
		}
		first := renderedOrder(rt, vt)
		if !cmp.Equal(first, store.ThreadIDs()) {
			rt.Fatalf("rendered %v, store %v", first, store.ThreadIDs())
		}
		moved, err := r.ReorderRenderedThreads()
		if err != nil {
			rt.Fatalf("ReorderRenderedThreads returned error: %v", err)
		}
		if moved != 0 || !cmp.Equal(first, renderedOrder(rt, vt)) {
			rt.Fatalf("second reorder moved %d nodes", moved)
		}
	})
}

func TestEvictionRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "comments")
		cs := make([]comments.Comment, 0, n)
		for i := 0; i < n; i++ {
			cs = append(cs, comments.Comment{
				ID:       int64(100 + i),
				ThreadID: 1,
				Position: rapid.IntRange(0, 3).Draw(rt, "position"),
				User:     rapid.SampledFrom([]string{"alice", "bob"}).Draw(rt, "user"),
				Content:  rapid.SampledFrom([]string{"plain", "<p>para</p>", "<ul><li>x</li></ul>", "<b>bold</b> text"}).Draw(rt, "content"),
				Created:  day(i),
			})
		}
		_, vt, r := fixture(rt, []comments.Thread{{ID: 1, Name: "t"}}, cs)
		_ = r.SetThreadExpanded(1, true)
		if err := r.EnsureThreadCommentsReady(1); err != nil {
			rt.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
		}
		before := body(rt, vt, 1).Content()

		_ = r.SetThreadExpanded(1, false)
		if err := r.ClearAllHiddenThreadsComments(); err != nil {
			rt.Fatalf("ClearAllHiddenThreadsComments returned error: %v", err)
		}
		_ = r.SetThreadExpanded(1, true)
		if err := r.EnsureThreadCommentsReady(1); err != nil {
			rt.Fatalf("EnsureThreadCommentsReady returned error: %v", err)
		}
		if after := body(rt, vt, 1).Content(); after != before {
			rt.Fatalf("body changed across eviction:\n%q\n%q", before, after)
		}
	})
}

func TestRenderDerivedFilters_MarksSelectionAndMe(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)
	store.SetFilterByUsers([]string{"bob"})
	store.SetFilterByProcesses([]int64{7})
	if err := r.RenderDerivedFilters(); err != nil {
		t.Fatalf("RenderDerivedFilters returned error: %v", err)
	}

	users, _ := vt.Control(tuitree.ControlFilterByUsers)
	var labels []string
	for _, opt := range users.Children() {
		labels = append(labels, opt.Content())
	}
	if diff := cmp.Diff([]string{"alice (me)", "bob", "carol"}, labels); diff != "" {
		t.Fatalf("user options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bob"}, SelectedOptions(users)); diff != "" {
		t.Fatalf("selected users mismatch (-want +got):\n%s", diff)
	}
	processes, _ := vt.Control(tuitree.ControlFilterByProcesses)
	if got := ControlSummary(processes); got != "Steel (#7)" {
		t.Fatalf("unexpected process summary %q", got)
	}
}

func TestRegionRenderers(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)

	store.SetError(errors.New("fetch failed"))
	store.SetTotalCounts(3, 3)
	store.SetLoading(true)
	for _, fn := range []func() error{r.RenderError, r.RenderEmpty, r.RenderTotals, r.RenderLoading, r.RenderFilterControls} {
		if err := fn(); err != nil {
			t.Fatalf("region render returned error: %v", err)
		}
	}
	errCtl, _ := vt.Control(tuitree.ControlError)
	if errCtl.Content() != "fetch failed" || errCtl.HasClass(tuitree.ClassHidden) {
		t.Fatalf("unexpected error region %q", errCtl.Content())
	}
	empty, _ := vt.Control(tuitree.ControlEmpty)
	if !empty.HasClass(tuitree.ClassHidden) {
		t.Fatal("expected empty region hidden when data is present")
	}
	totals, _ := vt.Control(tuitree.ControlTotals)
	if totals.Content() != "3 threads · 3 comments" {
		t.Fatalf("unexpected totals %q", totals.Content())
	}
	list, _ := vt.ThreadList()
	if !list.HasClass(tuitree.ClassLoading) {
		t.Fatal("expected loading marker")
	}

	store.SetError(nil)
	_ = r.RenderError()
	if !errCtl.HasClass(tuitree.ClassHidden) || errCtl.Content() != "" {
		t.Fatal("expected error region cleared")
	}
}

func TestDispatch_DelegatesToBoundAncestor(t *testing.T) {
	threads, cs := sampleData()
	_, vt, r := fixture(t, threads, cs)

	var got []Event
	handler := func(ev Event) error {
		got = append(got, ev)
		return nil
	}
	if err := r.Start(Handlers{ActionExpandThread: handler, ActionTitleClick: handler}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	header, err := r.ThreadAction(2, ActionExpandThread, "")
	if err != nil {
		t.Fatalf("ThreadAction returned error: %v", err)
	}
	if ok, err := r.Dispatch(header); !ok || err != nil {
		t.Fatalf("expected header dispatch, got %v %v", ok, err)
	}
	resolve, _ := r.ThreadAction(2, ActionTitleClick, TitleActionResolve)
	if ok, _ := r.Dispatch(resolve); !ok {
		t.Fatal("expected title action dispatch")
	}
	bodyNode := body(t, vt, 2)
	if ok, _ := r.Dispatch(bodyNode); ok {
		t.Fatal("expected no handler for the comment body")
	}

	want := []Event{
		{Action: ActionExpandThread, ThreadID: 2, Target: header},
		{Action: ActionTitleClick, ThreadID: 2, TitleAction: TitleActionResolve, Target: resolve},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].Action != want[i].Action || got[i].ThreadID != want[i].ThreadID || got[i].TitleAction != want[i].TitleAction || got[i].Target != want[i].Target {
			t.Fatalf("event %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestDispatch_OnlyBoundNodes(t *testing.T) {
	threads, cs := sampleData()
	_, _, r := fixture(t, threads, cs)
	called := false
	_ = r.Start(Handlers{ActionTitleClick: func(Event) error { called = true; return nil }})

	header, _ := r.ThreadAction(1, ActionExpandThread, "")
	if ok, _ := r.Dispatch(header); ok || called {
		t.Fatal("expected unbound action to be ignored")
	}
	add, _ := r.ThreadAction(1, ActionTitleClick, TitleActionAddComment)
	if ok, _ := r.Dispatch(add); !ok || !called {
		t.Fatal("expected bound title action to run")
	}
}

func TestRenderThreadHeader_ReflectsResolvedFlag(t *testing.T) {
	threads, cs := sampleData()
	store, vt, r := fixture(t, threads, cs)
	if _, err := store.MergeIncremental([]comments.Thread{{ID: 1, Name: "Pump pressure", Reporter: "alice", Modified: day(0), Resolved: true}}, nil); err != nil {
		t.Fatalf("MergeIncremental returned error: %v", err)
	}
	if err := r.RenderThreadHeader(1); err != nil {
		t.Fatalf("RenderThreadHeader returned error: %v", err)
	}
	node, _ := vt.Thread(1)
	if !node.HasClass(tuitree.ClassResolved) {
		t.Fatal("expected resolved class")
	}
	resolve, _ := r.ThreadAction(1, ActionTitleClick, TitleActionResolve)
	if resolve.Content() != "reopen" {
		t.Fatalf("expected reopen label, got %q", resolve.Content())
	}
}
