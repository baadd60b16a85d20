package view

import (
	"fmt"
	"strconv"

	"github.com/glabrego/threadbox/internal/tui/state"
	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

type RenderOptions struct {
	// Append adds nodes only for threads that have none yet and leaves the
	// existing nodes untouched.
	Append bool
}

// Stats counts the work done by the renderer.
type Stats struct {
	HeaderRenders int
	BodyRenders   int
	Evictions     int
	Relocations   int
}

// Renderer projects the store into the view tree. It owns only derived
// artifacts: rendered markup and the ready flags of comment bodies.
type Renderer struct {
	store    *state.Store
	tree     tuitree.ViewTree
	theme    tuitheme.Theme
	width    int
	handlers Handlers
	stats    Stats
}

func NewRenderer(store *state.Store, tree tuitree.ViewTree, th tuitheme.Theme) *Renderer {
	return &Renderer{store: store, tree: tree, theme: th, width: 80}
}

func (r *Renderer) Tree() tuitree.ViewTree { return r.tree }

func (r *Renderer) Stats() Stats { return r.stats }

func (r *Renderer) ResetStats() { r.stats = Stats{} }

// SetWidth changes the width comment bodies are wrapped to. It reports
// whether the width changed; rendered bodies are not refreshed.
func (r *Renderer) SetWidth(width int) bool {
	if width < 1 || width == r.width {
		return false
	}
	r.width = width
	return true
}

func (r *Renderer) context() MarkupContext {
	return MarkupContext{
		CurrentUser: r.store.CurrentUser(),
		// Bodies are indented under their thread.
		Width: max(1, r.width-4),
		Theme: r.theme,
	}
}

// RenderData builds the header and an empty comment body for every thread in
// store order. Without Append the whole list is replaced.
func (r *Renderer) RenderData(opts RenderOptions) error {
	list, err := r.tree.ThreadList()
	if err != nil {
		return fmt.Errorf("render data: %w", err)
	}
	var created []tuitree.Node
	if opts.Append {
		existing := make(map[int64]struct{}, len(list.Children()))
		for _, n := range list.Children() {
			if id, ok := tuitree.ThreadIDOf(n); ok {
				existing[id] = struct{}{}
			}
		}
		for _, id := range r.store.ThreadIDs() {
			if _, ok := existing[id]; ok {
				continue
			}
			node, err := r.newThreadNode(id)
			if err != nil {
				return err
			}
			created = append(created, node)
		}
		list.Append(created...)
	} else {
		ids := r.store.ThreadIDs()
		created = make([]tuitree.Node, 0, len(ids))
		for _, id := range ids {
			node, err := r.newThreadNode(id)
			if err != nil {
				return err
			}
			created = append(created, node)
		}
		list.ReplaceChildren(created...)
	}
	for _, node := range created {
		r.bindTree(node)
	}
	return nil
}

func (r *Renderer) newThreadNode(id int64) (tuitree.Node, error) {
	t, ok := r.store.Thread(id)
	if !ok {
		return nil, fmt.Errorf("render thread %d: unknown thread", id)
	}
	rawID := strconv.FormatInt(id, 10)

	node := r.tree.NewNode(tuitree.KindThread, tuitree.ThreadNodeID(id))
	node.SetAttr(tuitree.AttrThreadID, rawID)
	node.ToggleClass(tuitree.ClassHidden, !state.IsThreadVisible(r.store, id))

	header := r.tree.NewNode(tuitree.KindHeader, "thread-header-"+rawID)
	header.SetAttr(tuitree.AttrThreadID, rawID)
	header.SetAttr(tuitree.AttrAction, string(ActionExpandThread))
	for _, ta := range []TitleAction{TitleActionAddComment, TitleActionResolve} {
		action := r.tree.NewNode(tuitree.KindAction, "thread-"+rawID+"-"+string(ta))
		action.SetAttr(tuitree.AttrThreadID, rawID)
		action.SetAttr(tuitree.AttrAction, string(ActionTitleClick))
		action.SetAttr(tuitree.AttrTitleAction, string(ta))
		header.Append(action)
	}

	body := r.tree.NewNode(tuitree.KindComments, tuitree.CommentsNodeID(id))
	body.SetAttr(tuitree.AttrThreadID, rawID)

	node.Append(header, body)
	r.fillHeader(node, header, t.ID)
	return node, nil
}

// RenderThreadHeader re-renders the header of one thread from the store.
func (r *Renderer) RenderThreadHeader(id int64) error {
	node, err := r.tree.Thread(id)
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	header := tuitree.FindChild(node, func(n tuitree.Node) bool { return n.Kind() == tuitree.KindHeader })
	if header == nil {
		return fmt.Errorf("render header of thread %d: %w", id, tuitree.ErrMissingNode)
	}
	r.fillHeader(node, header, id)
	return nil
}

func (r *Renderer) fillHeader(node, header tuitree.Node, id int64) {
	t, _ := r.store.Thread(id)
	node.ToggleClass(tuitree.ClassResolved, t.Resolved)
	header.SetContent(RenderThreadHeader(t, len(t.CommentIDs), r.context()))
	for _, action := range header.Children() {
		if TitleAction(action.Attr(tuitree.AttrTitleAction)) != TitleActionResolve {
			continue
		}
		if t.Resolved {
			action.SetContent("reopen")
		} else {
			action.SetContent("resolve")
		}
	}
	r.stats.HeaderRenders++
}

// EnsureThreadCommentsReady renders the comment body unless it is ready.
func (r *Renderer) EnsureThreadCommentsReady(id int64) error {
	body, err := r.tree.Comments(id)
	if err != nil {
		return fmt.Errorf("ensure comments ready: %w", err)
	}
	if body.HasClass(tuitree.ClassReady) {
		return nil
	}
	r.renderBody(id, body)
	return nil
}

// UpdateThreadComments re-renders the comment body unconditionally.
func (r *Renderer) UpdateThreadComments(id int64) error {
	body, err := r.tree.Comments(id)
	if err != nil {
		return fmt.Errorf("update comments: %w", err)
	}
	r.renderBody(id, body)
	return nil
}

func (r *Renderer) renderBody(id int64, body tuitree.Node) {
	cs := r.store.Comments(id)
	body.SetContent(RenderThreadComments(cs, r.context()))
	body.ToggleClass(tuitree.ClassEmpty, len(cs) == 0)
	body.ToggleClass(tuitree.ClassReady, true)
	r.stats.BodyRenders++
}

// ClearAllHiddenThreadsComments evicts the body of every thread that is
// collapsed or not visible.
func (r *Renderer) ClearAllHiddenThreadsComments() error {
	list, err := r.tree.ThreadList()
	if err != nil {
		return fmt.Errorf("clear hidden comments: %w", err)
	}
	for _, node := range list.Children() {
		id, ok := tuitree.ThreadIDOf(node)
		if !ok {
			continue
		}
		if node.HasClass(tuitree.ClassExpanded) && state.IsThreadVisible(r.store, id) {
			continue
		}
		body, err := r.tree.Comments(id)
		if err != nil {
			return fmt.Errorf("clear hidden comments: %w", err)
		}
		if !body.HasClass(tuitree.ClassReady) {
			continue
		}
		body.SetContent("")
		body.ToggleClass(tuitree.ClassReady, false)
		body.ToggleClass(tuitree.ClassEmpty, false)
		r.stats.Evictions++
	}
	return nil
}

// ReorderRenderedThreads moves existing thread nodes into store order and
// returns how many nodes changed position. Nothing is mutated when the order
// already matches.
func (r *Renderer) ReorderRenderedThreads() (int, error) {
	list, err := r.tree.ThreadList()
	if err != nil {
		return 0, fmt.Errorf("reorder threads: %w", err)
	}
	current := list.Children()
	byID := make(map[int64]tuitree.Node, len(current))
	observed := make([]int64, 0, len(current))
	for _, node := range current {
		id, ok := tuitree.ThreadIDOf(node)
		if !ok {
			continue
		}
		byID[id] = node
		observed = append(observed, id)
	}

	desired := make([]int64, 0, len(observed))
	for _, id := range r.store.ThreadIDs() {
		if _, ok := byID[id]; ok {
			desired = append(desired, id)
		}
	}
	if sameOrder(observed, desired) {
		return 0, nil
	}

	ordered := make([]tuitree.Node, 0, len(current))
	placed := make(map[int64]bool, len(desired))
	for _, id := range desired {
		ordered = append(ordered, byID[id])
		placed[id] = true
	}
	// Nodes the store no longer knows keep their relative order at the end.
	for _, node := range current {
		if id, ok := tuitree.ThreadIDOf(node); !ok || !placed[id] {
			ordered = append(ordered, node)
		}
	}

	moved := 0
	for i, node := range ordered {
		if current[i] != node {
			moved++
		}
	}
	list.ReplaceChildren(ordered...)
	r.stats.Relocations += moved
	return moved, nil
}

func sameOrder(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpdateVisibleThreads toggles the hidden marker of every thread and fills
// the body of expanded threads that became visible.
func (r *Renderer) UpdateVisibleThreads() error {
	for _, id := range r.store.ThreadIDs() {
		node, err := r.tree.Thread(id)
		if err != nil {
			return fmt.Errorf("update visible threads: %w", err)
		}
		visible := state.IsThreadVisible(r.store, id)
		node.ToggleClass(tuitree.ClassHidden, !visible)
		if visible && node.HasClass(tuitree.ClassExpanded) {
			if err := r.EnsureThreadCommentsReady(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// RerenderAllVisibleComments evicts hidden bodies and re-renders the bodies of
// expanded, visible threads.
func (r *Renderer) RerenderAllVisibleComments() error {
	if err := r.ClearAllHiddenThreadsComments(); err != nil {
		return err
	}
	for _, id := range r.store.ThreadIDs() {
		node, err := r.tree.Thread(id)
		if err != nil {
			return fmt.Errorf("rerender comments: %w", err)
		}
		if node.HasClass(tuitree.ClassExpanded) && !node.HasClass(tuitree.ClassHidden) {
			if err := r.UpdateThreadComments(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetThreadExpanded toggles the expanded marker only; bodies are filled or
// evicted by the caller.
func (r *Renderer) SetThreadExpanded(id int64, expanded bool) error {
	node, err := r.tree.Thread(id)
	if err != nil {
		return fmt.Errorf("expand thread: %w", err)
	}
	node.ToggleClass(tuitree.ClassExpanded, expanded)
	return nil
}

func (r *Renderer) IsThreadExpanded(id int64) (bool, error) {
	node, err := r.tree.Thread(id)
	if err != nil {
		return false, fmt.Errorf("thread expanded: %w", err)
	}
	return node.HasClass(tuitree.ClassExpanded), nil
}

// SetThreadLoading marks a thread body as waiting for a fetch.
func (r *Renderer) SetThreadLoading(id int64, loading bool) error {
	body, err := r.tree.Comments(id)
	if err != nil {
		return fmt.Errorf("thread loading: %w", err)
	}
	body.ToggleClass(tuitree.ClassLoading, loading)
	return nil
}

// ClearRenderedData removes every thread node.
func (r *Renderer) ClearRenderedData() error {
	list, err := r.tree.ThreadList()
	if err != nil {
		return fmt.Errorf("clear rendered data: %w", err)
	}
	list.ReplaceChildren()
	return nil
}
