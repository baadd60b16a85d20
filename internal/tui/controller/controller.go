// Package controller is the only mutator of the thread store. Every setter
// brings the view up to date unless the caller batches with WithOmitUpdate.
package controller

import (
	"fmt"

	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/debug"
	"github.com/glabrego/threadbox/internal/tui/state"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
	"github.com/glabrego/threadbox/internal/tui/view"
)

type options struct {
	omitUpdate bool
}

type Option func(*options)

// WithOmitUpdate mutates the store without touching the view. Used to batch
// several changes before a single render.
func WithOmitUpdate() Option {
	return func(o *options) { o.omitUpdate = true }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type Controller struct {
	store    *state.Store
	renderer *view.Renderer
}

func New(store *state.Store, renderer *view.Renderer) *Controller {
	return &Controller{store: store, renderer: renderer}
}

// Store exposes the store for reads. Writes go through the controller.
func (c *Controller) Store() *state.Store { return c.store }

func (c *Controller) Renderer() *view.Renderer { return c.renderer }

func (c *Controller) SetFilterByUsers(users []string, opts ...Option) error {
	c.store.SetFilterByUsers(users)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.refreshFilter(tuitree.ControlFilterByUsers)
}

func (c *Controller) SetFilterByProcesses(ids []int64, opts ...Option) error {
	c.store.SetFilterByProcesses(ids)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.refreshFilter(tuitree.ControlFilterByProcesses)
}

func (c *Controller) SetFilterByState(f state.FilterByState, opts ...Option) error {
	c.store.SetFilterByState(f)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.refreshFilter(tuitree.ControlFilterByState)
}

// SetFilterByMyThreads also toggles the active marker of its control.
func (c *Controller) SetFilterByMyThreads(on bool, opts ...Option) error {
	c.store.SetFilterByMyThreads(on)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.refreshFilter(tuitree.ControlFilterByMyThreads)
}

// refreshFilter toggles visibility only: no reordering, no content renders
// besides bodies of expanded threads that became visible.
func (c *Controller) refreshFilter(control string) error {
	defer debug.LogEnterExit("filter " + control)()
	if err := c.renderer.UpdateVisibleThreads(); err != nil {
		return err
	}
	return c.renderer.RenderControl(control)
}

// SetSortBy re-sorts the store and re-renders the whole list. Setting the
// current value is a no-op.
func (c *Controller) SetSortBy(field state.SortField, opts ...Option) error {
	if c.store.Sort().Field == field {
		return nil
	}
	c.store.SetSortBy(field)
	c.store.Resort()
	if collect(opts).omitUpdate {
		return nil
	}
	return c.rerenderSorted(tuitree.ControlSortBy)
}

func (c *Controller) SetSortReversed(reversed bool, opts ...Option) error {
	if c.store.Sort().Reversed == reversed {
		return nil
	}
	c.store.SetSortReversed(reversed)
	c.store.Resort()
	if collect(opts).omitUpdate {
		return nil
	}
	return c.rerenderSorted(tuitree.ControlSortReversed)
}

func (c *Controller) rerenderSorted(control string) error {
	defer debug.LogEnterExit("sort " + control)()
	if err := c.renderer.RenderData(view.RenderOptions{}); err != nil {
		return err
	}
	return c.renderer.RenderControl(control)
}

func (c *Controller) SetLoading(on bool, opts ...Option) error {
	c.store.SetLoading(on)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.renderer.RenderLoading()
}

// SetError stores a data error; nil clears it.
func (c *Controller) SetError(err error, opts ...Option) error {
	c.store.SetError(err)
	if err != nil {
		debug.Log("data error: %v", err)
	}
	if collect(opts).omitUpdate {
		return nil
	}
	return c.renderer.RenderError()
}

// SetEmpty records whether the data source returned nothing.
func (c *Controller) SetEmpty(empty bool, opts ...Option) error {
	c.store.SetHasData(!empty)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.renderer.RenderEmpty()
}

func (c *Controller) SetTotalCounts(threads, cs int, opts ...Option) error {
	c.store.SetTotalCounts(threads, cs)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.renderer.RenderTotals()
}

// Render brings every region in line with the store: the full list, derived
// filters, scalar controls, and the error, empty, totals and loading regions.
func (c *Controller) Render() error {
	steps := []func() error{
		func() error { return c.renderer.RenderData(view.RenderOptions{}) },
		c.renderer.RenderDerivedFilters,
		c.renderer.RenderFilterControls,
		c.renderer.RenderError,
		c.renderer.RenderEmpty,
		c.renderer.RenderTotals,
		c.renderer.RenderLoading,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Ingest replaces the dataset with a full snapshot and re-renders the view.
func (c *Controller) Ingest(snap comments.Snapshot, opts ...Option) error {
	defer debug.LogEnterExit("ingest")()
	c.store.IngestSnapshot(snap)
	c.store.SetTotalCounts(len(snap.Threads), len(snap.CommentsHash))
	c.store.SetError(nil)
	if collect(opts).omitUpdate {
		return nil
	}
	return c.Render()
}

// Merge applies an incremental batch and updates only what it touched: new
// threads are appended and reconciled into place, changed headers are
// re-rendered, and bodies are re-rendered only when they are ready.
func (c *Controller) Merge(threads []comments.Thread, cs []comments.Comment, opts ...Option) (state.MergeResult, error) {
	defer debug.LogEnterExit("merge")()
	res, err := c.store.MergeIncremental(threads, cs)
	if err != nil {
		return res, fmt.Errorf("merge: %w", err)
	}
	if res.Empty() {
		return res, nil
	}
	c.store.SetTotalCounts(len(c.store.ThreadIDs()), c.store.CommentCount())
	if collect(opts).omitUpdate {
		return res, nil
	}

	r := c.renderer
	if len(res.Added) > 0 {
		if err := r.RenderData(view.RenderOptions{Append: true}); err != nil {
			return res, err
		}
	}
	if _, err := r.ReorderRenderedThreads(); err != nil {
		return res, err
	}
	for _, id := range touched(res) {
		if err := r.RenderThreadHeader(id); err != nil {
			return res, err
		}
	}
	for _, id := range res.CommentsChanged {
		body, err := r.Tree().Comments(id)
		if err != nil {
			return res, fmt.Errorf("merge comments: %w", err)
		}
		if !body.HasClass(tuitree.ClassReady) {
			continue
		}
		if err := r.UpdateThreadComments(id); err != nil {
			return res, err
		}
	}
	for _, step := range []func() error{
		r.UpdateVisibleThreads,
		r.RenderDerivedFilters,
		r.RenderEmpty,
		r.RenderTotals,
	} {
		if err := step(); err != nil {
			return res, err
		}
	}
	return res, nil
}

func touched(res state.MergeResult) []int64 {
	seen := make(map[int64]bool, len(res.Updated)+len(res.CommentsChanged))
	var out []int64
	for _, ids := range [][]int64{res.Updated, res.CommentsChanged} {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// ToggleThread expands a collapsed thread or collapses an expanded one and
// reports the new state.
func (c *Controller) ToggleThread(id int64) (bool, error) {
	expanded, err := c.renderer.IsThreadExpanded(id)
	if err != nil {
		return false, err
	}
	if expanded {
		return false, c.CollapseThread(id)
	}
	return true, c.ExpandThread(id)
}

// ExpandThread marks the thread expanded and fills its body if visible.
func (c *Controller) ExpandThread(id int64) error {
	if err := c.renderer.SetThreadExpanded(id, true); err != nil {
		return err
	}
	if !state.IsThreadVisible(c.store, id) {
		return nil
	}
	return c.renderer.EnsureThreadCommentsReady(id)
}

// CollapseThread marks the thread collapsed and evicts hidden bodies.
func (c *Controller) CollapseThread(id int64) error {
	if err := c.renderer.SetThreadExpanded(id, false); err != nil {
		return err
	}
	return c.renderer.ClearAllHiddenThreadsComments()
}

// ClearData empties the store and the rendered list.
func (c *Controller) ClearData() error {
	c.store.Clear()
	c.store.SetTotalCounts(0, 0)
	if err := c.renderer.ClearRenderedData(); err != nil {
		return err
	}
	for _, step := range []func() error{
		c.renderer.RenderDerivedFilters,
		c.renderer.RenderEmpty,
		c.renderer.RenderTotals,
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
