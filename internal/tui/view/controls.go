package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glabrego/threadbox/internal/comments"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

// RenderDerivedFilters projects the author set and the process set into
// filter options. Options of the active filter are selected.
func (r *Renderer) RenderDerivedFilters() error {
	ids := r.store.ProcessIDs()
	processes := make([]comments.Process, 0, len(ids))
	for _, id := range ids {
		p, _ := r.store.Process(id)
		p.ID = id
		processes = append(processes, p)
	}
	userOpts, processOpts := RenderFilterOptions(r.store.Users(), processes, r.store.Filters(), r.store.CurrentUser())

	for _, item := range []struct {
		control string
		options []FilterOption
	}{
		{tuitree.ControlFilterByUsers, userOpts},
		{tuitree.ControlFilterByProcesses, processOpts},
	} {
		ctl, err := r.tree.Control(item.control)
		if err != nil {
			return fmt.Errorf("render %s: %w", item.control, err)
		}
		nodes := make([]tuitree.Node, 0, len(item.options))
		for _, o := range item.options {
			opt := r.tree.NewNode(tuitree.KindOption, item.control+"-option-"+o.Value)
			opt.SetAttr(tuitree.AttrValue, o.Value)
			opt.SetContent(o.Label)
			opt.ToggleClass(tuitree.ClassSelected, o.Selected)
			nodes = append(nodes, opt)
		}
		ctl.ReplaceChildren(nodes...)
	}
	return nil
}

// RenderFilterControls refreshes the scalar filter and sort controls.
func (r *Renderer) RenderFilterControls() error {
	for _, name := range []string{
		tuitree.ControlFilterByState,
		tuitree.ControlFilterByMyThreads,
		tuitree.ControlSortBy,
		tuitree.ControlSortReversed,
	} {
		if err := r.RenderControl(name); err != nil {
			return err
		}
	}
	return nil
}

// RenderControl refreshes one named scalar control from the store.
func (r *Renderer) RenderControl(name string) error {
	ctl, err := r.tree.Control(name)
	if err != nil {
		return fmt.Errorf("render control: %w", err)
	}
	filters := r.store.Filters()
	sort := r.store.Sort()
	switch name {
	case tuitree.ControlFilterByState:
		ctl.SetAttr(tuitree.AttrValue, string(filters.ByState))
		ctl.SetContent(string(filters.ByState))
	case tuitree.ControlFilterByMyThreads:
		ctl.ToggleClass(tuitree.ClassActive, filters.ByMyThreads)
		ctl.SetAttr(tuitree.AttrValue, strconv.FormatBool(filters.ByMyThreads))
		ctl.SetContent("mine")
	case tuitree.ControlSortBy:
		ctl.SetAttr(tuitree.AttrValue, string(sort.Field))
		ctl.SetContent(string(sort.Field))
	case tuitree.ControlSortReversed:
		ctl.ToggleClass(tuitree.ClassActive, sort.Reversed)
		ctl.SetAttr(tuitree.AttrValue, strconv.FormatBool(sort.Reversed))
		if sort.Reversed {
			ctl.SetContent("desc")
		} else {
			ctl.SetContent("asc")
		}
	case tuitree.ControlFilterByUsers, tuitree.ControlFilterByProcesses:
		return r.RenderDerivedFilters()
	}
	return nil
}

// RenderError shows the store's error, or hides the region when there is none.
func (r *Renderer) RenderError() error {
	ctl, err := r.tree.Control(tuitree.ControlError)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	if !r.store.IsError() {
		ctl.SetContent("")
		ctl.ToggleClass(tuitree.ClassHidden, true)
		return nil
	}
	ctl.SetContent(r.store.Err().Error())
	ctl.ToggleClass(tuitree.ClassHidden, false)
	return nil
}

// RenderEmpty shows the empty-state region when the store has no data.
func (r *Renderer) RenderEmpty() error {
	ctl, err := r.tree.Control(tuitree.ControlEmpty)
	if err != nil {
		return fmt.Errorf("render empty: %w", err)
	}
	empty := !r.store.HasData()
	ctl.ToggleClass(tuitree.ClassHidden, !empty)
	if empty {
		ctl.SetContent("No threads")
	} else {
		ctl.SetContent("")
	}
	return nil
}

func (r *Renderer) RenderTotals() error {
	ctl, err := r.tree.Control(tuitree.ControlTotals)
	if err != nil {
		return fmt.Errorf("render totals: %w", err)
	}
	threads, cs := r.store.Totals()
	ctl.SetAttr(tuitree.AttrValue, strconv.Itoa(threads)+"/"+strconv.Itoa(cs))
	ctl.SetContent(TotalsLabel(threads, cs))
	return nil
}

// RenderLoading marks the thread list while a load is in flight.
func (r *Renderer) RenderLoading() error {
	list, err := r.tree.ThreadList()
	if err != nil {
		return fmt.Errorf("render loading: %w", err)
	}
	list.ToggleClass(tuitree.ClassLoading, r.store.Loading())
	return nil
}

// SelectedOptions returns the values of the selected options of a control.
func SelectedOptions(ctl tuitree.Node) []string {
	var out []string
	for _, opt := range ctl.Children() {
		if opt.HasClass(tuitree.ClassSelected) {
			out = append(out, opt.Attr(tuitree.AttrValue))
		}
	}
	return out
}

// ControlSummary is the one-line description of a control used by the filter
// bar.
func ControlSummary(ctl tuitree.Node) string {
	if ctl.Kind() != tuitree.KindControl {
		return ""
	}
	if len(ctl.Children()) == 0 {
		return ctl.Content()
	}
	var selected []string
	for _, opt := range ctl.Children() {
		if opt.HasClass(tuitree.ClassSelected) {
			selected = append(selected, opt.Content())
		}
	}
	if len(selected) == 0 {
		return "any"
	}
	return strings.Join(selected, ", ")
}

// ParseProcessIDs converts option values back to process ids.
func ParseProcessIDs(values []string) ([]int64, error) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("process option %q: %w", v, err)
		}
		out = append(out, id)
	}
	return out, nil
}
