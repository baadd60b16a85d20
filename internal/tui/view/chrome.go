package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

type Mode string

const (
	ModeList     Mode = "list"
	ModeCompose  Mode = "compose"
	ModeFilter   Mode = "filter"
	ModeHelpFull Mode = "help"
)

func Toolbar(mode Mode) string {
	switch mode {
	case ModeCompose:
		return "enter send | esc cancel"
	case ModeFilter:
		return "j/k move | space toggle | c clear | esc close"
	case ModeHelpFull:
		return "j/k/arrows: move | J/K: next/prev thread | enter/space: expand | c: comment | x: resolve/reopen | s: state filter | m: my threads | u: users | p: processes | o: sort field | O: reverse | y: copy thread | r: reload | ?: help | q: quit"
	default:
		return "j/k move | enter expand | c comment | x resolve | s/m/u/p filter | o/O sort | r reload | ? help"
	}
}

// FilterBar summarizes the filter and sort controls in one line.
func FilterBar(vt tuitree.ViewTree, width int, th tuitheme.Theme) string {
	parts := make([]string, 0, 6)
	for _, item := range []struct {
		label string
		name  string
	}{
		{"state", tuitree.ControlFilterByState},
		{"users", tuitree.ControlFilterByUsers},
		{"processes", tuitree.ControlFilterByProcesses},
		{"sort", tuitree.ControlSortBy},
		{"order", tuitree.ControlSortReversed},
	} {
		ctl, err := vt.Control(item.name)
		if err != nil {
			continue
		}
		parts = append(parts, th.MetaLabel.Render(item.label)+" "+th.MetaValue.Render(ControlSummary(ctl)))
	}
	if ctl, err := vt.Control(tuitree.ControlFilterByMyThreads); err == nil && ctl.HasClass(tuitree.ClassActive) {
		parts = append(parts, th.Count.Render(ctl.Content()))
	}
	return truncateRunes(strings.Join(parts, " • "), width)
}

// CompactFooter shows the totals region and how many threads are shown.
func CompactFooter(mode Mode, vt tuitree.ViewTree, shown int, th tuitheme.Theme) string {
	parts := []string{
		th.MetaLabel.Render("mode") + " " + th.MetaValue.Render(string(mode)),
		th.MetaValue.Render(fmt.Sprintf("%d shown", shown)),
	}
	if ctl, err := vt.Control(tuitree.ControlTotals); err == nil && ctl.Content() != "" {
		parts = append(parts, th.MetaLabel.Render("total")+" "+th.MetaValue.Render(ctl.Content()))
	}
	return strings.Join(parts, " • ")
}

// CompactMessage reports the loading and error regions, falling back to the
// transient status.
func CompactMessage(vt tuitree.ViewTree, status string, th tuitheme.Theme) string {
	state := "idle"
	main := "Ready"
	if status != "" {
		main = status
	}
	stateLabel := th.StateIdle.Render("state")
	if list, err := vt.ThreadList(); err == nil && list.HasClass(tuitree.ClassLoading) {
		state = "loading"
		stateLabel = th.StateLoad.Render("state")
	}
	if ctl, err := vt.Control(tuitree.ControlError); err == nil && !ctl.HasClass(tuitree.ClassHidden) && ctl.Content() != "" {
		state = "error"
		stateLabel = th.StateWarn.Render("state")
		main = th.Error.Render(ctl.Content())
	} else if ctl, err := vt.Control(tuitree.ControlEmpty); err == nil && !ctl.HasClass(tuitree.ClassHidden) && status == "" {
		main = ctl.Content()
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
