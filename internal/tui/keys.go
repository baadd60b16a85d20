package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Escape key.Binding

	Up         key.Binding
	Down       key.Binding
	NextThread key.Binding
	PrevThread key.Binding
	Top        key.Binding
	Bottom     key.Binding
	PageUp     key.Binding
	PageDown   key.Binding

	Toggle  key.Binding
	Comment key.Binding
	Resolve key.Binding
	Copy    key.Binding
	Reload  key.Binding

	CycleState    key.Binding
	MyThreads     key.Binding
	FilterUsers   key.Binding
	FilterProcess key.Binding
	CycleSort     key.Binding
	ReverseSort   key.Binding

	PickerToggle key.Binding
	PickerClear  key.Binding
	Confirm      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "move down"),
		),
		NextThread: key.NewBinding(
			key.WithKeys("J", "tab"),
			key.WithHelp("J", "next thread"),
		),
		PrevThread: key.NewBinding(
			key.WithKeys("K", "shift+tab"),
			key.WithHelp("K", "previous thread"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdown", "page down"),
		),

		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "add comment"),
		),
		Resolve: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "resolve/reopen"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy thread"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),

		CycleState: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "state filter"),
		),
		MyThreads: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "my threads"),
		),
		FilterUsers: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "filter users"),
		),
		FilterProcess: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "filter processes"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sort field"),
		),
		ReverseSort: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "reverse sort"),
		),

		PickerToggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle option"),
		),
		PickerClear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filter"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Comment, k.Resolve, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextThread, k.PrevThread, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Toggle, k.Comment, k.Resolve, k.Copy, k.Reload},
		{k.CycleState, k.MyThreads, k.FilterUsers, k.FilterProcess, k.CycleSort, k.ReverseSort},
		{k.Help, k.Escape, k.Quit},
	}
}
