package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/net/html"

	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/debug"
	"github.com/glabrego/threadbox/internal/prefs"
	"github.com/glabrego/threadbox/internal/render/markup"
	"github.com/glabrego/threadbox/internal/tui/actions"
	"github.com/glabrego/threadbox/internal/tui/controller"
	"github.com/glabrego/threadbox/internal/tui/platform"
	"github.com/glabrego/threadbox/internal/tui/state"
	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
	"github.com/glabrego/threadbox/internal/tui/view"
)

const (
	statusTTL     = 3 * time.Second
	commentLimit  = 2000
	defaultWidth  = 100
	chromeLines   = 7
	minListHeight = 3
)

type clearStatusMsg struct {
	id int
}

// Options configures a Model. The zero value is usable.
type Options struct {
	Prefs       prefs.Prefs
	SavePrefs   func(prefs.Prefs) error
	CopyText    func(string) error
	FileChanged <-chan struct{}
}

type eventQueue struct {
	events []view.Event
}

func (q *eventQueue) push(ev view.Event) error {
	q.events = append(q.events, ev)
	return nil
}

func (q *eventQueue) drain() []view.Event {
	out := q.events
	q.events = nil
	return out
}

type picker struct {
	control string
	cursor  int
}

type Model struct {
	service actions.Service
	ctl     *controller.Controller
	tree    *tuitree.Tree
	theme   tuitheme.Theme
	keys    keyMap
	help    help.Model
	queue   *eventQueue

	mode          view.Mode
	rows          []tuitree.Row
	cursor        int
	picker        picker
	input         textinput.Model
	composeThread int64

	width    int
	height   int
	status   string
	statusID int
	fatal    error

	reloadGen int
	loaded    bool
	threadGen map[int64]int

	savePrefsFn func(prefs.Prefs) error
	copyFn      func(string) error
	fileChanged <-chan struct{}
}

// NewModel builds the view tree, applies saved preferences and renders the
// empty list. A nil service leaves the model offline.
func NewModel(service actions.Service, opts Options) (Model, error) {
	store := state.NewStore()
	th := tuitheme.Default()
	vt := tuitree.New()
	renderer := view.NewRenderer(store, vt, th)
	ctl := controller.New(store, renderer)

	// Preferences are applied as one batch and drawn by the Render below.
	sort := opts.Prefs.Sort()
	for _, apply := range []func() error{
		func() error { return ctl.SetSortBy(sort.Field, controller.WithOmitUpdate()) },
		func() error { return ctl.SetSortReversed(sort.Reversed, controller.WithOmitUpdate()) },
		func() error { return ctl.SetFilterByState(opts.Prefs.State(), controller.WithOmitUpdate()) },
		func() error { return ctl.SetFilterByMyThreads(opts.Prefs.MyThreads, controller.WithOmitUpdate()) },
	} {
		if err := apply(); err != nil {
			return Model{}, err
		}
	}
	queue := &eventQueue{}
	if err := renderer.Start(view.Handlers{
		view.ActionExpandThread: queue.push,
		view.ActionTitleClick:   queue.push,
	}); err != nil {
		return Model{}, err
	}

	input := textinput.New()
	input.Placeholder = "Write a comment"
	input.CharLimit = commentLimit

	copyFn := opts.CopyText
	if copyFn == nil {
		copyFn = platform.CopyText
	}
	m := Model{
		service:     service,
		ctl:         ctl,
		tree:        vt,
		theme:       th,
		keys:        defaultKeyMap(),
		help:        help.New(),
		queue:       queue,
		mode:        view.ModeList,
		input:       input,
		threadGen:   make(map[int64]int),
		savePrefsFn: opts.SavePrefs,
		copyFn:      copyFn,
		fileChanged: opts.FileChanged,
	}
	if service != nil {
		m.reloadGen = 1
		if err := ctl.SetLoading(true, controller.WithOmitUpdate()); err != nil {
			return Model{}, err
		}
	}
	if err := m.ctl.Render(); err != nil {
		return Model{}, err
	}
	if err := m.refreshRows(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.service != nil {
		cmds = append(cmds,
			actions.LoadCachedCmd(m.service),
			actions.ReloadCmd(m.service, m.reloadGen, "init"),
		)
	}
	if watch := actions.WatchFileCmd(m.fileChanged); watch != nil {
		cmds = append(cmds, watch)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Err reports the error that stopped the program, if any.
func (m Model) Err() error {
	return m.fatal
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if !m.ctl.Renderer().SetWidth(msg.Width) {
			return m, nil
		}
		return m.after(m.ctl.Renderer().RerenderAllVisibleComments(), nil)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	case actions.CachedLoadedMsg:
		if msg.Err != nil {
			debug.Log("cache unavailable: %v", msg.Err)
			return m, nil
		}
		if !msg.OK || m.loaded {
			return m, nil
		}
		if err := m.ingest(msg.Snapshot); err != nil {
			return m.fail(err)
		}
		m.status = fmt.Sprintf("Showing %d cached threads", len(msg.Snapshot.Threads))
		return m, nil
	case actions.ReloadSuccessMsg:
		if msg.Gen != m.reloadGen {
			debug.Log("drop stale reload gen=%d current=%d", msg.Gen, m.reloadGen)
			return m, nil
		}
		m.loaded = true
		debug.LogTiming("reload "+msg.Source, msg.Duration)
		if err := m.ctl.SetLoading(false); err != nil {
			return m.fail(err)
		}
		if err := m.ingest(msg.Snapshot); err != nil {
			return m.fail(err)
		}
		return m, m.flash(fmt.Sprintf("Loaded %d threads in %s", len(msg.Snapshot.Threads), msg.Duration.Round(time.Millisecond)))
	case actions.ReloadErrorMsg:
		if msg.Gen != m.reloadGen {
			return m, nil
		}
		if err := m.ctl.SetLoading(false); err != nil {
			return m.fail(err)
		}
		return m.after(m.ctl.SetError(msg.Err), nil)
	case actions.ThreadLoadedMsg:
		if m.threadGen[msg.ThreadID] != msg.Gen {
			debug.Log("drop stale thread %d gen=%d", msg.ThreadID, msg.Gen)
			return m, nil
		}
		if err := m.clearThreadLoading(msg.ThreadID); err != nil {
			return m.fail(err)
		}
		_, err := m.ctl.Merge(msg.Threads, msg.Comments)
		return m.after(err, nil)
	case actions.ThreadLoadErrorMsg:
		if m.threadGen[msg.ThreadID] != msg.Gen {
			return m, nil
		}
		if err := m.clearThreadLoading(msg.ThreadID); err != nil {
			return m.fail(err)
		}
		return m.after(m.ctl.SetError(msg.Err), nil)
	case actions.ResolveSuccessMsg:
		_, err := m.ctl.Merge([]comments.Thread{msg.Thread}, nil)
		return m.after(err, m.flash(msg.Status))
	case actions.CommentAddedMsg:
		_, err := m.ctl.Merge(nil, []comments.Comment{msg.Comment})
		return m.after(err, m.flash(msg.Status))
	case actions.WriteErrorMsg:
		m.status = ""
		return m.after(m.ctl.SetError(msg.Err), nil)
	case actions.CopySuccessMsg:
		return m, m.flash(msg.Status)
	case actions.CopyErrorMsg:
		return m, m.flash(msg.Err.Error())
	case actions.PrefsErrorMsg:
		debug.Log("save preferences: %v", msg.Err)
		return m, m.flash("Could not save preferences")
	case actions.FileChangedMsg:
		next, cmd := m.reload("watch")
		return next, tea.Batch(cmd, actions.WatchFileCmd(m.fileChanged))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case view.ModeCompose:
		return m.handleComposeKey(msg)
	case view.ModeFilter:
		return m.handlePickerKey(msg)
	case view.ModeHelpFull:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help, m.keys.Escape):
			m.mode = view.ModeList
		}
		return m, nil
	}

	store := m.ctl.Store()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.mode = view.ModeHelpFull
	case key.Matches(msg, m.keys.Up):
		m.cursor = state.ClampCursor(m.cursor-1, len(m.rows))
	case key.Matches(msg, m.keys.Down):
		m.cursor = state.ClampCursor(m.cursor+1, len(m.rows))
	case key.Matches(msg, m.keys.NextThread):
		m.cursor = state.NextThreadRow(m.rows, m.cursor, 1)
	case key.Matches(msg, m.keys.PrevThread):
		m.cursor = state.NextThreadRow(m.rows, m.cursor, -1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = state.ClampCursor(len(m.rows)-1, len(m.rows))
	case key.Matches(msg, m.keys.PageUp):
		m.cursor = state.ClampCursor(m.cursor-state.PageStep(m.listHeight(), m.status != ""), len(m.rows))
	case key.Matches(msg, m.keys.PageDown):
		m.cursor = state.ClampCursor(m.cursor+state.PageStep(m.listHeight(), m.status != ""), len(m.rows))
	case key.Matches(msg, m.keys.Toggle):
		return m.activate(view.ActionExpandThread, "")
	case key.Matches(msg, m.keys.Comment):
		return m.activate(view.ActionTitleClick, view.TitleActionAddComment)
	case key.Matches(msg, m.keys.Resolve):
		return m.activate(view.ActionTitleClick, view.TitleActionResolve)
	case key.Matches(msg, m.keys.Copy):
		return m.copyCurrentThread()
	case key.Matches(msg, m.keys.Reload):
		return m.reload("manual")
	case key.Matches(msg, m.keys.CycleState):
		return m.after(m.ctl.SetFilterByState(store.Filters().ByState.Next()), m.persistPrefsCmd())
	case key.Matches(msg, m.keys.MyThreads):
		return m.after(m.ctl.SetFilterByMyThreads(!store.Filters().ByMyThreads), m.persistPrefsCmd())
	case key.Matches(msg, m.keys.FilterUsers):
		m.openPicker(tuitree.ControlFilterByUsers)
	case key.Matches(msg, m.keys.FilterProcess):
		m.openPicker(tuitree.ControlFilterByProcesses)
	case key.Matches(msg, m.keys.CycleSort):
		next := store.Sort().Field.Next()
		return m.after(m.keepExpanded(func() error { return m.ctl.SetSortBy(next) }), m.persistPrefsCmd())
	case key.Matches(msg, m.keys.ReverseSort):
		reversed := !store.Sort().Reversed
		return m.after(m.keepExpanded(func() error { return m.ctl.SetSortReversed(reversed) }), m.persistPrefsCmd())
	}
	return m, nil
}

// activate dispatches the action node of the thread under the cursor and
// runs the handlers it queued.
func (m Model) activate(action view.Action, title view.TitleAction) (tea.Model, tea.Cmd) {
	id, ok := state.ThreadAt(m.rows, m.cursor)
	if !ok {
		return m, nil
	}
	r := m.ctl.Renderer()
	target, err := r.ThreadAction(id, action, title)
	if err != nil {
		return m.fail(err)
	}
	if _, err := r.Dispatch(target); err != nil {
		return m.fail(err)
	}
	var cmds []tea.Cmd
	for _, ev := range m.queue.drain() {
		cmd, err := m.handleEvent(ev)
		if err != nil {
			return m.fail(err)
		}
		cmds = append(cmds, cmd)
	}
	return m.after(nil, tea.Batch(cmds...))
}

func (m *Model) handleEvent(ev view.Event) (tea.Cmd, error) {
	switch ev.Action {
	case view.ActionExpandThread:
		expanded, err := m.ctl.ToggleThread(ev.ThreadID)
		if err != nil || !expanded {
			return nil, err
		}
		return m.fetchThread(ev.ThreadID)
	case view.ActionTitleClick:
		switch ev.TitleAction {
		case view.TitleActionAddComment:
			m.openComposer(ev.ThreadID)
			return textinput.Blink, nil
		case view.TitleActionResolve:
			t, ok := m.ctl.Store().Thread(ev.ThreadID)
			if !ok || m.service == nil {
				return nil, nil
			}
			m.status = "Saving..."
			return actions.ResolveThreadCmd(m.service, t.ID, !t.Resolved), nil
		}
	}
	return nil, nil
}

// fetchThread refreshes one thread in the background. A newer fetch of the
// same thread makes earlier responses stale.
func (m *Model) fetchThread(id int64) (tea.Cmd, error) {
	if m.service == nil {
		return nil, nil
	}
	m.threadGen[id]++
	if err := m.ctl.Renderer().SetThreadLoading(id, true); err != nil {
		return nil, err
	}
	return actions.LoadThreadCmd(m.service, id, m.threadGen[id]), nil
}

func (m *Model) clearThreadLoading(id int64) error {
	if _, ok := m.ctl.Store().Thread(id); !ok {
		return nil
	}
	return m.ctl.Renderer().SetThreadLoading(id, false)
}

func (m *Model) openComposer(id int64) {
	m.mode = view.ModeCompose
	m.composeThread = id
	m.input.Reset()
	m.input.Focus()
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeComposer()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		content := strings.TrimSpace(m.input.Value())
		id := m.composeThread
		m.closeComposer()
		if content == "" || m.service == nil {
			return m, nil
		}
		m.status = "Sending..."
		return m, actions.AddCommentCmd(m.service, id, commentMarkup(content))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeComposer() {
	m.mode = view.ModeList
	m.composeThread = 0
	m.input.Blur()
	m.input.Reset()
}

func commentMarkup(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}

func (m *Model) openPicker(control string) {
	m.mode = view.ModeFilter
	m.picker = picker{control: control}
}

func (m Model) pickerOptions() ([]tuitree.Node, error) {
	ctl, err := m.tree.Control(m.picker.control)
	if err != nil {
		return nil, err
	}
	return ctl.Children(), nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options, err := m.pickerOptions()
	if err != nil {
		return m.fail(err)
	}
	// A reload may have shortened the option list since the last move.
	m.picker.cursor = state.ClampCursor(m.picker.cursor, len(options))
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.Quit):
		m.mode = view.ModeList
	case key.Matches(msg, m.keys.Up):
		m.picker.cursor = state.ClampCursor(m.picker.cursor-1, len(options))
	case key.Matches(msg, m.keys.Down):
		m.picker.cursor = state.ClampCursor(m.picker.cursor+1, len(options))
	case key.Matches(msg, m.keys.PickerClear):
		return m.after(m.applyPicker(nil), nil)
	case key.Matches(msg, m.keys.PickerToggle):
		if len(options) == 0 {
			return m, nil
		}
		ctl, err := m.tree.Control(m.picker.control)
		if err != nil {
			return m.fail(err)
		}
		value := options[m.picker.cursor].Attr(tuitree.AttrValue)
		return m.after(m.applyPicker(toggleValue(view.SelectedOptions(ctl), value)), nil)
	}
	return m, nil
}

func toggleValue(values []string, value string) []string {
	out := make([]string, 0, len(values)+1)
	found := false
	for _, v := range values {
		if v == value {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, value)
	}
	return out
}

func (m *Model) applyPicker(values []string) error {
	switch m.picker.control {
	case tuitree.ControlFilterByUsers:
		return m.ctl.SetFilterByUsers(values)
	case tuitree.ControlFilterByProcesses:
		ids, err := view.ParseProcessIDs(values)
		if err != nil {
			return err
		}
		return m.ctl.SetFilterByProcesses(ids)
	}
	return fmt.Errorf("unknown filter control %q", m.picker.control)
}

func (m Model) copyCurrentThread() (tea.Model, tea.Cmd) {
	id, ok := state.ThreadAt(m.rows, m.cursor)
	if !ok {
		return m, nil
	}
	return m, actions.CopyTextCmd(threadText(m.ctl.Store(), id), m.copyFn)
}

// threadText renders a thread as plain text for the clipboard.
func threadText(s *state.Store, id int64) string {
	t, ok := s.Thread(id)
	if !ok {
		return ""
	}
	title := t.Name
	if title == "" {
		title = fmt.Sprintf("Thread #%d", t.ID)
	}
	var b strings.Builder
	b.WriteString(title)
	for _, c := range s.Comments(id) {
		fmt.Fprintf(&b, "\n\n%s (%s):\n%s", c.User, comments.FormatDate(c.Created), markup.PlainText(c.Content))
	}
	return b.String()
}

func (m Model) reload(source string) (tea.Model, tea.Cmd) {
	if m.service == nil {
		return m, nil
	}
	m.reloadGen++
	if err := m.ctl.SetLoading(true); err != nil {
		return m.fail(err)
	}
	return m.after(nil, actions.ReloadCmd(m.service, m.reloadGen, source))
}

// ingest replaces the dataset and expands again the threads that were
// expanded before.
func (m *Model) ingest(snap comments.Snapshot) error {
	return m.keepExpanded(func() error { return m.ctl.Ingest(snap) })
}

func (m *Model) keepExpanded(fn func() error) error {
	expanded, err := m.expandedThreads()
	if err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	for _, id := range expanded {
		if _, ok := m.ctl.Store().Thread(id); !ok {
			continue
		}
		if err := m.ctl.ExpandThread(id); err != nil {
			return err
		}
	}
	return m.refreshRows()
}

func (m Model) expandedThreads() ([]int64, error) {
	list, err := m.tree.ThreadList()
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, n := range list.Children() {
		if !n.HasClass(tuitree.ClassExpanded) {
			continue
		}
		if id, ok := tuitree.ThreadIDOf(n); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// refreshRows rebuilds the flattened rows, keeping the cursor on the same
// thread when it is still shown.
func (m *Model) refreshRows() error {
	anchor, hasAnchor := state.ThreadAt(m.rows, m.cursor)
	rows, err := tuitree.BuildRows(m.tree)
	if err != nil {
		return err
	}
	m.rows = rows
	switch {
	case !hasAnchor:
		m.cursor = state.ClampCursor(m.cursor, len(rows))
	case m.cursor < len(rows) && rows[m.cursor].ThreadID == anchor:
	default:
		m.cursor = state.CursorForThread(rows, anchor, state.ClampCursor(m.cursor, len(rows)))
	}
	return nil
}

// after finishes an update: an error goes through fail, otherwise rows are
// rebuilt and cmd is returned.
func (m Model) after(err error, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if err != nil {
		return m.fail(err)
	}
	if err := m.refreshRows(); err != nil {
		return m.fail(err)
	}
	return m, cmd
}

// fail shows data errors in the error region. A missing view node means the
// tree and the store disagree, and the program stops.
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, tuitree.ErrMissingNode) {
		m.fatal = err
		return m, tea.Quit
	}
	if setErr := m.ctl.SetError(err); setErr != nil {
		m.fatal = setErr
		return m, tea.Quit
	}
	if rowsErr := m.refreshRows(); rowsErr != nil {
		m.fatal = rowsErr
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) flash(status string) tea.Cmd {
	m.status = status
	m.statusID++
	return clearStatusCmd(m.statusID, statusTTL)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func (m Model) persistPrefsCmd() tea.Cmd {
	if m.savePrefsFn == nil {
		return nil
	}
	p := prefs.FromStore(m.ctl.Store())
	save := m.savePrefsFn
	return actions.SavePrefsCmd(func() error { return save(p) })
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

// listHeight is zero when the terminal size is unknown, meaning no limit.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-chromeLines, minListHeight)
}

func (m Model) View() string {
	if m.fatal != nil {
		return "fatal: " + m.fatal.Error() + "\n"
	}
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Threadbox"))
	b.WriteString(" ")
	b.WriteString(m.theme.ModePill.Render(string(m.mode)))
	b.WriteString("\n")

	if m.mode == view.ModeHelpFull {
		b.WriteString(view.Toolbar(m.mode))
		b.WriteString("\n\n")
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
		b.WriteString("\n")
	} else {
		b.WriteString(view.Toolbar(m.mode))
		b.WriteString("\n")
		b.WriteString(view.FilterBar(m.tree, m.contentWidth(), m.theme))
		b.WriteString("\n\n")
		switch m.mode {
		case view.ModeFilter:
			b.WriteString(m.pickerView())
		case view.ModeCompose:
			b.WriteString(m.composeView())
		}
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(view.CompactMessage(m.tree, m.status, m.theme))
	b.WriteString("\n")
	b.WriteString(view.CompactFooter(m.mode, m.tree, state.VisibleThreadCount(m.rows), m.theme))
	return b.String()
}

func (m Model) listView() string {
	if len(m.rows) == 0 {
		return ""
	}
	height := m.listHeight()
	if height == 0 {
		height = len(m.rows)
	}
	start, end := state.CenteredWindow(len(m.rows), m.cursor, height)
	width := m.contentWidth()
	return view.RenderListBody(view.ListRenderInput{
		Rows:   m.rows,
		Start:  start,
		End:    end,
		Cursor: m.cursor,
		RenderRow: func(row tuitree.Row, active bool) string {
			return view.RenderRowLine(row, width, active, m.theme)
		},
	})
}

func (m Model) pickerView() string {
	title := "Filter by users"
	if m.picker.control == tuitree.ControlFilterByProcesses {
		title = "Filter by processes"
	}
	var b strings.Builder
	b.WriteString(m.theme.Section.Render(title))
	b.WriteString("\n")
	options, err := m.pickerOptions()
	if err != nil || len(options) == 0 {
		b.WriteString("  no options\n\n")
		return b.String()
	}
	cursor := state.ClampCursor(m.picker.cursor, len(options))
	for i, opt := range options {
		mark := "[ ]"
		style := m.theme.Option
		if opt.HasClass(tuitree.ClassSelected) {
			mark = "[x]"
			style = m.theme.OptionSelected
		}
		line := fmt.Sprintf("%s %s", mark, opt.Content())
		b.WriteString(m.theme.RenderActiveLine(i == cursor, "  "+style.Render(line)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) composeView() string {
	var b strings.Builder
	b.WriteString(m.theme.Section.Render(fmt.Sprintf("Comment on thread #%d", m.composeThread)))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	return b.String()
}
