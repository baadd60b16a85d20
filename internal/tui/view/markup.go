package view

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/render/markup"
	"github.com/glabrego/threadbox/internal/tui/state"
	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
)

// MarkupContext is everything besides the entity that a markup function may
// depend on. Markup functions are pure: equal inputs give equal output.
type MarkupContext struct {
	CurrentUser string
	Width       int
	Theme       tuitheme.Theme
}

// DateLayout is the numeric en-GB date and time used across the list.
const DateLayout = "02/01/2006, 15:04"

func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// MeLabel marks the current user.
func MeLabel(user, currentUser string) string {
	if user != "" && user == currentUser {
		return user + " (me)"
	}
	return user
}

// RenderThreadHeader returns the header lines of a thread: its title and an
// info line. Header lines are plain text; rows are styled when displayed.
func RenderThreadHeader(t comments.Thread, commentCount int, ctx MarkupContext) string {
	title := strings.TrimSpace(t.Name)
	if title == "" {
		title = fmt.Sprintf("Thread #%d", t.ID)
	}

	info := make([]string, 0, 5)
	if t.Reporter != "" {
		info = append(info, "by "+MeLabel(t.Reporter, ctx.CurrentUser))
	}
	info = append(info, pluralize(commentCount, "comment"))
	info = append(info, FormatDateTime(t.Modified))
	if t.Process != nil {
		info = append(info, t.Process.DisplayName())
	}
	if t.Resolved {
		info = append(info, "resolved")
	} else {
		info = append(info, "open")
	}
	return title + "\n" + strings.Join(info, " · ")
}

// RenderComment returns one comment: an author line followed by the content,
// indented and wrapped to the context width.
func RenderComment(c comments.Comment, ctx MarkupContext) string {
	isMe := c.User != "" && c.User == ctx.CurrentUser
	author := c.User
	if author == "" {
		author = "unknown"
	}
	if isMe {
		author += " (me)"
	}
	lines := []string{
		ctx.Theme.StyleAuthor(isMe, author) + " " + ctx.Theme.CommentMeta.Render(FormatDateTime(c.Created)),
	}
	for _, line := range markup.ContentLines(c.Content, max(1, ctx.Width-2)) {
		if line == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}

// RenderThreadComments renders comments in position order, separated by a
// blank line. The thread sort direction never applies here.
func RenderThreadComments(cs []comments.Comment, ctx MarkupContext) string {
	ordered := append([]comments.Comment(nil), cs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return state.CompareComments(ordered[i], ordered[j]) < 0
	})
	parts := make([]string, 0, len(ordered))
	for _, c := range ordered {
		parts = append(parts, RenderComment(c, ctx))
	}
	return strings.Join(parts, "\n\n")
}

// UserOptionLabel is the label of an author filter option.
func UserOptionLabel(user, currentUser string) string {
	return MeLabel(user, currentUser)
}

func ProcessOptionLabel(p comments.Process) string {
	return p.DisplayName()
}

// FilterOption is one entry of a derived filter control.
type FilterOption struct {
	Value    string
	Label    string
	Selected bool
}

// RenderFilterOptions projects the author set and the processes into the
// options of the two derived filter controls. Options of the active filters
// are selected.
func RenderFilterOptions(users []string, processes []comments.Process, f state.Filters, currentUser string) (userOpts, processOpts []FilterOption) {
	selectedUsers := make(map[string]bool, len(f.ByUsers))
	for _, u := range f.ByUsers {
		selectedUsers[u] = true
	}
	userOpts = make([]FilterOption, 0, len(users))
	for _, u := range users {
		userOpts = append(userOpts, FilterOption{
			Value:    u,
			Label:    UserOptionLabel(u, currentUser),
			Selected: selectedUsers[u],
		})
	}

	selectedProcesses := make(map[int64]bool, len(f.ByProcesses))
	for _, id := range f.ByProcesses {
		selectedProcesses[id] = true
	}
	processOpts = make([]FilterOption, 0, len(processes))
	for _, p := range processes {
		processOpts = append(processOpts, FilterOption{
			Value:    strconv.FormatInt(p.ID, 10),
			Label:    ProcessOptionLabel(p),
			Selected: selectedProcesses[p.ID],
		})
	}
	return userOpts, processOpts
}

func TotalsLabel(threads, cs int) string {
	return pluralize(threads, "thread") + " · " + pluralize(cs, "comment")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
