package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	Count      lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style
	Error      lipgloss.Style

	ThreadOpen     lipgloss.Style
	ThreadResolved lipgloss.Style
	ThreadMeta     lipgloss.Style
	CommentAuthor  lipgloss.Style
	CommentMe      lipgloss.Style
	CommentMeta    lipgloss.Style
	Notice         lipgloss.Style
	OptionSelected lipgloss.Style
	Option         lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpSky := lipgloss.Color("#89dceb")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay0 := lipgloss.Color("#6c7086")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		Count:      lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		Error:      lipgloss.NewStyle().Bold(true).Foreground(cpRed),

		ThreadOpen:     lipgloss.NewStyle().Bold(true).Foreground(cpText),
		ThreadResolved: lipgloss.NewStyle().Foreground(cpSubtext0).Strikethrough(true),
		ThreadMeta:     lipgloss.NewStyle().Foreground(cpOverlay1),
		CommentAuthor:  lipgloss.NewStyle().Bold(true).Foreground(cpSky),
		CommentMe:      lipgloss.NewStyle().Bold(true).Foreground(cpGreen),
		CommentMeta:    lipgloss.NewStyle().Foreground(cpOverlay0),
		Notice:         lipgloss.NewStyle().Italic(true).Foreground(cpOverlay1),
		OptionSelected: lipgloss.NewStyle().Bold(true).Foreground(cpYellow),
		Option:         lipgloss.NewStyle().Foreground(cpSubtext1),
	}
}

// StyleThreadTitle styles a thread's first header line by its state.
func (t Theme) StyleThreadTitle(resolved bool, title string) string {
	if title == "" {
		return title
	}
	if resolved {
		return t.ThreadResolved.Render(title)
	}
	return t.ThreadOpen.Render(title)
}

func (t Theme) StyleAuthor(isMe bool, author string) string {
	if isMe {
		return t.CommentMe.Render(author)
	}
	return t.CommentAuthor.Render(author)
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
