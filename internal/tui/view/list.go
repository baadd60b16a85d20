package view

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	tuitheme "github.com/glabrego/threadbox/internal/tui/theme"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

// RenderRowLine styles one display row and fits it to width.
func RenderRowLine(row tuitree.Row, width int, active bool, th tuitheme.Theme) string {
	cursor := " "
	if active {
		cursor = ">"
	}
	text := row.Text
	switch row.Kind {
	case tuitree.RowHeader:
		if row.First {
			chevron, title := splitChevron(text)
			text = chevron + th.StyleThreadTitle(row.Resolved, title)
		} else {
			text = th.ThreadMeta.Render(text)
		}
	case tuitree.RowNotice:
		text = th.Notice.Render(text)
	}
	line := cursor + " " + text
	if width > 0 && xansi.StringWidth(line) > width {
		line = xansi.Truncate(line, width, "…")
	}
	return th.RenderActiveLine(active, line)
}

func splitChevron(text string) (string, string) {
	for _, chevron := range []string{"▸ ", "▾ "} {
		if strings.HasPrefix(text, chevron) {
			return chevron, strings.TrimPrefix(text, chevron)
		}
	}
	return "", text
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	return xansi.Truncate(s, maxLen, "...")
}

func visibleLen(s string) int {
	return xansi.StringWidth(s)
}
