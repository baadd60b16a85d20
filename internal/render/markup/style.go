package markup

import "github.com/charmbracelet/lipgloss"

var (
	cpMauve    = lipgloss.Color("#cba6f7")
	cpPeach    = lipgloss.Color("#fab387")
	cpBlue     = lipgloss.Color("#89b4fa")
	cpLavender = lipgloss.Color("#b4befe")
	cpTeal     = lipgloss.Color("#94e2d5")
	cpText     = lipgloss.Color("#cdd6f4")
	cpSubtext0 = lipgloss.Color("#a6adc8")
	cpOverlay1 = lipgloss.Color("#7f849c")

	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(cpLavender)
	linkStyle     = lipgloss.NewStyle().Foreground(cpBlue).Faint(true)
	quotePrefix   = lipgloss.NewStyle().Foreground(cpOverlay1).Render("│ ")
	quoteStyle    = lipgloss.NewStyle().Italic(true).Foreground(cpSubtext0)
	codeStyle     = lipgloss.NewStyle().Foreground(cpPeach)
	strongStyle   = lipgloss.NewStyle().Bold(true).Foreground(cpText)
	emphasisStyle = lipgloss.NewStyle().Italic(true)
	mentionStyle  = lipgloss.NewStyle().Bold(true).Foreground(cpTeal)
	imageStyle    = lipgloss.NewStyle().Foreground(cpMauve).Faint(true).Italic(true)
)

func styleLines(lines []string, style lipgloss.Style) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		out[i] = style.Render(line)
	}
	return out
}
