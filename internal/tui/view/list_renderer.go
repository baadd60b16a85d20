package view

import (
	"strings"

	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

type ListRenderInput struct {
	Rows   []tuitree.Row
	Start  int
	End    int
	Cursor int

	RenderRow func(row tuitree.Row, active bool) string
}

func RenderListBody(in ListRenderInput) string {
	if len(in.Rows) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	end := min(in.End, len(in.Rows))
	var b strings.Builder
	for i := in.Start; i < end; i++ {
		b.WriteString(in.RenderRow(in.Rows[i], i == in.Cursor))
		b.WriteString("\n")
	}
	return b.String()
}
