package tree

import "strings"

type RowKind string

const (
	RowHeader  RowKind = "header"
	RowComment RowKind = "comment"
	RowNotice  RowKind = "notice"
)

type Row struct {
	Kind     RowKind
	ThreadID int64
	Text     string
	// First marks the first line of a thread header.
	First    bool
	Expanded bool
	Resolved bool
}

// BuildRows flattens the thread list into display rows: the header of every
// visible thread, followed by the comment body of expanded threads whose body
// is ready.
func BuildRows(vt ViewTree) ([]Row, error) {
	list, err := vt.ThreadList()
	if err != nil {
		return nil, err
	}
	threads := list.Children()
	rows := make([]Row, 0, len(threads)*2)
	for _, node := range threads {
		if node.Kind() != KindThread || node.HasClass(ClassHidden) {
			continue
		}
		id, _ := ThreadIDOf(node)
		expanded := node.HasClass(ClassExpanded)
		resolved := node.HasClass(ClassResolved)

		if header := FindChild(node, isKind(KindHeader)); header != nil {
			for i, line := range splitLines(header.Content()) {
				prefix := "  "
				if i == 0 {
					prefix = "▸ "
					if expanded {
						prefix = "▾ "
					}
				}
				rows = append(rows, Row{
					Kind:     RowHeader,
					ThreadID: id,
					Text:     prefix + line,
					First:    i == 0,
					Expanded: expanded,
					Resolved: resolved,
				})
			}
		}
		if !expanded {
			continue
		}
		body := FindChild(node, isKind(KindComments))
		switch {
		case body == nil:
		case !body.HasClass(ClassReady):
			if body.HasClass(ClassLoading) {
				rows = append(rows, Row{Kind: RowNotice, ThreadID: id, Text: "    loading comments...", Expanded: true})
			}
		case body.HasClass(ClassEmpty):
			rows = append(rows, Row{Kind: RowNotice, ThreadID: id, Text: "    no comments", Expanded: true})
		default:
			for _, line := range splitLines(body.Content()) {
				rows = append(rows, Row{Kind: RowComment, ThreadID: id, Text: "    " + line, Expanded: true})
			}
		}
	}
	return rows, nil
}

// FirstHeaderRow returns the index of the first header line for threadID, or
// -1 when the thread has no rows.
func FirstHeaderRow(rows []Row, threadID int64) int {
	for i, row := range rows {
		if row.Kind == RowHeader && row.First && row.ThreadID == threadID {
			return i
		}
	}
	return -1
}

func isKind(kind Kind) func(Node) bool {
	return func(n Node) bool { return n.Kind() == kind }
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
