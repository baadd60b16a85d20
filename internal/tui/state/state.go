package state

import (
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// ThreadAt returns the thread owning the row under the cursor.
func ThreadAt(rows []tuitree.Row, cursor int) (int64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	return rows[ClampCursor(cursor, len(rows))].ThreadID, true
}

// CursorForThread keeps the cursor on threadID after the rows were rebuilt.
// When the thread disappeared the cursor stays at the same index.
func CursorForThread(rows []tuitree.Row, threadID int64, fallback int) int {
	if i := tuitree.FirstHeaderRow(rows, threadID); i >= 0 {
		return i
	}
	return ClampCursor(fallback, len(rows))
}

// NextThreadRow moves to the first header line of the next (dir > 0) or
// previous (dir < 0) thread.
func NextThreadRow(rows []tuitree.Row, cursor, dir int) int {
	if len(rows) == 0 {
		return 0
	}
	cursor = ClampCursor(cursor, len(rows))
	current := rows[cursor].ThreadID
	if dir > 0 {
		for i := cursor + 1; i < len(rows); i++ {
			if rows[i].First && rows[i].ThreadID != current {
				return i
			}
		}
		return cursor
	}
	start := tuitree.FirstHeaderRow(rows, current)
	if start >= 0 && start < cursor {
		return start
	}
	for i := cursor - 1; i >= 0; i-- {
		if rows[i].First && rows[i].ThreadID != current {
			return i
		}
	}
	return cursor
}

func VisibleThreadCount(rows []tuitree.Row) int {
	count := 0
	for _, row := range rows {
		if row.Kind == tuitree.RowHeader && row.First {
			count++
		}
	}
	return count
}
