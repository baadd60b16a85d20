package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/threadbox/internal/app"
	"github.com/glabrego/threadbox/internal/tui/actions"
	tuitree "github.com/glabrego/threadbox/internal/tui/tree"
)

const snapshotFile = `{
  "threads": [
    {"id": 1, "name": "Pump pressure", "created": "Sat, 12 Aug 2023 12:36:08 GMT", "modified": "Sat, 12 Aug 2023 12:36:08 GMT", "reporter": "alice", "resolved": false},
    {"id": 2, "name": "Valve", "created": "Sun, 13 Aug 2023 08:00:00 GMT", "modified": "Sun, 13 Aug 2023 08:00:00 GMT", "reporter": "bob", "resolved": true, "process": {"id": 7, "name": "Steel"}}
  ],
  "comments": [
    {"id": 10, "position": 1, "thread": 1, "user": "alice", "content": "<p>first</p>", "created": "Sat, 12 Aug 2023 12:40:00 GMT"},
    {"id": 11, "position": 2, "thread": 1, "user": "bob", "content": "<p>second</p>", "created": "Sat, 12 Aug 2023 13:00:00 GMT"}
  ],
  "shared_params": {"current_user": "alice"}
}`

func TestModelWithSnapshotFileService(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.json")
	if err := os.WriteFile(path, []byte(snapshotFile), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	svc := app.NewService(nil, nil, app.WithSnapshotFile(path))
	m := newTestModel(t, svc, Options{})

	msgs := runCmd(actions.ReloadCmd(svc, m.reloadGen, "init"))
	m = update(t, m, firstMsg[actions.ReloadSuccessMsg](t, msgs))
	if got := shownThreads(m); !sameIDs(got, []int64{1, 2}) {
		t.Fatalf("expected threads [1 2], got %v", got)
	}
	if !strings.Contains(m.View(), "2 threads · 2 comments") {
		t.Fatalf("expected totals in view, got: %s", m.View())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	m = update(t, m, firstMsg[actions.ThreadLoadedMsg](t, runCmd(cmd)))
	body, err := m.tree.Comments(1)
	if err != nil {
		t.Fatalf("Comments returned error: %v", err)
	}
	if !body.HasClass(tuitree.ClassReady) || body.HasClass(tuitree.ClassLoading) {
		t.Fatal("expected ready body after file thread load")
	}

	next, cmd = m.Update(keyRunes("x"))
	m = next.(Model)
	write := firstMsg[actions.WriteErrorMsg](t, runCmd(cmd))
	if !errors.Is(write.Err, app.ErrReadOnly) {
		t.Fatalf("expected read-only error, got %v", write.Err)
	}
	m = update(t, m, write)
	if !strings.Contains(m.View(), "read-only") {
		t.Fatalf("expected read-only error in view, got: %s", m.View())
	}

	if err := os.WriteFile(path, []byte(strings.Replace(snapshotFile, `"resolved": false`, `"resolved": true`, 1)), 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	next, cmd = m.Update(actions.FileChangedMsg{})
	m = next.(Model)
	reload := firstMsg[actions.ReloadSuccessMsg](t, runCmd(cmd))
	m = update(t, m, reload)
	thread, _ := m.ctl.Store().Thread(1)
	if !thread.Resolved {
		t.Fatal("expected reloaded thread 1 to be resolved")
	}
	if m.ctl.Store().IsError() {
		t.Fatalf("expected reload to clear the error, got %v", m.ctl.Store().Err())
	}
	expanded, err := m.ctl.Renderer().IsThreadExpanded(1)
	if err != nil || !expanded {
		t.Fatalf("expected thread 1 to stay expanded across reload, got %v (%v)", expanded, err)
	}
}
