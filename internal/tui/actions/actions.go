package actions

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/threadbox/internal/comments"
)

const requestTimeout = 10 * time.Second

type Service interface {
	Load(ctx context.Context) (comments.Snapshot, error)
	ListCached(ctx context.Context) (comments.Snapshot, bool, error)
	LoadThread(ctx context.Context, threadID int64) ([]comments.Thread, []comments.Comment, error)
	ResolveThread(ctx context.Context, threadID int64, resolved bool) (comments.Thread, error)
	AddComment(ctx context.Context, threadID int64, content string) (comments.Comment, error)
}

type CachedLoadedMsg struct {
	Snapshot comments.Snapshot
	OK       bool
	Err      error
}

// ReloadSuccessMsg carries a full snapshot. Gen identifies the reload so
// superseded responses can be dropped.
type ReloadSuccessMsg struct {
	Gen      int
	Snapshot comments.Snapshot
	Duration time.Duration
	Source   string
}

type ReloadErrorMsg struct {
	Gen      int
	Err      error
	Duration time.Duration
	Source   string
}

type ThreadLoadedMsg struct {
	ThreadID int64
	Gen      int
	Threads  []comments.Thread
	Comments []comments.Comment
}

type ThreadLoadErrorMsg struct {
	ThreadID int64
	Gen      int
	Err      error
}

type ResolveSuccessMsg struct {
	Thread comments.Thread
	Status string
}

type CommentAddedMsg struct {
	Comment comments.Comment
	Status  string
}

type WriteErrorMsg struct {
	Err error
}

type CopySuccessMsg struct {
	Status string
}

type CopyErrorMsg struct {
	Err error
}

// FileChangedMsg reports a change of the watched snapshot file.
type FileChangedMsg struct{}

type PrefsErrorMsg struct {
	Err error
}

func LoadCachedCmd(service Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		snap, ok, err := service.ListCached(ctx)
		return CachedLoadedMsg{Snapshot: snap, OK: ok, Err: err}
	}
}

func ReloadCmd(service Service, gen int, source string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		start := time.Now()

		snap, err := service.Load(ctx)
		if err != nil {
			return ReloadErrorMsg{Gen: gen, Err: err, Duration: time.Since(start), Source: source}
		}
		return ReloadSuccessMsg{Gen: gen, Snapshot: snap, Duration: time.Since(start), Source: source}
	}
}

func LoadThreadCmd(service Service, threadID int64, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		threads, cs, err := service.LoadThread(ctx, threadID)
		if err != nil {
			return ThreadLoadErrorMsg{ThreadID: threadID, Gen: gen, Err: err}
		}
		return ThreadLoadedMsg{ThreadID: threadID, Gen: gen, Threads: threads, Comments: cs}
	}
}

func ResolveThreadCmd(service Service, threadID int64, resolved bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		t, err := service.ResolveThread(ctx, threadID, resolved)
		if err != nil {
			return WriteErrorMsg{Err: err}
		}
		status := "Thread reopened"
		if t.Resolved {
			status = "Thread resolved"
		}
		return ResolveSuccessMsg{Thread: t, Status: status}
	}
}

func AddCommentCmd(service Service, threadID int64, content string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		c, err := service.AddComment(ctx, threadID, content)
		if err != nil {
			return WriteErrorMsg{Err: err}
		}
		return CommentAddedMsg{Comment: c, Status: fmt.Sprintf("Comment added to thread #%d", threadID)}
	}
}

func CopyTextCmd(text string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn == nil {
			return CopyErrorMsg{Err: fmt.Errorf("clipboard unavailable")}
		}
		if err := copyFn(text); err != nil {
			return CopyErrorMsg{Err: fmt.Errorf("copy thread: %w", err)}
		}
		return CopySuccessMsg{Status: "Thread copied to clipboard"}
	}
}

// WatchFileCmd waits for the next change signal.
func WatchFileCmd(changed <-chan struct{}) tea.Cmd {
	if changed == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changed; !ok {
			return nil
		}
		return FileChangedMsg{}
	}
}

func SavePrefsCmd(save func() error) tea.Cmd {
	return func() tea.Msg {
		if save == nil {
			return nil
		}
		if err := save(); err != nil {
			return PrefsErrorMsg{Err: err}
		}
		return nil
	}
}
