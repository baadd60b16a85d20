package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/threadbox/internal/app"
	"github.com/glabrego/threadbox/internal/comments"
	"github.com/glabrego/threadbox/internal/config"
	"github.com/glabrego/threadbox/internal/debug"
	"github.com/glabrego/threadbox/internal/prefs"
	"github.com/glabrego/threadbox/internal/storage"
	"github.com/glabrego/threadbox/internal/tui"
	"github.com/glabrego/threadbox/internal/watch"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	p, err := prefs.Load(cfg.PrefsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load preferences (%v), using defaults\n", err)
	}

	opts := []app.Option{app.WithUser(cfg.User)}
	var repo *storage.Repository
	if cfg.FileMode() {
		opts = append(opts, app.WithSnapshotFile(cfg.SnapshotPath))
	} else {
		repo, err = storage.NewRepository(cfg.DBPath)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		defer repo.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := repo.Init(ctx); err != nil {
			cancel()
			log.Fatalf("storage schema error: %v", err)
		}
		if err := repo.CheckWritable(ctx); err != nil {
			cancel()
			log.Fatalf("storage write check failed (%v). Verify THREADBOX_DB_PATH is writable: %s", err, cfg.DBPath)
		}
		cancel()
	}

	client := comments.NewClient(cfg.APIBaseURL, cfg.Token, nil)
	var service *app.Service
	if repo != nil {
		service = app.NewService(client, repo, opts...)
	} else {
		service = app.NewService(client, nil, opts...)
	}

	modelOpts := tui.Options{
		Prefs: p,
		SavePrefs: func(next prefs.Prefs) error {
			return prefs.Save(cfg.PrefsPath, next)
		},
	}
	if cfg.FileMode() {
		w, err := watch.New(cfg.SnapshotPath, watch.WithOnError(func(err error) {
			debug.Log("snapshot watcher: %v", err)
		}))
		if err != nil {
			log.Fatalf("watch snapshot file: %v", err)
		}
		if err := w.Start(); err != nil {
			log.Fatalf("watch snapshot file: %v", err)
		}
		defer w.Stop()
		modelOpts.FileChanged = w.Changed()
	}

	model, err := tui.NewModel(service, modelOpts)
	if err != nil {
		log.Fatalf("tui init error: %v", err)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		log.Fatalf("tui error: %v", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		log.Fatalf("view out of sync: %v", m.Err())
	}
}
