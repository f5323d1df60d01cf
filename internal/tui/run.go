package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/clipflow/internal/detector"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

// RunOptions configures the program around the model.
type RunOptions struct {
	// Watch is polled for native copy actions. Nil disables the watcher.
	Watch         detector.WatcherSource
	WatchInterval time.Duration
	AltScreen     bool
}

// Run starts the program and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, cfg Config, opts RunOptions) error {
	m := New(cfg)

	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseAllMotion()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(m, progOpts...)
	m.Attach(program.Send)

	if opts.Watch != nil {
		watcher := detector.NewClipboardWatcher(opts.Watch, m.CopyDetected, opts.WatchInterval, m.log)
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	_, err := program.Run()

	unregCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if uerr := cfg.API.Unregister(unregCtx); uerr != nil {
		m.log.Debug("unregister on exit failed", logger.Error(uerr))
	}

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
