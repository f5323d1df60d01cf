package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/clipflow/internal/config"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

// LevelSetter changes the log level at runtime.
type LevelSetter interface {
	SetLevel(level string) error
}

// LimitSetter changes the free-plan daily save limit at runtime.
type LimitSetter interface {
	SetFreeDailyLimit(n int)
}

// ConfigWatcher re-applies the YAML overlay when the file changes on disk
// or a reload is requested through the manual trigger.
type ConfigWatcher struct {
	path          string
	levels        LevelSetter
	limits        LimitSetter
	logger        logger.Logger
	delay         time.Duration
	manualTrigger chan struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	watcher       *fsnotify.Watcher
}

// NewConfigWatcher creates a new overlay watcher
func NewConfigWatcher(
	path string,
	levels LevelSetter,
	limits LimitSetter,
	log logger.Logger,
	delay time.Duration,
	manualTrigger chan struct{},
) *ConfigWatcher {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &ConfigWatcher{
		path:          path,
		levels:        levels,
		limits:        limits,
		logger:        log,
		delay:         delay,
		manualTrigger: manualTrigger,
		stopCh:        make(chan struct{}),
	}
}

// Start watches the overlay's directory. Editors usually replace files by
// rename, so the directory is watched and events are filtered by name.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(cw.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	cw.watcher = w

	name := filepath.Base(cw.path)
	go func() {
		defer w.Close()

		var (
			pending bool
			timer   = time.NewTimer(time.Hour)
		)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if pending {
					timer.Stop()
				}
				pending = true
				timer.Reset(cw.delay)
			case <-timer.C:
				pending = false
				cw.reloadAndLog(ctx)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cw.logger.Warn("config watcher error", logger.Error(err))
			case <-cw.manualTrigger:
				cw.logger.Info("manual reload triggered")
				cw.reloadAndLog(ctx)
			case <-cw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the watcher
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() { close(cw.stopCh) })
}

func (cw *ConfigWatcher) reloadAndLog(ctx context.Context) {
	if err := cw.Reload(ctx); err != nil {
		cw.logger.Error("failed to reload config", logger.Error(err))
	}
}

// Reload reads the overlay and applies its hot-reloadable fields. A broken
// file leaves the running values untouched.
func (cw *ConfigWatcher) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o, err := config.LoadOverlay(cw.path)
	if err != nil {
		return err
	}

	if o.LogLevel != nil {
		if err := cw.levels.SetLevel(*o.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level: %w", err)
		}
	}
	if o.FreeDailyLimit != nil {
		cw.limits.SetFreeDailyLimit(*o.FreeDailyLimit)
	}

	fields := []logger.Field{logger.String("file", cw.path)}
	if o.LogLevel != nil {
		fields = append(fields, logger.String("log_level", *o.LogLevel))
	}
	if o.FreeDailyLimit != nil {
		fields = append(fields, logger.Int("free_daily_limit", *o.FreeDailyLimit))
	}
	cw.logger.Info("config reloaded", fields...)
	return nil
}
