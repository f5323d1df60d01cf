package detector

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

// SystemClipboard reads the OS clipboard.
type SystemClipboard struct {
	mu sync.Mutex
}

// ReadText returns the clipboard text.
func (c *SystemClipboard) ReadText() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return text, nil
}

// ReadPrimary returns the X11 primary selection, i.e. the text currently
// selected anywhere on screen. It fails where no primary selection exists.
func (c *SystemClipboard) ReadPrimary() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return readPrimary()
}

// WatcherSource is what a ClipboardWatcher polls.
type WatcherSource interface {
	ReadText() (string, error)
}

// ClipboardWatcher polls the clipboard and reports every change as a native
// copy action. The first read only sets the baseline.
type ClipboardWatcher struct {
	source   WatcherSource
	onCopy   func(text string)
	interval time.Duration
	log      logger.Logger

	stopCh chan struct{}
	doneCh chan struct{}
	last   string
	primed bool
}

// NewClipboardWatcher polls source every interval and passes changes to
// onCopy, typically Detector.OnCopy.
func NewClipboardWatcher(source WatcherSource, onCopy func(string), interval time.Duration, log logger.Logger) *ClipboardWatcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ClipboardWatcher{
		source:   source,
		onCopy:   onCopy,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins polling in the background.
func (w *ClipboardWatcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop stops polling and waits for the loop to exit.
func (w *ClipboardWatcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *ClipboardWatcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Poll()
	for {
		select {
		case <-ticker.C:
			w.Poll()
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Poll reads the clipboard once. It is exported for tests and callers
// driving their own schedule.
func (w *ClipboardWatcher) Poll() {
	text, err := w.source.ReadText()
	if err != nil {
		w.log.Debug("clipboard poll failed", logger.Error(err))
		return
	}
	if !w.primed {
		w.primed = true
		w.last = text
		return
	}
	if text == w.last {
		return
	}
	w.last = text
	if text != "" {
		w.onCopy(text)
	}
}
