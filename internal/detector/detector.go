// Package detector turns copy actions in a page context into deduplicated
// COPY_DETECTED messages.
package detector

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/client"
	"github.com/MrSnakeDoc/clipflow/internal/clock"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

const (
	// KeyboardDelay is how long a keyboard copy waits for the native copy
	// action before emitting on its own.
	KeyboardDelay = 100 * time.Millisecond

	// BannerID deduplicates the reload banner within a page context.
	BannerID = "clipflow-reload-banner"

	// BannerText asks the user to reload after a context invalidation.
	BannerText = "ClipFlow was updated. Reload this tab to enable copy detection."

	// BannerTTL is how long the banner stays up on its own.
	BannerTTL = 10 * time.Second

	sendTimeout = 5 * time.Second
)

// Sender delivers copy events to the router.
type Sender interface {
	NotifyCopy(ctx context.Context, m messages.CopyDetected) error
}

// Runtime reports whether the page context still talks to the runtime it
// was started against.
type Runtime interface {
	Valid(ctx context.Context) bool
}

// Clipboard reads the system clipboard.
type Clipboard interface {
	ReadText() (string, error)
}

// Page is the surface the detector runs in.
type Page interface {
	Viewport() domain.Size
	// Selection returns the current selection text and its bounding box.
	// The box is empty when nothing is selected.
	Selection() (string, domain.Rect)
	SourceURL() string
	// ShowBanner displays a self-dismissing banner unless one with the same
	// id is already visible.
	ShowBanner(id, text string, ttl time.Duration)
}

// Chord is a key press with its modifiers.
type Chord struct {
	Key  string
	Ctrl bool
	Meta bool
}

// IsCopy reports whether c is Ctrl+C or Cmd+C.
func (c Chord) IsCopy() bool {
	return (c.Ctrl || c.Meta) && c.Key == "c"
}

// Config wires a Detector.
type Config struct {
	Sender    Sender
	Runtime   Runtime
	Clipboard Clipboard // optional fallback for copy actions without payload
	Page      Page
	Clock     clock.Clock
	Layout    Layout
	Logger    logger.Logger

	// Go runs the send path. It defaults to a new goroutine; tests run it
	// inline.
	Go func(func())
}

// Detector owns the dedup and pending-keyboard state of one page context.
type Detector struct {
	cfg Config

	mu      sync.Mutex
	last    string // trimmed text of the last emitted event
	pending bool   // a keyboard copy is waiting for KeyboardDelay
	timer   clock.Timer
}

// New creates a detector.
func New(cfg Config) *Detector {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Layout == (Layout{}) {
		cfg.Layout = DefaultLayout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Go == nil {
		cfg.Go = func(f func()) { go f() }
	}
	return &Detector{cfg: cfg}
}

// OnCopy handles the native copy action. payload is the text carried by the
// action; when it is empty the clipboard is read instead. It cancels any
// pending keyboard copy.
func (d *Detector) OnCopy(payload string) {
	d.mu.Lock()
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	text := payload
	if text == "" && d.cfg.Clipboard != nil {
		var err error
		if text, err = d.cfg.Clipboard.ReadText(); err != nil {
			d.cfg.Logger.Debug("clipboard read failed", logger.Error(err))
			return
		}
	}
	d.emit(text)
}

// OnKeyDown handles the keyboard fallback. A copy chord with a non-empty
// selection emits the selection after KeyboardDelay unless OnCopy fires
// first.
func (d *Detector) OnKeyDown(c Chord) {
	if !c.IsCopy() {
		return
	}
	selected, _ := d.cfg.Page.Selection()
	if strings.TrimSpace(selected) == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = d.cfg.Clock.AfterFunc(KeyboardDelay, func() {
		d.mu.Lock()
		fire := d.pending
		d.pending = false
		d.timer = nil
		d.mu.Unlock()

		if fire {
			d.emit(selected)
		}
	})
}

// Pending reports whether a keyboard copy is waiting.
func (d *Detector) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Reset forgets the last emitted text, e.g. after re-binding.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = ""
}

func (d *Detector) emit(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	d.mu.Lock()
	if trimmed == d.last {
		d.mu.Unlock()
		return
	}
	d.last = trimmed
	d.mu.Unlock()

	_, rect := d.cfg.Page.Selection()
	msg := messages.CopyDetected{
		Text:      trimmed,
		Position:  ComputePosition(d.cfg.Page.Viewport(), rect, d.cfg.Layout),
		SourceURL: d.cfg.Page.SourceURL(),
	}
	d.cfg.Go(func() { d.send(msg) })
}

func (d *Detector) send(msg messages.CopyDetected) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if !d.cfg.Runtime.Valid(ctx) {
		d.invalidated(msg.Text)
		return
	}
	if err := d.cfg.Sender.NotifyCopy(ctx, msg); err != nil {
		if errors.Is(err, client.ErrContextInvalidated) {
			d.invalidated(msg.Text)
			return
		}
		d.cfg.Logger.Warn("copy notification failed", logger.Error(err))
	}
}

// invalidated shows the reload banner. The text is not remembered so the
// same copy emits again once the context is valid.
func (d *Detector) invalidated(text string) {
	d.mu.Lock()
	if d.last == text {
		d.last = ""
	}
	d.mu.Unlock()

	d.cfg.Logger.Info("context invalidated, copy suppressed")
	d.cfg.Page.ShowBanner(BannerID, BannerText, BannerTTL)
}
