// Package widget is the quick-save panel as a pure state machine. Rendering
// and I/O live elsewhere: the host feeds events in, reads State back, and
// performs the side effects requested through Effects.
//
// A Widget is not safe for concurrent use. Hosts must deliver events and
// timer callbacks from a single goroutine.
package widget

import (
	"strings"

	"github.com/MrSnakeDoc/clipflow/internal/clock"
	"github.com/MrSnakeDoc/clipflow/internal/detector"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// Effects performs the panel's asynchronous work. Results come back through
// the matching Widget method carrying the same instance id.
type Effects interface {
	Save(id uint64, req messages.SaveToNotion)
	LoadRecent(id uint64)
	Search(id uint64, seq int, query string)
	CreatePage(id uint64, parentID, title string)
	PersistSettings(patch messages.SettingsPatch)
	Closed(id uint64)
}

// Options configures New.
type Options struct {
	Clock     clock.Clock
	Effects   Effects
	Viewport  domain.Size
	Footprint domain.Size
	Logger    logger.Logger
}

// State is a snapshot of the visible panel.
type State struct {
	ID          uint64
	Text        string
	SourceURL   string
	Position    domain.Position
	Destination domain.Destination
	Settings    domain.WidgetSettings

	View      View
	Direction int

	Status    SaveStatus
	ErrorKind ErrorKind
	ErrorText string

	Dragging bool
	Dragged  bool
	InGrace  bool

	Query        string
	Recent       []domain.Destination
	Results      []domain.Destination
	Cursor       int
	LoadingPages bool
	Searching    bool
	PickerError  string

	Title      string
	Parent     int
	Creating   bool
	CreateText string
}

// DisplayDestination is the destination shown in the header.
func (s State) DisplayDestination() domain.Destination {
	if s.Destination.IsZero() {
		return domain.PlaceholderDestination()
	}
	return s.Destination
}

// ParentPage returns the parent page selected for create-page.
func (s State) ParentPage() (domain.Destination, bool) {
	if s.Parent < 0 || s.Parent >= len(s.Recent) {
		return domain.Destination{}, false
	}
	return s.Recent[s.Parent], true
}

// EmptyText is the picker's message when there are no results.
func (s State) EmptyText() string {
	if strings.TrimSpace(s.Query) != "" {
		return NoPagesFound
	}
	return NoPagesAvailable
}

type instance struct {
	State

	dragFrom    domain.Position
	recentReady bool
	searchSeq   int

	dismiss  clock.Timer
	grace    clock.Timer
	debounce clock.Timer
	closing  clock.Timer
}

func (in *instance) stopTimers() {
	for _, t := range []*clock.Timer{&in.dismiss, &in.grace, &in.debounce, &in.closing} {
		if *t != nil {
			(*t).Stop()
			*t = nil
		}
	}
}

// Widget hosts at most one panel instance at a time.
type Widget struct {
	clock     clock.Clock
	eff       Effects
	viewport  domain.Size
	footprint domain.Size
	log       logger.Logger

	lastID uint64
	cur    *instance
}

// New returns a hidden widget.
func New(opts Options) *Widget {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Footprint == (domain.Size{}) {
		opts.Footprint = detector.DefaultLayout.Footprint
	}
	return &Widget{
		clock:     opts.Clock,
		eff:       opts.Effects,
		viewport:  opts.Viewport,
		footprint: opts.Footprint,
		log:       opts.Logger,
	}
}

// Visible reports whether a panel is shown.
func (w *Widget) Visible() bool { return w.cur != nil }

// State returns a copy of the visible panel's state.
func (w *Widget) State() (State, bool) {
	if w.cur == nil {
		return State{}, false
	}
	s := w.cur.State
	s.Recent = append([]domain.Destination(nil), s.Recent...)
	s.Results = append([]domain.Destination(nil), s.Results...)
	return s, true
}

// SetViewport updates the area the panel is clamped to.
func (w *Widget) SetViewport(v domain.Size) {
	w.viewport = v
	if w.cur != nil {
		w.cur.Position = detector.ClampPosition(w.cur.Position, v, w.footprint)
	}
}

// Show replaces any visible panel with a fresh one for m.
func (w *Widget) Show(m messages.ShowWidget) {
	w.Hide()

	w.lastID++
	in := &instance{State: State{
		ID:        w.lastID,
		Text:      m.Text,
		SourceURL: m.SourceURL,
		Position:  detector.ClampPosition(m.Position, w.viewport, w.footprint),
		Settings:  m.Settings,
		View:      ViewQuickSave,
		Direction: 1,
		Status:    SaveIdle,
	}}
	if m.DefaultDestination != nil {
		in.Destination = *m.DefaultDestination
	}
	w.cur = in

	w.log.Debug("widget shown",
		logger.Int("id", int(in.ID)),
		logger.Int("chars", len(m.Text)),
	)
	w.armDismiss()
}

// Hide closes the panel. Calling it on a hidden widget is a no-op.
func (w *Widget) Hide() {
	in := w.cur
	if in == nil {
		return
	}
	in.stopTimers()
	w.cur = nil
	w.log.Debug("widget hidden", logger.Int("id", int(in.ID)))
	if w.eff != nil {
		w.eff.Closed(in.ID)
	}
}

// Escape dismisses the panel unless a drag is in progress.
func (w *Widget) Escape() {
	if w.cur == nil || w.cur.Dragging {
		return
	}
	w.Hide()
}

// ClickOutside dismisses the panel unless a drag just happened.
func (w *Widget) ClickOutside() {
	if w.cur == nil || w.cur.Dragging || w.cur.InGrace {
		return
	}
	w.Hide()
}

// Interact records user activity and restarts the dismiss timer.
func (w *Widget) Interact() {
	if w.cur == nil {
		return
	}
	w.armDismiss()
}

// Navigate switches view. Opening the picker loads recent pages once.
func (w *Widget) Navigate(to View) {
	in := w.cur
	if in == nil {
		return
	}
	in.Direction = Direction(in.View, to)
	in.View = to

	switch to {
	case ViewDestinationPicker:
		w.openPicker(in)
	case ViewCreatePage:
		in.Title = ""
		in.Parent = 0
		in.CreateText = ""
		in.Creating = false
	}
	w.armDismiss()
}

// Back returns to the parent view.
func (w *Widget) Back() {
	if w.cur == nil {
		return
	}
	w.Navigate(w.cur.View.parent())
}

// PressHeader starts a drag at pointer position at. Presses on header
// controls are ignored. A press counts as a drag for auto-dismiss even if
// the pointer never moves.
func (w *Widget) PressHeader(at domain.Position, onControl bool) {
	in := w.cur
	if in == nil || onControl {
		return
	}
	in.Dragging = true
	in.Dragged = true
	in.dragFrom = domain.Position{X: at.X - in.Position.X, Y: at.Y - in.Position.Y}
	w.stopDismiss(in)
}

// Move drags the panel so it follows the pointer within the viewport.
func (w *Widget) Move(at domain.Position) {
	in := w.cur
	if in == nil || !in.Dragging {
		return
	}
	next := domain.Position{X: at.X - in.dragFrom.X, Y: at.Y - in.dragFrom.Y}
	in.Position = detector.ClampPosition(next, w.viewport, w.footprint)
}

// Release ends a drag and opens the click-outside grace window.
func (w *Widget) Release() {
	in := w.cur
	if in == nil || !in.Dragging {
		return
	}
	in.Dragging = false
	in.InGrace = true
	if in.grace != nil {
		in.grace.Stop()
	}
	id := in.ID
	in.grace = w.clock.AfterFunc(DragGrace, func() {
		if cur := w.live(id); cur != nil {
			cur.InGrace = false
			cur.grace = nil
		}
	})
}

// live returns the current instance when it still has id.
func (w *Widget) live(id uint64) *instance {
	if w.cur == nil || w.cur.ID != id {
		return nil
	}
	return w.cur
}

func (w *Widget) stopDismiss(in *instance) {
	if in.dismiss != nil {
		in.dismiss.Stop()
		in.dismiss = nil
	}
}

// armDismiss (re)starts the auto-dismiss timer when the panel qualifies.
func (w *Widget) armDismiss() {
	in := w.cur
	if in == nil {
		return
	}
	w.stopDismiss(in)

	delay := in.Settings.DismissDelay()
	if !in.Settings.AutoDismiss || delay <= 0 {
		return
	}
	if in.View != ViewQuickSave || in.Status != SaveIdle || in.Dragged {
		return
	}

	id := in.ID
	in.dismiss = w.clock.AfterFunc(delay, func() {
		if w.live(id) == nil {
			return
		}
		w.log.Debug("widget auto-dismissed", logger.Int("id", int(id)))
		w.Hide()
	})
}
