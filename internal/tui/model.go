// Package tui is the terminal page context: a bubbletea program hosting a
// copy detector and one quick-save panel.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/clipflow/internal/client"
	"github.com/MrSnakeDoc/clipflow/internal/clock"
	"github.com/MrSnakeDoc/clipflow/internal/detector"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/widget"
)

// API is the router surface the terminal page context uses.
type API interface {
	Bind(ctx context.Context) error
	Valid(ctx context.Context) bool
	NotifyCopy(ctx context.Context, m messages.CopyDetected) error
	Save(ctx context.Context, m messages.SaveToNotion) (messages.SaveResult, error)
	Search(ctx context.Context, query string) (messages.SearchPagesResult, error)
	CreatePage(ctx context.Context, parentID, title string) (messages.CreatePageResult, error)
	UpdateSettings(ctx context.Context, patch messages.SettingsPatch) (messages.SettingsResult, error)
	Register(ctx context.Context) (string, error)
	Unregister(ctx context.Context) error
	Next(ctx context.Context, wait time.Duration) (messages.Message, error)
}

// Config wires runtime options into the program.
type Config struct {
	API API

	// Clipboard is read when a copy action carries no text.
	Clipboard detector.Clipboard
	// Selection reads the text currently selected on screen. Nil disables
	// the keyboard copy fallback.
	Selection func() (string, error)

	SourceURL string
	PollWait  time.Duration
	Version   string
	Logger    logger.Logger

	// Clock drives every timer. Nil means callbacks are posted back into
	// the program loop.
	Clock clock.Clock
}

const (
	defaultPollWait = 25 * time.Second
	retryDelay      = 2 * time.Second
)

type registeredMsg struct {
	tab string
	err error
}

type reboundMsg struct {
	tab string
	err error
}

type instructionMsg struct {
	msg messages.Message
}

type pollFailedMsg struct {
	err error
}

type retryMsg struct {
	register bool
}

// copyMsg is a native copy action reported by the clipboard watcher.
type copyMsg struct {
	text string
}

type banner struct {
	id    string
	text  string
	timer clock.Timer
}

// Model is the bubbletea model of the terminal page context.
type Model struct {
	cfg    Config
	log    logger.Logger
	clock  clock.Clock
	bridge *bridge
	page   *terminalPage
	fx     *effects

	detector *detector.Detector
	widget   *widget.Widget

	search  textinput.Model
	title   textinput.Model
	spinner spinner.Model

	width, height int
	tab           string
	status        string
	invalidated   bool
	banner        *banner
	copies        int
}

// New builds the model. Attach must be called with the program's Send
// before timers or banners can reach it.
func New(cfg Config) *Model {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.PollWait <= 0 {
		cfg.PollWait = defaultPollWait
	}

	b := &bridge{}
	clk := cfg.Clock
	if clk == nil {
		clk = loopClock{bridge: b}
	}

	page := &terminalPage{
		selection: cfg.Selection,
		sourceURL: cfg.SourceURL,
		bridge:    b,
	}
	fx := &effects{api: cfg.API, log: cfg.Logger}

	det := detector.New(detector.Config{
		Sender:    cfg.API,
		Runtime:   cfg.API,
		Clipboard: cfg.Clipboard,
		Page:      page,
		Clock:     clk,
		Layout:    detector.TerminalLayout,
		Logger:    cfg.Logger.With(logger.String("component", "detector")),
		Go:        fx.goCmd,
	})
	w := widget.New(widget.Options{
		Clock:     clk,
		Effects:   fx,
		Footprint: detector.TerminalLayout.Footprint,
		Logger:    cfg.Logger.With(logger.String("component", "widget")),
	})

	search := textinput.New()
	search.Placeholder = "Search pages..."
	search.CharLimit = 120
	search.Width = panelInnerWidth - 4

	title := textinput.New()
	title.Placeholder = "Untitled..."
	title.CharLimit = 200
	title.Width = panelInnerWidth - 4

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		cfg:      cfg,
		log:      cfg.Logger,
		clock:    clk,
		bridge:   b,
		page:     page,
		fx:       fx,
		detector: det,
		widget:   w,
		search:   search,
		title:    title,
		spinner:  spin,
		status:   "Connecting to ClipFlow...",
	}
}

// Attach connects the model to a running program.
func (m *Model) Attach(send func(tea.Msg)) { m.bridge.attach(send) }

// CopyDetected reports a native copy action from outside the program loop.
func (m *Model) CopyDetected(text string) {
	m.bridge.post(copyMsg{text: text})
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.registerCmd(), m.spinner.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.fx.drain())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		v := domain.Size{Width: msg.Width, Height: msg.Height}
		m.page.setViewport(v)
		m.widget.SetViewport(v)
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case timerFiredMsg:
		msg.timer.fire()
		m.syncInputs()
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
		return nil

	case copyMsg:
		m.copies++
		m.detector.OnCopy(msg.text)
		return nil

	case bannerMsg:
		m.showBanner(msg)
		return nil

	case registeredMsg:
		if msg.err != nil {
			m.log.Warn("failed to register page context", logger.Error(msg.err))
			m.status = "Router unreachable, retrying..."
			return retryAfter(true)
		}
		m.tab = msg.tab
		m.status = "Watching the clipboard. Copy text anywhere."
		m.log.Info("page context registered", logger.String("tab", msg.tab))
		return m.pollCmd()

	case reboundMsg:
		if msg.err != nil {
			m.log.Warn("re-bind failed", logger.Error(msg.err))
			m.status = "Router unreachable. Press r to retry."
			return nil
		}
		m.invalidated = false
		m.tab = msg.tab
		m.detector.Reset()
		m.clearBanner()
		m.status = "Watching the clipboard. Copy text anywhere."
		return m.pollCmd()

	case retryMsg:
		if msg.register {
			return m.registerCmd()
		}
		return m.pollCmd()

	case instructionMsg:
		if show, ok := msg.msg.(messages.ShowWidget); ok {
			m.openPanel(show)
		}
		return m.pollCmd()

	case pollFailedMsg:
		return m.pollFailed(msg.err)

	case saveDoneMsg:
		if msg.err != nil {
			m.widget.SaveErrored(msg.id, msg.err)
		} else {
			m.widget.SaveFinished(msg.id, msg.res)
		}
		return nil

	case recentLoadedMsg:
		res := msg.res
		if msg.err != nil {
			res = messages.SearchPagesResult{Error: msg.err.Error()}
		}
		m.widget.RecentLoaded(msg.id, res)
		return nil

	case searchDoneMsg:
		res := msg.res
		if msg.err != nil {
			res = messages.SearchPagesResult{Error: msg.err.Error()}
		}
		m.widget.SearchFinished(msg.id, msg.seq, res)
		return nil

	case pageCreatedMsg:
		res := msg.res
		if msg.err != nil {
			res = messages.CreatePageResult{Error: messages.ErrorText(msg.err, messages.FallbackCreateError)}
		}
		m.widget.PageCreated(msg.id, res)
		m.syncInputs()
		return nil
	}
	return nil
}

func (m *Model) openPanel(show messages.ShowWidget) {
	m.widget.Show(show)
	m.search.SetValue("")
	m.title.SetValue("")
	m.syncInputs()
}

func (m *Model) pollFailed(err error) tea.Cmd {
	switch {
	case errors.Is(err, client.ErrContextInvalidated):
		m.invalidated = true
		m.status = "Context invalidated. Press r to reconnect."
		m.showBanner(bannerMsg{id: detector.BannerID, text: detector.BannerText, ttl: detector.BannerTTL})
		return nil
	case errors.Is(err, client.ErrUnregistered):
		m.log.Info("page context expired, registering again")
		return m.registerCmd()
	default:
		m.log.Warn("instruction poll failed", logger.Error(err))
		return retryAfter(false)
	}
}

func (m *Model) showBanner(msg bannerMsg) {
	if m.banner != nil && m.banner.id == msg.id {
		return
	}
	m.clearBanner()
	b := &banner{id: msg.id, text: msg.text}
	b.timer = m.clock.AfterFunc(msg.ttl, func() {
		if m.banner == b {
			m.banner = nil
		}
	})
	m.banner = b
}

func (m *Model) clearBanner() {
	if m.banner == nil {
		return
	}
	m.banner.timer.Stop()
	m.banner = nil
}

func (m *Model) registerCmd() tea.Cmd {
	api := m.cfg.API
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tab, err := api.Register(ctx)
		return registeredMsg{tab: tab, err: err}
	}
}

func (m *Model) rebindCmd() tea.Cmd {
	api := m.cfg.API
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := api.Bind(ctx); err != nil {
			return reboundMsg{err: err}
		}
		tab, err := api.Register(ctx)
		return reboundMsg{tab: tab, err: err}
	}
}

func (m *Model) pollCmd() tea.Cmd {
	api, wait := m.cfg.API, m.cfg.PollWait
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), wait+requestTimeout)
		defer cancel()
		next, err := api.Next(ctx, wait)
		if err != nil {
			return pollFailedMsg{err: err}
		}
		return instructionMsg{msg: next}
	}
}

func retryAfter(register bool) tea.Cmd {
	return tea.Tick(retryDelay, func(time.Time) tea.Msg { return retryMsg{register: register} })
}
