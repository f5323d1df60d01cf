// Package router is the single owner of privileged operations: workspace
// calls, OAuth and persisted state. Page contexts reach it only through
// messages and always get a typed result back.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/notion"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
)

// ErrUnsupported is returned by Dispatch for messages the router does not
// accept, such as instructions meant for page contexts.
var ErrUnsupported = errors.New("unsupported message")

// Workspace is the remote page API.
type Workspace interface {
	Search(ctx context.Context, query string) ([]domain.Destination, error)
	AppendText(ctx context.Context, pageID, text string, opts notion.AppendOptions) error
	CreatePage(ctx context.Context, parentID, title string) (domain.Destination, error)
}

// Connector runs the interactive authorization flow.
type Connector interface {
	Connect(ctx context.Context) (domain.AuthState, error)
}

// Deliverer hands instructions to page contexts.
type Deliverer interface {
	Deliver(id string, msg messages.Message) error
}

// Sender identifies where a message came from.
type Sender struct {
	TabID string // empty for the popup/CLI surface
}

// Config wires the router's collaborators.
type Config struct {
	Repo      *storage.Repository
	Workspace Workspace
	OAuth     Connector
	Tabs      Deliverer
	Logger    logger.Logger
	Now       func() time.Time

	// FreeDailyLimit overrides domain.FreeDailyLimit when positive.
	FreeDailyLimit int
}

// Router dispatches protocol messages.
type Router struct {
	repo      *storage.Repository
	workspace Workspace
	oauth     Connector
	tabs      Deliverer
	log       logger.Logger
	now       func() time.Time
	ids       domain.RecordIDs
	limit     atomic.Int64
}

// New creates a router.
func New(cfg Config) *Router {
	r := &Router{
		repo:      cfg.Repo,
		workspace: cfg.Workspace,
		oauth:     cfg.OAuth,
		tabs:      cfg.Tabs,
		log:       cfg.Logger,
		now:       cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.SetFreeDailyLimit(cfg.FreeDailyLimit)
	return r
}

// SetFreeDailyLimit changes the free-tier limit at runtime. Non-positive
// values restore the default.
func (r *Router) SetFreeDailyLimit(n int) {
	if n <= 0 {
		n = domain.FreeDailyLimit
	}
	r.limit.Store(int64(n))
}

// FreeDailyLimit returns the current free-tier limit.
func (r *Router) FreeDailyLimit() int {
	return int(r.limit.Load())
}

// Dispatch routes msg to its handler and returns the response value for its
// kind. Workspace and OAuth failures are reported inside the response, never
// as an error.
func (r *Router) Dispatch(ctx context.Context, from Sender, msg messages.Message) (any, error) {
	switch m := msg.(type) {
	case messages.CopyDetected:
		r.HandleCopy(ctx, from, m)
		return messages.CopyAck{OK: true}, nil
	case messages.SaveToNotion:
		return r.HandleSave(ctx, m), nil
	case messages.NotionConnect:
		return r.HandleConnect(ctx), nil
	case messages.NotionDisconnect:
		return r.HandleDisconnect(ctx), nil
	case messages.SearchPages:
		return r.HandleSearch(ctx, m), nil
	case messages.CreatePage:
		return r.HandleCreatePage(ctx, m), nil
	case messages.GetAuthState:
		return r.HandleAuthState(ctx), nil
	case messages.GetSettings:
		return r.HandleGetSettings(ctx), nil
	case messages.UpdateSettings:
		return r.HandleUpdateSettings(ctx, m), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, msg.Kind())
}

// HandleCopy shows the widget in the sender's page context when the widget
// is enabled and a workspace is connected. It never reports failure.
func (r *Router) HandleCopy(ctx context.Context, from Sender, m messages.CopyDetected) {
	if from.TabID == "" {
		return
	}

	settings, err := r.repo.Settings(ctx)
	if err != nil {
		r.log.Warn("failed to load settings for copy", logger.Error(err))
		return
	}
	if !settings.WidgetEnabled {
		return
	}

	auth, err := r.repo.Auth(ctx)
	if err != nil {
		r.log.Warn("failed to load auth for copy", logger.Error(err))
		return
	}
	if !auth.Connected() {
		return
	}

	show := messages.ShowWidget{
		Text:               m.Text,
		Position:           m.Position,
		DefaultDestination: settings.DefaultDestination(),
		Settings:           settings.Widget(),
		SourceURL:          m.SourceURL,
	}
	if err := r.tabs.Deliver(from.TabID, show); err != nil {
		// page context not listening yet
		r.log.Debug("show widget not delivered",
			logger.String("tab", from.TabID),
			logger.Error(err))
	}
}

// HandleSave enforces the free-tier quota, appends the text and records the
// save.
func (r *Router) HandleSave(ctx context.Context, m messages.SaveToNotion) messages.SaveResult {
	now := r.now()
	today := domain.Today(now)

	sub, err := r.repo.Subscription(ctx)
	if err != nil {
		return messages.SaveFailed(err.Error())
	}
	quota, err := r.repo.DailySaves(ctx)
	if err != nil {
		return messages.SaveFailed(err.Error())
	}
	if domain.LimitReached(sub, quota, today, r.FreeDailyLimit()) {
		r.log.Info("daily save limit reached", logger.Int("count", quota.CountFor(today)))
		return messages.SaveFailed(domain.DailyLimitMessage)
	}

	settings, err := r.repo.Settings(ctx)
	if err != nil {
		return messages.SaveFailed(err.Error())
	}

	opts := notion.AppendOptions{
		SourceURL:        m.SourceURL,
		SavedAt:          now,
		IncludeSourceURL: settings.IncludeSourceURL,
		IncludeDateTime:  settings.IncludeDateTime,
	}
	if err := r.workspace.AppendText(ctx, m.DestinationID, m.Text, opts); err != nil {
		r.log.Warn("append failed",
			logger.String("destination", m.DestinationID),
			logger.Error(err))
		r.dropRevokedToken(ctx, err)
		return messages.SaveFailed(messages.ErrorText(err, messages.FallbackSaveError))
	}

	// The text is in the workspace from here on; bookkeeping failures are
	// logged but do not turn the save into a failure.
	if _, err := r.repo.IncrementDailySaves(ctx, now); err != nil {
		r.log.Error("failed to increment daily saves", logger.Error(err))
	}
	rec := domain.SaveRecord{
		ID:                 r.ids.Next(now),
		TextPreview:        domain.TextPreview(m.Text),
		DestinationID:      m.DestinationID,
		DestinationName:    m.DestinationName,
		DestinationEmoji:   m.DestinationEmoji,
		DestinationIconURL: m.DestinationIconURL,
		SavedAt:            now.UTC(),
		SourceURL:          m.SourceURL,
	}
	if err := r.repo.RecordSave(ctx, rec); err != nil {
		r.log.Error("failed to record save", logger.Error(err))
	}

	r.log.Info("saved to workspace",
		logger.String("destination", m.DestinationID),
		logger.Int("chars", len([]rune(m.Text))))
	return messages.SaveOK()
}

// HandleConnect runs OAuth, stores the token and re-arms onboarding.
func (r *Router) HandleConnect(ctx context.Context) messages.ConnectResult {
	auth, err := r.oauth.Connect(ctx)
	if err != nil {
		r.log.Warn("oauth failed", logger.Error(err))
		return messages.ConnectResult{Error: messages.ErrorText(err, messages.FallbackConnectError)}
	}
	if err := r.repo.SetAuth(ctx, &auth); err != nil {
		return messages.ConnectResult{Error: messages.ErrorText(err, messages.FallbackConnectError)}
	}
	if err := r.repo.SetOnboardingComplete(ctx, false); err != nil {
		r.log.Warn("failed to reset onboarding flag", logger.Error(err))
	}

	r.log.Info("workspace connected", logger.String("workspace", auth.WorkspaceName))
	return messages.ConnectResult{Success: true, WorkspaceName: auth.WorkspaceName}
}

// HandleDisconnect clears the token. It always reports success.
func (r *Router) HandleDisconnect(ctx context.Context) messages.DisconnectResult {
	if err := r.repo.ClearAuth(ctx); err != nil {
		r.log.Error("failed to clear auth", logger.Error(err))
	}
	return messages.DisconnectResult{Success: true}
}

// HandleSearch proxies a page search.
func (r *Router) HandleSearch(ctx context.Context, m messages.SearchPages) messages.SearchPagesResult {
	pages, err := r.workspace.Search(ctx, strings.TrimSpace(m.Query))
	if err != nil {
		r.dropRevokedToken(ctx, err)
		return messages.SearchPagesResult{Error: messages.ErrorText(err, messages.FallbackSearchError)}
	}
	if pages == nil {
		pages = []domain.Destination{}
	}
	return messages.SearchPagesResult{Success: true, Pages: pages}
}

// HandleCreatePage proxies page creation.
func (r *Router) HandleCreatePage(ctx context.Context, m messages.CreatePage) messages.CreatePageResult {
	title := strings.TrimSpace(m.Title)
	if title == "" || m.ParentID == "" {
		return messages.CreatePageResult{Error: "A title and a parent page are required"}
	}
	page, err := r.workspace.CreatePage(ctx, m.ParentID, title)
	if err != nil {
		r.dropRevokedToken(ctx, err)
		return messages.CreatePageResult{Error: messages.ErrorText(err, messages.FallbackCreateError)}
	}
	return messages.CreatePageResult{Success: true, Page: &page}
}

// dropRevokedToken clears the stored token once the workspace rejects it, so
// the auth state reports disconnected and the user is asked to reconnect.
func (r *Router) dropRevokedToken(ctx context.Context, err error) {
	if !notion.IsUnauthorized(err) || errors.Is(err, notion.ErrNotAuthenticated) {
		return
	}
	r.log.Warn("workspace rejected the token, clearing it", logger.Error(err))
	if err := r.repo.ClearAuth(ctx); err != nil {
		r.log.Error("failed to clear revoked token", logger.Error(err))
	}
}

// HandleAuthState reports the connection state.
func (r *Router) HandleAuthState(ctx context.Context) messages.AuthStateResult {
	auth, err := r.repo.Auth(ctx)
	if err != nil {
		r.log.Warn("failed to load auth", logger.Error(err))
		return messages.AuthStateResult{}
	}
	if !auth.Connected() {
		return messages.AuthStateResult{}
	}
	return messages.AuthStateResult{IsConnected: true, WorkspaceName: auth.WorkspaceName}
}

// HandleGetSettings returns the stored settings.
func (r *Router) HandleGetSettings(ctx context.Context) messages.SettingsResult {
	s, err := r.repo.Settings(ctx)
	if err != nil {
		return messages.SettingsResult{Error: err.Error()}
	}
	return messages.SettingsResult{Success: true, Settings: &s}
}

// HandleUpdateSettings merges the patch into the stored settings.
func (r *Router) HandleUpdateSettings(ctx context.Context, m messages.UpdateSettings) messages.SettingsResult {
	s, err := r.repo.UpdateSettings(ctx, m.Patch.Apply)
	if err != nil {
		return messages.SettingsResult{Error: err.Error()}
	}
	return messages.SettingsResult{Success: true, Settings: &s}
}

var _ Deliverer = (*tabs.Registry)(nil)
