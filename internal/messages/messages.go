// Package messages defines the protocol spoken between page contexts and the
// router. Every request kind has exactly one response shape.
package messages

import (
	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

// Type is the discriminator carried in the "type" field of every message.
type Type string

const (
	TypeCopyDetected     Type = "COPY_DETECTED"
	TypeShowWidget       Type = "SHOW_WIDGET"
	TypeSaveToNotion     Type = "SAVE_TO_NOTION"
	TypeSaveResult       Type = "SAVE_RESULT"
	TypeNotionConnect    Type = "NOTION_CONNECT"
	TypeNotionDisconnect Type = "NOTION_DISCONNECT"
	TypeSearchPages      Type = "SEARCH_PAGES"
	TypeCreatePage       Type = "CREATE_PAGE"
	TypeGetAuthState     Type = "GET_AUTH_STATE"
	TypeGetSettings      Type = "GET_SETTINGS"
	TypeUpdateSettings   Type = "UPDATE_SETTINGS"
)

// Generic failure texts used when an error carries no message.
const (
	FallbackSaveError    = "Save failed"
	FallbackConnectError = "OAuth failed"
	FallbackSearchError  = "Search failed"
	FallbackCreateError  = "Create page failed"
)

// Message is implemented by every request and instruction.
type Message interface {
	Kind() Type
}

// CopyDetected is sent by a page context after a copy action.
type CopyDetected struct {
	Text      string          `json:"text"`
	Position  domain.Position `json:"position"`
	SourceURL string          `json:"sourceUrl"`
}

// ShowWidget instructs a page context to open the panel. It has no response.
type ShowWidget struct {
	Text               string                `json:"text"`
	Position           domain.Position       `json:"position"`
	DefaultDestination *domain.Destination   `json:"defaultDestination"`
	Settings           domain.WidgetSettings `json:"settings"`
	SourceURL          string                `json:"sourceUrl,omitempty"`
}

// SaveToNotion asks the router to append text to a page.
type SaveToNotion struct {
	Text               string `json:"text"`
	DestinationID      string `json:"destinationId"`
	DestinationName    string `json:"destinationName"`
	DestinationEmoji   string `json:"destinationEmoji"`
	DestinationIconURL string `json:"destinationIconUrl,omitempty"`
	SourceURL          string `json:"sourceUrl"`
}

// NewSaveToNotion builds a save request for text into d.
func NewSaveToNotion(text string, d domain.Destination, sourceURL string) SaveToNotion {
	return SaveToNotion{
		Text:               text,
		DestinationID:      d.ID,
		DestinationName:    d.Name,
		DestinationEmoji:   d.Emoji,
		DestinationIconURL: d.IconURL,
		SourceURL:          sourceURL,
	}
}

// Destination returns the target page of the request.
func (m SaveToNotion) Destination() domain.Destination {
	return domain.Destination{
		ID:      m.DestinationID,
		Emoji:   m.DestinationEmoji,
		Name:    m.DestinationName,
		IconURL: m.DestinationIconURL,
	}
}

// NotionConnect starts the interactive authorization flow.
type NotionConnect struct{}

// NotionDisconnect discards the stored token.
type NotionDisconnect struct{}

// SearchPages looks up pages by title. An empty query lists recent pages.
type SearchPages struct {
	Query string `json:"query"`
}

// CreatePage creates a child page under ParentID.
type CreatePage struct {
	ParentID string `json:"parentPageId"`
	Title    string `json:"title"`
}

// GetAuthState reports whether a workspace is connected.
type GetAuthState struct{}

// GetSettings returns the stored settings.
type GetSettings struct{}

// UpdateSettings merges Patch into the stored settings.
type UpdateSettings struct {
	Patch SettingsPatch `json:"patch"`
}

func (CopyDetected) Kind() Type     { return TypeCopyDetected }
func (ShowWidget) Kind() Type       { return TypeShowWidget }
func (SaveToNotion) Kind() Type     { return TypeSaveToNotion }
func (NotionConnect) Kind() Type    { return TypeNotionConnect }
func (NotionDisconnect) Kind() Type { return TypeNotionDisconnect }
func (SearchPages) Kind() Type      { return TypeSearchPages }
func (CreatePage) Kind() Type       { return TypeCreatePage }
func (GetAuthState) Kind() Type     { return TypeGetAuthState }
func (GetSettings) Kind() Type      { return TypeGetSettings }
func (UpdateSettings) Kind() Type   { return TypeUpdateSettings }

// SettingsPatch is a partial settings update; nil fields are left alone.
type SettingsPatch struct {
	Theme              *domain.Theme       `json:"theme,omitempty"`
	DefaultDestination *domain.Destination `json:"defaultDestination,omitempty"`
	ClearDefault       bool                `json:"clearDefault,omitempty"`
	AutoDismiss        *bool               `json:"autoDismiss,omitempty"`
	DismissTimer       *int                `json:"dismissTimer,omitempty"`
	WidgetEnabled      *bool               `json:"widgetEnabled,omitempty"`
	IncludeSourceURL   *bool               `json:"includeSourceUrl,omitempty"`
	IncludeDateTime    *bool               `json:"includeDateTime,omitempty"`
	FavoritePageIDs    []string            `json:"favoritePageIds,omitempty"`
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s *domain.Settings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.ClearDefault {
		s.SetDefaultDestination(nil)
	}
	if p.DefaultDestination != nil {
		s.SetDefaultDestination(p.DefaultDestination)
	}
	if p.AutoDismiss != nil {
		s.AutoDismiss = *p.AutoDismiss
	}
	if p.DismissTimer != nil {
		s.DismissTimer = *p.DismissTimer
	}
	if p.WidgetEnabled != nil {
		s.WidgetEnabled = *p.WidgetEnabled
	}
	if p.IncludeSourceURL != nil {
		s.IncludeSourceURL = *p.IncludeSourceURL
	}
	if p.IncludeDateTime != nil {
		s.IncludeDateTime = *p.IncludeDateTime
	}
	if p.FavoritePageIDs != nil {
		s.FavoritePageIDs = append([]string(nil), p.FavoritePageIDs...)
	}
}

// PatchFromWidget builds the patch the widget settings view persists.
func PatchFromWidget(w domain.WidgetSettings) SettingsPatch {
	theme := w.Theme
	autoDismiss := w.AutoDismiss
	timer := w.DismissTimer
	source := w.IncludeSourceURL
	dateTime := w.IncludeDateTime
	return SettingsPatch{
		Theme:            &theme,
		AutoDismiss:      &autoDismiss,
		DismissTimer:     &timer,
		IncludeSourceURL: &source,
		IncludeDateTime:  &dateTime,
	}
}
