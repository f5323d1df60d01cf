package domain

import "time"

// Position is an on-screen anchor in viewport coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in the same unit as Position.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect is the bounding box of a text selection.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Empty reports whether the rectangle has neither width nor height.
func (r Rect) Empty() bool {
	return r.Right-r.Left <= 0 && r.Bottom-r.Top <= 0
}

// Theme is the panel colour scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Destination identifies a target page in the workspace.
// Two destinations are the same page when their IDs match.
type Destination struct {
	ID      string `json:"id"`
	Emoji   string `json:"emoji"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Same reports whether d and other point at the same page.
func (d Destination) Same(other Destination) bool {
	return d.ID == other.ID
}

// IsZero reports whether no page has been chosen.
func (d Destination) IsZero() bool {
	return d.ID == ""
}

// PlaceholderDestination is shown while no page is selected.
func PlaceholderDestination() Destination {
	return Destination{Emoji: "📝", Name: "Choose a page"}
}

// SaveRecord is one entry of the save history. Records are never mutated.
type SaveRecord struct {
	ID                 string    `json:"id"`
	TextPreview        string    `json:"textPreview"`
	DestinationID      string    `json:"destinationId"`
	DestinationName    string    `json:"destinationName"`
	DestinationEmoji   string    `json:"destinationEmoji"`
	DestinationIconURL string    `json:"destinationIconUrl,omitempty"`
	SavedAt            time.Time `json:"savedAt"`
	SourceURL          string    `json:"sourceUrl"`
}

// AuthState holds the workspace token issued by the OAuth exchange.
type AuthState struct {
	AccessToken    string    `json:"accessToken"`
	WorkspaceID    string    `json:"workspaceId"`
	WorkspaceName  string    `json:"workspaceName"`
	BotID          string    `json:"botId"`
	TokenCreatedAt time.Time `json:"tokenCreatedAt"`
}

// Connected reports whether a usable token is present.
func (a *AuthState) Connected() bool {
	return a != nil && a.AccessToken != ""
}

// SubscriptionStatus mirrors the billing provider states.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionNone     SubscriptionStatus = "none"
)

// Subscription is the paid-plan state.
type Subscription struct {
	IsPro            bool               `json:"isPro"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time         `json:"currentPeriodEnd,omitempty"`
	LastChecked      time.Time          `json:"lastChecked"`
}

// Paid reports whether saves are unlimited. A nil subscription is free tier.
func (s *Subscription) Paid() bool {
	return s != nil && s.IsPro
}

// Settings is the persistent configuration shared by every surface.
type Settings struct {
	Theme                   Theme    `json:"theme"`
	DefaultDestinationID    string   `json:"defaultDestinationId,omitempty"`
	DefaultDestinationEmoji string   `json:"defaultDestinationEmoji"`
	DefaultDestinationName  string   `json:"defaultDestinationName"`
	DefaultDestinationIcon  string   `json:"defaultDestinationIconUrl,omitempty"`
	AutoDismiss             bool     `json:"autoDismiss"`
	DismissTimer            int      `json:"dismissTimer"` // seconds
	WidgetEnabled           bool     `json:"widgetEnabled"`
	IncludeSourceURL        bool     `json:"includeSourceUrl"`
	IncludeDateTime         bool     `json:"includeDateTime"`
	FavoritePageIDs         []string `json:"favoritePageIds"`
}

// DefaultSettings returns the settings used before anything is stored.
func DefaultSettings() Settings {
	placeholder := PlaceholderDestination()
	return Settings{
		Theme:                   ThemeDark,
		DefaultDestinationEmoji: placeholder.Emoji,
		DefaultDestinationName:  placeholder.Name,
		AutoDismiss:             false,
		DismissTimer:            5,
		WidgetEnabled:           true,
		FavoritePageIDs:         []string{},
	}
}

// DefaultDestination returns the configured default page, if any.
func (s Settings) DefaultDestination() *Destination {
	if s.DefaultDestinationID == "" {
		return nil
	}
	return &Destination{
		ID:      s.DefaultDestinationID,
		Emoji:   s.DefaultDestinationEmoji,
		Name:    s.DefaultDestinationName,
		IconURL: s.DefaultDestinationIcon,
	}
}

// SetDefaultDestination stores d as the default page; nil clears it.
func (s *Settings) SetDefaultDestination(d *Destination) {
	if d == nil || d.IsZero() {
		placeholder := PlaceholderDestination()
		s.DefaultDestinationID = ""
		s.DefaultDestinationEmoji = placeholder.Emoji
		s.DefaultDestinationName = placeholder.Name
		s.DefaultDestinationIcon = ""
		return
	}
	s.DefaultDestinationID = d.ID
	s.DefaultDestinationEmoji = d.Emoji
	s.DefaultDestinationName = d.Name
	s.DefaultDestinationIcon = d.IconURL
}

// WidgetSettings is the theme/behaviour subset handed to the widget.
type WidgetSettings struct {
	Theme            Theme `json:"theme"`
	AutoDismiss      bool  `json:"autoDismiss"`
	DismissTimer     int   `json:"dismissTimer"`
	IncludeSourceURL bool  `json:"includeSourceUrl"`
	IncludeDateTime  bool  `json:"includeDateTime"`
}

// Widget extracts the subset of s the widget renders with.
func (s Settings) Widget() WidgetSettings {
	return WidgetSettings{
		Theme:            s.Theme,
		AutoDismiss:      s.AutoDismiss,
		DismissTimer:     s.DismissTimer,
		IncludeSourceURL: s.IncludeSourceURL,
		IncludeDateTime:  s.IncludeDateTime,
	}
}

// Bounds of the dismiss timer, in seconds.
const (
	MinDismissTimer = 3
	MaxDismissTimer = 15
)

// ClampDismissTimer keeps seconds within the supported range.
func ClampDismissTimer(seconds int) int {
	return min(max(seconds, MinDismissTimer), MaxDismissTimer)
}

// DismissDelay converts the configured timer into a duration.
func (w WidgetSettings) DismissDelay() time.Duration {
	if w.DismissTimer <= 0 {
		return 0
	}
	return time.Duration(w.DismissTimer) * time.Second
}
