package messages

import "github.com/MrSnakeDoc/clipflow/internal/domain"

// CopyAck answers COPY_DETECTED. OK is true even when no widget was shown.
type CopyAck struct {
	OK bool `json:"ok"`
}

// SaveResult answers SAVE_TO_NOTION.
type SaveResult struct {
	Type    Type   `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ConnectResult answers NOTION_CONNECT.
type ConnectResult struct {
	Success       bool   `json:"success"`
	WorkspaceName string `json:"workspaceName,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DisconnectResult answers NOTION_DISCONNECT. Success is always true.
type DisconnectResult struct {
	Success bool `json:"success"`
}

// SearchPagesResult answers SEARCH_PAGES.
type SearchPagesResult struct {
	Success bool                 `json:"success"`
	Pages   []domain.Destination `json:"pages"`
	Error   string               `json:"error,omitempty"`
}

// CreatePageResult answers CREATE_PAGE.
type CreatePageResult struct {
	Success bool                `json:"success"`
	Page    *domain.Destination `json:"page,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// AuthStateResult answers GET_AUTH_STATE.
type AuthStateResult struct {
	IsConnected   bool   `json:"isConnected"`
	WorkspaceName string `json:"workspaceName,omitempty"`
}

// SettingsResult answers GET_SETTINGS and UPDATE_SETTINGS.
type SettingsResult struct {
	Success  bool             `json:"success"`
	Settings *domain.Settings `json:"settings,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// SaveOK is the successful save response.
func SaveOK() SaveResult {
	return SaveResult{Type: TypeSaveResult, Success: true}
}

// SaveFailed wraps a save error message, using fallback text for an empty one.
func SaveFailed(msg string) SaveResult {
	return SaveResult{Type: TypeSaveResult, Success: false, Error: orFallback(msg, FallbackSaveError)}
}

// ErrorText returns err's message, or fallback when err is nil or has no text.
func ErrorText(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return orFallback(err.Error(), fallback)
}

func orFallback(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}
