package notion

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when no workspace token is stored.
	ErrNotAuthenticated = errors.New("Not authenticated")

	// ErrEmptyText is returned by AppendText for blank input.
	ErrEmptyText = errors.New("Nothing to save")
)

// Operations reported in APIError.
const (
	OpSearch     = "search"
	OpAppend     = "append"
	OpCreatePage = "create page"
)

// APIError is a non-2xx response from the workspace API.
type APIError struct {
	Op         string
	StatusCode int
	Code       string // API error code, e.g. "object_not_found"
	Message    string // API error message, may be empty
}

// Error is the server message when the API sent one, a templated status
// line otherwise.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Op {
	case OpSearch:
		return fmt.Sprintf("Notion search failed: %d", e.StatusCode)
	case OpAppend:
		return fmt.Sprintf("Append failed: %d", e.StatusCode)
	case OpCreatePage:
		return fmt.Sprintf("Create page failed: %d", e.StatusCode)
	}
	return fmt.Sprintf("%s failed: %d", e.Op, e.StatusCode)
}

// IsUnauthorized reports whether err is a rejected or revoked token.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
