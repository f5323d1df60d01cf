package messages

// HTTP transport conventions shared by the daemon and its clients.
const (
	// HeaderTab carries the page-context id of the sender, if any.
	HeaderTab = "X-Clipflow-Tab"

	// HeaderRuntime carries the runtime id the sender bound to. A mismatch
	// means the daemon restarted under the sender.
	HeaderRuntime = "X-Clipflow-Runtime"

	// ContextInvalidated is the error text returned with 409 Conflict.
	ContextInvalidated = "context invalidated"
)

// RuntimeInfo identifies one daemon run.
type RuntimeInfo struct {
	Runtime string `json:"runtime"`
	Version string `json:"version"`
}

// TabRegistration is returned when a page context registers.
type TabRegistration struct {
	ID      string `json:"id"`
	Runtime string `json:"runtime"`
}

// ErrorBody is the JSON body of every non-2xx transport response.
type ErrorBody struct {
	Error string `json:"error"`
}
