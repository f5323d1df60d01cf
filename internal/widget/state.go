package widget

import "time"

// View is the panel's navigation axis.
type View int

const (
	ViewQuickSave View = iota
	ViewDestinationPicker
	ViewCreatePage
	ViewSettings
)

var viewNames = [...]string{"quick-save", "destination-picker", "create-page", "settings"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

// Direction is 1 when moving forward in view order and -1 when moving back.
// Staying on the same view counts as forward.
func Direction(from, to View) int {
	if to >= from {
		return 1
	}
	return -1
}

// parent is where Back leads from v.
func (v View) parent() View {
	if v == ViewCreatePage {
		return ViewDestinationPicker
	}
	return ViewQuickSave
}

// SaveStatus is the save axis, independent of View.
type SaveStatus int

const (
	SaveIdle SaveStatus = iota
	SaveLoading
	SaveSuccess
	SaveError
)

var statusNames = [...]string{"idle", "loading", "success", "error"}

func (s SaveStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// ErrorKind tells the UI which failure prompt to render.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorGeneric
	ErrorDailyLimit
)

// Timings and texts the panel depends on.
const (
	DragGrace      = 200 * time.Millisecond
	SearchDebounce = 300 * time.Millisecond

	GenericSaveError = "Failed to save — try again"
	UpgradeURL       = "https://clipflow.tools/upgrade"

	LoadPagesError   = "Failed to load pages"
	TitleRequired    = "Title is required"
	ParentRequired   = "Choose a parent page"
	NoPagesFound     = "No pages found"
	NoPagesAvailable = "No pages available"
)
