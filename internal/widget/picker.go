package widget

import (
	"strings"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

func (w *Widget) openPicker(in *instance) {
	in.Query = ""
	in.Cursor = 0
	in.PickerError = ""
	in.Searching = false
	in.searchSeq++
	if in.debounce != nil {
		in.debounce.Stop()
		in.debounce = nil
	}

	if in.recentReady {
		in.Results = in.Recent
		return
	}
	if in.LoadingPages {
		return
	}
	in.LoadingPages = true
	if w.eff != nil {
		w.eff.LoadRecent(in.ID)
	}
}

// RecentLoaded stores the recently edited pages.
func (w *Widget) RecentLoaded(id uint64, res messages.SearchPagesResult) {
	in := w.live(id)
	if in == nil || !in.LoadingPages {
		return
	}
	in.LoadingPages = false
	if !res.Success {
		in.PickerError = LoadPagesError
		return
	}
	in.recentReady = true
	in.Recent = res.Pages
	if !in.Searching {
		in.Results = domain.FilterDestinations(in.Query, in.Recent, nil, nil)
		in.Cursor = 0
	}
}

// SetQuery filters the known pages at once and schedules a remote search.
func (w *Widget) SetQuery(q string) {
	in := w.cur
	if in == nil {
		return
	}
	in.Query = q
	in.Results = domain.FilterDestinations(q, in.Recent, nil, nil)
	in.Cursor = 0
	in.PickerError = ""
	in.searchSeq++

	if in.debounce != nil {
		in.debounce.Stop()
		in.debounce = nil
	}
	if strings.TrimSpace(q) == "" {
		in.Searching = false
		return
	}

	in.Searching = true
	id, seq := in.ID, in.searchSeq
	in.debounce = w.clock.AfterFunc(SearchDebounce, func() {
		cur := w.live(id)
		if cur == nil || cur.searchSeq != seq {
			return
		}
		cur.debounce = nil
		if w.eff != nil {
			w.eff.Search(id, seq, q)
		}
	})
	w.armDismiss()
}

// SearchFinished applies a remote search result. Answers to superseded
// queries are dropped.
func (w *Widget) SearchFinished(id uint64, seq int, res messages.SearchPagesResult) {
	in := w.live(id)
	if in == nil || in.searchSeq != seq {
		return
	}
	in.Searching = false
	if !res.Success {
		in.PickerError = LoadPagesError
		return
	}
	in.Results = res.Pages
	in.Cursor = 0
}

// CursorDown moves the picker highlight to the next result.
func (w *Widget) CursorDown() {
	if in := w.cur; in != nil && in.Cursor < len(in.Results)-1 {
		in.Cursor++
	}
}

// CursorUp moves the picker highlight to the previous result.
func (w *Widget) CursorUp() {
	if in := w.cur; in != nil && in.Cursor > 0 {
		in.Cursor--
	}
}

// Choose selects the highlighted result.
func (w *Widget) Choose() {
	in := w.cur
	if in == nil || in.Cursor >= len(in.Results) {
		return
	}
	w.Select(in.Results[in.Cursor])
}

// Select makes d the destination and returns to quick-save.
func (w *Widget) Select(d domain.Destination) {
	in := w.cur
	if in == nil || d.IsZero() {
		return
	}
	in.Destination = d
	if in.Status == SaveError {
		in.Status = SaveIdle
		in.ErrorKind = ErrorNone
		in.ErrorText = ""
	}
	w.Navigate(ViewQuickSave)
}

// SetTitle edits the new page title.
func (w *Widget) SetTitle(title string) {
	if in := w.cur; in != nil {
		in.Title = title
		in.CreateText = ""
	}
}

// NextParent cycles the parent page through the recent pages.
func (w *Widget) NextParent() {
	in := w.cur
	if in == nil || len(in.Recent) == 0 {
		return
	}
	in.Parent = (in.Parent + 1) % len(in.Recent)
}

// SubmitCreate asks for a new page under the selected parent.
func (w *Widget) SubmitCreate() {
	in := w.cur
	if in == nil || in.View != ViewCreatePage || in.Creating {
		return
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		in.CreateText = TitleRequired
		return
	}
	parent, ok := in.ParentPage()
	if !ok {
		in.CreateText = ParentRequired
		return
	}

	in.Creating = true
	in.CreateText = ""
	if w.eff != nil {
		w.eff.CreatePage(in.ID, parent.ID, title)
	}
}

// PageCreated selects the new page on success.
func (w *Widget) PageCreated(id uint64, res messages.CreatePageResult) {
	in := w.live(id)
	if in == nil || !in.Creating {
		return
	}
	in.Creating = false
	if !res.Success || res.Page == nil {
		in.CreateText = res.Error
		if in.CreateText == "" {
			in.CreateText = messages.FallbackCreateError
		}
		return
	}

	page := *res.Page
	in.Recent = append([]domain.Destination{page}, in.Recent...)
	w.Select(page)
}
