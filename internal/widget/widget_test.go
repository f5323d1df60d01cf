package widget

import (
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/clock"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

type searchCall struct {
	seq   int
	query string
}

type recordingEffects struct {
	saves    []messages.SaveToNotion
	recent   int
	searches []searchCall
	creates  []string
	patches  []messages.SettingsPatch
	closed   []uint64
}

func (e *recordingEffects) Save(_ uint64, req messages.SaveToNotion) {
	e.saves = append(e.saves, req)
}

func (e *recordingEffects) LoadRecent(uint64) {
	e.recent++
}

func (e *recordingEffects) Search(_ uint64, seq int, q string) {
	e.searches = append(e.searches, searchCall{seq, q})
}

func (e *recordingEffects) CreatePage(_ uint64, parentID, title string) {
	e.creates = append(e.creates, parentID+"/"+title)
}

func (e *recordingEffects) PersistSettings(p messages.SettingsPatch) {
	e.patches = append(e.patches, p)
}

func (e *recordingEffects) Closed(id uint64) {
	e.closed = append(e.closed, id)
}

var (
	inbox = domain.Destination{ID: "p1", Emoji: "📥", Name: "Inbox"}
	ideas = domain.Destination{ID: "p2", Emoji: "💡", Name: "Ideas"}
	books = domain.Destination{ID: "p3", Emoji: "📚", Name: "Books"}
)

func newTestWidget(t *testing.T) (*Widget, *clock.Fake, *recordingEffects) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC))
	eff := &recordingEffects{}
	w := New(Options{
		Clock:     clk,
		Effects:   eff,
		Viewport:  domain.Size{Width: 1280, Height: 800},
		Footprint: domain.Size{Width: 376, Height: 320},
	})
	return w, clk, eff
}

func showMsg(dest *domain.Destination, autoDismiss bool) messages.ShowWidget {
	return messages.ShowWidget{
		Text:               "hello world",
		Position:           domain.Position{X: 100, Y: 100},
		DefaultDestination: dest,
		Settings: domain.WidgetSettings{
			Theme:        domain.ThemeDark,
			AutoDismiss:  autoDismiss,
			DismissTimer: 5,
		},
		SourceURL: "https://example.com/post",
	}
}

func mustState(t *testing.T, w *Widget) State {
	t.Helper()
	s, ok := w.State()
	if !ok {
		t.Fatal("widget is hidden, want visible")
	}
	return s
}

func TestDirection(t *testing.T) {
	tests := []struct {
		from, to View
		want     int
	}{
		{ViewQuickSave, ViewDestinationPicker, 1},
		{ViewDestinationPicker, ViewCreatePage, 1},
		{ViewCreatePage, ViewDestinationPicker, -1},
		{ViewSettings, ViewQuickSave, -1},
		{ViewQuickSave, ViewQuickSave, 1},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := Direction(tt.from, tt.to); got != tt.want {
				t.Errorf("Direction() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShowAndHide(t *testing.T) {
	w, clk, eff := newTestWidget(t)

	w.Show(showMsg(&inbox, true))
	first := mustState(t, w)
	if first.View != ViewQuickSave || first.Status != SaveIdle || first.Destination != inbox {
		t.Fatalf("initial state = %+v", first)
	}

	w.Show(showMsg(nil, true))
	second := mustState(t, w)
	if second.ID == first.ID {
		t.Error("Show() reused the previous instance")
	}
	if !second.Destination.IsZero() || second.DisplayDestination().Name != "Choose a page" {
		t.Errorf("destination = %+v, want placeholder", second.DisplayDestination())
	}
	if len(eff.closed) != 1 || eff.closed[0] != first.ID {
		t.Errorf("closed = %v, want [%d]", eff.closed, first.ID)
	}

	w.Hide()
	w.Hide()
	if w.Visible() {
		t.Fatal("widget still visible after Hide()")
	}
	if len(eff.closed) != 2 {
		t.Errorf("closed = %v, want two instances", eff.closed)
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers = %d, want 0", clk.Pending())
	}
}

func TestShow_ClampsPosition(t *testing.T) {
	w, _, _ := newTestWidget(t)
	m := showMsg(&inbox, false)
	m.Position = domain.Position{X: 5000, Y: -20}
	w.Show(m)

	if got := mustState(t, w).Position; got != (domain.Position{X: 1280 - 376, Y: 0}) {
		t.Errorf("Position = %+v", got)
	}
}

func TestAutoDismiss(t *testing.T) {
	tests := []struct {
		name     string
		auto     bool
		act      func(w *Widget)
		wantOpen bool
	}{
		{"closes after delay", true, func(*Widget) {}, false},
		{"disabled", false, func(*Widget) {}, true},
		{"away from home", true, func(w *Widget) { w.Navigate(ViewSettings) }, true},
		{"after drag", true, func(w *Widget) {
			w.PressHeader(domain.Position{X: 110, Y: 110}, false)
			w.Move(domain.Position{X: 150, Y: 150})
			w.Release()
		}, true},
		{"while saving", true, func(w *Widget) { w.Save() }, true},
		{"header held without moving", true, func(w *Widget) {
			w.PressHeader(domain.Position{X: 110, Y: 110}, false)
		}, true},
		{"press on header control", true, func(w *Widget) {
			w.PressHeader(domain.Position{X: 110, Y: 110}, true)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, clk, _ := newTestWidget(t)
			w.Show(showMsg(&inbox, tt.auto))
			tt.act(w)
			clk.Advance(5 * time.Second)
			if w.Visible() != tt.wantOpen {
				t.Errorf("Visible() = %v, want %v", w.Visible(), tt.wantOpen)
			}
		})
	}
}

func TestAutoDismiss_InteractionRestartsTimer(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, true))

	clk.Advance(4 * time.Second)
	w.Interact()
	clk.Advance(4 * time.Second)
	if !w.Visible() {
		t.Fatal("closed before the restarted delay elapsed")
	}
	clk.Advance(time.Second)
	if w.Visible() {
		t.Error("still visible after the restarted delay")
	}
}

func TestAutoDismiss_ReturningHomeRearms(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, true))

	w.Navigate(ViewSettings)
	clk.Advance(10 * time.Second)
	w.Back()
	clk.Advance(5 * time.Second)
	if w.Visible() {
		t.Error("still visible after returning home and waiting")
	}
}

func TestDrag(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, false))

	w.PressHeader(domain.Position{X: 120, Y: 110}, true)
	w.Move(domain.Position{X: 300, Y: 300})
	if mustState(t, w).Position != (domain.Position{X: 100, Y: 100}) {
		t.Fatal("press on a header control started a drag")
	}

	w.PressHeader(domain.Position{X: 120, Y: 110}, false)
	w.Move(domain.Position{X: 220, Y: 160})
	if got := mustState(t, w).Position; got != (domain.Position{X: 200, Y: 150}) {
		t.Errorf("Position = %+v, want {200 150}", got)
	}
	w.Move(domain.Position{X: 5000, Y: 5000})
	if got := mustState(t, w).Position; got != (domain.Position{X: 1280 - 376, Y: 800 - 320}) {
		t.Errorf("Position = %+v, want clamped to viewport", got)
	}

	w.Escape()
	if !w.Visible() {
		t.Fatal("Escape closed the panel mid-drag")
	}

	w.Release()
	w.ClickOutside()
	if !w.Visible() {
		t.Fatal("click outside during grace closed the panel")
	}

	clk.Advance(DragGrace)
	w.ClickOutside()
	if w.Visible() {
		t.Error("click outside after grace did not close the panel")
	}
}

func TestDrag_HoldKeepsPanelOpen(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, true))

	w.PressHeader(domain.Position{X: 110, Y: 110}, false)
	clk.Advance(10 * time.Second)

	s, ok := w.State()
	if !ok {
		t.Fatal("panel auto-dismissed while the header was held")
	}
	if !s.Dragging || !s.Dragged {
		t.Errorf("Dragging = %v, Dragged = %v, want both true", s.Dragging, s.Dragged)
	}
}

func TestSave_WithoutDestinationOpensPicker(t *testing.T) {
	w, _, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Save()

	s := mustState(t, w)
	if s.View != ViewDestinationPicker || s.Status != SaveIdle {
		t.Errorf("state = view %s status %s, want picker idle", s.View, s.Status)
	}
	if len(eff.saves) != 0 || eff.recent != 1 {
		t.Errorf("saves = %d, recent loads = %d", len(eff.saves), eff.recent)
	}
}

func TestSave_Lifecycle(t *testing.T) {
	tests := []struct {
		name      string
		finish    func(w *Widget, id uint64)
		status    SaveStatus
		kind      ErrorKind
		errorText string
	}{
		{"success", func(w *Widget, id uint64) { w.SaveFinished(id, messages.SaveOK()) }, SaveSuccess, ErrorNone, ""},
		{"daily limit", func(w *Widget, id uint64) {
			w.SaveFinished(id, messages.SaveFailed(domain.DailyLimitMessage))
		}, SaveError, ErrorDailyLimit, domain.DailyLimitMessage},
		{"api error", func(w *Widget, id uint64) {
			w.SaveFinished(id, messages.SaveFailed("page archived"))
		}, SaveError, ErrorGeneric, "page archived"},
		{"transport error", func(w *Widget, id uint64) {
			w.SaveErrored(id, errors.New("connection refused"))
		}, SaveError, ErrorGeneric, GenericSaveError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, eff := newTestWidget(t)
			w.Show(showMsg(&inbox, false))
			w.Save()
			w.Save()

			if len(eff.saves) != 1 {
				t.Fatalf("saves = %d, want 1 while loading", len(eff.saves))
			}
			req := eff.saves[0]
			if req.Text != "hello world" || req.DestinationID != "p1" || req.SourceURL != "https://example.com/post" {
				t.Errorf("save request = %+v", req)
			}

			tt.finish(w, mustState(t, w).ID)
			s := mustState(t, w)
			if s.Status != tt.status || s.ErrorKind != tt.kind || s.ErrorText != tt.errorText {
				t.Errorf("state = %s/%d/%q, want %s/%d/%q", s.Status, s.ErrorKind, s.ErrorText, tt.status, tt.kind, tt.errorText)
			}
		})
	}
}

func TestSave_RetryAndTerminalSuccess(t *testing.T) {
	w, _, eff := newTestWidget(t)
	w.Show(showMsg(&inbox, false))
	id := mustState(t, w).ID

	w.Retry()
	if len(eff.saves) != 0 {
		t.Fatal("Retry() from idle sent a request")
	}

	w.Save()
	w.SaveErrored(id, errors.New("timeout"))
	w.Retry()
	if s := mustState(t, w); s.Status != SaveLoading || len(eff.saves) != 2 {
		t.Fatalf("after retry status = %s, saves = %d", s.Status, len(eff.saves))
	}

	w.SaveFinished(id, messages.SaveOK())
	w.Save()
	w.SaveFinished(id, messages.SaveFailed("late"))
	if s := mustState(t, w); s.Status != SaveSuccess || len(eff.saves) != 2 {
		t.Errorf("success is not terminal: status = %s, saves = %d", s.Status, len(eff.saves))
	}
}

func TestSave_SuccessClosesAfterDelay(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, true))
	w.PressHeader(domain.Position{X: 110, Y: 110}, false)
	w.Move(domain.Position{X: 140, Y: 140})
	w.Release()

	w.Save()
	w.SaveFinished(mustState(t, w).ID, messages.SaveOK())

	clk.Advance(4 * time.Second)
	if !w.Visible() {
		t.Fatal("closed before the delay")
	}
	clk.Advance(time.Second)
	if w.Visible() {
		t.Error("still visible after a successful save and the delay")
	}
}

func TestSave_StaleInstanceIgnored(t *testing.T) {
	w, _, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, false))
	old := mustState(t, w).ID
	w.Save()

	w.Show(showMsg(&inbox, false))
	w.SaveFinished(old, messages.SaveFailed("boom"))
	if s := mustState(t, w); s.Status != SaveIdle {
		t.Errorf("new instance status = %s, want idle", s.Status)
	}
}

func TestPicker_LocalFilterAndDebouncedSearch(t *testing.T) {
	w, clk, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Navigate(ViewDestinationPicker)
	id := mustState(t, w).ID

	w.RecentLoaded(id, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{inbox, ideas, books}})
	if got := mustState(t, w).Results; len(got) != 3 {
		t.Fatalf("Results = %v, want all recent pages", got)
	}

	w.SetQuery("bo")
	w.SetQuery("books")
	s := mustState(t, w)
	if len(s.Results) != 1 || s.Results[0] != books {
		t.Errorf("local Results = %v, want [Books]", s.Results)
	}
	if len(eff.searches) != 0 {
		t.Fatal("search sent before the debounce elapsed")
	}

	clk.Advance(SearchDebounce)
	if len(eff.searches) != 1 || eff.searches[0].query != "books" {
		t.Fatalf("searches = %+v, want one for books", eff.searches)
	}
	seq := eff.searches[0].seq

	remote := domain.Destination{ID: "p7", Emoji: "📖", Name: "Book club"}
	w.SearchFinished(id, seq, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{remote}})
	if got := mustState(t, w).Results; len(got) != 1 || got[0] != remote {
		t.Errorf("Results = %v, want remote page", got)
	}
}

func TestPicker_StaleSearchDropped(t *testing.T) {
	w, clk, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Navigate(ViewDestinationPicker)
	id := mustState(t, w).ID
	w.RecentLoaded(id, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{inbox, ideas}})

	w.SetQuery("in")
	clk.Advance(SearchDebounce)
	stale := eff.searches[0].seq

	w.SetQuery("ide")
	w.SearchFinished(id, stale, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{inbox}})

	s := mustState(t, w)
	if len(s.Results) != 1 || s.Results[0] != ideas {
		t.Errorf("Results = %v, stale answer was applied", s.Results)
	}
	if !s.Searching {
		t.Error("Searching cleared by a stale answer")
	}
}

func TestPicker_LoadFailureAndEmptyText(t *testing.T) {
	w, _, _ := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Navigate(ViewDestinationPicker)
	id := mustState(t, w).ID

	w.RecentLoaded(id, messages.SearchPagesResult{Success: false, Error: "unauthorized"})
	s := mustState(t, w)
	if s.PickerError != LoadPagesError || s.LoadingPages {
		t.Errorf("PickerError = %q, LoadingPages = %v", s.PickerError, s.LoadingPages)
	}
	if s.EmptyText() != NoPagesAvailable {
		t.Errorf("EmptyText() = %q", s.EmptyText())
	}

	w.SetQuery("zzz")
	if got := mustState(t, w).EmptyText(); got != NoPagesFound {
		t.Errorf("EmptyText() = %q, want %q", got, NoPagesFound)
	}
}

func TestPicker_CursorAndChoose(t *testing.T) {
	w, _, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Save()
	id := mustState(t, w).ID
	w.RecentLoaded(id, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{inbox, ideas}})

	w.CursorUp()
	w.CursorDown()
	w.CursorDown()
	w.Choose()

	s := mustState(t, w)
	if s.View != ViewQuickSave || s.Destination != ideas || s.Direction != -1 {
		t.Errorf("after Choose view = %s dest = %v dir = %d", s.View, s.Destination, s.Direction)
	}

	w.Navigate(ViewDestinationPicker)
	if eff.recent != 1 {
		t.Errorf("recent loads = %d, want 1 (cached)", eff.recent)
	}
}

func TestCreatePage(t *testing.T) {
	w, _, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Navigate(ViewDestinationPicker)
	id := mustState(t, w).ID
	w.RecentLoaded(id, messages.SearchPagesResult{Success: true, Pages: []domain.Destination{inbox, ideas}})

	w.Navigate(ViewCreatePage)
	w.SetTitle("   ")
	w.SubmitCreate()
	if s := mustState(t, w); s.CreateText != TitleRequired || len(eff.creates) != 0 {
		t.Fatalf("empty title: CreateText = %q, creates = %v", s.CreateText, eff.creates)
	}

	w.SetTitle("Reading list")
	w.NextParent()
	w.SubmitCreate()
	if len(eff.creates) != 1 || eff.creates[0] != "p2/Reading list" {
		t.Fatalf("creates = %v", eff.creates)
	}

	w.PageCreated(id, messages.CreatePageResult{Success: false})
	if s := mustState(t, w); s.CreateText != messages.FallbackCreateError || s.View != ViewCreatePage {
		t.Fatalf("failure: CreateText = %q view = %s", s.CreateText, s.View)
	}

	w.SubmitCreate()
	page := domain.Destination{ID: "p9", Emoji: "📄", Name: "Reading list"}
	w.PageCreated(id, messages.CreatePageResult{Success: true, Page: &page})

	s := mustState(t, w)
	if s.View != ViewQuickSave || s.Destination != page {
		t.Errorf("after create view = %s dest = %v", s.View, s.Destination)
	}
	if len(s.Recent) != 3 || s.Recent[0] != page {
		t.Errorf("Recent = %v, want new page first", s.Recent)
	}
}

func TestCreatePage_RequiresParent(t *testing.T) {
	w, _, eff := newTestWidget(t)
	w.Show(showMsg(nil, false))
	w.Navigate(ViewCreatePage)
	w.SetTitle("Orphan")
	w.SubmitCreate()

	if s := mustState(t, w); s.CreateText != ParentRequired || len(eff.creates) != 0 {
		t.Errorf("CreateText = %q, creates = %v", s.CreateText, eff.creates)
	}
	w.Back()
	if got := mustState(t, w).View; got != ViewDestinationPicker {
		t.Errorf("Back() from create-page = %s, want destination-picker", got)
	}
}

func TestSettings_PersistWithoutRollback(t *testing.T) {
	tests := []struct {
		name  string
		apply func(w *Widget)
		check func(s domain.WidgetSettings) bool
	}{
		{"theme", func(w *Widget) { w.ToggleTheme() }, func(s domain.WidgetSettings) bool { return s.Theme == domain.ThemeLight }},
		{"auto dismiss", func(w *Widget) { w.SetAutoDismiss(true) }, func(s domain.WidgetSettings) bool { return s.AutoDismiss }},
		{"timer low", func(w *Widget) { w.SetDismissTimer(1) }, func(s domain.WidgetSettings) bool { return s.DismissTimer == 3 }},
		{"timer high", func(w *Widget) { w.SetDismissTimer(60) }, func(s domain.WidgetSettings) bool { return s.DismissTimer == 15 }},
		{"source url", func(w *Widget) { w.SetIncludeSourceURL(true) }, func(s domain.WidgetSettings) bool { return s.IncludeSourceURL }},
		{"date time", func(w *Widget) { w.SetIncludeDateTime(true) }, func(s domain.WidgetSettings) bool { return s.IncludeDateTime }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, eff := newTestWidget(t)
			w.Show(showMsg(&inbox, false))
			w.Navigate(ViewSettings)
			tt.apply(w)

			s := mustState(t, w).Settings
			if !tt.check(s) {
				t.Errorf("settings = %+v", s)
			}
			if len(eff.patches) != 1 {
				t.Fatalf("patches = %d, want 1", len(eff.patches))
			}
			p := eff.patches[0]
			if *p.Theme != s.Theme || *p.DismissTimer != s.DismissTimer || *p.AutoDismiss != s.AutoDismiss {
				t.Errorf("patch does not match local settings: %+v", p)
			}
		})
	}
}

func TestSettings_ChangedTimerUsedOnReturn(t *testing.T) {
	w, clk, _ := newTestWidget(t)
	w.Show(showMsg(&inbox, false))
	w.Navigate(ViewSettings)
	w.SetAutoDismiss(true)
	w.SetDismissTimer(3)
	w.Back()

	clk.Advance(3 * time.Second)
	if w.Visible() {
		t.Error("panel did not auto-dismiss with the new timer")
	}
}
