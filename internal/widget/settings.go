package widget

import (
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// ToggleTheme flips between the dark and light themes.
func (w *Widget) ToggleTheme() {
	w.updateSettings(func(s *domain.WidgetSettings) {
		if s.Theme == domain.ThemeLight {
			s.Theme = domain.ThemeDark
		} else {
			s.Theme = domain.ThemeLight
		}
	})
}

func (w *Widget) SetAutoDismiss(on bool) {
	w.updateSettings(func(s *domain.WidgetSettings) { s.AutoDismiss = on })
}

// SetDismissTimer sets the delay in seconds, clamped to the supported range.
func (w *Widget) SetDismissTimer(seconds int) {
	w.updateSettings(func(s *domain.WidgetSettings) { s.DismissTimer = domain.ClampDismissTimer(seconds) })
}

func (w *Widget) SetIncludeSourceURL(on bool) {
	w.updateSettings(func(s *domain.WidgetSettings) { s.IncludeSourceURL = on })
}

func (w *Widget) SetIncludeDateTime(on bool) {
	w.updateSettings(func(s *domain.WidgetSettings) { s.IncludeDateTime = on })
}

// updateSettings applies fn locally and persists the result. The local
// value stays even when persisting fails.
func (w *Widget) updateSettings(fn func(*domain.WidgetSettings)) {
	in := w.cur
	if in == nil {
		return
	}
	fn(&in.Settings)
	if w.eff != nil {
		w.eff.PersistSettings(messages.PatchFromWidget(in.Settings))
	}
	w.armDismiss()
}
