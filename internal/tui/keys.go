package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/clipflow/internal/detector"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/widget"
)

// copyChord is what Ctrl+C means in this program: a copy, never a quit.
var copyChord = detector.Chord{Key: "c", Ctrl: true}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "ctrl+q":
		return tea.Quit
	case "ctrl+c":
		m.detector.OnKeyDown(copyChord)
		return nil
	}

	s, visible := m.widget.State()
	if !visible {
		switch key.String() {
		case "q":
			return tea.Quit
		case "r":
			if m.invalidated {
				m.status = "Reconnecting..."
				return m.rebindCmd()
			}
		}
		return nil
	}

	if key.Type == tea.KeyEsc {
		if s.View == widget.ViewQuickSave {
			m.widget.Escape()
		} else {
			m.widget.Back()
		}
		m.syncInputs()
		return nil
	}

	m.widget.Interact()
	var cmd tea.Cmd
	switch s.View {
	case widget.ViewQuickSave:
		cmd = m.quickSaveKey(key, s)
	case widget.ViewDestinationPicker:
		cmd = m.pickerKey(key)
	case widget.ViewCreatePage:
		cmd = m.createKey(key)
	case widget.ViewSettings:
		m.settingsKey(key, s)
	}
	m.syncInputs()
	return cmd
}

func (m *Model) quickSaveKey(key tea.KeyMsg, s widget.State) tea.Cmd {
	switch key.String() {
	case "enter", "s":
		if s.Status == widget.SaveError {
			m.widget.Retry()
		} else {
			m.widget.Save()
		}
	case "d":
		m.widget.Navigate(widget.ViewDestinationPicker)
	case ",":
		m.widget.Navigate(widget.ViewSettings)
	case "x":
		m.widget.Hide()
	case "q":
		return tea.Quit
	}
	return nil
}

func (m *Model) pickerKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up":
		m.widget.CursorUp()
		return nil
	case "down":
		m.widget.CursorDown()
		return nil
	case "enter":
		m.widget.Choose()
		return nil
	case "ctrl+n":
		m.widget.Navigate(widget.ViewCreatePage)
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(key)
	if v := m.search.Value(); v != before {
		m.widget.SetQuery(v)
	}
	return cmd
}

func (m *Model) createKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "tab":
		m.widget.NextParent()
		return nil
	case "enter":
		m.widget.SetTitle(m.title.Value())
		m.widget.SubmitCreate()
		return nil
	}

	var cmd tea.Cmd
	m.title, cmd = m.title.Update(key)
	m.widget.SetTitle(m.title.Value())
	return cmd
}

func (m *Model) settingsKey(key tea.KeyMsg, s widget.State) {
	switch key.String() {
	case "t":
		m.widget.ToggleTheme()
	case "a":
		m.widget.SetAutoDismiss(!s.Settings.AutoDismiss)
	case "+", "=":
		m.widget.SetDismissTimer(s.Settings.DismissTimer + 1)
	case "-":
		m.widget.SetDismissTimer(s.Settings.DismissTimer - 1)
	case "u":
		m.widget.SetIncludeSourceURL(!s.Settings.IncludeSourceURL)
	case "d":
		m.widget.SetIncludeDateTime(!s.Settings.IncludeDateTime)
	}
}

// syncInputs focuses the text input matching the current view.
func (m *Model) syncInputs() {
	s, ok := m.widget.State()
	switch {
	case ok && s.View == widget.ViewDestinationPicker:
		m.title.Blur()
		if !m.search.Focused() {
			m.search.SetValue(s.Query)
			m.search.Focus()
		}
	case ok && s.View == widget.ViewCreatePage:
		m.search.Blur()
		if !m.title.Focused() {
			m.title.SetValue(s.Title)
			m.title.Focus()
		}
	default:
		m.search.Blur()
		m.title.Blur()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	s, ok := m.widget.State()
	if !ok {
		return
	}
	at := domain.Position{X: msg.X, Y: msg.Y}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if !insidePanel(s.Position, at) {
			m.widget.ClickOutside()
			m.syncInputs()
			return
		}
		if onHeader(s.Position, at) {
			control := onCloseButton(s.Position, at)
			m.widget.PressHeader(at, control)
			if control {
				m.widget.Hide()
				m.syncInputs()
			}
			return
		}
		m.widget.Interact()
	case tea.MouseActionMotion:
		m.widget.Move(at)
	case tea.MouseActionRelease:
		m.widget.Release()
	}
}

func insidePanel(p, at domain.Position) bool {
	fp := detector.TerminalLayout.Footprint
	return at.X >= p.X && at.X < p.X+fp.Width && at.Y >= p.Y && at.Y < p.Y+fp.Height
}

// onHeader covers the top border and the title row.
func onHeader(p, at domain.Position) bool {
	return insidePanel(p, at) && at.Y <= p.Y+1
}

func onCloseButton(p, at domain.Position) bool {
	fp := detector.TerminalLayout.Footprint
	return onHeader(p, at) && at.X >= p.X+fp.Width-4
}
