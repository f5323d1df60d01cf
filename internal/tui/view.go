package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/MrSnakeDoc/clipflow/internal/widget"
)

const (
	previewRows = 5
	pickerRows  = 6
)

func (m *Model) View() string {
	rows := m.background()

	if s, ok := m.widget.State(); ok {
		panel := strings.Split(m.renderPanel(s), "\n")
		rows = overlay(rows, panel, s.Position.X, s.Position.Y)
	}
	return strings.Join(rows, "\n")
}

// background is the screen under the panel: banner on top, status bar at
// the bottom.
func (m *Model) background() []string {
	height := max(m.height, 1)
	rows := make([]string, height)

	if m.banner != nil {
		rows[0] = bannerStyle.Render(m.banner.text)
	} else if height > 1 {
		rows[0] = helperStyle.Render("ClipFlow " + m.cfg.Version)
	}

	status := m.status
	if m.invalidated {
		status = "Context invalidated. Press r to reconnect."
	}
	bar := fmt.Sprintf("%s · copies %d · ctrl+c copy selection · q quit", status, m.copies)
	if m.width > 0 {
		bar = truncate.StringWithTail(bar, uint(max(m.width-2, 1)), "…")
	}
	if height > 1 {
		rows[height-1] = statusBarStyle.Render(bar)
	} else {
		rows[0] = statusBarStyle.Render(bar)
	}
	return rows
}

// overlay draws panel rows over rows starting at column x, row y.
func overlay(rows, panel []string, x, y int) []string {
	pad := strings.Repeat(" ", max(x, 0))
	for i, line := range panel {
		r := y + i
		if r < 0 {
			continue
		}
		for r >= len(rows) {
			rows = append(rows, "")
		}
		rows[r] = pad + line
	}
	return rows
}

func (m *Model) renderPanel(s widget.State) string {
	st := stylesFor(s.Settings.Theme)

	var body []string
	switch s.View {
	case widget.ViewQuickSave:
		body = m.quickSaveBody(s, st)
	case widget.ViewDestinationPicker:
		body = m.pickerBody(s, st)
	case widget.ViewCreatePage:
		body = m.createBody(s, st)
	case widget.ViewSettings:
		body = settingsBody(s, st)
	}

	lines := append([]string{header(s, st)}, body...)
	if len(lines) > panelRows {
		lines = lines[:panelRows]
	}
	return st.panel.Render(strings.Join(lines, "\n"))
}

func header(s widget.State, st styles) string {
	left := "ClipFlow"
	switch s.View {
	case widget.ViewDestinationPicker:
		left = "← Choose Destination"
	case widget.ViewCreatePage:
		left = "← Create New Page"
	case widget.ViewSettings:
		left = "← Settings"
	}
	title := st.title.Render(left)
	gap := max(panelInnerWidth-lipgloss.Width(title)-1, 1)
	return title + strings.Repeat(" ", gap) + st.muted.Render("×")
}

func (m *Model) quickSaveBody(s widget.State, st styles) []string {
	d := s.DisplayDestination()
	lines := []string{
		st.muted.Render("Save to ") + st.dest.Render(d.Emoji+" "+d.Name),
		"",
	}
	lines = append(lines, preview(s.Text, st)...)
	lines = append(lines, "")

	switch s.Status {
	case widget.SaveLoading:
		lines = append(lines, m.spinner.View()+" Saving...")
	case widget.SaveSuccess:
		lines = append(lines, st.success.Render("✓ Saved!"))
	case widget.SaveError:
		lines = append(lines, st.failure.Render(truncate.StringWithTail(s.ErrorText, panelInnerWidth, "…")))
		if s.ErrorKind == widget.ErrorDailyLimit {
			lines = append(lines, st.muted.Render("Upgrade: "+widget.UpgradeURL))
		} else {
			lines = append(lines, keyHelp(st, "enter", "retry", "d", "destination"))
		}
	default:
		lines = append(lines, keyHelp(st, "enter", "save", "d", "destination", ",", "settings"))
	}
	return lines
}

func preview(text string, st styles) []string {
	if strings.TrimSpace(text) == "" {
		return []string{st.muted.Render("No content")}
	}
	wrapped := strings.Split(wordwrap.String(text, panelInnerWidth), "\n")
	if len(wrapped) > previewRows {
		wrapped = wrapped[:previewRows]
		last := truncate.String(wrapped[previewRows-1], panelInnerWidth-1)
		wrapped[previewRows-1] = last + "…"
	}
	out := make([]string, len(wrapped))
	for i, line := range wrapped {
		out[i] = st.text.Render(truncate.String(line, panelInnerWidth))
	}
	return out
}

func (m *Model) pickerBody(s widget.State, st styles) []string {
	lines := []string{m.search.View(), ""}

	switch {
	case s.LoadingPages:
		lines = append(lines, m.spinner.View()+" Loading pages...")
	case s.PickerError != "":
		lines = append(lines, st.failure.Render(s.PickerError))
	case len(s.Results) == 0:
		lines = append(lines, st.muted.Render(s.EmptyText()))
	default:
		start := 0
		if s.Cursor >= pickerRows {
			start = s.Cursor - pickerRows + 1
		}
		end := min(start+pickerRows, len(s.Results))
		for i := start; i < end; i++ {
			d := s.Results[i]
			label := truncate.StringWithTail(d.Emoji+" "+d.Name, panelInnerWidth-2, "…")
			if i == s.Cursor {
				lines = append(lines, st.selected.Render("› "+label))
			} else {
				lines = append(lines, "  "+label)
			}
		}
	}
	if s.Searching {
		lines = append(lines, st.muted.Render(m.spinner.View()+" searching"))
	}

	for len(lines) < pickerRows+2 {
		lines = append(lines, "")
	}
	return append(lines, keyHelp(st, "↑↓", "move", "enter", "select", "ctrl+n", "Create New Page"))
}

func (m *Model) createBody(s widget.State, st styles) []string {
	parent := st.muted.Render("none (open the picker first)")
	if p, ok := s.ParentPage(); ok {
		parent = st.dest.Render(p.Emoji + " " + p.Name)
	}

	lines := []string{
		m.title.View(),
		"",
		st.muted.Render("Parent: ") + parent,
		"",
	}
	switch {
	case s.Creating:
		lines = append(lines, m.spinner.View()+" Creating...")
	case s.CreateText != "":
		lines = append(lines, st.failure.Render(s.CreateText))
	default:
		lines = append(lines, "")
	}
	return append(lines, "", keyHelp(st, "tab", "parent", "enter", "create", "esc", "back"))
}

func settingsBody(s widget.State, st styles) []string {
	onOff := func(b bool) string {
		if b {
			return st.success.Render("on")
		}
		return st.muted.Render("off")
	}
	cfg := s.Settings
	return []string{
		fmt.Sprintf("%s Theme             %s", st.key.Render("t"), cfg.Theme),
		fmt.Sprintf("%s Auto-dismiss      %s", st.key.Render("a"), onOff(cfg.AutoDismiss)),
		fmt.Sprintf("%s Dismiss after     %ds", st.key.Render("±"), cfg.DismissTimer),
		fmt.Sprintf("%s Include source    %s", st.key.Render("u"), onOff(cfg.IncludeSourceURL)),
		fmt.Sprintf("%s Include date/time %s", st.key.Render("d"), onOff(cfg.IncludeDateTime)),
		"",
		st.muted.Render("Changes are saved immediately."),
	}
}

// keyHelp renders key/description pairs.
func keyHelp(st styles, pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, st.key.Render(pairs[i])+" "+st.muted.Render(pairs[i+1]))
	}
	return strings.Join(parts, st.muted.Render(" · "))
}
