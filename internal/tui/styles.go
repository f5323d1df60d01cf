package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

const (
	panelInnerWidth = 42
	panelRows       = 12
)

type palette struct {
	border  lipgloss.Color
	accent  lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	success lipgloss.Color
	failure lipgloss.Color
	surface lipgloss.Color
}

var (
	darkPalette = palette{
		border:  lipgloss.Color("#56526e"),
		accent:  lipgloss.Color("#7f5af0"),
		text:    lipgloss.Color("#e0def4"),
		muted:   lipgloss.Color("244"),
		success: lipgloss.Color("#a3be8c"),
		failure: lipgloss.Color("9"),
		surface: lipgloss.Color("#1a1826"),
	}
	lightPalette = palette{
		border:  lipgloss.Color("#c8c5d6"),
		accent:  lipgloss.Color("#5b3cc4"),
		text:    lipgloss.Color("#232136"),
		muted:   lipgloss.Color("245"),
		success: lipgloss.Color("#2e7d32"),
		failure: lipgloss.Color("#c62828"),
		surface: lipgloss.Color("#faf9ff"),
	}
)

type styles struct {
	panel    lipgloss.Style
	title    lipgloss.Style
	dest     lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	success  lipgloss.Style
	failure  lipgloss.Style
	selected lipgloss.Style
	key      lipgloss.Style
}

func stylesFor(theme domain.Theme) styles {
	p := darkPalette
	if theme == domain.ThemeLight {
		p = lightPalette
	}
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Background(p.surface).
			Foreground(p.text).
			Padding(0, 1).
			Width(panelInnerWidth + 2).
			Height(panelRows),
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		dest:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		text:     lipgloss.NewStyle().Foreground(p.text),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		success:  lipgloss.NewStyle().Bold(true).Foreground(p.success),
		failure:  lipgloss.NewStyle().Foreground(p.failure),
		selected: lipgloss.NewStyle().Bold(true).Foreground(p.surface).Background(p.accent),
		key:      lipgloss.NewStyle().Bold(true).Foreground(p.accent),
	}
}

var (
	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	helperStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
