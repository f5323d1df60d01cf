package detector

import "github.com/MrSnakeDoc/clipflow/internal/domain"

// Layout describes the widget footprint and spacing in viewport units.
type Layout struct {
	Footprint domain.Size // assumed widget size
	GapX      int         // horizontal gap right of the selection
	GapY      int         // vertical gap above or below the selection
	FlipSlack int         // extra room required below before flipping above
	Margin    int         // preferred minimum distance from the top-left edges
}

// DefaultLayout is the pixel layout of the floating panel.
var DefaultLayout = Layout{
	Footprint: domain.Size{Width: 376, Height: 320},
	GapX:      16,
	GapY:      8,
	FlipSlack: 16,
	Margin:    8,
}

// TerminalLayout is the cell layout used by the terminal page context.
var TerminalLayout = Layout{
	Footprint: domain.Size{Width: 46, Height: 14},
	GapX:      2,
	GapY:      1,
	FlipSlack: 1,
	Margin:    1,
}

// ComputePosition anchors the widget for a copy. Without a selection it is
// centred. With one it sits right of and below the selection, or above it
// when the space below is short. The result always keeps the footprint
// inside the viewport: 0 <= x <= vw-w and 0 <= y <= vh-h, or 0 on an axis
// where the viewport is smaller than the footprint.
func ComputePosition(viewport domain.Size, selection domain.Rect, l Layout) domain.Position {
	w, h := l.Footprint.Width, l.Footprint.Height

	x := viewport.Width/2 - w/2
	y := viewport.Height/2 - h/2

	if !selection.Empty() {
		spaceBelow := viewport.Height - selection.Bottom
		x = selection.Right + l.GapX
		if spaceBelow < h+l.FlipSlack {
			y = selection.Top - h - l.GapY
		} else {
			y = selection.Bottom + l.GapY
		}
	}

	return domain.Position{
		X: clampAxis(x, viewport.Width, w, l.Margin),
		Y: clampAxis(y, viewport.Height, h, l.Margin),
	}
}

// ClampPosition keeps a footprint of size inside viewport without a margin.
// Used while dragging.
func ClampPosition(p domain.Position, viewport, size domain.Size) domain.Position {
	return domain.Position{
		X: clampAxis(p.X, viewport.Width, size.Width, 0),
		Y: clampAxis(p.Y, viewport.Height, size.Height, 0),
	}
}

func clampAxis(v, span, size, margin int) int {
	hi := span - size
	if hi <= 0 {
		return 0
	}
	lo := min(max(margin, 0), hi)
	return min(max(v, lo), hi)
}
