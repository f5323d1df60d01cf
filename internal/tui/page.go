package tui

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

type bannerMsg struct {
	id   string
	text string
	ttl  time.Duration
}

// terminalPage is the detector's view of the terminal. The selection is the
// X11 primary selection, which has no on-screen box.
type terminalPage struct {
	mu        sync.Mutex
	viewport  domain.Size
	selection func() (string, error)
	sourceURL string
	bridge    *bridge
}

func (p *terminalPage) setViewport(v domain.Size) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = v
}

func (p *terminalPage) Viewport() domain.Size {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

func (p *terminalPage) Selection() (string, domain.Rect) {
	if p.selection == nil {
		return "", domain.Rect{}
	}
	text, err := p.selection()
	if err != nil {
		return "", domain.Rect{}
	}
	return text, domain.Rect{}
}

func (p *terminalPage) SourceURL() string { return p.sourceURL }

// ShowBanner is called from the send path, so it goes through the bridge.
func (p *terminalPage) ShowBanner(id, text string, ttl time.Duration) {
	p.bridge.post(bannerMsg{id: id, text: text, ttl: ttl})
}
