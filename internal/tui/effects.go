package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

const requestTimeout = 20 * time.Second

type saveDoneMsg struct {
	id  uint64
	res messages.SaveResult
	err error
}

type recentLoadedMsg struct {
	id  uint64
	res messages.SearchPagesResult
	err error
}

type searchDoneMsg struct {
	id  uint64
	seq int
	res messages.SearchPagesResult
	err error
}

type pageCreatedMsg struct {
	id  uint64
	res messages.CreatePageResult
	err error
}

// effects turns widget requests into commands. Update drains them after
// every event so the work runs on the program's goroutines.
type effects struct {
	api     API
	log     logger.Logger
	pending []tea.Cmd
}

func (e *effects) queue(cmd tea.Cmd) {
	e.pending = append(e.pending, cmd)
}

func (e *effects) drain() tea.Cmd {
	if len(e.pending) == 0 {
		return nil
	}
	cmds := e.pending
	e.pending = nil
	return tea.Batch(cmds...)
}

func (e *effects) Save(id uint64, req messages.SaveToNotion) {
	e.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := e.api.Save(ctx, req)
		return saveDoneMsg{id: id, res: res, err: err}
	})
}

func (e *effects) LoadRecent(id uint64) {
	e.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := e.api.Search(ctx, "")
		return recentLoadedMsg{id: id, res: res, err: err}
	})
}

func (e *effects) Search(id uint64, seq int, query string) {
	e.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := e.api.Search(ctx, query)
		return searchDoneMsg{id: id, seq: seq, res: res, err: err}
	})
}

func (e *effects) CreatePage(id uint64, parentID, title string) {
	e.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := e.api.CreatePage(ctx, parentID, title)
		return pageCreatedMsg{id: id, res: res, err: err}
	})
}

// PersistSettings never reports back: the panel keeps its local values.
func (e *effects) PersistSettings(patch messages.SettingsPatch) {
	e.queue(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := e.api.UpdateSettings(ctx, patch)
		switch {
		case err != nil:
			e.log.Warn("failed to persist settings", logger.Error(err))
		case !res.Success:
			e.log.Warn("failed to persist settings", logger.String("error", res.Error))
		}
		return nil
	})
}

func (e *effects) Closed(id uint64) {
	e.log.Debug("panel closed", logger.Int("id", int(id)))
}

// goCmd adapts the detector's send path to a command.
func (e *effects) goCmd(f func()) {
	e.queue(func() tea.Msg {
		f()
		return nil
	})
}
