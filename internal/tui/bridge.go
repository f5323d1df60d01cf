package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrSnakeDoc/clipflow/internal/clock"
)

// bridge posts messages into the running program from other goroutines.
// Messages posted before attach are dropped.
type bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (b *bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *bridge) post(msg tea.Msg) bool {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send == nil {
		return false
	}
	send(msg)
	return true
}

// timerFiredMsg carries a loop-clock callback back into Update.
type timerFiredMsg struct {
	timer *loopTimer
}

// loopClock is a clock whose callbacks run inside the program loop, so the
// detector and widget only ever see one goroutine.
type loopClock struct {
	bridge *bridge
}

func (c loopClock) Now() time.Time { return time.Now() }

func (c loopClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	t := &loopTimer{f: f}
	t.wall = time.AfterFunc(d, func() { c.bridge.post(timerFiredMsg{timer: t}) })
	return t
}

// loopTimer state is only touched from the program loop.
type loopTimer struct {
	f       func()
	wall    *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.wall.Stop()
	return true
}

func (t *loopTimer) fire() {
	if t.stopped || t.fired {
		return
	}
	t.fired = true
	t.f()
}
