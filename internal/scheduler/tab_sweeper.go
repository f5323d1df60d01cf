package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
)

const (
	// DefaultTabTTL is how long an idle page context survives without polling.
	DefaultTabTTL = 2 * time.Minute
)

// TabSweeper evicts page contexts that stopped polling, e.g. terminals that
// were closed without unregistering.
type TabSweeper struct {
	tabs     *tabs.Registry
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewTabSweeper creates a new tab sweeper
func NewTabSweeper(
	registry *tabs.Registry,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *TabSweeper {
	if ttl == 0 {
		ttl = DefaultTabTTL
	}

	return &TabSweeper{
		tabs:     registry,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (s *TabSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper
func (s *TabSweeper) Stop() {
	close(s.stopCh)
}

// Sweep evicts idle page contexts once and returns how many were removed.
func (s *TabSweeper) Sweep() int {
	evicted := s.tabs.Sweep(s.ttl)

	if len(evicted) > 0 {
		for _, id := range evicted {
			s.logger.Debug("evicted idle page context", logger.String("tab", id))
		}
		s.logger.Info("tab sweep completed",
			logger.Int("evicted", len(evicted)),
			logger.Int("remaining", s.tabs.Count()))
	} else {
		s.logger.Debug("no page contexts to evict")
	}

	return len(evicted)
}
