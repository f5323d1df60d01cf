package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
)

func TestTabSweeper_Sweep(t *testing.T) {
	registry := tabs.NewRegistry()
	stale := registry.Register()

	time.Sleep(20 * time.Millisecond)
	fresh := registry.Register()

	sweeper := NewTabSweeper(registry, logger.NewNop(), time.Hour, 10*time.Millisecond)

	if got := sweeper.Sweep(); got != 1 {
		t.Fatalf("Sweep() = %d, want 1", got)
	}
	if registry.Known(stale) {
		t.Error("stale page context was not evicted")
	}
	if !registry.Known(fresh) {
		t.Error("fresh page context was evicted")
	}
}

func TestTabSweeper_PollingTabSurvives(t *testing.T) {
	registry := tabs.NewRegistry()
	id := registry.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = registry.Next(ctx, id, time.Second)
	}()

	time.Sleep(30 * time.Millisecond)
	sweeper := NewTabSweeper(registry, logger.NewNop(), time.Hour, 10*time.Millisecond)
	if got := sweeper.Sweep(); got != 0 {
		t.Errorf("Sweep() = %d, want 0 while polling", got)
	}

	cancel()
	<-done
}

func TestTabSweeper_StartStop(t *testing.T) {
	registry := tabs.NewRegistry()
	registry.Register()

	sweeper := NewTabSweeper(registry, logger.NewNop(), 5*time.Millisecond, time.Millisecond)
	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sweeper.Stop()

	deadline := time.Now().Add(time.Second)
	for registry.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("page context never evicted by the periodic sweep")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewTabSweeper_DefaultTTL(t *testing.T) {
	s := NewTabSweeper(tabs.NewRegistry(), logger.NewNop(), time.Minute, 0)
	if s.ttl != DefaultTabTTL {
		t.Errorf("ttl = %v, want %v", s.ttl, DefaultTabTTL)
	}
}
