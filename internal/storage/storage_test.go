package storage

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/kv"
	"github.com/MrSnakeDoc/clipflow/internal/store/memory"
)

// plainStore hides memory.Store's Update so kv.Update takes the
// read-merge-write path.
type plainStore struct{ kv.Store }

func TestSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	s, err := repo.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.Theme != domain.ThemeDark || s.DismissTimer != 5 || !s.WidgetEnabled {
		t.Errorf("Settings() = %+v, want defaults", s)
	}
}

func TestSettingsPartialOverlay(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_ = store.Set(ctx, KeySettings, []byte(`{"theme":"light"}`))

	s, err := New(store).Settings(ctx)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.Theme != domain.ThemeLight {
		t.Errorf("Theme = %s, want light", s.Theme)
	}
	if s.DismissTimer != 5 || !s.WidgetEnabled {
		t.Errorf("missing fields not defaulted: %+v", s)
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	got, err := repo.UpdateSettings(ctx, func(s *domain.Settings) {
		s.AutoDismiss = true
	})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if !got.AutoDismiss || got.DismissTimer != 5 {
		t.Errorf("UpdateSettings() = %+v", got)
	}

	stored, _ := repo.Settings(ctx)
	if !stored.AutoDismiss {
		t.Error("update not persisted")
	}
}

func TestAuthRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	if auth, err := repo.Auth(ctx); err != nil || auth != nil {
		t.Fatalf("Auth() on empty store = %v, %v; want nil, nil", auth, err)
	}

	_ = repo.SetAuth(ctx, &domain.AuthState{AccessToken: "tok", WorkspaceName: "Acme"})
	auth, err := repo.Auth(ctx)
	if err != nil || !auth.Connected() || auth.WorkspaceName != "Acme" {
		t.Errorf("Auth() = %+v, %v", auth, err)
	}

	_ = repo.SetAuth(ctx, nil)
	if auth, _ := repo.Auth(ctx); auth.Connected() {
		t.Error("SetAuth(nil) did not clear the token")
	}
}

func TestIncrementDailySaves(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	tests := []struct {
		name  string
		store kv.Store
	}{
		{"atomic updater", memory.New()},
		{"read-merge-write", plainStore{memory.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := New(tt.store)

			for i := 0; i < 3; i++ {
				if _, err := repo.IncrementDailySaves(ctx, day1); err != nil {
					t.Fatalf("IncrementDailySaves() error = %v", err)
				}
			}
			q, _ := repo.DailySaves(ctx)
			if q.CountFor(domain.Today(day1)) != 3 {
				t.Errorf("count = %d, want 3", q.CountFor(domain.Today(day1)))
			}

			q, _ = repo.IncrementDailySaves(ctx, day2)
			if q.Date != "2026-05-02" || q.Count != 1 {
				t.Errorf("after rollover = %+v, want 2026-05-02/1", q)
			}
		})
	}
}

func TestRecordSaveBounded(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	for i := 0; i < domain.HistoryLimit+5; i++ {
		if err := repo.RecordSave(ctx, domain.SaveRecord{ID: strconv.Itoa(i)}); err != nil {
			t.Fatalf("RecordSave() error = %v", err)
		}
	}

	history, err := repo.RecentSaves(ctx)
	if err != nil {
		t.Fatalf("RecentSaves() error = %v", err)
	}
	if len(history) != domain.HistoryLimit {
		t.Errorf("len(history) = %d, want %d", len(history), domain.HistoryLimit)
	}
	if history[0].ID != strconv.Itoa(domain.HistoryLimit+4) {
		t.Errorf("newest = %s", history[0].ID)
	}
}

func TestOnboardingFlag(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New())

	if done, _ := repo.OnboardingComplete(ctx); done {
		t.Error("OnboardingComplete() = true on empty store")
	}
	_ = repo.SetOnboardingComplete(ctx, true)
	if done, _ := repo.OnboardingComplete(ctx); !done {
		t.Error("OnboardingComplete() = false after set")
	}
}
