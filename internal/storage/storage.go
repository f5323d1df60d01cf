// Package storage gives typed access to the persisted ClipFlow state on top
// of a kv.Store. Every key holds one whole JSON value; callers read, merge
// and write it back.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/kv"
)

// Persisted keys.
const (
	KeyAuth               = "auth"
	KeySettings           = "settings"
	KeySubscription       = "subscription"
	KeyDailySaves         = "dailySaves"
	KeyRecentSaves        = "recentSaves"
	KeyOnboardingComplete = "onboardingComplete"
)

// Repository reads and writes the persisted state.
type Repository struct {
	store kv.Store
}

// New wraps store.
func New(store kv.Store) *Repository {
	return &Repository{store: store}
}

// Auth returns the stored token, or nil when not connected.
func (r *Repository) Auth(ctx context.Context) (*domain.AuthState, error) {
	var auth domain.AuthState
	found, err := kv.GetJSON(ctx, r.store, KeyAuth, &auth)
	if err != nil || !found {
		return nil, err
	}
	return &auth, nil
}

// AccessToken returns the stored token, or "" when not connected.
func (r *Repository) AccessToken(ctx context.Context) (string, error) {
	auth, err := r.Auth(ctx)
	if err != nil || !auth.Connected() {
		return "", err
	}
	return auth.AccessToken, nil
}

// SetAuth stores auth. A nil auth clears the token.
func (r *Repository) SetAuth(ctx context.Context, auth *domain.AuthState) error {
	if auth == nil {
		return r.ClearAuth(ctx)
	}
	return kv.SetJSON(ctx, r.store, KeyAuth, auth)
}

// ClearAuth removes the stored token.
func (r *Repository) ClearAuth(ctx context.Context) error {
	if err := r.store.Delete(ctx, KeyAuth); err != nil {
		return fmt.Errorf("failed to clear auth: %w", err)
	}
	return nil
}

// Settings returns the stored settings laid over the defaults.
func (r *Repository) Settings(ctx context.Context) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if _, err := kv.GetJSON(ctx, r.store, KeySettings, &s); err != nil {
		return domain.DefaultSettings(), err
	}
	return s, nil
}

// SetSettings replaces the stored settings.
func (r *Repository) SetSettings(ctx context.Context, s domain.Settings) error {
	return kv.SetJSON(ctx, r.store, KeySettings, s)
}

// UpdateSettings applies fn to the current settings and stores the result.
func (r *Repository) UpdateSettings(ctx context.Context, fn func(*domain.Settings)) (domain.Settings, error) {
	var next domain.Settings
	err := kv.Update(ctx, r.store, KeySettings, func(raw []byte) ([]byte, error) {
		s := domain.DefaultSettings()
		if raw != nil {
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
		}
		fn(&s)
		next = s
		return json.Marshal(s)
	})
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return next, nil
}

// Subscription returns the stored plan, or nil for the free tier.
func (r *Repository) Subscription(ctx context.Context) (*domain.Subscription, error) {
	var sub domain.Subscription
	found, err := kv.GetJSON(ctx, r.store, KeySubscription, &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

// SetSubscription stores the plan state.
func (r *Repository) SetSubscription(ctx context.Context, sub domain.Subscription) error {
	return kv.SetJSON(ctx, r.store, KeySubscription, sub)
}

// DailySaves returns the stored quota as is. Use CountFor to apply the date.
func (r *Repository) DailySaves(ctx context.Context) (domain.DailyQuota, error) {
	var q domain.DailyQuota
	_, err := kv.GetJSON(ctx, r.store, KeyDailySaves, &q)
	return q, err
}

// IncrementDailySaves adds one save to today's quota, restarting at 1 on a
// new day.
func (r *Repository) IncrementDailySaves(ctx context.Context, now time.Time) (domain.DailyQuota, error) {
	today := domain.Today(now)
	q, err := kv.UpdateJSON(ctx, r.store, KeyDailySaves, func(cur domain.DailyQuota) (domain.DailyQuota, error) {
		return cur.Increment(today), nil
	})
	if err != nil {
		return domain.DailyQuota{}, fmt.Errorf("failed to increment daily saves: %w", err)
	}
	return q, nil
}

// RecentSaves returns the history, newest first.
func (r *Repository) RecentSaves(ctx context.Context) ([]domain.SaveRecord, error) {
	var history []domain.SaveRecord
	if _, err := kv.GetJSON(ctx, r.store, KeyRecentSaves, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// RecordSave prepends rec to the bounded history.
func (r *Repository) RecordSave(ctx context.Context, rec domain.SaveRecord) error {
	_, err := kv.UpdateJSON(ctx, r.store, KeyRecentSaves, func(cur []domain.SaveRecord) ([]domain.SaveRecord, error) {
		return domain.PrependRecord(cur, rec), nil
	})
	if err != nil {
		return fmt.Errorf("failed to record save: %w", err)
	}
	return nil
}

// OnboardingComplete reports whether onboarding was finished.
func (r *Repository) OnboardingComplete(ctx context.Context) (bool, error) {
	var done bool
	_, err := kv.GetJSON(ctx, r.store, KeyOnboardingComplete, &done)
	return done, err
}

// SetOnboardingComplete stores the onboarding flag.
func (r *Repository) SetOnboardingComplete(ctx context.Context, done bool) error {
	return kv.SetJSON(ctx, r.store, KeyOnboardingComplete, done)
}
