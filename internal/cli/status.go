package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
)

// statusReport is what the popup shows at a glance.
type statusReport struct {
	Auth       *domain.AuthState
	Sub        *domain.Subscription
	SavesToday int
	Limit      int
	Onboarded  bool
	Settings   domain.Settings
}

func loadStatus(ctx context.Context, repo *storage.Repository, now time.Time, limit int) (statusReport, error) {
	var (
		r   = statusReport{Limit: limit}
		err error
	)
	if r.Auth, err = repo.Auth(ctx); err != nil {
		return r, fmt.Errorf("failed to read auth: %w", err)
	}
	if r.Sub, err = repo.Subscription(ctx); err != nil {
		return r, fmt.Errorf("failed to read subscription: %w", err)
	}
	quota, err := repo.DailySaves(ctx)
	if err != nil {
		return r, fmt.Errorf("failed to read daily saves: %w", err)
	}
	r.SavesToday = quota.CountFor(domain.Today(now))
	if r.Onboarded, err = repo.OnboardingComplete(ctx); err != nil {
		return r, fmt.Errorf("failed to read onboarding flag: %w", err)
	}
	if r.Settings, err = repo.Settings(ctx); err != nil {
		return r, fmt.Errorf("failed to read settings: %w", err)
	}
	return r, nil
}

func (r statusReport) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ClipFlow") + "\n\n")

	if r.Auth.Connected() {
		name := r.Auth.WorkspaceName
		if name == "" {
			name = "Notion"
		}
		b.WriteString(field("Connection", okStyle.Render("Connected")+valueStyle.Render(" to "+name)) + "\n")
	} else {
		b.WriteString(field("Connection", warnStyle.Render("Not connected")) + "\n")
	}

	if r.Sub.Paid() {
		b.WriteString(field("Plan", "Pro") + "\n")
		b.WriteString(field("Saves today", fmt.Sprintf("%d (unlimited)", r.SavesToday)) + "\n")
	} else {
		b.WriteString(field("Plan", "Free") + "\n")
		saves := fmt.Sprintf("%d / %d", r.SavesToday, r.Limit)
		if r.SavesToday >= r.Limit {
			saves = warnStyle.Render(saves + "  limit reached")
		}
		b.WriteString(field("Saves today", saves) + "\n")
	}

	page := domain.PlaceholderDestination()
	if d := r.Settings.DefaultDestination(); d != nil {
		page = *d
	}
	b.WriteString(field("Default page", page.Emoji+" "+page.Name) + "\n")
	b.WriteString(field("Widget", onOff(r.Settings.WidgetEnabled)) + "\n")

	if r.Onboarded {
		b.WriteString(field("Onboarding", "complete") + "\n")
	} else {
		b.WriteString(field("Onboarding", warnStyle.Render("pending")) + "\n")
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection, plan and today's saves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *storage.Repository) error {
			report, err := loadStatus(ctx, repo, time.Now(), cfg.FreeDailyLimit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.render())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
