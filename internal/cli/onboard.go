package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
)

const onboardListSize = 10

var onboardList bool

// rankPages searches the workspace through the router and ranks the result
// by query, by the favorites setting and by how often each page was saved to.
func rankPages(ctx context.Context, api RouterAPI, repo *storage.Repository, query string) ([]domain.DestinationCandidate, error) {
	res, err := api.Search(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	if !res.Success {
		return nil, resultError(res.Error, "Failed to load pages")
	}

	history, err := repo.RecentSaves(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	settings, err := repo.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return domain.RankDestinations(query, res.Pages, domain.UsageByDestination(history), settings.FavoritePageIDs), nil
}

func printCandidates(w io.Writer, ranked []domain.DestinationCandidate) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No pages found"))
		return
	}
	for i, c := range ranked {
		if i == onboardListSize {
			fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... and %d more", len(ranked)-i)))
			break
		}
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, c.Destination.Emoji, c.Destination.Name)
	}
}

var onboardCmd = &cobra.Command{
	Use:   "onboard [page]",
	Short: "Choose the default page and enable the widget",
	Long: `Finish setup: the best match for [page] becomes the default destination,
the widget is enabled and onboarding is marked complete. Without [page], or
with --list, the candidates are printed instead.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		api := newRouterAPI(cfg)

		return withRepository(cmd, func(ctx context.Context, repo *storage.Repository) error {
			ranked, err := rankPages(ctx, api, repo, query)
			if err != nil {
				return err
			}

			if onboardList || query == "" {
				printCandidates(out, ranked)
				if query == "" {
					fmt.Fprintln(out, dimStyle.Render("Pick one with `clipflow onboard <page>`"))
				}
				return nil
			}
			if len(ranked) == 0 {
				return fmt.Errorf("no page matches %q", query)
			}

			best := ranked[0].Destination
			enabled := true
			res, err := api.UpdateSettings(ctx, messages.SettingsPatch{
				DefaultDestination: &best,
				WidgetEnabled:      &enabled,
			})
			if err != nil {
				return fmt.Errorf("failed to update settings: %w", err)
			}
			if !res.Success {
				return resultError(res.Error, "Failed to update settings")
			}

			if err := repo.SetOnboardingComplete(ctx, true); err != nil {
				return fmt.Errorf("failed to complete onboarding: %w", err)
			}

			fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("✓ Default page set to %s %s", best.Emoji, best.Name)))
			fmt.Fprintln(out, dimStyle.Render("Run `clipflow widget` and copy some text to try it."))
			return nil
		})
	},
}

func init() {
	onboardCmd.Flags().BoolVar(&onboardList, "list", false, "Only list matching pages")
	rootCmd.AddCommand(onboardCmd)
}
