package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
)

const historyPreviewWidth = 40

var historyLimit int

// historyTable renders records newest first, at most limit rows.
func historyTable(records []domain.SaveRecord, limit int) string {
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		preview := strings.Join(strings.Fields(rec.TextPreview), " ")
		rows = append(rows, []string{
			rec.SavedAt.Local().Format("Jan 02 15:04"),
			strings.TrimSpace(rec.DestinationEmoji + " " + rec.DestinationName),
			truncate.StringWithTail(preview, historyPreviewWidth, "…"),
			rec.SourceURL,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("WHEN", "PAGE", "TEXT", "SOURCE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return t.Render()
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent saves",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *storage.Repository) error {
			records, err := repo.RecentSaves(ctx)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No saves yet."))
				return nil
			}
			shown := len(records)
			if historyLimit > 0 && historyLimit < shown {
				shown = historyLimit
			}
			fmt.Fprintln(out, historyTable(records, historyLimit))
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d of %d saves", shown, len(records))))
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum number of saves to show")
	rootCmd.AddCommand(historyCmd)
}
