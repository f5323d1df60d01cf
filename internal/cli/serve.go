package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/app"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the router daemon",
	Long: `Run the message router: it receives copy notifications from widgets,
saves text to Notion, runs the OAuth flow and owns the persisted state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.New(logger.Options{
			Level:  cfg.LogLevel,
			Pretty: cfg.PrettyLog,
			File:   cfg.LogFile,
		})
		defer func() { _ = log.Sync() }()

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		return a.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
