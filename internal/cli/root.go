// Package cli is the command-line surface: it starts the router daemon and
// the terminal widget, and covers what the extension popup and settings
// page do.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/app"
	"github.com/MrSnakeDoc/clipflow/internal/client"
	"github.com/MrSnakeDoc/clipflow/internal/config"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
	"github.com/MrSnakeDoc/clipflow/internal/utils"
	"github.com/MrSnakeDoc/clipflow/internal/version"
)

// RouterAPI is the part of the router the popup commands go through.
type RouterAPI interface {
	Connect(ctx context.Context) (messages.ConnectResult, error)
	Disconnect(ctx context.Context) (messages.DisconnectResult, error)
	Search(ctx context.Context, query string) (messages.SearchPagesResult, error)
	UpdateSettings(ctx context.Context, patch messages.SettingsPatch) (messages.SettingsResult, error)
}

var (
	serverURL string
	verbose   bool

	cfg *config.Config

	// Replaced in tests.
	loadConfig   = config.Load
	newRouterAPI = func(c *config.Config) RouterAPI {
		return client.New(client.Config{BaseURL: c.ServerURL})
	}
	openRepository = func(ctx context.Context, c *config.Config) (*storage.Repository, io.Closer, error) {
		store, err := app.OpenStore(ctx, c, logger.NewNop())
		if err != nil {
			return nil, nil, err
		}
		return storage.New(store), store, nil
	}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clipflow",
	Short: "Save copied text to your Notion pages",
	Long: `ClipFlow watches your clipboard and offers to append whatever you copy
to a Notion page of your choice.

Quick Start:
  clipflow serve         # Start the router daemon
  clipflow connect       # Connect your Notion workspace
  clipflow onboard inbox # Pick the default page
  clipflow widget        # Watch the clipboard in this terminal`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = loadConfig()
		if serverURL != "" {
			cfg.ServerURL = serverURL
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Router URL (defaults to CLIPFLOW_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// withRepository opens the configured store for the duration of fn.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo *storage.Repository) error) error {
	ctx, cancel := requestContext(cmd, cfg.RequestTimeout)
	defer cancel()

	repo, closer, err := openRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer utils.Close(closer)

	return fn(ctx, repo)
}

// requestContext bounds one router request.
func requestContext(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}

// resultError turns a failed typed result into an error.
func resultError(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return errors.New(msg)
}
