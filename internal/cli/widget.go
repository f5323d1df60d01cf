package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/client"
	"github.com/MrSnakeDoc/clipflow/internal/detector"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/tui"
	"github.com/MrSnakeDoc/clipflow/internal/version"
)

var (
	widgetSourceURL string
	widgetAltScreen bool
	widgetNoWatch   bool
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Watch the clipboard and show the quick-save panel",
	Long: `Run a page context in this terminal. Every copy is reported to the
router, which answers with the quick-save panel when the widget is enabled
and Notion is connected.

Keys: Ctrl+C copies the current selection, q quits, r reconnects after the
router restarts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so logs always go to a file.
		logFile := cfg.LogFile
		if logFile == "" {
			logFile = defaultWidgetLog()
		}
		if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		log := logger.New(logger.Options{Level: cfg.LogLevel, File: logFile})
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		api := client.New(client.Config{BaseURL: cfg.ServerURL})
		bindCtx, cancel := requestContext(cmd, cfg.RequestTimeout)
		err := api.Bind(bindCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("router not reachable at %s (is `clipflow serve` running?): %w", cfg.ServerURL, err)
		}
		log.Info("widget bound to router",
			logger.String("server", cfg.ServerURL),
			logger.String("runtime", api.Runtime()))

		sys := &detector.SystemClipboard{}
		tcfg := tui.Config{
			API:       api,
			Clipboard: sys,
			SourceURL: widgetSourceURL,
			Version:   version.Version,
			Logger:    log,
		}
		if cfg.UsePrimary {
			tcfg.Selection = sys.ReadPrimary
		}

		opts := tui.RunOptions{
			WatchInterval: cfg.ClipboardInterval,
			AltScreen:     widgetAltScreen,
		}
		if !widgetNoWatch {
			opts.Watch = sys
		}
		return tui.Run(ctx, tcfg, opts)
	},
}

func defaultWidgetLog() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "clipflow-widget.log"
	}
	return filepath.Join(dir, "clipflow", "widget.log")
}

func init() {
	widgetCmd.Flags().StringVar(&widgetSourceURL, "source-url", "", "Source URL attached to saves from this terminal")
	widgetCmd.Flags().BoolVar(&widgetAltScreen, "alt-screen", true, "Use the alternate screen buffer")
	widgetCmd.Flags().BoolVar(&widgetNoWatch, "no-watch", false, "Do not poll the clipboard, only react to Ctrl+C")
	rootCmd.AddCommand(widgetCmd)
}
