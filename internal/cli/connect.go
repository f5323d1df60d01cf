package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Notion workspace",
	Long: `Start the OAuth flow through the router. A browser opens on the Notion
consent page; the command returns once the redirect has been received and
the token exchanged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, dimStyle.Render("Waiting for Notion authorization in your browser..."))

		ctx, cancel := requestContext(cmd, cfg.OAuthTimeout+cfg.RequestTimeout)
		defer cancel()

		res, err := newRouterAPI(cfg).Connect(ctx)
		if err != nil {
			return fmt.Errorf("connect failed: %w", err)
		}
		if !res.Success {
			return resultError(res.Error, "Connection failed")
		}

		fmt.Fprintln(out, okStyle.Render("✓ Connected to "+res.WorkspaceName))
		fmt.Fprintln(out, dimStyle.Render("Next: choose a default page with `clipflow onboard <page>`"))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Forget the stored Notion token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := requestContext(cmd, cfg.RequestTimeout)
		defer cancel()

		if _, err := newRouterAPI(cfg).Disconnect(ctx); err != nil {
			return fmt.Errorf("disconnect failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ Disconnected from Notion"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
}
