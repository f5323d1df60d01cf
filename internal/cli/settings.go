package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
)

// ErrUnknownSetting is returned for keys outside settingKeys.
var ErrUnknownSetting = errors.New("unknown setting")

type setting struct {
	get func(s domain.Settings) string
	set func(s *domain.Settings, value string) error
}

// settingKeys lists the editable settings in display order.
var settingKeys = []string{
	"theme",
	"defaultDestination",
	"autoDismiss",
	"dismissTimer",
	"widgetEnabled",
	"includeSourceUrl",
	"includeDateTime",
	"favoritePageIds",
}

var settingsTable = map[string]setting{
	"theme": {
		get: func(s domain.Settings) string { return string(s.Theme) },
		set: func(s *domain.Settings, v string) error {
			switch t := domain.Theme(strings.ToLower(v)); t {
			case domain.ThemeDark, domain.ThemeLight:
				s.Theme = t
				return nil
			}
			return fmt.Errorf("theme must be dark or light, got %q", v)
		},
	},
	"defaultDestination": {
		get: func(s domain.Settings) string {
			if d := s.DefaultDestination(); d != nil {
				return fmt.Sprintf("%s %s (%s)", d.Emoji, d.Name, d.ID)
			}
			return "none"
		},
		set: func(s *domain.Settings, v string) error {
			if v != "" && v != "none" {
				return errors.New("only \"none\" can be set here, use `clipflow onboard <page>` to pick a page")
			}
			s.SetDefaultDestination(nil)
			return nil
		},
	},
	"autoDismiss": boolSetting(
		func(s domain.Settings) bool { return s.AutoDismiss },
		func(s *domain.Settings, v bool) { s.AutoDismiss = v },
	),
	"dismissTimer": {
		get: func(s domain.Settings) string { return strconv.Itoa(s.DismissTimer) + "s" },
		set: func(s *domain.Settings, v string) error {
			n, err := strconv.Atoi(strings.TrimSuffix(v, "s"))
			if err != nil {
				return fmt.Errorf("dismissTimer must be a number of seconds, got %q", v)
			}
			s.DismissTimer = domain.ClampDismissTimer(n)
			return nil
		},
	},
	"widgetEnabled": boolSetting(
		func(s domain.Settings) bool { return s.WidgetEnabled },
		func(s *domain.Settings, v bool) { s.WidgetEnabled = v },
	),
	"includeSourceUrl": boolSetting(
		func(s domain.Settings) bool { return s.IncludeSourceURL },
		func(s *domain.Settings, v bool) { s.IncludeSourceURL = v },
	),
	"includeDateTime": boolSetting(
		func(s domain.Settings) bool { return s.IncludeDateTime },
		func(s *domain.Settings, v bool) { s.IncludeDateTime = v },
	),
	"favoritePageIds": {
		get: func(s domain.Settings) string { return strings.Join(s.FavoritePageIDs, ",") },
		set: func(s *domain.Settings, v string) error {
			ids := []string{}
			for _, id := range strings.Split(v, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
			s.FavoritePageIDs = ids
			return nil
		},
	},
}

func boolSetting(get func(domain.Settings) bool, set func(*domain.Settings, bool)) setting {
	return setting{
		get: func(s domain.Settings) string { return strconv.FormatBool(get(s)) },
		set: func(s *domain.Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			set(s, b)
			return nil
		},
	}
}

func lookupSetting(key string) (setting, error) {
	st, ok := settingsTable[key]
	if !ok {
		return setting{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownSetting, key, strings.Join(settingKeys, ", "))
	}
	return st, nil
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or change the shared settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd, func(ctx context.Context, repo *storage.Repository) error {
			s, err := repo.Settings(ctx)
			if err != nil {
				return fmt.Errorf("failed to read settings: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				st, err := lookupSetting(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, st.get(s))
				return nil
			}
			for _, key := range settingKeys {
				fmt.Fprintln(out, field(key, settingsTable[key].get(s)))
			}
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := lookupSetting(args[0])
		if err != nil {
			return err
		}

		return withRepository(cmd, func(ctx context.Context, repo *storage.Repository) error {
			var setErr error
			next, err := repo.UpdateSettings(ctx, func(s *domain.Settings) {
				setErr = st.set(s, args[1])
			})
			if setErr != nil {
				return setErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓ "+args[0]+" = "+st.get(next)))
			return nil
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
