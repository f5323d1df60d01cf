package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/config"
	"github.com/MrSnakeDoc/clipflow/internal/domain"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
)

var (
	inbox = domain.Destination{ID: "p-inbox", Emoji: "📥", Name: "Inbox"}
	ideas = domain.Destination{ID: "p-ideas", Emoji: "💡", Name: "Ideas"}
	books = domain.Destination{ID: "p-books", Emoji: "📚", Name: "Books"}
)

type fakeRouter struct {
	pages       []domain.Destination
	searchErr   string
	connect     messages.ConnectResult
	patches     []messages.SettingsPatch
	disconnects int
}

func (f *fakeRouter) Connect(context.Context) (messages.ConnectResult, error) {
	return f.connect, nil
}

func (f *fakeRouter) Disconnect(context.Context) (messages.DisconnectResult, error) {
	f.disconnects++
	return messages.DisconnectResult{Success: true}, nil
}

func (f *fakeRouter) Search(context.Context, string) (messages.SearchPagesResult, error) {
	if f.searchErr != "" {
		return messages.SearchPagesResult{Error: f.searchErr}, nil
	}
	return messages.SearchPagesResult{Success: true, Pages: f.pages}, nil
}

func (f *fakeRouter) UpdateSettings(_ context.Context, patch messages.SettingsPatch) (messages.SettingsResult, error) {
	f.patches = append(f.patches, patch)
	s := domain.DefaultSettings()
	patch.Apply(&s)
	return messages.SettingsResult{Success: true, Settings: &s}, nil
}

// setupCLI points the commands at a fresh sqlite file and api.
func setupCLI(t *testing.T, api RouterAPI) *config.Config {
	t.Helper()
	c := &config.Config{
		StoreBackend:   config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "clipflow.db"),
		RequestTimeout: 5 * time.Second,
		OAuthTimeout:   time.Second,
		FreeDailyLimit: 10,
		ServerURL:      "http://127.0.0.1:1",
	}

	origLoad, origAPI := loadConfig, newRouterAPI
	loadConfig = func() *config.Config {
		cp := *c
		return &cp
	}
	newRouterAPI = func(*config.Config) RouterAPI { return api }
	t.Cleanup(func() {
		loadConfig, newRouterAPI = origLoad, origAPI
	})

	historyLimit = 10
	onboardList = false
	return c
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, c *config.Config, fn func(ctx context.Context, repo *storage.Repository) error) {
	t.Helper()
	ctx := context.Background()
	repo, closer, err := openRepository(ctx, c)
	if err != nil {
		t.Fatalf("openRepository() error = %v", err)
	}
	defer closer.Close()
	if err := fn(ctx, repo); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestSettingsCommands(t *testing.T) {
	setupCLI(t, &fakeRouter{})

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"default theme", []string{"settings", "get", "theme"}, "dark", false},
		{"set theme", []string{"settings", "set", "theme", "light"}, "theme = light", false},
		{"theme persisted", []string{"settings", "get", "theme"}, "light", false},
		{"bad theme", []string{"settings", "set", "theme", "blue"}, "", true},
		{"timer clamped high", []string{"settings", "set", "dismissTimer", "30"}, "dismissTimer = 15s", false},
		{"timer clamped low", []string{"settings", "set", "dismissTimer", "1"}, "dismissTimer = 3s", false},
		{"bool setting", []string{"settings", "set", "autoDismiss", "true"}, "autoDismiss = true", false},
		{"bad bool", []string{"settings", "set", "widgetEnabled", "maybe"}, "", true},
		{"unknown key", []string{"settings", "get", "color"}, "", true},
		{"clear default", []string{"settings", "set", "defaultDestination", "none"}, "defaultDestination = none", false},
		{"default by name refused", []string{"settings", "set", "defaultDestination", "Inbox"}, "", true},
		{"favorites", []string{"settings", "set", "favoritePageIds", "a, b,,c"}, "favoritePageIds = a,b,c", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("execute(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestSettingsGet_All(t *testing.T) {
	setupCLI(t, &fakeRouter{})

	out, err := execute("settings", "get")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, key := range settingKeys {
		if !strings.Contains(out, key) {
			t.Errorf("output is missing %q:\n%s", key, out)
		}
	}
}

func TestLookupSetting_Unknown(t *testing.T) {
	if _, err := lookupSetting("nope"); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("lookupSetting() error = %v, want ErrUnknownSetting", err)
	}
}

func TestStatusCommand(t *testing.T) {
	c := setupCLI(t, &fakeRouter{})

	out, err := execute("status")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"Not connected", "Free", "0 / 10", "Choose a page", "pending"} {
		if !strings.Contains(out, want) {
			t.Errorf("fresh status is missing %q:\n%s", want, out)
		}
	}

	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		if err := repo.SetAuth(ctx, &domain.AuthState{AccessToken: "tok", WorkspaceName: "Acme"}); err != nil {
			return err
		}
		if _, err := repo.IncrementDailySaves(ctx, time.Now()); err != nil {
			return err
		}
		return repo.SetOnboardingComplete(ctx, true)
	})

	out, err = execute("status")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"Connected", "Acme", "1 / 10", "complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("status is missing %q:\n%s", want, out)
		}
	}
}

func TestStatusReport_Render(t *testing.T) {
	tests := []struct {
		name   string
		report statusReport
		want   string
	}{
		{
			name:   "limit reached",
			report: statusReport{SavesToday: 10, Limit: 10, Settings: domain.DefaultSettings()},
			want:   "limit reached",
		},
		{
			name:   "pro plan",
			report: statusReport{Sub: &domain.Subscription{IsPro: true}, SavesToday: 42, Limit: 10, Settings: domain.DefaultSettings()},
			want:   "42 (unlimited)",
		},
		{
			name: "default page",
			report: statusReport{Limit: 10, Settings: func() domain.Settings {
				s := domain.DefaultSettings()
				s.SetDefaultDestination(&books)
				return s
			}()},
			want: "📚 Books",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.render(); !strings.Contains(got, tt.want) {
				t.Errorf("render() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	c := setupCLI(t, &fakeRouter{})

	out, err := execute("history")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(out, "No saves yet.") {
		t.Errorf("empty history output = %q", out)
	}

	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		for i, d := range []domain.Destination{inbox, ideas} {
			err := repo.RecordSave(ctx, domain.SaveRecord{
				ID:               string(rune('a' + i)),
				TextPreview:      "note for " + d.Name,
				DestinationID:    d.ID,
				DestinationName:  d.Name,
				DestinationEmoji: d.Emoji,
				SavedAt:          time.Date(2026, 3, 1, 10, i, 0, 0, time.UTC),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	out, err = execute("history")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"PAGE", "Inbox", "note for Ideas", "2 of 2 saves"} {
		if !strings.Contains(out, want) {
			t.Errorf("history is missing %q:\n%s", want, out)
		}
	}

	out, err = execute("history", "-n", "1")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(out, "1 of 2 saves") || strings.Contains(out, "note for Inbox") {
		t.Errorf("limited history = %q, want only the newest save", out)
	}
}

func TestHistoryTable_TruncatesPreview(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := historyTable([]domain.SaveRecord{{TextPreview: long, DestinationName: "Inbox"}}, 0)
	if strings.Contains(got, long) {
		t.Error("preview was not truncated")
	}
	if !strings.Contains(got, "…") {
		t.Error("truncated preview has no ellipsis")
	}
}

func TestOnboardCommand(t *testing.T) {
	api := &fakeRouter{pages: []domain.Destination{inbox, ideas, books}}
	c := setupCLI(t, api)

	out, err := execute("onboard", "--list", "i")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if len(api.patches) != 0 {
		t.Errorf("--list changed settings: %+v", api.patches)
	}
	if !strings.Contains(out, "Inbox") || !strings.Contains(out, "Ideas") {
		t.Errorf("candidate list = %q", out)
	}

	onboardList = false
	out, err = execute("onboard", "books")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(out, "Default page set to 📚 Books") {
		t.Errorf("output = %q", out)
	}
	if len(api.patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(api.patches))
	}
	p := api.patches[0]
	if p.DefaultDestination == nil || p.DefaultDestination.ID != books.ID {
		t.Errorf("DefaultDestination = %+v, want %s", p.DefaultDestination, books.ID)
	}
	if p.WidgetEnabled == nil || !*p.WidgetEnabled {
		t.Error("onboarding did not enable the widget")
	}

	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		done, err := repo.OnboardingComplete(ctx)
		if err != nil {
			return err
		}
		if !done {
			t.Error("onboarding not marked complete")
		}
		return nil
	})
}

func TestOnboard_UsageBreaksTies(t *testing.T) {
	api := &fakeRouter{pages: []domain.Destination{inbox, ideas, books}}
	c := setupCLI(t, api)

	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		return repo.RecordSave(ctx, domain.SaveRecord{ID: "1", DestinationID: ideas.ID, DestinationName: ideas.Name})
	})

	ranked := func() []domain.DestinationCandidate {
		var got []domain.DestinationCandidate
		seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
			var err error
			got, err = rankPages(ctx, api, repo, "")
			return err
		})
		return got
	}()

	if len(ranked) != 3 || ranked[0].Destination.ID != ideas.ID {
		t.Errorf("ranked = %+v, want the used page first", ranked)
	}
}

func TestOnboard_FavoritesFirst(t *testing.T) {
	api := &fakeRouter{pages: []domain.Destination{inbox, ideas, books}}
	c := setupCLI(t, api)

	if _, err := execute("settings", "set", "favoritePageIds", books.ID); err != nil {
		t.Fatalf("settings set error = %v", err)
	}
	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		return repo.RecordSave(ctx, domain.SaveRecord{ID: "1", DestinationID: ideas.ID, DestinationName: ideas.Name})
	})

	var ranked []domain.DestinationCandidate
	seed(t, c, func(ctx context.Context, repo *storage.Repository) error {
		var err error
		ranked, err = rankPages(ctx, api, repo, "")
		return err
	})

	want := []string{books.ID, ideas.ID, inbox.ID}
	if len(ranked) != len(want) {
		t.Fatalf("ranked = %+v, want %d pages", ranked, len(want))
	}
	for i, id := range want {
		if ranked[i].Destination.ID != id {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Destination.ID, id)
		}
	}
}

func TestOnboard_Errors(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeRouter
		args []string
		want string
	}{
		{"not connected", &fakeRouter{searchErr: "Not connected to Notion"}, []string{"onboard", "inbox"}, "Not connected to Notion"},
		{"no match", &fakeRouter{pages: []domain.Destination{inbox}}, []string{"onboard", "zzzz"}, "no page matches"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t, tt.api)
			_, err := execute(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("execute() error = %v, want %q", err, tt.want)
			}
			if len(tt.api.patches) != 0 {
				t.Error("settings changed on failure")
			}
		})
	}
}

func TestConnectCommands(t *testing.T) {
	tests := []struct {
		name    string
		result  messages.ConnectResult
		want    string
		wantErr string
	}{
		{"success", messages.ConnectResult{Success: true, WorkspaceName: "Acme"}, "Connected to Acme", ""},
		{"cancelled", messages.ConnectResult{Error: "OAuth cancelled"}, "", "OAuth cancelled"},
		{"empty error", messages.ConnectResult{}, "", "Connection failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLI(t, &fakeRouter{connect: tt.result})
			out, err := execute("connect")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("execute() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}

	api := &fakeRouter{}
	setupCLI(t, api)
	if _, err := execute("disconnect"); err != nil {
		t.Fatalf("disconnect error = %v", err)
	}
	if api.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", api.disconnects)
	}
}
