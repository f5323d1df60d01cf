package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/clipflow/internal/config"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/notion"
	"github.com/MrSnakeDoc/clipflow/internal/oauth"
	"github.com/MrSnakeDoc/clipflow/internal/router"
	"github.com/MrSnakeDoc/clipflow/internal/scheduler"
	"github.com/MrSnakeDoc/clipflow/internal/storage"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
	"github.com/MrSnakeDoc/clipflow/internal/utils"
	"github.com/MrSnakeDoc/clipflow/internal/version"
)

// App is the router daemon behind `clipflow serve`.
type App struct {
	cfg       *config.Config
	logger    logger.Logger
	server    *httpserver.Server
	store     Store
	runtimeID string
	sweeper   *scheduler.TabSweeper
	watcher   *scheduler.ConfigWatcher
}

// New opens the store and wires the router, transport and schedulers.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	repo := storage.New(store)

	workspace := notion.New(notion.TokenFunc(repo.AccessToken), notion.Config{
		BaseURL:    cfg.NotionBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.NotionTimeout},
	})

	authorizer, err := oauth.NewLoopbackAuthorizer(cfg.OAuthRedirectURI, oauth.LoopbackOptions{
		Timeout:     cfg.OAuthTimeout,
		OpenBrowser: cfg.OAuthOpenBrowser,
	}, loggerClient.With(logger.String("component", "oauth")))
	if err != nil {
		utils.MustClose(store, loggerClient, "store")
		return nil, fmt.Errorf("invalid OAuth configuration: %w", err)
	}
	flow := oauth.NewFlow(oauth.Config{
		ClientID:     cfg.OAuthClientID,
		RedirectURI:  cfg.OAuthRedirectURI,
		AuthorizeURL: cfg.OAuthAuthorizeURL,
		ExchangeURL:  cfg.OAuthExchangeURL,
	}, authorizer)

	registry := tabs.NewRegistry()
	rt := router.New(router.Config{
		Repo:           repo,
		Workspace:      workspace,
		OAuth:          flow,
		Tabs:           registry,
		Logger:         loggerClient.With(logger.String("component", "router")),
		FreeDailyLimit: cfg.FreeDailyLimit,
	})

	sweeper := scheduler.NewTabSweeper(registry, loggerClient, cfg.TabSweepInterval, cfg.TabTTL)

	// Manual reload trigger shared by POST /reload and the file watcher.
	var (
		reloadTrigger chan struct{}
		watcher       *scheduler.ConfigWatcher
	)
	if cfg.ConfigFile != "" {
		loggerClient.Info("config overlay configured, watching for changes",
			logger.String("file", cfg.ConfigFile))
		reloadTrigger = make(chan struct{}, 1)
		watcher = scheduler.NewConfigWatcher(
			cfg.ConfigFile,
			loggerClient,
			rt,
			loggerClient,
			cfg.ConfigReloadDelay,
			reloadTrigger,
		)
	}

	runtimeID := uuid.NewString()

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		RuntimeID:       runtimeID,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Router:          rt,
		Tabs:            registry,
		Store:           store,
		StoreBackend:    cfg.StoreBackend,
		RequestTimeout:  cfg.RequestTimeout,
		ConnectTimeout:  cfg.OAuthTimeout + cfg.RequestTimeout,
		MaxPollWait:     cfg.MaxPollWait,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		ReloadTrigger:   reloadTrigger,
	}

	return &App{
		cfg:       cfg,
		logger:    loggerClient,
		server:    httpserver.New(cfg.ListenAddr, loggerClient, d),
		store:     store,
		runtimeID: runtimeID,
		sweeper:   sweeper,
		watcher:   watcher,
	}, nil
}

// RuntimeID identifies this daemon instance. Page contexts bound to another
// id are invalidated.
func (a *App) RuntimeID() string { return a.runtimeID }

// Run serves until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext serves until ctx is cancelled, then shuts down gracefully.
func (a *App) RunContext(ctx context.Context) error {
	a.logger.Infof("🚀 Starting ClipFlow v%s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Info("build info",
		logger.String("version", version.String()),
		logger.String("runtime", a.runtimeID),
		logger.String("store", a.cfg.StoreBackend))

	if err := a.sweeper.Start(ctx); err != nil {
		utils.MustClose(a.store, a.logger, "store")
		return fmt.Errorf("failed to start tab sweeper: %w", err)
	}
	a.logger.Info("tab sweeper started",
		logger.Duration("interval", a.cfg.TabSweepInterval),
		logger.Duration("ttl", a.cfg.TabTTL))

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			// Not fatal: the overlay was already applied at start-up.
			a.logger.Warn("config watcher disabled", logger.Error(err))
		} else {
			a.logger.Info("config watcher started")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.sweeper.Stop()
	if a.watcher != nil {
		a.watcher.Stop()
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			runErr = fmt.Errorf("failed to stop server: %w", err)
		}
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ ClipFlow stopped cleanly")
	return nil
}
