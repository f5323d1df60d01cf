package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8787"
	ShutdownTimeout time.Duration // grace period for in-flight requests
	RequestTimeout  time.Duration // per-request timeout outside long-running routes
	MaxPollWait     time.Duration // upper bound for GET /api/tabs/{id}/next

	LogLevel  string // debug, info, warn or error
	PrettyLog bool   // colored console output instead of JSON
	LogFile   string // optional; the widget always logs to a file

	ConfigFile string // optional YAML overlay, hot-reloaded

	StoreBackend string // one of the Backend* constants
	SQLitePath   string
	Redis        Redis

	// Workspace API
	NotionBaseURL string
	NotionTimeout time.Duration

	// OAuth
	OAuthClientID     string
	OAuthRedirectURI  string
	OAuthAuthorizeURL string
	OAuthExchangeURL  string
	OAuthTimeout      time.Duration // how long NOTION_CONNECT waits for the redirect
	OAuthOpenBrowser  bool

	FreeDailyLimit int

	// Page contexts
	TabTTL           time.Duration
	TabSweepInterval time.Duration

	// Client side (widget, CLI)
	ServerURL         string
	ClipboardInterval time.Duration
	UsePrimary        bool // read the X11 primary selection as the current selection

	// Access restrictions
	AllowedHosts      []string // empty means any Host header
	AllowedCIDRS      []string // defaults to loopback only
	TrustProxy        bool
	RateLimitBurst    int
	RateLimitPerMin   int
	ConfigReloadDelay time.Duration // debounce for overlay file events
}

// Redis holds the connection and start-up retry settings of the redis
// backend.
type Redis struct {
	Addr             string
	User             string
	Password         string
	PasswordRequired bool
	DB               int
	PoolSize         int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	ConnectTimeout time.Duration // total budget for start-up attempts
	RetryInterval  time.Duration // first backoff, doubled on failure
	MaxWait        time.Duration // backoff cap
	PingTimeout    time.Duration
	WarnThreshold  int // attempts logged at warn before switching to error
}

// Load reads the environment, applies the optional overlay and panics on an
// unusable combination.
func Load() *Config {
	cfg := &Config{
		ListenAddr:      envString("CLIPFLOW_LISTEN_ADDR", "127.0.0.1:8787"),
		ShutdownTimeout: envDuration("CLIPFLOW_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  envDuration("CLIPFLOW_REQUEST_TIMEOUT", 20*time.Second),
		MaxPollWait:     envDuration("CLIPFLOW_MAX_POLL_WAIT", 30*time.Second),

		LogLevel:  envString("CLIPFLOW_LOG_LEVEL", "info"),
		PrettyLog: envBool("CLIPFLOW_PRETTY_LOG", true),
		LogFile:   envString("CLIPFLOW_LOG_FILE", ""),

		ConfigFile: envString("CLIPFLOW_CONFIG_FILE", ""),

		StoreBackend: strings.ToLower(envString("CLIPFLOW_STORE", BackendSQLite)),
		SQLitePath:   envString("CLIPFLOW_SQLITE_PATH", defaultDataPath("clipflow.db")),
		Redis:        loadRedis(),

		NotionBaseURL: envString("CLIPFLOW_NOTION_BASE_URL", "https://api.notion.com/v1"),
		NotionTimeout: envDuration("CLIPFLOW_NOTION_TIMEOUT", 15*time.Second),

		OAuthClientID:     envString("CLIPFLOW_OAUTH_CLIENT_ID", ""),
		OAuthRedirectURI:  envString("CLIPFLOW_OAUTH_REDIRECT_URI", "http://127.0.0.1:8788/oauth/callback"),
		OAuthAuthorizeURL: envString("CLIPFLOW_OAUTH_AUTHORIZE_URL", "https://api.notion.com/v1/oauth/authorize"),
		OAuthExchangeURL:  envString("CLIPFLOW_OAUTH_EXCHANGE_URL", "https://clipflow.tools/.netlify/functions/notion-oauth"),
		OAuthTimeout:      envDuration("CLIPFLOW_OAUTH_TIMEOUT", 5*time.Minute),
		OAuthOpenBrowser:  envBool("CLIPFLOW_OAUTH_OPEN_BROWSER", true),

		FreeDailyLimit: envInt("CLIPFLOW_FREE_DAILY_LIMIT", 10),

		TabTTL:           envDuration("CLIPFLOW_TAB_TTL", 2*time.Minute),
		TabSweepInterval: envDuration("CLIPFLOW_TAB_SWEEP_INTERVAL", 30*time.Second),

		ServerURL:         envString("CLIPFLOW_SERVER_URL", "http://127.0.0.1:8787"),
		ClipboardInterval: envDuration("CLIPFLOW_CLIPBOARD_INTERVAL", 500*time.Millisecond),
		UsePrimary:        envBool("CLIPFLOW_USE_PRIMARY", true),

		AllowedHosts:      parseList(envString("CLIPFLOW_ALLOWED_HOSTS", "")),
		AllowedCIDRS:      parseList(envString("CLIPFLOW_ALLOWED_CIDRS", "127.0.0.0/8,::1")),
		TrustProxy:        envBool("CLIPFLOW_TRUST_PROXY", false),
		RateLimitBurst:    envInt("CLIPFLOW_RATE_LIMIT_BURST", 30),
		RateLimitPerMin:   envInt("CLIPFLOW_RATE_LIMIT_PER_MIN", 120),
		ConfigReloadDelay: envDuration("CLIPFLOW_CONFIG_RELOAD_DELAY", 250*time.Millisecond),
	}

	if cfg.ConfigFile != "" {
		overlay, err := LoadOverlay(cfg.ConfigFile)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
		cfg.Apply(overlay)
	}

	cfg.validate()

	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.redacted())
	}
	return cfg
}

func loadRedis() Redis {
	return Redis{
		Addr:             envString("CLIPFLOW_REDIS_ADDR", ""),
		User:             envString("CLIPFLOW_REDIS_USERNAME", "default"),
		Password:         envString("CLIPFLOW_REDIS_PASSWORD", ""),
		PasswordRequired: envBool("CLIPFLOW_REDIS_PASSWORD_REQUIRED", false),
		DB:               envInt("CLIPFLOW_REDIS_DB", 0),
		PoolSize:         envInt("CLIPFLOW_REDIS_POOL_SIZE", 10),

		DialTimeout:  envDuration("CLIPFLOW_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  envDuration("CLIPFLOW_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: envDuration("CLIPFLOW_REDIS_WRITE_TIMEOUT", 3*time.Second),

		ConnectTimeout: envDuration("CLIPFLOW_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  envDuration("CLIPFLOW_REDIS_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        envDuration("CLIPFLOW_REDIS_MAX_WAIT", 10*time.Second),
		PingTimeout:    envDuration("CLIPFLOW_REDIS_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  envInt("CLIPFLOW_REDIS_WARN_THRESHOLD", 3),
	}
}

// redacted is a copy safe to print.
func (c *Config) redacted() Config {
	cp := *c
	if cp.Redis.Password != "" {
		cp.Redis.Password = "***REDACTED***"
	}
	if cp.Redis.User != "" {
		cp.Redis.User = "***REDACTED***"
	}
	return cp
}

func (c *Config) validate() {
	switch c.StoreBackend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			panic("❌ FATAL: CLIPFLOW_SQLITE_PATH is required when CLIPFLOW_STORE=sqlite")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			panic("❌ FATAL: CLIPFLOW_REDIS_ADDR is required when CLIPFLOW_STORE=redis")
		}
		if c.Redis.PasswordRequired && c.Redis.Password == "" {
			panic("❌ FATAL: CLIPFLOW_REDIS_PASSWORD is required when CLIPFLOW_REDIS_PASSWORD_REQUIRED=true")
		}
	case BackendMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown CLIPFLOW_STORE %q (want sqlite, redis or memory)", c.StoreBackend))
	}

	if c.FreeDailyLimit < 1 {
		panic(fmt.Sprintf("❌ FATAL: CLIPFLOW_FREE_DAILY_LIMIT must be positive, got %d", c.FreeDailyLimit))
	}
	if c.MaxPollWait <= 0 || c.TabTTL <= c.MaxPollWait {
		panic("❌ FATAL: CLIPFLOW_TAB_TTL must be longer than CLIPFLOW_MAX_POLL_WAIT")
	}
}

// envAs parses key with parse, keeping def when the variable is unset or
// malformed.
func envAs[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func envString(key, def string) string {
	return envAs(key, def, func(s string) (string, error) { return s, nil })
}

func envInt(key string, def int) int { return envAs(key, def, strconv.Atoi) }

func envBool(key string, def bool) bool { return envAs(key, def, strconv.ParseBool) }

func envDuration(key string, def time.Duration) time.Duration {
	return envAs(key, def, time.ParseDuration)
}

// parseList splits a comma list, dropping blanks and surrounding quotes.
func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.Trim(strings.TrimSpace(item), `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// defaultDataPath places name under the user config directory, falling back
// to the working directory when none is known.
func defaultDataPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "clipflow", name)
}
