package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/kv"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/router"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
)

// Dispatcher is the part of the router the transport needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, from router.Sender, msg messages.Message) (any, error)
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	RuntimeID       string           // changes on every daemon start
	AllowedHosts    []string         // Host headers allowed to access the server
	AllowedCIDRS    []string         // client IPs allowed to reach the API
	TrustProxy      bool             // true if running behind a trusted reverse proxy
	Router          Dispatcher       // protocol message handler
	Tabs            *tabs.Registry   // live page contexts
	Store           kv.Pinger        // persisted state, probed by readyz/infra
	StoreBackend    string           // "sqlite" | "redis" | "memory"
	RequestTimeout  time.Duration    // deadline for ordinary requests
	ConnectTimeout  time.Duration    // deadline for NOTION_CONNECT, which waits for the browser
	MaxPollWait     time.Duration    // cap for long-poll waits
	RateLimitBurst  int              // token bucket size on /api/messages
	RateLimitPerMin int              // refill rate on /api/messages
	ReloadTrigger   chan struct{}    // Channel to trigger a config overlay reload (nil if no overlay)
}
