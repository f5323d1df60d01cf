package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/utils"
)

// RateLimitConfig tunes RateLimit. Buckets are per sender: the page-context
// id when the request carries one, the client address otherwise.
type RateLimitConfig struct {
	Burst         int
	RefillPerMin  int
	MaxEntries    int
	SweepInterval time.Duration
	IdleTTL       time.Duration
	TrustProxy    bool             // resolve the client address from proxy headers when true
	Now           func() time.Time // defaults to time.Now
}

func (c *RateLimitConfig) normalize() {
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.RefillPerMin < 1 {
		c.RefillPerMin = 1
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = time.Minute
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = 15 * time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type senderBucket struct {
	tokens  float64
	updated time.Time
}

// senderLimiter holds one bucket per sender behind a single lock. Page
// contexts are few, so contention is not a concern.
type senderLimiter struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	perSecond float64
	buckets   map[string]*senderBucket
	swept     time.Time
}

func newSenderLimiter(cfg RateLimitConfig) *senderLimiter {
	cfg.normalize()
	return &senderLimiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerMin) / 60,
		buckets:   make(map[string]*senderBucket),
		swept:     cfg.Now(),
	}
}

// take spends one token from key's bucket. When the bucket is empty it
// returns the whole seconds until the next token.
func (l *senderLimiter) take(key string, now time.Time) (left int, wait int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	full := l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries
	if full || now.Sub(l.swept) >= l.cfg.SweepInterval {
		l.evictIdle(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &senderBucket{tokens: float64(l.cfg.Burst), updated: now}
		l.buckets[key] = b
	}
	if d := now.Sub(b.updated).Seconds(); d > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+d*l.perSecond)
	}
	b.updated = now

	if b.tokens < 1 {
		wait = int(math.Ceil((1 - b.tokens) / l.perSecond))
		return 0, max(wait, 1)
	}
	b.tokens--
	return int(b.tokens), 0
}

func (l *senderLimiter) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.updated) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
	l.swept = now
}

// senderKey picks the bucket a request draws from.
func senderKey(r *http.Request, trustProxy bool) string {
	if tab := r.Header.Get(messages.HeaderTab); tab != "" {
		return "tab:" + tab
	}
	return "addr:" + utils.ClientAddr(r, trustProxy).String()
}

// RateLimit is a token bucket per sender. Rejected requests get 429 with
// Retry-After and the transport's error body.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newSenderLimiter(cfg)
	burst := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			left, wait := l.take(senderKey(r, l.cfg.TrustProxy), l.cfg.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", burst)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if wait > 0 {
				h.Set("Retry-After", strconv.Itoa(wait))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(messages.ErrorBody{Error: "rate limited"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
