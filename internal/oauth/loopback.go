package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

// DefaultLoopbackTimeout bounds how long the user has to finish consent.
const DefaultLoopbackTimeout = 5 * time.Minute

// LoopbackAuthorizer receives the provider redirect on a local listener.
type LoopbackAuthorizer struct {
	addr        string
	path        string
	timeout     time.Duration
	openBrowser func(string) error
	log         logger.Logger
	ready       func(addr string)
}

// LoopbackOptions tunes NewLoopbackAuthorizer.
type LoopbackOptions struct {
	Timeout     time.Duration
	OpenBrowser bool
}

// NewLoopbackAuthorizer listens on the host and path of redirectURI, which
// must be an http URL on a loopback address.
func NewLoopbackAuthorizer(redirectURI string, opts LoopbackOptions, log logger.Logger) (*LoopbackAuthorizer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect URI must use http, got %q", u.Scheme)
	}
	if ip := net.ParseIP(u.Hostname()); u.Hostname() != "localhost" && (ip == nil || !ip.IsLoopback()) {
		return nil, fmt.Errorf("redirect URI host %q is not a loopback address", u.Hostname())
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultLoopbackTimeout
	}

	a := &LoopbackAuthorizer{
		addr:    u.Host,
		path:    path,
		timeout: timeout,
		log:     log,
	}
	if opts.OpenBrowser {
		a.openBrowser = openURL
	}
	return a, nil
}

// Authorize logs authURL, optionally opens a browser on it, and waits for
// the redirect. Cancellation and timeout both yield ErrCancelled.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, authURL string) (*url.URL, error) {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth redirect on %s: %w", a.addr, err)
	}

	redirects := make(chan *url.URL, 1)
	r := chi.NewRouter()
	r.Get(a.path, func(w http.ResponseWriter, req *http.Request) {
		select {
		case redirects <- req.URL:
		default:
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if req.URL.Query().Get("error") != "" {
			_, _ = io.WriteString(w, "ClipFlow authorization failed. You can close this tab.\n")
			return
		}
		_, _ = io.WriteString(w, "ClipFlow is connected. You can close this tab.\n")
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("oauth loopback listener stopped", logger.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if a.ready != nil {
		a.ready(ln.Addr().String())
	}

	a.log.Info("open this URL to connect your workspace", logger.String("url", authURL))
	if a.openBrowser != nil {
		if err := a.openBrowser(authURL); err != nil {
			a.log.Warn("failed to open browser", logger.Error(err))
		}
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case u := <-redirects:
		return u, nil
	case <-ctx.Done():
		return nil, ErrCancelled
	case <-timer.C:
		return nil, ErrCancelled
	}
}

func openURL(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
