// Package client speaks the router protocol over HTTP. It is what page
// contexts and the CLI use in place of direct workspace access.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

var (
	// ErrContextInvalidated means the daemon restarted since Bind; the
	// caller must re-bind before talking to it again.
	ErrContextInvalidated = errors.New("context invalidated")

	// ErrUnregistered means the daemon no longer knows this page context.
	ErrUnregistered = errors.New("page context not registered")

	// ErrNoTab is returned by page-context calls made before Register.
	ErrNoTab = errors.New("no page context registered")
)

// StatusError is a non-2xx answer other than the ones mapped to sentinels.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("router returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("router returned %d", e.StatusCode)
}

// Config configures New.
type Config struct {
	BaseURL    string       // ex: "http://127.0.0.1:8787"
	HTTPClient *http.Client // defaults to a client without a global timeout
}

// Client is safe for concurrent use.
type Client struct {
	base string
	http *http.Client

	mu      sync.RWMutex
	runtime string
	tab     string
}

// New creates a client. Callers bound their requests with contexts.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: hc,
	}
}

// Bind records the daemon's current runtime id. Requests made afterwards
// fail with ErrContextInvalidated once the daemon restarts.
func (c *Client) Bind(ctx context.Context) error {
	info, err := c.runtimeInfo(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.runtime = info.Runtime
	c.mu.Unlock()
	return nil
}

// Runtime returns the bound runtime id, or "" before Bind.
func (c *Client) Runtime() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runtime
}

// Valid reports whether the bound runtime is still the one serving. It is
// false before Bind and whenever the daemon cannot be reached.
func (c *Client) Valid(ctx context.Context) bool {
	bound := c.Runtime()
	if bound == "" {
		return false
	}
	info, err := c.runtimeInfo(ctx)
	return err == nil && info.Runtime == bound
}

// Tab returns the registered page-context id, or "".
func (c *Client) Tab() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tab
}

func (c *Client) runtimeInfo(ctx context.Context) (messages.RuntimeInfo, error) {
	var info messages.RuntimeInfo
	resp, err := c.do(ctx, http.MethodGet, "/api/runtime", nil)
	if err != nil {
		return info, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return info, err
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("failed to decode runtime: %w", err)
	}
	return info, nil
}

// Send posts msg and decodes the typed response into out.
func (c *Client) Send(ctx context.Context, msg messages.Message, out any) error {
	body, err := messages.Encode(msg)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/messages", body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", msg.Kind(), err)
	}
	return nil
}

// NotifyCopy reports a copy action. The router answers before deciding
// whether to show the widget.
func (c *Client) NotifyCopy(ctx context.Context, m messages.CopyDetected) error {
	return c.Send(ctx, m, nil)
}

// Save appends text to a page.
func (c *Client) Save(ctx context.Context, m messages.SaveToNotion) (messages.SaveResult, error) {
	var res messages.SaveResult
	err := c.Send(ctx, m, &res)
	return res, err
}

// Search looks up pages by title.
func (c *Client) Search(ctx context.Context, query string) (messages.SearchPagesResult, error) {
	var res messages.SearchPagesResult
	err := c.Send(ctx, messages.SearchPages{Query: query}, &res)
	return res, err
}

// CreatePage creates a child page.
func (c *Client) CreatePage(ctx context.Context, parentID, title string) (messages.CreatePageResult, error) {
	var res messages.CreatePageResult
	err := c.Send(ctx, messages.CreatePage{ParentID: parentID, Title: title}, &res)
	return res, err
}

// Connect runs the OAuth flow on the daemon. It blocks until the browser
// round-trip completes or ctx ends.
func (c *Client) Connect(ctx context.Context) (messages.ConnectResult, error) {
	var res messages.ConnectResult
	err := c.Send(ctx, messages.NotionConnect{}, &res)
	return res, err
}

// Disconnect discards the stored token.
func (c *Client) Disconnect(ctx context.Context) (messages.DisconnectResult, error) {
	var res messages.DisconnectResult
	err := c.Send(ctx, messages.NotionDisconnect{}, &res)
	return res, err
}

// AuthState reports the connection state.
func (c *Client) AuthState(ctx context.Context) (messages.AuthStateResult, error) {
	var res messages.AuthStateResult
	err := c.Send(ctx, messages.GetAuthState{}, &res)
	return res, err
}

// Settings returns the stored settings.
func (c *Client) Settings(ctx context.Context) (messages.SettingsResult, error) {
	var res messages.SettingsResult
	err := c.Send(ctx, messages.GetSettings{}, &res)
	return res, err
}

// UpdateSettings merges patch into the stored settings.
func (c *Client) UpdateSettings(ctx context.Context, patch messages.SettingsPatch) (messages.SettingsResult, error) {
	var res messages.SettingsResult
	err := c.Send(ctx, messages.UpdateSettings{Patch: patch}, &res)
	return res, err
}

// Register creates a page context on the daemon and binds to its runtime.
func (c *Client) Register(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/tabs", nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", err
	}
	var reg messages.TabRegistration
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return "", fmt.Errorf("failed to decode registration: %w", err)
	}

	c.mu.Lock()
	c.tab = reg.ID
	c.runtime = reg.Runtime
	c.mu.Unlock()
	return reg.ID, nil
}

// Unregister removes the page context. It is a no-op before Register.
func (c *Client) Unregister(ctx context.Context) error {
	id := c.Tab()
	if id == "" {
		return nil
	}

	resp, err := c.do(ctx, http.MethodDelete, "/api/tabs/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.mu.Lock()
	c.tab = ""
	c.mu.Unlock()

	if err := checkStatus(resp); err != nil && !errors.Is(err, ErrUnregistered) {
		return err
	}
	return nil
}

// Next waits up to wait for the next instruction. It returns nil when none
// arrived in time.
func (c *Client) Next(ctx context.Context, wait time.Duration) (messages.Message, error) {
	id := c.Tab()
	if id == "" {
		return nil, ErrNoTab
	}

	path := "/api/tabs/" + url.PathEscape(id) + "/next?wait=" + url.QueryEscape(wait.String())
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read instruction: %w", err)
	}
	return messages.Decode(data)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	if c.runtime != "" {
		req.Header.Set(messages.HeaderRuntime, c.runtime)
	}
	if c.tab != "" {
		req.Header.Set(messages.HeaderTab, c.tab)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("router unreachable: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body messages.ErrorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusConflict:
		return ErrContextInvalidated
	case http.StatusNotFound:
		return ErrUnregistered
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: body.Error}
}
