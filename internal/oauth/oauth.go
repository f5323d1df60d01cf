// Package oauth runs the workspace authorization-code flow. The code is
// exchanged by a server-side endpoint, so no client secret is held here.
package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

const (
	DefaultAuthorizeURL = "https://api.notion.com/v1/oauth/authorize"
	DefaultExchangeURL  = "https://clipflow.tools/.netlify/functions/notion-oauth-exchange"
	DefaultRedirectURI  = "http://127.0.0.1:8788/oauth/callback"
)

var (
	// ErrCancelled is returned when the user abandons the flow.
	ErrCancelled = errors.New("OAuth cancelled")

	// ErrNoCode is returned when the redirect carries neither code nor error.
	ErrNoCode = errors.New("No authorization code received")
)

// Config describes the OAuth client.
type Config struct {
	ClientID     string
	RedirectURI  string
	AuthorizeURL string
	ExchangeURL  string
	HTTPClient   *http.Client
}

func (c Config) withDefaults() Config {
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = DefaultAuthorizeURL
	}
	if c.ExchangeURL == "" {
		c.ExchangeURL = DefaultExchangeURL
	}
	if c.RedirectURI == "" {
		c.RedirectURI = DefaultRedirectURI
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

// Authorizer shows authURL to the user and returns the redirect the provider
// sent back.
type Authorizer interface {
	Authorize(ctx context.Context, authURL string) (*url.URL, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, authURL string) (*url.URL, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, authURL string) (*url.URL, error) {
	return f(ctx, authURL)
}

// BuildAuthURL returns the provider authorization URL for cfg.
func BuildAuthURL(cfg Config) string {
	cfg = cfg.withDefaults()
	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("response_type", "code")
	params.Set("owner", "user")
	params.Set("redirect_uri", cfg.RedirectURI)
	return cfg.AuthorizeURL + "?" + params.Encode()
}

// ParseRedirect extracts the authorization code from the redirect URL.
func ParseRedirect(redirect *url.URL) (string, error) {
	if redirect == nil {
		return "", ErrCancelled
	}
	q := redirect.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("Notion OAuth error: %s", e)
	}
	code := q.Get("code")
	if code == "" {
		return "", ErrNoCode
	}
	return code, nil
}

// Flow runs authorization and token exchange.
type Flow struct {
	cfg        Config
	authorizer Authorizer
	now        func() time.Time
}

// NewFlow creates a flow that presents the authorization URL through a.
func NewFlow(cfg Config, a Authorizer) *Flow {
	return &Flow{cfg: cfg.withDefaults(), authorizer: a, now: time.Now}
}

// Connect runs the interactive flow and returns the new token.
func (f *Flow) Connect(ctx context.Context) (domain.AuthState, error) {
	redirect, err := f.authorizer.Authorize(ctx, BuildAuthURL(f.cfg))
	if err != nil {
		return domain.AuthState{}, err
	}
	code, err := ParseRedirect(redirect)
	if err != nil {
		return domain.AuthState{}, err
	}
	return f.Exchange(ctx, code)
}

type exchangeResponse struct {
	AccessToken   string `json:"access_token"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	WorkspaceIcon string `json:"workspace_icon"`
	BotID         string `json:"bot_id"`
}

// Exchange trades code for an access token through the exchange endpoint.
func (f *Flow) Exchange(ctx context.Context, code string) (domain.AuthState, error) {
	buf, err := json.Marshal(map[string]string{
		"code":         code,
		"redirect_uri": f.cfg.RedirectURI,
	})
	if err != nil {
		return domain.AuthState{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.ExchangeURL, bytes.NewReader(buf))
	if err != nil {
		return domain.AuthState{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.cfg.HTTPClient.Do(req)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AuthState{}, fmt.Errorf("failed to read token exchange response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &failure) == nil && failure.Error != "" {
			return domain.AuthState{}, errors.New(failure.Error)
		}
		return domain.AuthState{}, fmt.Errorf("Token exchange failed: %d", resp.StatusCode)
	}

	var data exchangeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.AuthState{}, fmt.Errorf("failed to decode token exchange response: %w", err)
	}
	if data.AccessToken == "" {
		return domain.AuthState{}, errors.New("token exchange returned no access token")
	}

	return domain.AuthState{
		AccessToken:    data.AccessToken,
		WorkspaceID:    data.WorkspaceID,
		WorkspaceName:  data.WorkspaceName,
		BotID:          data.BotID,
		TokenCreatedAt: f.now().UTC(),
	}, nil
}
