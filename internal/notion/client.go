// Package notion is the HTTP client for the Notion REST API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/domain"
)

const (
	// APIVersion is sent as Notion-Version on every request.
	APIVersion = "2022-06-28"

	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultTimeout = 15 * time.Second

	searchPageSize = 20
)

// TokenSource yields the access token for each request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) AccessToken(ctx context.Context) (string, error) { return f(ctx) }

// Config tunes the client. Zero values pick the defaults.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the workspace API on behalf of the stored token.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// New creates a client.
func New(tokens TokenSource, cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base:   base,
		http:   pickHTTPClient(cfg.HTTPClient),
		tokens: tokens,
	}
}

func pickHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// Search lists pages matching query, most recently edited first. An empty
// query returns recent pages.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Destination, error) {
	payload := map[string]any{
		"query":     query,
		"filter":    map[string]string{"value": "page", "property": "object"},
		"sort":      map[string]string{"direction": "descending", "timestamp": "last_edited_time"},
		"page_size": searchPageSize,
	}

	var out struct {
		Results []apiPage `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/search", OpSearch, payload, &out); err != nil {
		return nil, err
	}

	pages := make([]domain.Destination, 0, len(out.Results))
	for _, p := range out.Results {
		pages = append(pages, p.destination())
	}
	return pages, nil
}

// AppendText appends text to the page as paragraph blocks, followed by the
// optional metadata line and an empty separator paragraph.
func (c *Client) AppendText(ctx context.Context, pageID, text string, opts AppendOptions) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	path := "/blocks/" + url.PathEscape(pageID) + "/children"
	for _, batch := range batches(buildChildren(text, opts), MaxChildrenPerRequest) {
		payload := map[string]any{"children": batch}
		if err := c.do(ctx, http.MethodPatch, path, OpAppend, payload, nil); err != nil {
			return err
		}
	}
	return nil
}

// CreatePage creates a page titled title under parentID.
func (c *Client) CreatePage(ctx context.Context, parentID, title string) (domain.Destination, error) {
	payload := map[string]any{
		"parent": map[string]string{"type": "page_id", "page_id": parentID},
		"properties": map[string]any{
			"title": map[string]any{"title": []richText{textItem(title)}},
		},
	}

	var page apiPage
	if err := c.do(ctx, http.MethodPost, "/pages", OpCreatePage, payload, &page); err != nil {
		return domain.Destination{}, err
	}
	return page.destination(), nil
}

func (c *Client) do(ctx context.Context, method, path, op string, payload, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", APIVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
		var detail struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &detail) == nil {
			apiErr.Code = detail.Code
			apiErr.Message = detail.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
