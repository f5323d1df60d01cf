package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// fakeAPI records requests and answers with a fixed status and body.
type fakeAPI struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(staticToken("secret-token"), Config{BaseURL: srv.URL})
}

func TestSearch(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{"results":[
		{"id":"p1","icon":{"type":"emoji","emoji":"📘"},"properties":{"title":{"title":[{"plain_text":"Reading "},{"plain_text":"List"}]}}},
		{"id":"p2","icon":{"type":"external","external":{"url":"https://img/x.png"}},"properties":{"Name":{"title":[{"plain_text":"Tasks"}]}}},
		{"id":"p3","title":[{"plain_text":"Legacy"}]},
		{"id":"p4","properties":{}}
	]}`}
	c := newTestClient(t, api)

	pages, err := c.Search(context.Background(), "read")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []struct{ id, emoji, name, icon string }{
		{"p1", "📘", "Reading List", ""},
		{"p2", DefaultPageEmoji, "Tasks", "https://img/x.png"},
		{"p3", DefaultPageEmoji, "Legacy", ""},
		{"p4", DefaultPageEmoji, "Untitled", ""},
	}
	if len(pages) != len(want) {
		t.Fatalf("len(pages) = %d, want %d", len(pages), len(want))
	}
	for i, w := range want {
		p := pages[i]
		if p.ID != w.id || p.Emoji != w.emoji || p.Name != w.name || p.IconURL != w.icon {
			t.Errorf("pages[%d] = %+v, want %+v", i, p, w)
		}
	}

	req := api.requests[0]
	if req.Method != http.MethodPost || req.Path != "/search" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("Notion-Version"); got != APIVersion {
		t.Errorf("Notion-Version = %q", got)
	}
	if req.Body["query"] != "read" || req.Body["page_size"] != float64(20) {
		t.Errorf("body = %v", req.Body)
	}
	filter, _ := req.Body["filter"].(map[string]any)
	if filter["value"] != "page" || filter["property"] != "object" {
		t.Errorf("filter = %v", filter)
	}
}

func TestSearchError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server message", http.StatusBadRequest, `{"object":"error","code":"validation_error","message":"query is too long"}`, "query is too long"},
		{"no message", http.StatusBadGateway, `<html>bad gateway</html>`, "Notion search failed: 502"},
		{"empty message", http.StatusServiceUnavailable, `{"message":""}`, "Notion search failed: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeAPI{status: tt.status, body: tt.body})

			_, err := c.Search(context.Background(), "")
			if err == nil || err.Error() != tt.want {
				t.Errorf("Search() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestNotAuthenticated(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	srv := httptest.NewServer(api)
	defer srv.Close()
	c := New(staticToken(""), Config{BaseURL: srv.URL})

	err := c.AppendText(context.Background(), "p1", "hello", AppendOptions{})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("AppendText() error = %v, want ErrNotAuthenticated", err)
	}
	if !IsUnauthorized(err) {
		t.Error("IsUnauthorized() = false")
	}
	if len(api.requests) != 0 {
		t.Errorf("made %d requests without a token", len(api.requests))
	}
}

func childTexts(t *testing.T, body map[string]any) []string {
	t.Helper()
	children, _ := body["children"].([]any)
	out := make([]string, 0, len(children))
	for _, c := range children {
		para := c.(map[string]any)["paragraph"].(map[string]any)
		rich := para["rich_text"].([]any)
		text := ""
		for _, r := range rich {
			text += r.(map[string]any)["text"].(map[string]any)["content"].(string)
		}
		out = append(out, text)
	}
	return out
}

func TestAppendText_Chunks(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	c := newTestClient(t, api)
	text := strings.Repeat("abcdefghij", 450) // 4500 runes

	if err := c.AppendText(context.Background(), "page-1", text, AppendOptions{}); err != nil {
		t.Fatalf("AppendText() error = %v", err)
	}

	if len(api.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(api.requests))
	}
	req := api.requests[0]
	if req.Method != http.MethodPatch || req.Path != "/blocks/page-1/children" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}

	texts := childTexts(t, req.Body)
	if len(texts) != 4 {
		t.Fatalf("children = %d, want 3 text blocks + separator", len(texts))
	}
	if got := strings.Join(texts[:3], ""); got != text {
		t.Error("text blocks do not reconstruct the input")
	}
	for i, s := range texts[:3] {
		if n := TextLen(s); n > MaxBlockChars {
			t.Errorf("block %d has %d characters", i, n)
		}
	}
	if texts[3] != "" {
		t.Errorf("separator = %q, want empty", texts[3])
	}
}

func TestAppendText_Metadata(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	c := newTestClient(t, api)

	opts := AppendOptions{
		SourceURL:        "https://example.com/a",
		SavedAt:          time.Date(2026, 2, 3, 14, 5, 0, 0, time.UTC),
		IncludeSourceURL: true,
		IncludeDateTime:  true,
	}
	if err := c.AppendText(context.Background(), "p", "hi", opts); err != nil {
		t.Fatalf("AppendText() error = %v", err)
	}

	texts := childTexts(t, api.requests[0].Body)
	if len(texts) != 3 {
		t.Fatalf("children = %v, want text, metadata, separator", texts)
	}
	if !strings.Contains(texts[1], "2026-02-03 14:05") || !strings.Contains(texts[1], "https://example.com/a") {
		t.Errorf("metadata = %q", texts[1])
	}
}

func TestAppendText_Batches(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	c := newTestClient(t, api)
	text := strings.Repeat("x", MaxBlockChars*150)

	if err := c.AppendText(context.Background(), "p", text, AppendOptions{}); err != nil {
		t.Fatalf("AppendText() error = %v", err)
	}
	if len(api.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(api.requests))
	}
	first := childTexts(t, api.requests[0].Body)
	second := childTexts(t, api.requests[1].Body)
	if len(first) != MaxChildrenPerRequest || len(second) != 51 {
		t.Errorf("batch sizes = %d, %d; want 100, 51", len(first), len(second))
	}
}

func TestAppendText_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server message", http.StatusNotFound, `{"code":"object_not_found","message":"Could not find block"}`, "Could not find block"},
		{"no message", http.StatusInternalServerError, `oops`, "Append failed: 500"},
		{"unauthorized", http.StatusUnauthorized, `{"message":"API token is invalid."}`, "API token is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, &fakeAPI{status: tt.status, body: tt.body})
			err := c.AppendText(context.Background(), "p", "hello", AppendOptions{})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("AppendText() error = %v, want *APIError", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestAppendText_Empty(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	c := newTestClient(t, api)

	if err := c.AppendText(context.Background(), "p", "   ", AppendOptions{}); !errors.Is(err, ErrEmptyText) {
		t.Errorf("AppendText() error = %v, want ErrEmptyText", err)
	}
}

func TestCreatePage(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{"id":"new-1","properties":{"title":{"title":[{"plain_text":"Ideas"}]}}}`}
	c := newTestClient(t, api)

	page, err := c.CreatePage(context.Background(), "parent-1", "Ideas")
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if page.ID != "new-1" || page.Name != "Ideas" || page.Emoji != DefaultPageEmoji {
		t.Errorf("CreatePage() = %+v", page)
	}

	req := api.requests[0]
	parent, _ := req.Body["parent"].(map[string]any)
	if req.Path != "/pages" || parent["page_id"] != "parent-1" {
		t.Errorf("request = %s %v", req.Path, req.Body)
	}
}

func TestCreatePageError(t *testing.T) {
	c := newTestClient(t, &fakeAPI{status: http.StatusBadRequest, body: `{}`})
	_, err := c.CreatePage(context.Background(), "parent", "x")
	if err == nil || err.Error() != "Create page failed: 400" {
		t.Errorf("CreatePage() error = %v", err)
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want int
	}{
		{"empty", "", 10, 0},
		{"under", "abc", 10, 1},
		{"exact", "abcdefghij", 10, 1},
		{"over", "abcdefghijk", 10, 2},
		{"multibyte", strings.Repeat("é", 25), 10, 3},
		{"astral plane counts twice", strings.Repeat("😀", 25), 10, 5},
		{"pair never split", "abcdefghi😀", 10, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, tt.max)
			if len(chunks) != tt.want {
				t.Fatalf("len = %d, want %d", len(chunks), tt.want)
			}
			if strings.Join(chunks, "") != tt.text {
				t.Error("chunks do not reconstruct input")
			}
			for i, c := range chunks {
				if n := TextLen(c); n > tt.max {
					t.Errorf("chunk %d has %d UTF-16 units, max %d", i, n, tt.max)
				}
			}
		})
	}
}

func TestAppendText_EmojiStaysUnderLimit(t *testing.T) {
	api := &fakeAPI{status: http.StatusOK, body: `{}`}
	c := newTestClient(t, api)
	text := strings.Repeat("🎉", MaxBlockChars) // twice the limit in UTF-16 units

	if err := c.AppendText(context.Background(), "p", text, AppendOptions{}); err != nil {
		t.Fatalf("AppendText() error = %v", err)
	}

	texts := childTexts(t, api.requests[0].Body)
	if len(texts) != 3 {
		t.Fatalf("children = %d, want 2 text blocks + separator", len(texts))
	}
	for i, s := range texts[:2] {
		if n := TextLen(s); n > MaxBlockChars {
			t.Errorf("block %d has %d UTF-16 units", i, n)
		}
	}
}

func staticToken(token string) TokenSource {
	return TokenFunc(func(context.Context) (string, error) { return token, nil })
}
