package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

func TestNewLoopbackAuthorizer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{"ipv4 loopback", "http://127.0.0.1:8788/oauth/callback", false},
		{"localhost", "http://localhost:8788/cb", false},
		{"https rejected", "https://127.0.0.1:8788/cb", true},
		{"remote host rejected", "http://example.com/cb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoopbackAuthorizer(tt.uri, LoopbackOptions{}, logger.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLoopbackAuthorizer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoopbackAuthorizer_ReceivesRedirect(t *testing.T) {
	a, err := NewLoopbackAuthorizer("http://127.0.0.1:0/cb", LoopbackOptions{Timeout: 5 * time.Second}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewLoopbackAuthorizer() error = %v", err)
	}

	a.ready = func(addr string) {
		go func() {
			resp, err := http.Get("http://" + addr + "/cb?code=xyz")
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}

	u, err := a.Authorize(context.Background(), "https://auth.example/authorize")
	if err != nil {
		t.Fatalf("Authorize() error = %v", err)
	}
	code, err := ParseRedirect(u)
	if err != nil || code != "xyz" {
		t.Errorf("ParseRedirect() = %q, %v; want xyz", code, err)
	}
}

func TestLoopbackAuthorizer_Timeout(t *testing.T) {
	a, err := NewLoopbackAuthorizer("http://127.0.0.1:0/cb", LoopbackOptions{Timeout: 50 * time.Millisecond}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewLoopbackAuthorizer() error = %v", err)
	}

	var got *url.URL
	got, err = a.Authorize(context.Background(), "https://auth.example/authorize")
	if !errors.Is(err, ErrCancelled) || got != nil {
		t.Errorf("Authorize() = %v, %v; want ErrCancelled", got, err)
	}
}
