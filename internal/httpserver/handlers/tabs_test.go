package handlers

import (
	"testing"
	"time"
)

func TestPollWait(t *testing.T) {
	limit := 30 * time.Second
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{"missing", "", limit},
		{"duration", "5s", 5 * time.Second},
		{"seconds", "12", 12 * time.Second},
		{"above limit", "5m", limit},
		{"negative", "-1s", limit},
		{"garbage", "soon", limit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pollWait(tt.raw, limit); got != tt.want {
				t.Errorf("pollWait(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
