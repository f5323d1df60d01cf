package utils

import (
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		xff        string
		realIP     string
		trustProxy bool
		want       string
	}{
		{"remote v4", "127.0.0.1:5000", "", "", false, "127.0.0.1"},
		{"remote v6", "[::1]:5000", "", "", false, "::1"},
		{"mapped v4", "[::ffff:127.0.0.1]:5000", "", "", false, "127.0.0.1"},
		{"headers ignored without trust", "127.0.0.1:5000", "10.0.0.1", "10.0.0.2", false, "127.0.0.1"},
		{"left-most forwarded", "127.0.0.1:5000", "10.0.0.1, 10.0.0.9", "", true, "10.0.0.1"},
		{"real ip fallback", "127.0.0.1:5000", "garbage", "10.0.0.2", true, "10.0.0.2"},
		{"unparseable", "pipe", "", "", false, "invalid IP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientAddr(r, tt.trustProxy).String(); got != tt.want {
				t.Errorf("ClientAddr() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAddrMatcher(t *testing.T) {
	m := NewAddrMatcher([]string{"127.0.0.0/8", "::1", "192.168.1.10", "not-an-ip", " "})

	if got := m.Invalid(); len(got) != 1 || got[0] != "not-an-ip" {
		t.Errorf("Invalid() = %v, want [not-an-ip]", got)
	}

	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1", true},
		{"127.255.0.3", true},
		{"::1", true},
		{"::ffff:127.0.0.1", true},
		{"192.168.1.10", true},
		{"192.168.1.11", false},
		{"10.0.0.1", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := m.Allow(netip.MustParseAddr(tt.addr)); got != tt.want {
				t.Errorf("Allow(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}

	if m.Allow(netip.Addr{}) {
		t.Error("Allow() accepted an invalid address")
	}
}

func TestAddrMatcher_LoopbackOnly(t *testing.T) {
	tests := []struct {
		name string
		list []string
		want bool
	}{
		{"defaults", []string{"127.0.0.0/8", "::1"}, true},
		{"lan host", []string{"127.0.0.1", "192.168.1.10"}, false},
		{"everything", []string{"0.0.0.0/0"}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewAddrMatcher(tt.list).LoopbackOnly(); got != tt.want {
				t.Errorf("LoopbackOnly() = %v, want %v", got, tt.want)
			}
		})
	}
}
