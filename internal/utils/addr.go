package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// hostNoPort strips the port from "ip:port", "[v6]:port" or returns s as is.
func hostNoPort(s string) string {
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return strings.Trim(s, "[]")
}

func parseAddr(s string) netip.Addr {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}
	}
	addr, err := netip.ParseAddr(hostNoPort(s))
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}

// ClientAddr resolves the address a request came from. Proxy headers are
// read only when trustProxy is set, left-most X-Forwarded-For first, then
// X-Real-IP. The result is invalid when nothing parses.
func ClientAddr(r *http.Request, trustProxy bool) netip.Addr {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if addr := parseAddr(first); addr.IsValid() {
				return addr
			}
		}
		if addr := parseAddr(r.Header.Get("X-Real-IP")); addr.IsValid() {
			return addr
		}
	}
	return parseAddr(r.RemoteAddr)
}

// AddrMatcher matches addresses against a list of prefixes. Bare
// addresses are kept as single-address prefixes.
type AddrMatcher struct {
	prefixes []netip.Prefix
	invalid  []string
}

// NewAddrMatcher parses list. Entries that are neither a CIDR nor an
// address are skipped and reported by Invalid.
func NewAddrMatcher(list []string) *AddrMatcher {
	m := &AddrMatcher{}
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(s); err == nil {
			addr = addr.Unmap()
			m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		m.invalid = append(m.invalid, s)
	}
	return m
}

// IsEmpty reports whether no entry parsed.
func (m *AddrMatcher) IsEmpty() bool { return len(m.prefixes) == 0 }

// Invalid returns the entries that did not parse.
func (m *AddrMatcher) Invalid() []string { return m.invalid }

// LoopbackOnly reports whether every prefix lies inside a loopback range.
func (m *AddrMatcher) LoopbackOnly() bool {
	for _, p := range m.prefixes {
		if !p.Addr().IsLoopback() {
			return false
		}
		if p.Addr().Is4() && p.Bits() < 8 {
			return false
		}
	}
	return true
}

// Allow reports whether addr falls inside one of the prefixes.
func (m *AddrMatcher) Allow(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
