package tenant

// Package tenant determines which tenant a request belongs to. Resolution
// is a pure function over injected inputs so it is deterministic to test.

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
)

// Resolve picks the tenant identifier for an outbound request.
//
// Precedence: a persisted tenant id (an explicit prior selection) wins
// over the request origin host, which wins over the configured fallback.
// Placeholder hosts — localhost, bare www, IP literals — never identify a
// tenant. An empty result means "send no tenant header".
func Resolve(origin, persisted, fallback string) string {
	if persisted != "" {
		return persisted
	}
	if host := originHost(origin); host != "" {
		return host
	}
	return fallback
}

// originHost normalises an origin into a usable tenant host, or returns
// empty for placeholders that carry no tenant information.
func originHost(origin string) string {
	host := strings.ToLower(strings.TrimSpace(origin))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return ""
	}

	// Internationalised hostnames are compared in their ASCII form.
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	if host == "localhost" || host == "www" || strings.HasPrefix(host, "localhost.") {
		return ""
	}
	if net.ParseIP(host) != nil {
		return ""
	}
	return host
}
