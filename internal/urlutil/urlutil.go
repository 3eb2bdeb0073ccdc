// Package urlutil resolves request origins and client addresses behind a
// reverse proxy.
package urlutil

import (
	"net"
	"net/http"
	"strings"
)

// OriginFromRequest returns the request origin (scheme + host), falling
// back when the request carries no usable host.
func OriginFromRequest(r *http.Request, fallback string) string {
	base := normalizeBaseURL(fallback)
	if r == nil {
		return base
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		return base
	}
	return normalizeBaseURL(requestScheme(r) + "://" + host)
}

// BuildAbsolute joins a base origin and a path. Absolute paths pass
// through unchanged.
func BuildAbsolute(base, path string) string {
	base = normalizeBaseURL(base)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return base + path
	}
	return base + "/" + path
}

// ClientIP returns the originating client address, preferring the first
// X-Forwarded-For hop over the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if comma := strings.Index(fwd, ","); comma >= 0 {
			fwd = strings.TrimSpace(fwd[:comma])
		}
		if fwd != "" {
			return fwd
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestScheme(r *http.Request) string {
	proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))
	if proto != "" {
		if comma := strings.Index(proto, ","); comma >= 0 {
			proto = strings.TrimSpace(proto[:comma])
		}
		if proto == "http" || proto == "https" {
			return proto
		}
	}

	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/")
}
