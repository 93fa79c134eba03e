package http

import (
	"net"
	"net/http"
	"strings"
)

// DeviceIDHeader is the optional client-supplied device token header.
const DeviceIDHeader = "X-Device-ID"

// ClientIP extracts the client IP used for rate-limit keying.
//
// Precedence:
// 1. First entry of X-Forwarded-For (the campus reverse proxy sets it)
// 2. X-Real-IP
// 3. RemoteAddr host
// 4. The literal "unknown"
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if r.RemoteAddr != "" {
		// RemoteAddr may include port: "ip:port"
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return "unknown"
}

// DeviceID returns the client-supplied device token, or "" when absent.
func DeviceID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(DeviceIDHeader))
}

// Identifier returns the value rate-limit state is keyed by: the device
// token when the client sends one, else the IP.
func Identifier(r *http.Request) string {
	if id := DeviceID(r); id != "" {
		return id
	}
	return ClientIP(r)
}
