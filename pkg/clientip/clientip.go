package clientip

import (
	"net"
	"strings"

	"github.com/dmitrymomot/edgekit/core/host"
)

// headers are checked in priority order.
var headers = []string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP returns the resolved client IP of req.
func GetIP(req *host.Request) string {
	for _, name := range headers {
		value := req.Header(name)
		if value == "" {
			continue
		}
		if name == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}
		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	addr := req.RemoteAddr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		addr = h
	}
	if ip := normalize(addr); ip != "" {
		return ip
	}
	return req.RemoteAddr
}

func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
