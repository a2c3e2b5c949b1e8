package logger

import (
	"log/slog"
	"time"
)

// The helpers below return an empty slog.Attr for absent values; slog drops
// empty attributes, so callers pass them unconditionally.

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error logs err under "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Method(method string) slog.Attr  { return slog.String("method", method) }
func Path(path string) slog.Attr      { return slog.String("path", path) }
func StatusCode(code int) slog.Attr   { return slog.Int("status_code", code) }
func ClientIP(ip string) slog.Attr    { return slog.String("client_ip", ip) }
func UserAgent(ua string) slog.Attr   { return slog.String("user_agent", ua) }
func Component(name string) slog.Attr { return slog.String("component", name) }

// Runtime names the host that accepted the request ("nethttp" or "edge").
func Runtime(name string) slog.Attr { return slog.String("runtime", name) }

// Stage names the dispatch stage that produced a log line.
func Stage(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("stage", name)
}

// Key is a free-form attribute; nil values are dropped.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// Stack attaches a captured goroutine stack.
func Stack(stack []byte) slog.Attr {
	if len(stack) == 0 {
		return slog.Attr{}
	}
	return slog.String("stack", string(stack))
}
