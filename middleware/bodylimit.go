package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/plugin"
	"github.com/dmitrymomot/edgekit/core/response"
)

// DefaultBodyLimit is 4 MB.
const DefaultBodyLimit int64 = 4 << 20

// BodyLimitConfig configures the body limit plugin.
type BodyLimitConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc
	// MaxSize is the largest accepted Content-Length (default: 4 MB)
	MaxSize int64
	// RequireLength rejects bodies without Content-Length with 411
	RequireLength bool
}

// BodyLimit rejects requests declaring a body larger than maxSize.
func BodyLimit(maxSize int64) plugin.Plugin {
	return BodyLimitWithConfig(BodyLimitConfig{MaxSize: maxSize})
}

// BodyLimitWithConfig checks Content-Length before the body is read.
func BodyLimitWithConfig(cfg BodyLimitConfig) plugin.Plugin {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}

	return plugin.Plugin{
		Name: "bodylimit",
		BeforeParsing: func(_ context.Context, req *host.Request) error {
			if cfg.Skip.skip(req) {
				return nil
			}

			raw := req.Header("Content-Length")
			if raw == "" {
				if cfg.RequireLength && req.Header("Transfer-Encoding") != "" {
					return response.NewHTTPError(http.StatusLengthRequired, "Length Required")
				}
				return nil
			}

			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 0 {
				return response.ErrBadRequest.WithMessage("Invalid Content-Length")
			}
			if n > cfg.MaxSize {
				return response.ErrPayloadTooLarge
			}
			return nil
		},
	}
}
