package middleware

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/plugin"
)

// CORSConfig defines the CORS headers added to handled responses.
// Preflight requests are answered by the pipeline before plugins run.
type CORSConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc

	// AllowOrigins specifies allowed origins. Use "*" for all origins.
	// If empty, defaults to allowing all origins ("*")
	AllowOrigins []string

	// ExposeHeaders specifies which headers are exposed to the client
	ExposeHeaders []string

	// AllowCredentials indicates whether credentials are allowed.
	// A wildcard origin is echoed back as the request origin in that case.
	AllowCredentials bool

	// MaxAge specifies how long preflight results can be cached (in seconds)
	MaxAge int

	// AllowOriginFunc provides custom origin validation logic.
	// Takes precedence over AllowOrigins when set.
	AllowOriginFunc func(origin string) (string, bool)
}

// CORS returns a CORS plugin that allows all origins.
func CORS() plugin.Plugin {
	return CORSWithConfig(CORSConfig{})
}

// CORSWithConfig returns a CORS plugin with custom configuration.
func CORSWithConfig(cfg CORSConfig) plugin.Plugin {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	allowed := func(origin string) (string, bool) {
		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(origin)
		}
		if wildcard {
			if cfg.AllowCredentials && origin != "" {
				return origin, true
			}
			return "*", true
		}
		if origin != "" && slices.ContainsFunc(cfg.AllowOrigins, func(o string) bool {
			return strings.EqualFold(o, origin)
		}) {
			return origin, true
		}
		return "", false
	}

	return plugin.Plugin{
		Name: "cors",
		BeforeResponding: func(ctx *handler.Context) error {
			if cfg.Skip.skip(ctx.Req.Raw()) {
				return nil
			}

			origin := ctx.Req.Header("origin")
			value, ok := allowed(origin)
			if !ok {
				return nil
			}

			ctx.Res.Header("Access-Control-Allow-Origin", value)
			if value != "*" {
				ctx.Res.Header("Vary", "Origin")
			}
			if cfg.AllowCredentials {
				ctx.Res.Header("Access-Control-Allow-Credentials", "true")
			}
			if expose != "" {
				ctx.Res.Header("Access-Control-Expose-Headers", expose)
			}
			if cfg.MaxAge > 0 {
				ctx.Res.Header("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			return nil
		},
	}
}
