package middleware

import (
	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/plugin"
)

// SecurityHeadersConfig configures the security headers plugin.
// Empty fields are not sent.
type SecurityHeadersConfig struct {
	// Skip defines a function to skip the plugin for specific requests
	Skip SkipFunc

	ContentTypeOptions        string
	FrameOptions              string
	StrictTransportSecurity   string
	ContentSecurityPolicy     string
	ReferrerPolicy            string
	PermissionsPolicy         string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string

	// CustomHeaders adds arbitrary headers
	CustomHeaders map[string]string

	// IsDevelopment drops HSTS
	IsDevelopment bool
}

var (
	// StrictSecurity suits JSON APIs that are never framed or embedded.
	StrictSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "DENY",
		StrictTransportSecurity:   "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:     "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:            "no-referrer",
		PermissionsPolicy:         "accelerometer=(), camera=(), geolocation=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}

	// BalancedSecurity is the default.
	BalancedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "SAMEORIGIN",
		StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin-allow-popups",
		CrossOriginResourcePolicy: "cross-origin",
	}

	// DevelopmentSecurity sends the minimum and never HSTS.
	DevelopmentSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	}
)

// SecurityHeaders returns the plugin with BalancedSecurity.
func SecurityHeaders() plugin.Plugin {
	return SecurityHeadersWithConfig(BalancedSecurity)
}

// SecurityHeadersWithConfig adds the configured headers to handled
// responses. Headers already set by a handler are kept.
func SecurityHeadersWithConfig(cfg SecurityHeadersConfig) plugin.Plugin {
	headers := map[string]string{
		"X-Content-Type-Options":       cfg.ContentTypeOptions,
		"X-Frame-Options":              cfg.FrameOptions,
		"Content-Security-Policy":      cfg.ContentSecurityPolicy,
		"Referrer-Policy":              cfg.ReferrerPolicy,
		"Permissions-Policy":           cfg.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   cfg.CrossOriginOpenerPolicy,
		"Cross-Origin-Resource-Policy": cfg.CrossOriginResourcePolicy,
	}
	if !cfg.IsDevelopment {
		headers["Strict-Transport-Security"] = cfg.StrictTransportSecurity
	}
	for k, v := range cfg.CustomHeaders {
		headers[k] = v
	}

	return plugin.Plugin{
		Name: "security_headers",
		BeforeResponding: func(ctx *handler.Context) error {
			if cfg.Skip.skip(ctx.Req.Raw()) {
				return nil
			}
			for k, v := range headers {
				if v == "" || ctx.Res.HasHeader(k) {
					continue
				}
				ctx.Res.Header(k, v)
			}
			return nil
		},
	}
}
