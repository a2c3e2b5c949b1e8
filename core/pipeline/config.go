package pipeline

import "time"

// Config holds the dispatch tunables.
type Config struct {
	// CORSOrigin enables access-control-allow-origin on preflight and
	// successful responses. Empty disables CORS.
	CORSOrigin  string        `env:"CORS_ORIGIN"`
	BodyTimeout time.Duration `env:"BODY_READ_TIMEOUT" envDefault:"3s"`
	HeaderLimit int           `env:"HEADER_LIMIT" envDefault:"50"`
	CookieLimit int           `env:"COOKIE_LIMIT" envDefault:"1000"`
	// CacheName selects the runtime response cache for GET requests.
	// Empty disables the cache fast path.
	CacheName string `env:"CACHE_NAME"`
}

// DefaultConfig returns the defaults used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		BodyTimeout: 3 * time.Second,
		HeaderLimit: 50,
		CookieLimit: 1000,
	}
}
