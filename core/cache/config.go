package cache

import "time"

// Config selects and tunes the cache backend.
type Config struct {
	Backend    string        `env:"CACHE_BACKEND" envDefault:"memory"`
	TTL        time.Duration `env:"CACHE_TTL" envDefault:"1m"`
	MaxEntries int64         `env:"CACHE_MAX_ENTRIES" envDefault:"10000"`

	RedisURL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisRetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RedisRetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	RedisTimeout       time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// Backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)
