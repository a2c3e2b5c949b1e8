package ratelimiter

import (
	"fmt"
	"math"
	"time"

	"github.com/karlseguin/ccache/v2"
	"golang.org/x/time/rate"
)

// Config describes the bucket every key gets.
type Config struct {
	// Rate is the refill rate in tokens per second.
	Rate float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	// Burst is the bucket capacity.
	Burst int `env:"RATE_LIMIT_BURST" envDefault:"20"`
	// TTL evicts keys idle for this long.
	TTL time.Duration `env:"RATE_LIMIT_TTL" envDefault:"10m"`
	// MaxKeys bounds the number of tracked keys.
	MaxKeys int64 `env:"RATE_LIMIT_MAX_KEYS" envDefault:"100000"`
}

func (c Config) validate() error {
	switch {
	case c.Rate <= 0 || math.IsInf(c.Rate, 0) || math.IsNaN(c.Rate):
		return fmt.Errorf("%w: rate must be positive", ErrInvalidConfig)
	case c.Burst <= 0:
		return fmt.Errorf("%w: burst must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result reports the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter rate limits requests per key.
type Limiter struct {
	cfg  Config
	keys *ccache.Cache
	now  func() time.Time
}

// New creates a Limiter.
func New(cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = 100_000
	}

	conf := ccache.Configure()
	conf.MaxSize(cfg.MaxKeys)
	conf.ItemsToPrune(uint32(max(cfg.MaxKeys/16, 1)))

	return &Limiter{cfg: cfg, keys: ccache.New(conf), now: time.Now}, nil
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) Result {
	lim := l.limiter(key)
	now := l.now()

	res := Result{Limit: l.cfg.Burst}
	if lim.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = max(int(lim.TokensAt(now)), 0)
		return res
	}

	r := lim.ReserveN(now, 1)
	res.RetryAfter = r.DelayFrom(now)
	r.CancelAt(now)
	return res
}

// Status reports the bucket of key without consuming a token.
func (l *Limiter) Status(key string) Result {
	item := l.keys.Get(key)
	if item == nil {
		return Result{Allowed: true, Limit: l.cfg.Burst, Remaining: l.cfg.Burst}
	}
	lim := item.Value().(*rate.Limiter)
	remaining := max(int(lim.TokensAt(l.now())), 0)
	return Result{Allowed: remaining > 0, Limit: l.cfg.Burst, Remaining: remaining}
}

// Reset forgets the bucket of key.
func (l *Limiter) Reset(key string) {
	l.keys.Delete(key)
}

// Stop releases the background worker of the key cache.
func (l *Limiter) Stop() {
	l.keys.Stop()
}

func (l *Limiter) limiter(key string) *rate.Limiter {
	item, _ := l.keys.Fetch(key, l.cfg.TTL, func() (any, error) {
		return rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst), nil
	})
	item.Extend(l.cfg.TTL)
	return item.Value().(*rate.Limiter)
}
