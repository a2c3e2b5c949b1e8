package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilConfig is returned when Load receives a nil pointer.
var ErrNilConfig = errors.New("config: nil config pointer")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any
)

// Load fills cfg from the environment. The first call for a type parses the
// environment; later calls copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}
	if err := LoadFresh(cfg); err != nil {
		return err
	}
	actual, _ := cache.LoadOrStore(key, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadFresh parses the environment into cfg without touching the cache.
// Fields without a matching variable keep their envDefault or current value.
func LoadFresh[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	dotenvOnce.Do(func() {
		// A missing .env file is fine.
		_ = godotenv.Load()
	})
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %T: %w", *cfg, err)
	}
	return nil
}
