package cache

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("cache: empty redis connection URL")
	ErrParseConnectionURL = errors.New("cache: failed to parse redis connection string")
	ErrRedisNotReady      = errors.New("cache: redis did not become ready within the given time period")
	ErrUnknownBackend     = errors.New("cache: unknown backend")
	ErrEmptyName          = errors.New("cache: empty cache name")
	ErrDecodeEntry        = errors.New("cache: failed to decode entry")
)
