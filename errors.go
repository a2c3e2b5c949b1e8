package edgekit

import "errors"

var (
	ErrInvalidRuntime = errors.New("edgekit: invalid runtime")
	ErrInvalidConfig  = errors.New("edgekit: invalid configuration")
)
