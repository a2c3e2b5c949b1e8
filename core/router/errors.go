package router

import "errors"

var (
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrInvalidRegexp    = errors.New("invalid route path pattern regexp")
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrNoHandlers       = errors.New("route has no handlers")
	ErrDuplicateRoute   = errors.New("route already registered")
)
