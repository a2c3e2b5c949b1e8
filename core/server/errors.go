package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrUnknownRuntime       = errors.New("unknown server runtime")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrNilDispatcher        = errors.New("dispatcher is required")
	ErrFailedLoadCert       = errors.New("failed to load certificate")
)
