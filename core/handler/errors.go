package handler

import "errors"

var (
	ErrUnsupportedForm = errors.New("handler: unsupported form content type")
	ErrNilRequest      = errors.New("handler: nil request")
)
