package host

import "errors"

var (
	ErrNilRequest  = errors.New("host: nil request")
	ErrNilResponse = errors.New("host: nil response")
	ErrNotCachable = errors.New("host: streamed response cannot be cached")
)
