package response

import "errors"

var (
	ErrNilState      = errors.New("response: nil state")
	ErrInvalidStatus = errors.New("response: status code out of range")
	ErrEncodeBody    = errors.New("response: failed to encode body")
)
