package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/response"
)

// ReadBody reads the whole body within timeout. Exceeding the deadline fails
// with response.ErrPayloadTooLarge, any other read failure with
// response.ErrBadRequest. The body stays readable afterwards.
func ReadBody(ctx context.Context, h host.Host, req *host.Request, timeout time.Duration) ([]byte, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		data []byte
		err  error
	)
	if h != nil {
		data, err = h.ReadBody(ctx, req)
	} else {
		data, err = req.ReadBody(ctx)
	}

	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, context.DeadlineExceeded):
		return nil, response.ErrPayloadTooLarge.WithError(err)
	default:
		return nil, response.ErrBadRequest.WithError(err)
	}
}

func (r *Request) read() ([]byte, error) {
	return ReadBody(r.raw.Context(), r.host, r.raw, r.bodyTimeout)
}

// Buffer returns the raw body bytes.
func (r *Request) Buffer() ([]byte, error) {
	return r.read()
}

// Text returns the body as a string.
func (r *Request) Text() (string, error) {
	b, err := r.read()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// JSON decodes the body into v.
func (r *Request) JSON(v any) error {
	b, err := r.read()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return response.ErrBadRequest.WithError(err)
	}
	return nil
}

// Blob returns the body tagged with the request content type.
func (r *Request) Blob() (host.Blob, error) {
	b, err := r.read()
	if err != nil {
		return host.Blob{}, err
	}
	return host.Blob{Type: r.raw.Header("content-type"), Data: b}, nil
}

// FormData parses a multipart or urlencoded body.
func (r *Request) FormData() (map[string]any, error) {
	b, err := r.read()
	if err != nil {
		return nil, err
	}
	form, err := ParseForm(r.raw.Header("content-type"), b)
	if err != nil {
		return nil, response.ErrBadRequest.WithError(err)
	}
	return form, nil
}

// Stream returns a reader over the body. The body is buffered first so
// it can still be read again.
func (r *Request) Stream() (io.Reader, error) {
	b, err := r.read()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
