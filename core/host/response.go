package host

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// Response is the wire response produced by the pipeline.
// Exactly one of Body and Stream carries the payload; both nil means bodyless.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	Stream io.Reader
}

// NewResponse creates a buffered response.
func NewResponse(status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = make(http.Header)
	}
	return &Response{Status: status, Header: header, Body: body}
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Streaming reports whether the payload is a stream.
func (r *Response) Streaming() bool {
	return r.Stream != nil
}

// Clone returns a deep copy of a buffered response.
func (r *Response) Clone() (*Response, error) {
	if r.Streaming() {
		return nil, ErrNotCachable
	}
	var body []byte
	if r.Body != nil {
		body = bytes.Clone(r.Body)
	}
	return &Response{Status: r.Status, Header: r.Header.Clone(), Body: body}, nil
}

// Write sends the response through a net/http writer.
func (r *Response) Write(w http.ResponseWriter) error {
	if r == nil {
		return ErrNilResponse
	}
	dst := w.Header()
	for k, v := range r.Header {
		dst[k] = append([]string(nil), v...)
	}
	if r.Body != nil && dst.Get("Content-Length") == "" {
		dst.Set("Content-Length", strconv.Itoa(len(r.Body)))
	}

	w.WriteHeader(r.Status)

	switch {
	case r.Stream != nil:
		_, err := io.Copy(w, r.Stream)
		if c, ok := r.Stream.(io.Closer); ok {
			_ = c.Close()
		}
		return err
	case len(r.Body) > 0:
		_, err := w.Write(r.Body)
		return err
	}
	return nil
}
