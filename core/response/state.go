package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/edgekit/core/host"
)

type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyResult
	bodyPayload
	bodyStream
)

// DefaultRedirectStatus is used by Redirect and by responses carrying a
// location header without an explicit status.
const DefaultRedirectStatus = http.StatusTemporaryRedirect

// State accumulates the response of one dispatch. Hooks and handlers mutate
// it through the body-setting operations (Text, JSON, Blob, Buffer, FormData,
// Stream, Redirect); the last one called wins and any of them turns off
// automatic serialization. A State is owned by a single dispatch.
type State struct {
	status    int
	statusSet bool
	headers   map[string]string
	cookies   []*http.Cookie

	kind    bodyKind
	result  any
	payload []byte
	stream  io.Reader

	requiresFormatting bool
	revision           int
}

// NewState creates an empty 200 response state.
func NewState() *State {
	return &State{
		status:             http.StatusOK,
		headers:            make(map[string]string),
		requiresFormatting: true,
	}
}

// Status sets the status code.
func (s *State) Status(code int) *State {
	s.status = code
	s.statusSet = true
	return s
}

// Code returns the current status code.
func (s *State) Code() int {
	return s.status
}

// Header sets a header. Keys keep the case they were last set with; an
// existing entry differing only in case is replaced.
func (s *State) Header(key, value string) *State {
	s.DelHeader(key)
	s.headers[key] = value
	return s
}

// GetHeader returns a header value, case-insensitively.
func (s *State) GetHeader(key string) string {
	if v, ok := s.headers[key]; ok {
		return v
	}
	for k, v := range s.headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// HasHeader reports whether a header is set, case-insensitively.
func (s *State) HasHeader(key string) bool {
	for k := range s.headers {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// DelHeader removes a header, case-insensitively.
func (s *State) DelHeader(key string) {
	for k := range s.headers {
		if strings.EqualFold(k, key) {
			delete(s.headers, k)
		}
	}
}

// Headers returns a copy of the headers as inserted.
func (s *State) Headers() map[string]string {
	out := make(map[string]string, len(s.headers))
	for k, v := range s.headers {
		out[k] = v
	}
	return out
}

// Cookie appends a Set-Cookie entry.
func (s *State) Cookie(c *http.Cookie) *State {
	if c != nil {
		s.cookies = append(s.cookies, c)
	}
	return s
}

// Text sets a text/plain body.
func (s *State) Text(text string) {
	s.setPayload("text/plain; charset=utf-8", []byte(text))
}

// JSON sets an application/json body. The value is encoded immediately.
func (s *State) JSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}
	s.setPayload("application/json; charset=utf-8", b)
	return nil
}

// Blob sets a binary body typed with the blob's media type.
func (s *State) Blob(b host.Blob) {
	ct := b.Type
	if ct == "" {
		ct = "application/octet-stream"
	}
	s.setPayload(ct, b.Data)
}

// Buffer sets an application/octet-stream body.
func (s *State) Buffer(b []byte) {
	s.setPayload("application/octet-stream", b)
}

// FormData sets a multipart/form-data body built from fields. Keys are
// written in sorted order.
func (s *State) FormData(fields url.Values) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return fmt.Errorf("%w: %w", ErrEncodeBody, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}

	s.setPayload(w.FormDataContentType(), buf.Bytes())
	return nil
}

// Stream sets a streamed body. No content-length is stamped; a missing
// content-type defaults to application/octet-stream.
func (s *State) Stream(r io.Reader) {
	s.kind = bodyStream
	s.stream = r
	s.payload = nil
	if !s.HasHeader("content-type") {
		s.Header("content-type", "application/octet-stream")
	}
	s.DelHeader("content-length")
	s.touch()
}

// Redirect sets the location header and the status; a zero code means 307.
func (s *State) Redirect(location string, code int) {
	if code == 0 {
		code = DefaultRedirectStatus
	}
	s.Header("location", location)
	s.Status(code)
	s.touch()
}

// SetResult stores a handler's return value as the body. It takes precedence
// over bodies staged by the body-setting operations and is always serialized.
func (s *State) SetResult(v any) {
	s.kind = bodyResult
	s.result = v
	s.payload = nil
	s.stream = nil
}

// Result returns the stored handler return value.
func (s *State) Result() any {
	return s.result
}

// RequiresFormatting reports whether no body-setting operation was called.
func (s *State) RequiresFormatting() bool {
	return s.requiresFormatting
}

// Revision counts body-setting operations; callers compare revisions to
// detect whether a body was set in between.
func (s *State) Revision() int {
	return s.revision
}

// HasBody reports whether any body was staged.
func (s *State) HasBody() bool {
	return s.kind != bodyNone
}

func (s *State) setPayload(contentType string, b []byte) {
	s.kind = bodyPayload
	s.payload = b
	s.stream = nil
	s.Header("content-type", contentType)
	s.Header("content-length", strconv.Itoa(len(b)))
	s.touch()
}

func (s *State) touch() {
	s.requiresFormatting = false
	s.revision++
}
