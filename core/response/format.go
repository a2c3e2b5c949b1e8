package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dmitrymomot/edgekit/core/host"
)

// Format converts the accumulated state into a wire response.
//
// Precedence, in order:
//   - cache-control survives only on 200 and 301 responses;
//   - a location header yields a bodyless response (307 unless a status was set);
//   - no body yields a bodyless response;
//   - a handler result is serialized: strings as text/plain, anything else as
//     JSON whose numeric "code" field, if any, becomes the status;
//   - otherwise the staged body is used as-is.
func Format(s *State) (*host.Response, error) {
	if s == nil {
		return nil, ErrNilState
	}

	if s.status != http.StatusOK && s.status != http.StatusMovedPermanently {
		s.DelHeader("cache-control")
	}

	if s.HasHeader("location") {
		if !s.statusSet {
			s.status = DefaultRedirectStatus
		}
		s.DelHeader("content-length")
		return s.build(nil, nil)
	}

	switch s.kind {
	case bodyNone:
		return s.build(nil, nil)
	case bodyResult:
		if err := s.formatResult(); err != nil {
			return nil, err
		}
		return s.build(s.payload, nil)
	case bodyStream:
		return s.build(nil, s.stream)
	default:
		return s.build(s.payload, nil)
	}
}

func (s *State) formatResult() error {
	if text, ok := s.result.(string); ok {
		s.payload = []byte(text)
		s.Header("content-type", "text/plain; charset=utf-8")
		s.Header("content-length", strconv.Itoa(len(s.payload)))
		return nil
	}

	b, err := json.Marshal(s.result)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodeBody, err)
	}
	s.payload = b
	s.Header("content-type", "application/json; charset=utf-8")
	s.Header("content-length", strconv.Itoa(len(b)))

	if code := gjson.GetBytes(b, "code"); code.Type == gjson.Number {
		status := int(code.Int())
		if status < 100 || status > 599 {
			return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
		}
		s.status = status
	}
	return nil
}

func (s *State) build(body []byte, stream io.Reader) (*host.Response, error) {
	if s.status < 100 || s.status > 599 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, s.status)
	}

	header := make(http.Header, len(s.headers)+len(s.cookies))
	for k, v := range s.headers {
		header.Set(k, v)
	}
	for _, c := range s.cookies {
		if v := c.String(); v != "" {
			header.Add("Set-Cookie", v)
		}
	}

	resp := host.NewResponse(s.status, header, body)
	resp.Stream = stream
	return resp, nil
}
