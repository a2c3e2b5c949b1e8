package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/response"
)

// Default parsing limits.
const (
	DefaultHeaderLimit = 50
	DefaultCookieLimit = 1000
)

// CookieHeader is the request header cookies are read from.
const CookieHeader = "cookies"

// UndefinedValue marks a query value spelled "undefined".
type UndefinedValue struct{}

// MarshalJSON encodes the marker as null.
func (UndefinedValue) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Undefined is the query value of the literal "undefined".
var Undefined = UndefinedValue{}

// CollectHeaders returns up to limit header entries keyed by lower-cased
// name. The first occurrence of a name wins. A limit <= 0 means
// DefaultHeaderLimit.
func CollectHeaders(req *host.Request, limit int) map[string]string {
	if limit <= 0 {
		limit = DefaultHeaderLimit
	}
	fields := req.Headers()
	out := make(map[string]string, min(len(fields), limit))
	for i, f := range fields {
		if i >= limit {
			break
		}
		key := strings.ToLower(f.Key)
		if _, ok := out[key]; !ok {
			out[key] = f.Value
		}
	}
	return out
}

// CoerceQuery converts query values by content. When a key repeats, the
// last value wins.
func CoerceQuery(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[k] = CoerceValue(vs[len(vs)-1])
	}
	return out
}

// CoerceValue converts one query value, trying in order: "" and "true" to
// true, "false" to false, comma lists to []string, numbers to their leading
// integer, "undefined" to Undefined, "null" to nil. Anything else stays a
// string.
func CoerceValue(v string) any {
	switch v {
	case "", "true":
		return true
	case "false":
		return false
	}
	if strings.Contains(v, ",") {
		return strings.Split(v, ",")
	}
	if n, ok := leadingInt(v); ok {
		return n
	}
	switch v {
	case "undefined":
		return Undefined
	case "null":
		return nil
	}
	return v
}

// leadingInt parses the integer prefix of a value that is numeric as a whole,
// so "3.7" yields 3 while "3x" is rejected.
func leadingInt(v string) (int64, bool) {
	s := strings.TrimSpace(v)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// Out of int64 range: saturate by sign.
		if f < 0 {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	return n, true
}

var cookieSep = regexp.MustCompile(`;\s*`)

// ParseCookies parses a "k=v; k2=v2" header value. Pairs split on the first
// "=" and entries with an empty key are dropped. Values longer than limit
// fail with response.ErrPayloadTooLarge; a limit <= 0 means
// DefaultCookieLimit.
func ParseCookies(header string, limit int) (map[string]string, error) {
	if limit <= 0 {
		limit = DefaultCookieLimit
	}
	if len(header) > limit {
		return nil, response.ErrPayloadTooLarge
	}

	out := make(map[string]string)
	if header == "" {
		return out, nil
	}
	for _, pair := range cookieSep.Split(header, -1) {
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out, nil
}

// IsMultipart reports whether contentType is multipart/form-data.
func IsMultipart(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "multipart/form-data"
}

// ParseForm decodes a multipart or urlencoded body into a flat map. File
// parts become host.Blob values. When a field repeats, the last value wins.
func ParseForm(contentType string, data []byte) (map[string]any, error) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedForm, err)
	}

	switch mt {
	case "multipart/form-data":
		return parseMultipart(data, params["boundary"])
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				out[k] = vs[len(vs)-1]
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedForm, mt)
}

func parseMultipart(data []byte, boundary string) (map[string]any, error) {
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing boundary", ErrUnsupportedForm)
	}

	out := make(map[string]any)
	mr := multipart.NewReader(bytes.NewReader(data), boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		name := part.FormName()
		b, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}

		if part.FileName() != "" {
			ct := part.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			out[name] = host.Blob{Type: ct, Data: b}
			continue
		}
		out[name] = string(b)
	}
}
