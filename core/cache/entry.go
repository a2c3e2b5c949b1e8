package cache

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/edgekit/core/host"
)

// entry is the serialized form of a cached response.
type entry struct {
	Status int         `json:"status"`
	Header http.Header `json:"header,omitempty"`
	Body   []byte      `json:"body,omitempty"`
}

func encodeEntry(resp *host.Response) ([]byte, error) {
	if resp.Streaming() {
		return nil, host.ErrNotCachable
	}
	return json.Marshal(entry{Status: resp.Status, Header: resp.Header, Body: resp.Body})
}

func decodeEntry(data []byte) (*host.Response, error) {
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeEntry, err)
	}
	if e.Status < 100 || e.Status > 599 {
		return nil, fmt.Errorf("%w: status %d", ErrDecodeEntry, e.Status)
	}
	return host.NewResponse(e.Status, e.Header, e.Body), nil
}
