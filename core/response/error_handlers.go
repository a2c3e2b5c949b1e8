package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/edgekit/core/host"
)

// ErrorResponse renders a structured failure as a JSON {message, code} body
// with the error's status.
func ErrorResponse(httpErr HTTPError) *host.Response {
	if httpErr.Status < 100 || httpErr.Status > 599 {
		httpErr.Status = http.StatusInternalServerError
	}

	b, err := json.Marshal(httpErr)
	if err != nil {
		return FallbackResponse()
	}

	header := make(http.Header, 2)
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(b)))
	return host.NewResponse(httpErr.Status, header, b)
}

// FallbackResponse is the 500 response of unstructured failures.
func FallbackResponse() *host.Response {
	b := []byte(`{"message":"` + FallbackMessage + `","code":500}`)
	header := make(http.Header, 2)
	header.Set("Content-Type", "application/json; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(b)))
	return host.NewResponse(http.StatusInternalServerError, header, b)
}
