package response

import (
	"errors"
	"net/http"
)

// FallbackMessage is the message of unstructured failures.
const FallbackMessage = "Something Went Wrong"

// HTTPError is a structured failure carrying an HTTP status code.
// It renders as {"message": ..., "code": ...}.
type HTTPError struct {
	Message string `json:"message"`
	Status  int    `json:"code"`
	cause   error
}

// NewHTTPError creates an HTTPError; an empty message defaults to the status text.
func NewHTTPError(status int, message string) HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return HTTPError{Status: status, Message: message}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap returns the attached cause.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// Is matches other HTTPErrors by status, so errors.Is(err, ErrNotFound)
// holds for any 404 regardless of message.
func (e HTTPError) Is(target error) bool {
	var t HTTPError
	if !errors.As(target, &t) {
		return false
	}
	return t.Status == e.Status
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithError returns a copy of the error with an error cause.
// The cause is kept for logging and never rendered.
func (e HTTPError) WithError(err error) HTTPError {
	e.cause = err
	return e
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest           = NewHTTPError(http.StatusBadRequest, "")
	ErrUnauthorized         = NewHTTPError(http.StatusUnauthorized, "")
	ErrForbidden            = NewHTTPError(http.StatusForbidden, "")
	ErrNotFound             = NewHTTPError(http.StatusNotFound, "")
	ErrMethodNotAllowed     = NewHTTPError(http.StatusMethodNotAllowed, "")
	ErrRequestTimeout       = NewHTTPError(http.StatusRequestTimeout, "")
	ErrConflict             = NewHTTPError(http.StatusConflict, "")
	ErrPayloadTooLarge      = NewHTTPError(http.StatusRequestEntityTooLarge, "Payload Too Large")
	ErrUnsupportedMediaType = NewHTTPError(http.StatusUnsupportedMediaType, "")
	ErrUnprocessableEntity  = NewHTTPError(http.StatusUnprocessableEntity, "")
	ErrTooManyRequests      = NewHTTPError(http.StatusTooManyRequests, "")
	ErrInternalServerError  = NewHTTPError(http.StatusInternalServerError, FallbackMessage)
	ErrServiceUnavailable   = NewHTTPError(http.StatusServiceUnavailable, "")
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// AsHTTPError extracts a structured failure from err. It matches HTTPError
// values anywhere in the chain and any error exposing StatusCode() int.
func AsHTTPError(err error) (HTTPError, bool) {
	if err == nil {
		return HTTPError{}, false
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}

	var sc statusCode
	if errors.As(err, &sc) {
		status := sc.StatusCode()
		if status < 100 || status > 599 {
			return HTTPError{}, false
		}
		return NewHTTPError(status, err.Error()).WithError(err), true
	}

	return HTTPError{}, false
}
