package health

import (
	"net/http"

	"github.com/dmitrymomot/edgekit/core/handler"
)

// Liveness indicates if the service process is running.
// Always returns "ALIVE" with 200 OK. No dependency checks.
func Liveness(*handler.Context) (any, error) {
	return "ALIVE", nil
}

// NoContent returns HTTP 204 without body. Ideal for high-frequency checks.
// It must be the last handler of its route.
func NoContent(ctx *handler.Context) (any, error) {
	ctx.Res.Status(http.StatusNoContent)
	return nil, nil
}
