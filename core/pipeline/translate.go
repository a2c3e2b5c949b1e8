package pipeline

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/logger"
	"github.com/dmitrymomot/edgekit/core/response"
	"github.com/dmitrymomot/edgekit/pkg/async"
)

// translate converts a failure into a response. Structured errors render as
// JSON {message, code}; anything else goes to the error handler, then to the
// 500 fallback.
func (p *Pipeline) translate(req *host.Request, ctx *handler.Context, stage string, err error) *host.Response {
	attrs := append(p.logAttrs(req, stage), logger.Error(err))

	if httpErr, ok := response.AsHTTPError(err); ok {
		if httpErr.Status >= http.StatusInternalServerError {
			p.logger.ErrorContext(req.Context(), "request failed", attrs...)
		} else {
			p.logger.DebugContext(req.Context(), "request rejected", append(attrs, logger.StatusCode(httpErr.Status))...)
		}
		return response.ErrorResponse(httpErr)
	}

	var panicErr *async.PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, logger.Stack(panicErr.Stack))
	}
	p.logger.ErrorContext(req.Context(), "unhandled error", attrs...)

	if p.errorHandler != nil {
		if resp := p.customError(req, ctx, err); resp != nil {
			return resp
		}
	}
	return response.FallbackResponse()
}

// customError runs the error handler, treating a panic inside it as no
// response.
func (p *Pipeline) customError(req *host.Request, ctx *handler.Context, err error) (resp *host.Response) {
	defer func() {
		if r := recover(); r != nil {
			pe := async.NewPanicError(r)
			p.logger.ErrorContext(req.Context(), "error handler panicked",
				logger.Error(pe), logger.Stack(pe.Stack))
			resp = nil
		}
	}()
	return p.errorHandler(req, ctx, err)
}
