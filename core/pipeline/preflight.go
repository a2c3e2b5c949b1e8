package pipeline

import (
	"net/http"

	"github.com/dmitrymomot/edgekit/core/host"
)

func isPreflight(req *host.Request) bool {
	return req.Method == http.MethodOptions &&
		req.HasHeader("origin") &&
		req.HasHeader("access-control-request-method")
}

// preflight answers a CORS preflight without running any other stage.
func (p *Pipeline) preflight(req *host.Request) *host.Response {
	h := make(http.Header, 5)
	if p.cfg.CORSOrigin != "" {
		h.Set("Access-Control-Allow-Origin", p.cfg.CORSOrigin)
	}
	h.Set("Access-Control-Allow-Methods", "*")

	allowHeaders := req.Header("access-control-request-headers")
	if allowHeaders == "" {
		allowHeaders = "*"
	}
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Allow-Credentials", "false")
	h.Set("Access-Control-Max-Age", "600")

	return host.NewResponse(http.StatusNoContent, h, nil)
}
