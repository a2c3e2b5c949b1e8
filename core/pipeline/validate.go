package pipeline

import (
	"context"
	"encoding/json"

	"github.com/dmitrymomot/edgekit/core/handler"
	"github.com/dmitrymomot/edgekit/core/host"
	"github.com/dmitrymomot/edgekit/core/response"
	"github.com/dmitrymomot/edgekit/core/validator"
)

var (
	errInvalidHeaders = response.ErrBadRequest.WithMessage("Invalid headers")
	errInvalidQuery   = response.ErrBadRequest.WithMessage("Invalid query")
	errInvalidCookies = response.ErrBadRequest.WithMessage("Invalid cookies")
	errInvalidBody    = response.ErrBadRequest.WithMessage("Invalid body")
)

// validate collects headers, query, cookies and, when the schema declares
// one, the body, checking each against its sub-schema. The cookie size cap
// is enforced first.
func (p *Pipeline) validate(ctx context.Context, req *host.Request, schema *validator.Schema) (handler.Parsed, error) {
	if schema == nil {
		schema = &validator.Schema{}
	}
	var parsed handler.Parsed

	// An oversized cookie header is rejected before any sub-schema runs.
	cookies, err := handler.ParseCookies(req.Header(handler.CookieHeader), p.cfg.CookieLimit)
	if err != nil {
		return parsed, err
	}

	parsed.Headers = handler.CollectHeaders(req, p.cfg.HeaderLimit)
	if schema.Headers != nil && !p.validator.Validate(schema.Headers, parsed.Headers) {
		return parsed, errInvalidHeaders
	}

	parsed.Query = handler.CoerceQuery(req.URL.Query())
	if schema.Query != nil && !p.validator.Validate(schema.Query, parsed.Query) {
		return parsed, errInvalidQuery
	}

	parsed.Cookies = cookies
	if schema.Cookies != nil && !p.validator.Validate(schema.Cookies, parsed.Cookies) {
		return parsed, errInvalidCookies
	}

	if schema.Body == nil {
		return parsed, nil
	}

	body, err := p.parseBody(ctx, req, schema)
	if err != nil {
		return parsed, err
	}
	parsed.Body = body
	if !p.validator.Validate(schema.Body, body) {
		return parsed, errInvalidBody
	}
	return parsed, nil
}

// parseBody decodes the body by the declared schema kind: text for string
// schemas, form fields for transform schemas on multipart requests, JSON
// otherwise.
func (p *Pipeline) parseBody(ctx context.Context, req *host.Request, schema *validator.Schema) (any, error) {
	data, err := handler.ReadBody(ctx, p.host, req, p.cfg.BodyTimeout)
	if err != nil {
		return nil, err
	}

	if validator.KindOf(schema.Body) == validator.KindString {
		return string(data), nil
	}

	contentType := req.Header("content-type")
	if schema.Transform && handler.IsMultipart(contentType) {
		form, err := handler.ParseForm(contentType, data)
		if err != nil {
			return nil, errInvalidBody.WithError(err)
		}
		return form, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errInvalidBody.WithError(err)
	}
	return v, nil
}
