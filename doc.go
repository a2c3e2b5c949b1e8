// Package edgekit is a request-dispatch framework that runs the same
// application on a general-purpose net/http server and on a fasthttp edge
// runtime.
//
// A request flows through a fixed lifecycle: response cache lookup (GET
// only), CORS preflight, beforeParsing hooks, schema validation, context
// construction, beforeHandling hooks, the route's handler chain,
// beforeResponding hooks, response formatting and a background cache store.
// Any failure along the way becomes an HTTP error response.
//
//	app := edgekit.New(
//		edgekit.WithLogger(log),
//		edgekit.WithValidator(validator.New()),
//	)
//	app.Use("*", middleware.RequestID())
//
//	app.With(&validator.Schema{Body: validator.Rules{"name": "required"}}).
//		Post("/users", func(ctx *handler.Context) (any, error) {
//			body := ctx.Req.Body().(map[string]any)
//			return map[string]any{"hello": body["name"]}, nil
//		})
//
//	http.ListenAndServe(":8080", app)
//
// Handlers return a value to respond with it, or nil to fall through to the
// next handler in the chain. A handler that writes through ctx.Res (Text,
// JSON, Redirect...) also ends the chain.
package edgekit
