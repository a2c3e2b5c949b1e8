// Package plugin holds the lifecycle hook registry of an application.
//
// Hooks attach to a path prefix (or "*") at one of three points of a
// dispatch: BeforeParsing sees the raw request before validation,
// BeforeHandling sees the built Context before the handlers run, and
// BeforeResponding sees it after the handlers and before formatting.
//
//	reg := plugin.NewRegistry()
//	reg.Use("*", plugin.Plugin{
//		Name: "auth",
//		BeforeHandling: func(ctx *handler.Context) error {
//			if ctx.Req.Header("authorization") == "" {
//				return response.ErrUnauthorized
//			}
//			return nil
//		},
//	})
//
// The registry is frozen when serving starts; registering afterwards panics.
package plugin
