// Package handler builds the per-request Context passed to lifecycle hooks
// and route handlers.
//
// A Context bundles the runtime env bindings, the Request accessors, the
// response State and the WaitUntil registrar:
//
//	func getUser(ctx *handler.Context) (any, error) {
//		id := ctx.Req.Param("id")
//		if ctx.Req.Query()["verbose"] == true {
//			ctx.Res.Header("x-verbose", "1")
//		}
//		ctx.WaitUntil(func(c context.Context) error {
//			return audit.Record(c, id)
//		})
//		return map[string]any{"id": id}, nil
//	}
//
// Body readers (Buffer, Text, JSON, Blob, FormData, Stream) are bounded by a
// deadline, 3s by default; exceeding it fails with a 413. The body can be
// read any number of times.
//
// The package also exports the parsing primitives of the validation stage:
// CollectHeaders, CoerceQuery, ParseCookies and ParseForm.
package handler
