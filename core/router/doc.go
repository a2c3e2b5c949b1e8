// Package router resolves a method and path to a registered route: its
// optional validation schema, its handler chain and the path parameters.
//
//	r := router.New()
//	_ = r.Add(http.MethodGet, "/users/{id:[0-9]+}", nil, getUser)
//	_ = r.Add(http.MethodGet, "/static/*", nil, serveAsset)
//
//	m, ok := r.Match(http.MethodGet, "/users/42")
//	// m.Params["id"] == "42"
//
// Static segments take precedence over params, params over the catch-all.
// A path registered only under other methods does not match.
package router
