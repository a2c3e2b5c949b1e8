// Package response builds HTTP responses for the dispatch pipeline.
//
// A State accumulates status, headers, cookies and at most one body while
// hooks and handlers run. Format turns the final State into a host.Response:
//
//	st := response.NewState()
//	st.Status(http.StatusCreated).Header("x-trace", id)
//	if err := st.JSON(user); err != nil {
//		return err
//	}
//	resp, err := response.Format(st)
//
// Handlers signal failures with HTTPError values (ErrBadRequest, ErrNotFound,
// ErrPayloadTooLarge ...). Any error exposing StatusCode() int is treated as
// structured; everything else renders through FallbackResponse.
package response
