package handler

import "reflect"

// HandlerFunc handles a request. A non-empty result becomes the response body
// and stops the handler chain; a non-nil error aborts the dispatch.
type HandlerFunc func(ctx *Context) (any, error)

// IsEmpty reports whether a handler result carries no body: nil, nil
// pointers and interfaces, empty strings and byte slices, false and numeric
// zero.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	case bool:
		return !x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}
