// Package pipeline dispatches runtime-neutral requests through the request
// lifecycle:
//
//	cache lookup (GET) -> preflight -> route match -> beforeParsing hooks ->
//	validation -> context -> beforeHandling hooks -> handler chain ->
//	beforeResponding hooks -> formatting -> cache store (background)
//
// Any failure stops the remaining stages and is translated once at the
// dispatch boundary: errors carrying a status code render as JSON
// {message, code}, anything else goes to the configured ErrorHandler or the
// 500 fallback. Panics in hooks and handlers are recovered the same way.
//
// Validation runs only when a validator is configured; route schemas are
// inert otherwise. Body parsing runs only for routes whose schema declares
// a body.
package pipeline
