// Package validator defines the contract between the dispatch pipeline and
// pluggable validation backends, the per-route schema descriptor, and three
// ready-made adapters.
//
// # Contract
//
// A Validator answers a single question: does value satisfy schema?
//
//	type Validator interface {
//		Validate(schema, value any) bool
//	}
//
// Schemas are opaque to the pipeline. The only thing it inspects is the
// declared Kind of a body schema, which decides whether the body is consumed
// as JSON (KindObject, the default) or as raw text (KindString).
//
// # Schema Descriptor
//
//	schema := &validator.Schema{
//		Query:   validator.Rules{"page": "numeric;positive"},
//		Headers: validator.Rules{"x-api-key": "required;len:32"},
//		Body:    validator.Rules{"email": "required;email", "name": "min:2"},
//	}
//
// Set Transform to parse multipart/form-data bodies into a plain map instead
// of JSON.
//
// # Adapters
//
//   - Func wraps a plain function.
//   - SafeParse delegates to schemas implementing SafeParser.
//   - RuleValidator checks Rules and TextRules schemas with the rule registry.
//   - New returns a validator that picks among the above by schema type.
//
// # Rules
//
// Rules are semicolon separated, parameters follow a colon and are comma
// separated: "required;min:3;in:a,b,c". Absent fields only fail "required".
// Built-in rules: required, min, max, len, email, url, alpha, alphanum,
// numeric, uuid, in, not_in, contains, prefix, suffix, regex, positive,
// negative, boolean. Register custom rules with RegisterRule.
package validator
