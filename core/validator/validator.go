package validator

// Validator checks a value against a schema.
type Validator interface {
	Validate(schema, value any) bool
}

// Schema is the optional per-route validation descriptor. Any sub-schema may
// be nil. A Schema is shared read-only by every dispatch of its route.
type Schema struct {
	Headers any
	Query   any
	Cookies any
	Body    any

	// Transform parses multipart/form-data bodies into a plain map
	// instead of decoding them as JSON.
	Transform bool
}

// Kind is the declared shape of a body schema.
type Kind int

const (
	KindObject Kind = iota
	KindString
)

// Kinded is implemented by schemas that declare their shape.
type Kinded interface {
	Kind() Kind
}

// KindOf returns the declared kind of schema, KindObject when undeclared.
func KindOf(schema any) Kind {
	if k, ok := schema.(Kinded); ok {
		return k.Kind()
	}
	return KindObject
}

// Func adapts a function to the Validator interface.
type Func func(schema, value any) bool

// Validate calls f.
func (f Func) Validate(schema, value any) bool {
	return f(schema, value)
}

// SafeParser is a schema that validates values itself.
type SafeParser interface {
	SafeParse(value any) (any, error)
}

// SafeParse validates with schemas implementing SafeParser.
type SafeParse struct{}

// Validate reports whether schema accepts value. Schemas that are not
// SafeParsers reject everything.
func (SafeParse) Validate(schema, value any) bool {
	p, ok := schema.(SafeParser)
	if !ok {
		return false
	}
	_, err := p.SafeParse(value)
	return err == nil
}

type auto struct {
	rules RuleValidator
	safe  SafeParse
}

// New returns a validator supporting Rules, TextRules, SafeParser schemas and
// plain func(any) bool predicates.
func New() Validator {
	return auto{}
}

func (a auto) Validate(schema, value any) bool {
	switch s := schema.(type) {
	case Rules, TextRules:
		return a.rules.Validate(schema, value)
	case SafeParser:
		return a.safe.Validate(schema, value)
	case func(any) bool:
		return s(value)
	default:
		return false
	}
}
