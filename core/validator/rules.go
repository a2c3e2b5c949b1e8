package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Rules maps a field name to its rule list, e.g. {"name": "required;min:2"}.
// It validates maps with string keys.
type Rules map[string]string

// Kind implements Kinded.
func (Rules) Kind() Kind { return KindObject }

// TextRules is a rule list applied to a whole string value.
type TextRules string

// Kind implements Kinded.
func (TextRules) Kind() Kind { return KindString }

// RuleFunc reports whether value satisfies the rule with params.
type RuleFunc func(value reflect.Value, params []string) bool

var (
	registryMu sync.RWMutex
	registry   = map[string]RuleFunc{
		"min":      minRule,
		"max":      maxRule,
		"len":      lenRule,
		"email":    stringRule(isEmail),
		"url":      stringRule(isURL),
		"alpha":    stringRule(isAlpha),
		"alphanum": stringRule(isAlphanumeric),
		"numeric":  numericRule,
		"uuid":     stringRule(isUUID),
		"in":       inRule,
		"not_in":   notInRule,
		"contains": paramStringRule(strings.Contains),
		"prefix":   paramStringRule(strings.HasPrefix),
		"suffix":   paramStringRule(strings.HasSuffix),
		"regex":    regexRule,
		"positive": signRule(func(f float64) bool { return f > 0 }),
		"negative": signRule(func(f float64) bool { return f < 0 }),
		"boolean":  booleanRule,
	}

	regexCache sync.Map
)

// RegisterRule adds or replaces a named rule.
func RegisterRule(name string, fn RuleFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = fn
}

// RuleValidator validates Rules and TextRules schemas.
type RuleValidator struct{}

// Validate reports whether value satisfies every rule of schema.
// Unknown schema types and non-map values for Rules are rejected.
func (RuleValidator) Validate(schema, value any) bool {
	switch s := schema.(type) {
	case Rules:
		fields, ok := fieldsOf(value)
		if !ok {
			return false
		}
		for field, rules := range s {
			v, present := fields[field]
			if !checkRules(v, present, rules) {
				return false
			}
		}
		return true
	case TextRules:
		str, ok := value.(string)
		if !ok {
			return false
		}
		return checkRules(str, true, string(s))
	default:
		return false
	}
}

func fieldsOf(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func checkRules(value any, present bool, rules string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	rv := reflect.ValueOf(value)
	for rule := range strings.SplitSeq(rules, ";") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		name, paramStr, _ := strings.Cut(rule, ":")
		name = strings.TrimSpace(name)

		if name == "required" {
			if !present || isEmpty(rv) {
				return false
			}
			continue
		}
		// Absent and null values only answer to "required"
		if !present || !rv.IsValid() {
			continue
		}

		var params []string
		if paramStr = strings.TrimSpace(paramStr); paramStr != "" {
			params = strings.Split(paramStr, ",")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
		}

		fn, ok := registry[name]
		if !ok {
			continue
		}
		if !fn(deref(rv), params) {
			return false
		}
	}
	return true
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	v = deref(v)
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

// size is the rune count of strings, the length of collections and the value
// of numbers.
func size(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.String:
		return float64(utf8.RuneCountInString(v.String())), true
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(v.Len()), true
	default:
		return toFloat(v)
	}
}

func boundRule(cmp func(got, want float64) bool) RuleFunc {
	return func(v reflect.Value, params []string) bool {
		if len(params) < 1 {
			return true
		}
		want, err := strconv.ParseFloat(params[0], 64)
		if err != nil {
			return true
		}
		got, ok := size(v)
		if !ok {
			return false
		}
		return cmp(got, want)
	}
}

var (
	minRule = boundRule(func(got, want float64) bool { return got >= want })
	maxRule = boundRule(func(got, want float64) bool { return got <= want })
	lenRule = boundRule(func(got, want float64) bool { return got == want })
)

func stringRule(check func(string) bool) RuleFunc {
	return func(v reflect.Value, _ []string) bool {
		if v.Kind() != reflect.String {
			return false
		}
		return check(v.String())
	}
}

func paramStringRule(check func(s, param string) bool) RuleFunc {
	return func(v reflect.Value, params []string) bool {
		if len(params) < 1 {
			return true
		}
		if v.Kind() != reflect.String {
			return false
		}
		return check(v.String(), params[0])
	}
}

func numericRule(v reflect.Value, _ []string) bool {
	if _, ok := toFloat(v); ok {
		return true
	}
	if v.Kind() != reflect.String {
		return false
	}
	_, err := strconv.ParseFloat(v.String(), 64)
	return err == nil
}

func signRule(check func(float64) bool) RuleFunc {
	return func(v reflect.Value, _ []string) bool {
		f, ok := toFloat(v)
		if !ok && v.Kind() == reflect.String {
			var err error
			f, err = strconv.ParseFloat(v.String(), 64)
			ok = err == nil
		}
		return ok && check(f)
	}
}

func booleanRule(v reflect.Value, _ []string) bool {
	return v.Kind() == reflect.Bool
}

func inRule(v reflect.Value, params []string) bool {
	return slices.Contains(params, fmt.Sprint(v.Interface()))
}

func notInRule(v reflect.Value, params []string) bool {
	return !inRule(v, params)
}

func regexRule(v reflect.Value, params []string) bool {
	if len(params) < 1 {
		return true
	}
	if v.Kind() != reflect.String {
		return false
	}
	// Commas inside the pattern were split as parameters
	pattern := strings.Join(params, ",")
	re, err := compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(v.String())
}

func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
