// Package validate provides struct-tag validation for request payloads.
//
// Rules are comma-separated in the `validate` tag. Multi-value parameters
// are space-separated:
//
//	required            field must not be zero/empty (pointers must be non-nil)
//	nullable            if empty (or a nil pointer), skip the remaining rules
//	email               valid email address
//	url                 valid http/https URL
//	uuid                canonical UUID string
//	numeric             parses as a number
//	date                YYYY-MM-DD
//	clock               HH:MM (24h)
//	min=N / max=N       numbers: value; strings: rune length; slices: length
//	gt=N gte=N lt=N lte=N
//	between=A B         inclusive numeric range or string length range
//	in=a b c            value must be one of the listed items
//	not_in=a b c        value must not be one of the listed items
//	regex=pattern       value must match
//	dive                validate each element of a slice of structs
//
// Errors are keyed by JSON path, e.g. "items[1].quantity".
//
//	type OrderLine struct {
//	    MenuItemID string `json:"menuItemId" validate:"required"`
//	    Quantity   int    `json:"quantity"   validate:"required,gte=1"`
//	}
//	type OrderInput struct {
//	    Items []OrderLine `json:"items" validate:"required,min=1,dive"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Struct validates every exported field of v carrying a `validate` tag and
// returns a map of JSON path to message. An empty map means v is valid.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walk(rv, "", errs)
	}
	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs map[string]string) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		path := prefix + jsonFieldName(field)
		value := rv.Field(i)
		rules := splitRules(tag)

		if isEmpty(value) {
			if hasRule(rules, "nullable") {
				continue
			}
			if hasRule(rules, "required") {
				errs[path] = fmt.Sprintf("The %s field is required.", path)
			}
			// Optional, absent, not nullable: nothing else to check.
			continue
		}

		value = indirect(value)
		failed := false
		for _, rule := range rules {
			switch rule {
			case "nullable", "required":
				continue
			case "dive":
				if !failed {
					diveInto(value, path, errs)
				}
				continue
			}
			if msg := apply(rule, path, value); msg != "" {
				errs[path] = msg
				failed = true
				break
			}
		}
	}
}

func diveInto(v reflect.Value, path string, errs map[string]string) {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return
	}
	for i := 0; i < v.Len(); i++ {
		elem := indirect(v.Index(i))
		if elem.Kind() == reflect.Struct {
			walk(elem, fmt.Sprintf("%s[%d].", path, i), errs)
		}
	}
}

// ─── Rules ───────────────────────────────────────────────────────────────────

type ruleFunc func(field, param string, v reflect.Value) string

var rules map[string]ruleFunc

func init() {
	rules = map[string]ruleFunc{
		"email":   matchRule(emailRE, "The %s must be a valid email address."),
		"uuid":    matchRule(uuidRE, "The %s must be a valid UUID."),
		"date":    matchRule(dateRE, "The %s must be a date in YYYY-MM-DD format."),
		"clock":   matchRule(clockRE, "The %s must be a time in HH:MM format."),
		"url":     urlRule,
		"numeric": numericRule,
		"min":     minRule,
		"max":     maxRule,
		"gt":      compareRule(func(a, b float64) bool { return a > b }, "The %s must be greater than %s."),
		"gte":     compareRule(func(a, b float64) bool { return a >= b }, "The %s must be greater than or equal to %s."),
		"lt":      compareRule(func(a, b float64) bool { return a < b }, "The %s must be less than %s."),
		"lte":     compareRule(func(a, b float64) bool { return a <= b }, "The %s must be less than or equal to %s."),
		"between": betweenRule,
		"in":      inRule,
		"not_in":  notInRule,
		"regex":   regexRule,
	}
}

func apply(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	fn, ok := rules[key]
	if !ok {
		return ""
	}
	return fn(field, param, v)
}

func matchRule(re *regexp.Regexp, msg string) ruleFunc {
	return func(field, _ string, v reflect.Value) string {
		if !re.MatchString(raw(v)) {
			return fmt.Sprintf(msg, field)
		}
		return ""
	}
}

func urlRule(field, _ string, v reflect.Value) string {
	u, err := url.ParseRequestURI(raw(v))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Sprintf("The %s must be a valid URL.", field)
	}
	return ""
}

func numericRule(field, _ string, v reflect.Value) string {
	if isNumericKind(v) {
		return ""
	}
	if _, err := strconv.ParseFloat(raw(v), 64); err != nil {
		return fmt.Sprintf("The %s field must be a number.", field)
	}
	return ""
}

func minRule(field, param string, v reflect.Value) string {
	n := parseFloat(param)
	switch {
	case isNumericKind(v):
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	case isCollection(v):
		if float64(v.Len()) < n {
			return fmt.Sprintf("The %s must have at least %s items.", field, param)
		}
	default:
		if float64(len([]rune(raw(v)))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	}
	return ""
}

func maxRule(field, param string, v reflect.Value) string {
	n := parseFloat(param)
	switch {
	case isNumericKind(v):
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
	case isCollection(v):
		if float64(v.Len()) > n {
			return fmt.Sprintf("The %s must not have more than %s items.", field, param)
		}
	default:
		if float64(len([]rune(raw(v)))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	}
	return ""
}

func compareRule(ok func(a, b float64) bool, msg string) ruleFunc {
	return func(field, param string, v reflect.Value) string {
		if !ok(toFloat(v), parseFloat(param)) {
			return fmt.Sprintf(msg, field, param)
		}
		return ""
	}
}

func betweenRule(field, param string, v reflect.Value) string {
	parts := strings.Fields(param)
	if len(parts) != 2 {
		return ""
	}
	lo, hi := parseFloat(parts[0]), parseFloat(parts[1])
	if isNumericKind(v) {
		if f := toFloat(v); f < lo || f > hi {
			return fmt.Sprintf("The %s must be between %s and %s.", field, parts[0], parts[1])
		}
		return ""
	}
	if l := float64(len([]rune(raw(v)))); l < lo || l > hi {
		return fmt.Sprintf("The %s must be between %s and %s characters.", field, parts[0], parts[1])
	}
	return ""
}

func inRule(field, param string, v reflect.Value) string {
	s := raw(v)
	for _, allowed := range strings.Fields(param) {
		if s == allowed {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

func notInRule(field, param string, v reflect.Value) string {
	s := raw(v)
	for _, forbidden := range strings.Fields(param) {
		if s == forbidden {
			return fmt.Sprintf("The selected %s is invalid.", field)
		}
	}
	return ""
}

func regexRule(field, param string, v reflect.Value) string {
	re, err := regexp.Compile(param)
	if err != nil {
		return fmt.Sprintf("The %s has an invalid validation pattern.", field)
	}
	if !re.MatchString(raw(v)) {
		return fmt.Sprintf("The %s format is invalid.", field)
	}
	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uuidRE  = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	dateRE  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRE = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ParseDate parses the YYYY-MM-DD layout accepted by the date rule.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func raw(v reflect.Value) string {
	v = indirect(v)
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		// A set pointer is present even when it points at a zero value, so
		// a PATCH of {"price": 0} still runs the price rules.
		return v.IsNil()
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isCollection(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return parseFloat(raw(v))
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name[:1]) + f.Name[1:]
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits on commas, except inside a regex= parameter which always
// runs to the end of the tag.
func splitRules(tag string) []string {
	var out []string
	for tag != "" {
		if strings.HasPrefix(tag, "regex=") {
			out = append(out, tag)
			break
		}
		rule, rest, _ := strings.Cut(tag, ",")
		if rule = strings.TrimSpace(rule); rule != "" {
			out = append(out, rule)
		}
		tag = rest
	}
	return out
}

func hasRule(rs []string, target string) bool {
	for _, r := range rs {
		if r == target {
			return true
		}
	}
	return false
}
