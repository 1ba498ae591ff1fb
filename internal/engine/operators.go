package engine

import (
	"github.com/annikaholm/vexray/internal/version"
)

// operatorFunc compares two resolved operand values and reports whether
// the comparison holds. It must never panic: a type mismatch is a normal
// outcome (§4.2) and collapses to false, not an error.
type operatorFunc func(left, right any) bool

// operators is the package-level registry, built once in init() — the
// same pattern the teacher follows for its parser's scanner-token maps.
var operators map[string]operatorFunc

func init() {
	operators = map[string]operatorFunc{
		"===": opEqual,
		"==":  opEqual,
		"!=":  func(l, r any) bool { return !opEqual(l, r) },

		">=": opScalar(func(c int) bool { return c >= 0 }),
		"<=": opScalar(func(c int) bool { return c <= 0 }),
		">":  opScalar(func(c int) bool { return c > 0 }),
		"<":  opScalar(func(c int) bool { return c < 0 }),

		// Compatibility synonyms, preserved verbatim from the reference
		// behavior rather than "corrected" — see DESIGN.md.
		"~=":  opScalar(func(c int) bool { return c >= 0 }),
		">==": opScalar(func(c int) bool { return c >= 0 }),

		">=~": opVersion(func(c int) bool { return c >= 0 }),
		"<=~": opVersion(func(c int) bool { return c <= 0 }),
		">~":  opVersion(func(c int) bool { return c > 0 }),
		"<~":  opVersion(func(c int) bool { return c < 0 }),

		"and": opAnd,
		"or":  opOr,
	}
}

// operator returns the named operator, falling back to never (§4.2:
// "Missing operator → a sentinel never function returning false").
func operator(name string) operatorFunc {
	if f, ok := operators[name]; ok {
		return f
	}
	return never
}

func never(_, _ any) bool { return false }

func opEqual(l, r any) bool { return l == r }

func opAnd(l, r any) bool { return truthy(l) && truthy(r) }
func opOr(l, r any) bool  { return truthy(l) || truthy(r) }

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	default:
		return true
	}
}

// opScalar builds a numeric/string comparator guarded against type
// mismatches (§4.2, §7 TypeMismatch): mismatched operand types collapse
// the comparison to false rather than erroring.
func opScalar(accept func(cmp int) bool) operatorFunc {
	return func(l, r any) bool {
		switch lv := l.(type) {
		case float64:
			rv, ok := r.(float64)
			if !ok {
				return false
			}
			return accept(cmpFloat(lv, rv))
		case string:
			rv, ok := r.(string)
			if !ok {
				return false
			}
			return accept(cmpString(lv, rv))
		case bool:
			rv, ok := r.(bool)
			if !ok {
				return false
			}
			return accept(cmpBool(lv, rv))
		default:
			return false
		}
	}
}

// opVersion builds a version comparator: both operands must be strings
// parseable as PEP 440 versions (§4.2). An unparseable operand collapses
// the comparison to false (InvalidVersion, §7), never an error.
func opVersion(accept func(cmp int) bool) operatorFunc {
	return func(l, r any) bool {
		ls, ok := l.(string)
		if !ok {
			return false
		}
		rs, ok := r.(string)
		if !ok {
			return false
		}
		lv, err := version.Parse(ls)
		if err != nil {
			return false
		}
		rv, err := version.Parse(rs)
		if err != nil {
			return false
		}
		return accept(version.Compare(lv, rv))
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}
