// object.go — the runtime object model.
//
// An Object is one heap-allocated runtime value: a kind tag, the payload for
// that kind, and a unique id assigned by Memory at allocation time. Objects
// are always handled by pointer; the same *Object is shared by the heap
// table, any number of scope bindings, and evaluator locals. Identity (the
// id) is distinct from value: two objects may hold equal payloads and still
// be different objects.
//
// The two derived operations the engine needs live here as well:
//   - CastToNumber: JavaScript ToNumber coercion restricted to the four
//     kinds this language has.
//   - IsEqualToNonStrict: JavaScript `==` comparison over those kinds.
package jslet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ObjectKind enumerates the runtime kinds an Object may hold.
// The kind determines which Go type Object.Data carries.
type ObjectKind int

const (
	KindUndefined ObjectKind = iota // no payload (Data is nil)
	KindBoolean                     // bool
	KindNumber                      // float64
	KindString                      // string
)

func (k ObjectKind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Object is a heap value with a stable identity. Construct through the
// Memory allocators, never directly: only Memory mints ids.
type Object struct {
	ID   uint64
	Kind ObjectKind
	Data interface{} // bool / float64 / string per Kind; nil for undefined
}

// String renders a debug representation including the id.
func (o *Object) String() string {
	switch o.Kind {
	case KindUndefined:
		return fmt.Sprintf("<undefined #%d>", o.ID)
	case KindBoolean:
		return fmt.Sprintf("<boolean %v #%d>", o.Data.(bool), o.ID)
	case KindNumber:
		return fmt.Sprintf("<number %s #%d>", strconv.FormatFloat(o.Data.(float64), 'g', -1, 64), o.ID)
	case KindString:
		return fmt.Sprintf("<string %q #%d>", o.Data.(string), o.ID)
	default:
		return fmt.Sprintf("<unknown #%d>", o.ID)
	}
}

// CastToNumber coerces the object to a float64 following JavaScript's
// ToNumber rules. It never fails; unconvertible values yield NaN.
func (o *Object) CastToNumber() float64 {
	switch o.Kind {
	case KindNumber:
		return o.Data.(float64)
	case KindBoolean:
		if o.Data.(bool) {
			return 1
		}
		return 0
	case KindString:
		return stringToNumber(o.Data.(string))
	default: // undefined
		return math.NaN()
	}
}

// IsEqualToNonStrict reports JavaScript `==` equality between o and other.
// Same-kind operands compare payloads (NaN is not equal to NaN); undefined
// equals only undefined; every other cross-kind pair compares after numeric
// coercion of both sides, which is what the `==` table reduces to for
// boolean/number/string operands.
func (o *Object) IsEqualToNonStrict(other *Object) bool {
	if o.Kind == other.Kind {
		switch o.Kind {
		case KindUndefined:
			return true
		case KindBoolean:
			return o.Data.(bool) == other.Data.(bool)
		case KindNumber:
			return o.Data.(float64) == other.Data.(float64)
		case KindString:
			return o.Data.(string) == other.Data.(string)
		}
	}
	if o.Kind == KindUndefined || other.Kind == KindUndefined {
		return false
	}
	return o.CastToNumber() == other.CastToNumber()
}

// stringToNumber implements the string arm of ToNumber: trimmed empty input
// is 0, the exact Infinity spellings are infinities, 0x/0o/0b integer forms
// are honored, anything else goes through a decimal float parse and falls
// back to NaN. Go's ParseFloat accepts spellings JavaScript does not ("inf",
// hex floats), so the input is vetted to decimal-literal characters first.
func stringToNumber(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}

	switch t {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(t) > 2 && t[0] == '0' {
		var base int
		switch t[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(t[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < '0' || c > '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
