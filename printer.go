// printer.go — user-facing value formatting for the CLI and REPL.
package jslet

import (
	"math"
	"strconv"
)

// FormatValue renders obj the way the language's own literals read:
// undefined, true/false, numbers in shortest decimal form (NaN and the
// infinities spelled the JavaScript way), strings double-quoted.
func FormatValue(obj *Object) string {
	switch obj.Kind {
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		if obj.Data.(bool) {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(obj.Data.(float64))
	case KindString:
		return strconv.Quote(obj.Data.(string))
	default:
		return obj.String()
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
