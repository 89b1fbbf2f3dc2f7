// printer.go — Python-style value rendering.
package pyeval

import (
	"fmt"
	"strconv"
	"strings"
)

// Repr renders v the way Python's repr would: strings in single quotes,
// floats with a forced ".0" when integral, (1,) for one-tuples, set() for
// the empty set.
func Repr(v Value) string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTFloat:
		return reprFloat(v.Data.(float64))
	case VTStr:
		return quoteString(v.Data.(string))
	case VTList:
		return "[" + joinReprs(v.Data.([]Value)) + "]"
	case VTTuple:
		xs := v.Data.([]Value)
		if len(xs) == 1 {
			return "(" + Repr(xs[0]) + ",)"
		}
		return "(" + joinReprs(xs) + ")"
	case VTSet:
		s := v.Data.(*SetObject)
		if s.Len() == 0 {
			return "set()"
		}
		return "{" + joinReprs(s.Items()) + "}"
	case VTDict:
		d := v.Data.(*DictObject)
		parts := make([]string, 0, d.Len())
		for _, e := range d.Entries() {
			parts = append(parts, Repr(e.Key)+": "+Repr(e.Val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VTBuiltin:
		return fmt.Sprintf("<built-in function %s>", v.Data.(*Builtin).Name)
	default:
		return "<unknown>"
	}
}

func joinReprs(xs []Value) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = Repr(x)
	}
	return strings.Join(parts, ", ")
}

func reprFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quoteString renders a string in Python repr style: single quotes unless
// the text contains a single quote but no double quote.
func quoteString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}
