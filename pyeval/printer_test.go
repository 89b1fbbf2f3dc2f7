// printer_test.go
package pyeval

import (
	"math"
	"testing"
)

func Test_Repr(t *testing.T) {
	one := TupleVal([]Value{IntVal(1)})
	nested := NewDict()
	_ = nested.Set(TupleVal([]Value{IntVal(1), IntVal(2)}), ListVal([]Value{StrVal("x")}))

	cases := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{BoolVal(true), "True"},
		{IntVal(-3), "-3"},
		{FloatVal(1), "1.0"},
		{FloatVal(2.5), "2.5"},
		{FloatVal(math.Inf(1)), "inf"},
		{FloatVal(math.Inf(-1)), "-inf"},
		{FloatVal(math.NaN()), "nan"},
		{StrVal("a"), "'a'"},
		{StrVal("it's"), `"it's"`},
		{StrVal("a\nb"), `'a\nb'`},
		{ListVal(nil), "[]"},
		{TupleVal(nil), "()"},
		{one, "(1,)"},
		{SetVal(NewSet()), "set()"},
		{DictVal(NewDict()), "{}"},
		{DictVal(nested), "{(1, 2): ['x']}"},
	}
	for _, c := range cases {
		if got := Repr(c.v); got != c.want {
			t.Fatalf("want %s, got %s", c.want, got)
		}
	}
}
