// value_test.go
package pyeval

import (
	"math"
	"testing"
)

func Test_Value_NumericKeysUnify(t *testing.T) {
	d := NewDict()
	if err := d.Set(IntVal(1), StrVal("a")); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(BoolVal(true), StrVal("b")); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(FloatVal(1.0), StrVal("c")); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 {
		t.Fatalf("1, True and 1.0 should share one slot, got %d entries", d.Len())
	}
	// the first key wins, the last value wins
	e := d.Entries()[0]
	if e.Key.Tag != VTInt {
		t.Fatalf("surviving key should be the first one (Int), got %s", e.Key.TypeName())
	}
	if e.Val.Data.(string) != "c" {
		t.Fatalf("surviving value should be the last one, got %s", Repr(e.Val))
	}
}

func Test_Value_NegativeZeroKeysLikeZero(t *testing.T) {
	d := NewDict()
	_ = d.Set(FloatVal(0.0), StrVal("a"))
	_ = d.Set(FloatVal(math.Copysign(0, -1)), StrVal("b"))
	_ = d.Set(IntVal(0), StrVal("c"))
	if d.Len() != 1 {
		t.Fatalf("0, -0.0 and 0.0 should share one slot, got %d", d.Len())
	}
}

func Test_Value_TupleKeys(t *testing.T) {
	d := NewDict()
	key := TupleVal([]Value{IntVal(1), StrVal("x")})
	if err := d.Set(key, IntVal(42)); err != nil {
		t.Fatal(err)
	}
	same := TupleVal([]Value{FloatVal(1.0), StrVal("x")})
	v, ok, err := d.Get(same)
	if err != nil || !ok {
		t.Fatalf("equal tuple should hit: ok=%v err=%v", ok, err)
	}
	if v.Data.(int64) != 42 {
		t.Fatalf("got %s", Repr(v))
	}
}

func Test_Value_UnhashableKeys(t *testing.T) {
	d := NewDict()
	for _, bad := range []Value{
		ListVal([]Value{IntVal(1)}),
		SetVal(NewSet()),
		DictVal(NewDict()),
		TupleVal([]Value{ListVal(nil)}), // tuple containing a list
	} {
		if err := d.Set(bad, None); err == nil {
			t.Fatalf("%s should be unhashable", bad.TypeName())
		}
	}
}

func Test_Value_SetDedup(t *testing.T) {
	s := NewSet()
	for _, v := range []Value{IntVal(1), FloatVal(1.0), BoolVal(true), IntVal(2)} {
		if err := s.Add(v); err != nil {
			t.Fatal(err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("want {1, 2}, got %d items", s.Len())
	}
	if s.Items()[0].Tag != VTInt || s.Items()[1].Data.(int64) != 2 {
		t.Fatalf("insertion order lost: %s", Repr(SetVal(s)))
	}
}

func Test_Value_Equality(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{IntVal(1), FloatVal(1.0), true},
		{BoolVal(true), IntVal(1), true},
		{IntVal(1), StrVal("1"), false},
		{ListVal([]Value{IntVal(1)}), TupleVal([]Value{IntVal(1)}), false},
		{None, None, true},
		{None, BoolVal(false), false},
		{FloatVal(math.NaN()), FloatVal(math.NaN()), false},
	}
	for _, c := range cases {
		if got := valuesEqual(c.a, c.b); got != c.want {
			t.Fatalf("valuesEqual(%s, %s): want %v, got %v", Repr(c.a), Repr(c.b), c.want, got)
		}
	}
}

func Test_Value_Truthiness(t *testing.T) {
	truthy := []Value{IntVal(1), FloatVal(math.NaN()), StrVal("x"), ListVal([]Value{None})}
	falsy := []Value{None, BoolVal(false), IntVal(0), FloatVal(0), StrVal("")}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Fatalf("%s should be truthy", Repr(v))
		}
	}
	for _, v := range falsy {
		if Truthy(v) {
			t.Fatalf("%s should be falsy", Repr(v))
		}
	}
	empty := NewSet()
	if Truthy(SetVal(empty)) {
		t.Fatal("empty set should be falsy")
	}
}
