// builtins.go — the builtin function table.
//
// The evaluator's only names are builtins; there is no user-defined binding
// form. Each builtin is a Value of kind Callable, which makes the
// unsupported-type path of the tagged encoder reachable from source text
// (evaluating `len` succeeds, encoding it does not).
package pyeval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Builtin is a host function exposed to the expression language.
// MaxArgs < 0 means variadic.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int
	Fn      func(ip *Interp, args []Value) (Value, error)
}

func (b *Builtin) arityText() string {
	if b.MaxArgs < 0 {
		return fmt.Sprintf("at least %d", b.MinArgs)
	}
	if b.MinArgs == b.MaxArgs {
		return fmt.Sprintf("exactly %d", b.MinArgs)
	}
	return fmt.Sprintf("%d to %d", b.MinArgs, b.MaxArgs)
}

func (ip *Interp) register(name string, minArgs, maxArgs int, fn func(ip *Interp, args []Value) (Value, error)) {
	ip.builtins[name] = BuiltinVal(&Builtin{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Fn: fn})
}

func registerBuiltins(ip *Interp) {
	ip.register("float", 0, 1, builtinFloat)
	ip.register("int", 0, 1, builtinInt)
	ip.register("str", 0, 1, builtinStr)
	ip.register("bool", 0, 1, builtinBool)
	ip.register("repr", 1, 1, builtinRepr)
	ip.register("len", 1, 1, builtinLen)
	ip.register("abs", 1, 1, builtinAbs)
	ip.register("min", 1, -1, builtinMin)
	ip.register("max", 1, -1, builtinMax)
	ip.register("sum", 1, 1, builtinSum)
	ip.register("round", 1, 2, builtinRound)
	ip.register("sorted", 1, 1, builtinSorted)
	ip.register("list", 0, 1, builtinList)
	ip.register("tuple", 0, 1, builtinTuple)
	ip.register("set", 0, 1, builtinSet)
	ip.register("dict", 0, 1, builtinDict)
}

// iterate yields the elements of an iterable value: characters of a string,
// elements of a list/tuple, items of a set, keys of a dict.
func iterate(v Value) ([]Value, error) {
	switch v.Tag {
	case VTStr:
		runes := []rune(v.Data.(string))
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = StrVal(string(r))
		}
		return out, nil
	case VTList, VTTuple:
		return v.Data.([]Value), nil
	case VTSet:
		return v.Data.(*SetObject).Items(), nil
	case VTDict:
		entries := v.Data.(*DictObject).Entries()
		out := make([]Value, len(entries))
		for i, e := range entries {
			out[i] = e.Key
		}
		return out, nil
	default:
		return nil, rtErrf("'%s' object is not iterable", v.TypeName())
	}
}

func builtinFloat(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return FloatVal(0), nil
	}
	v := args[0]
	switch v.Tag {
	case VTFloat:
		return v, nil
	case VTBool, VTInt:
		f, _, _, _ := numericValue(v)
		return FloatVal(f), nil
	case VTStr:
		s := strings.TrimSpace(v.Data.(string))
		switch strings.ToLower(strings.TrimPrefix(s, "+")) {
		case "inf", "infinity":
			return FloatVal(math.Inf(1)), nil
		case "-inf", "-infinity":
			return FloatVal(math.Inf(-1)), nil
		case "nan", "-nan":
			return FloatVal(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, rtErrf("could not convert string to float: '%s'", v.Data.(string))
		}
		return FloatVal(f), nil
	default:
		return Value{}, rtErrf("float() argument must be a string or a real number, not '%s'", v.TypeName())
	}
}

func builtinInt(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return IntVal(0), nil
	}
	v := args[0]
	switch v.Tag {
	case VTInt:
		return v, nil
	case VTBool:
		_, n, _, _ := numericValue(v)
		return IntVal(n), nil
	case VTFloat:
		f := v.Data.(float64)
		if math.IsNaN(f) {
			return Value{}, rtErrf("cannot convert float NaN to integer")
		}
		if math.IsInf(f, 0) {
			return Value{}, rtErrf("cannot convert float infinity to integer")
		}
		t := math.Trunc(f)
		if t >= math.MaxInt64 || t < math.MinInt64 {
			return Value{}, rtErrf("int too large to represent")
		}
		return IntVal(int64(t)), nil
	case VTStr:
		s := strings.TrimSpace(v.Data.(string))
		n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
		if err != nil {
			return Value{}, rtErrf("invalid literal for int() with base 10: '%s'", v.Data.(string))
		}
		return IntVal(n), nil
	default:
		return Value{}, rtErrf("int() argument must be a string or a real number, not '%s'", v.TypeName())
	}
}

func builtinStr(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return StrVal(""), nil
	}
	if args[0].Tag == VTStr {
		return args[0], nil
	}
	return StrVal(Repr(args[0])), nil
}

func builtinBool(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return BoolVal(false), nil
	}
	return BoolVal(Truthy(args[0])), nil
}

func builtinRepr(_ *Interp, args []Value) (Value, error) {
	return StrVal(Repr(args[0])), nil
}

func builtinLen(_ *Interp, args []Value) (Value, error) {
	v := args[0]
	switch v.Tag {
	case VTStr:
		return IntVal(int64(len([]rune(v.Data.(string))))), nil
	case VTList, VTTuple:
		return IntVal(int64(len(v.Data.([]Value)))), nil
	case VTSet:
		return IntVal(int64(v.Data.(*SetObject).Len())), nil
	case VTDict:
		return IntVal(int64(v.Data.(*DictObject).Len())), nil
	default:
		return Value{}, rtErrf("object of type '%s' has no len()", v.TypeName())
	}
}

func builtinAbs(_ *Interp, args []Value) (Value, error) {
	f, i, isInt, ok := numericValue(args[0])
	if !ok {
		return Value{}, rtErrf("bad operand type for abs(): '%s'", args[0].TypeName())
	}
	if isInt {
		if i == math.MinInt64 {
			return Value{}, rtErrf("int too large to represent")
		}
		if i < 0 {
			i = -i
		}
		return IntVal(i), nil
	}
	return FloatVal(math.Abs(f)), nil
}

func extremum(name, op string, args []Value) (Value, error) {
	items := args
	if len(args) == 1 {
		var err error
		items, err = iterate(args[0])
		if err != nil {
			return Value{}, err
		}
		if len(items) == 0 {
			return Value{}, rtErrf("%s() iterable argument is empty", name)
		}
	}
	best := items[0]
	for _, v := range items[1:] {
		wins, err := orderValues(op, v, best)
		if err != nil {
			return Value{}, err
		}
		if wins {
			best = v
		}
	}
	return best, nil
}

func builtinMin(_ *Interp, args []Value) (Value, error) {
	return extremum("min", "<", args)
}

func builtinMax(_ *Interp, args []Value) (Value, error) {
	return extremum("max", ">", args)
}

func builtinSum(_ *Interp, args []Value) (Value, error) {
	items, err := iterate(args[0])
	if err != nil {
		return Value{}, err
	}
	acc := IntVal(0)
	for _, v := range items {
		acc, err = opArith("+", acc, v)
		if err != nil {
			return Value{}, err
		}
	}
	return acc, nil
}

func builtinRound(_ *Interp, args []Value) (Value, error) {
	f, i, isInt, ok := numericValue(args[0])
	if !ok {
		return Value{}, rtErrf("type %s doesn't define __round__ method", args[0].TypeName())
	}
	if len(args) == 1 {
		if isInt {
			return IntVal(i), nil
		}
		if math.IsNaN(f) {
			return Value{}, rtErrf("cannot convert float NaN to integer")
		}
		if math.IsInf(f, 0) {
			return Value{}, rtErrf("cannot convert float infinity to integer")
		}
		// Banker's rounding, like Python.
		r := math.RoundToEven(f)
		if r >= math.MaxInt64 || r < math.MinInt64 {
			return Value{}, rtErrf("int too large to represent")
		}
		return IntVal(int64(r)), nil
	}
	_, nd, ndInt, ndOK := numericValue(args[1])
	if !ndOK || !ndInt {
		return Value{}, rtErrf("'%s' object cannot be interpreted as an integer", args[1].TypeName())
	}
	if isInt {
		return IntVal(i), nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return FloatVal(f), nil
	}
	switch {
	case nd > 323:
		return FloatVal(f), nil
	case nd < -323:
		return FloatVal(math.Copysign(0, f)), nil
	}
	if nd >= 0 {
		// Round the decimal form of the exact float value. Scaling by a
		// power of ten first loses the tie direction: 2.675 is really
		// 2.67499..., but 2.675*100 lands on exactly 267.5.
		s := strconv.FormatFloat(f, 'f', int(nd), 64)
		r, _ := strconv.ParseFloat(s, 64)
		return FloatVal(r), nil
	}
	p := math.Pow(10, float64(-nd))
	return FloatVal(math.RoundToEven(f/p) * p), nil
}

func builtinSorted(_ *Interp, args []Value) (Value, error) {
	items, err := iterate(args[0])
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(items))
	copy(out, items)
	// Insertion sort: stable, and lets the comparison error propagate.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			less, err := orderValues("<", out[j], out[j-1])
			if err != nil {
				return Value{}, err
			}
			if !less {
				break
			}
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return ListVal(out), nil
}

func builtinList(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return ListVal([]Value{}), nil
	}
	items, err := iterate(args[0])
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(items))
	copy(out, items)
	return ListVal(out), nil
}

func builtinTuple(_ *Interp, args []Value) (Value, error) {
	if len(args) == 0 {
		return TupleVal([]Value{}), nil
	}
	items, err := iterate(args[0])
	if err != nil {
		return Value{}, err
	}
	out := make([]Value, len(items))
	copy(out, items)
	return TupleVal(out), nil
}

func builtinSet(_ *Interp, args []Value) (Value, error) {
	s := NewSet()
	if len(args) == 1 {
		items, err := iterate(args[0])
		if err != nil {
			return Value{}, err
		}
		for _, v := range items {
			if err := s.Add(v); err != nil {
				return Value{}, &RuntimeError{Msg: err.Error()}
			}
		}
	}
	return SetVal(s), nil
}

func builtinDict(_ *Interp, args []Value) (Value, error) {
	d := NewDict()
	if len(args) == 0 {
		return DictVal(d), nil
	}
	v := args[0]
	if v.Tag == VTDict {
		for _, e := range v.Data.(*DictObject).Entries() {
			if err := d.Set(e.Key, e.Val); err != nil {
				return Value{}, &RuntimeError{Msg: err.Error()}
			}
		}
		return DictVal(d), nil
	}
	// dict([(k, v), ...]) from a sequence of pairs
	items, err := iterate(v)
	if err != nil {
		return Value{}, err
	}
	for i, item := range items {
		if item.Tag != VTList && item.Tag != VTTuple {
			return Value{}, rtErrf("cannot convert dictionary update sequence element #%d to a sequence", i)
		}
		pair := item.Data.([]Value)
		if len(pair) != 2 {
			return Value{}, rtErrf("dictionary update sequence element #%d has length %d; 2 is required", i, len(pair))
		}
		if err := d.Set(pair[0], pair[1]); err != nil {
			return Value{}, &RuntimeError{Msg: err.Error()}
		}
	}
	return DictVal(d), nil
}
