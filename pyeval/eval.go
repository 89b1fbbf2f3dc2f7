// eval.go — tree evaluator for the expression AST.
//
// Eval walks the S-expression produced by parser.go and returns a Value.
// Operator semantics follow Python: bools participate in arithmetic as 0/1,
// int and float mix promotes to float, "/" always yields a float, "//" and
// "%" use floor-division sign rules, and/or short-circuit and return the
// deciding operand, and comparisons chain left-to-right.
//
// Failures are *RuntimeError values carrying the message only. Unlike lex
// and parse errors there is no source position: runtime faults are reported
// the way Python reports them, message-first.
package pyeval

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RuntimeError is an evaluation failure.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

func rtErrf(format string, args ...interface{}) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// Interp evaluates expression ASTs against the builtin environment.
type Interp struct {
	builtins map[string]Value
	log      *zap.Logger
}

// NewInterp returns an interpreter with the standard builtins and no
// logging.
func NewInterp() *Interp {
	return NewInterpWithLogger(zap.NewNop())
}

// NewInterpWithLogger is NewInterp with debug logging attached. The logger
// only ever receives Debug-level events.
func NewInterpWithLogger(log *zap.Logger) *Interp {
	ip := &Interp{builtins: map[string]Value{}, log: log}
	registerBuiltins(ip)
	return ip
}

// EvalSource parses and evaluates a single expression.
func (ip *Interp) EvalSource(src string) (Value, error) {
	start := time.Now()
	ast, err := ParseSExpr(src)
	if err != nil {
		return Value{}, err
	}
	ip.log.Debug("parsed expression",
		zap.String("root", ast[0].(string)),
		zap.Duration("parse", time.Since(start)))
	evalStart := time.Now()
	v, err := ip.Eval(ast)
	if err != nil {
		return Value{}, err
	}
	ip.log.Debug("evaluation complete",
		zap.String("type", v.TypeName()),
		zap.Duration("eval", time.Since(evalStart)))
	return v, nil
}

// Eval evaluates a parsed AST node.
func (ip *Interp) Eval(node S) (Value, error) {
	switch node[0].(string) {
	case "int":
		return IntVal(node[1].(int64)), nil
	case "float":
		return FloatVal(node[1].(float64)), nil
	case "str":
		return StrVal(node[1].(string)), nil
	case "bool":
		return BoolVal(node[1].(bool)), nil
	case "none":
		return None, nil

	case "id":
		name := node[1].(string)
		if v, ok := ip.builtins[name]; ok {
			return v, nil
		}
		return Value{}, rtErrf("name '%s' is not defined", name)

	case "list":
		xs, err := ip.evalAll(node[1:])
		if err != nil {
			return Value{}, err
		}
		return ListVal(xs), nil

	case "tuple":
		xs, err := ip.evalAll(node[1:])
		if err != nil {
			return Value{}, err
		}
		return TupleVal(xs), nil

	case "set":
		s := NewSet()
		for _, raw := range node[1:] {
			v, err := ip.Eval(raw.(S))
			if err != nil {
				return Value{}, err
			}
			if err := s.Add(v); err != nil {
				return Value{}, &RuntimeError{Msg: err.Error()}
			}
		}
		return SetVal(s), nil

	case "dict":
		d := NewDict()
		for _, raw := range node[1:] {
			pair := raw.(S)
			k, err := ip.Eval(pair[1].(S))
			if err != nil {
				return Value{}, err
			}
			v, err := ip.Eval(pair[2].(S))
			if err != nil {
				return Value{}, err
			}
			if err := d.Set(k, v); err != nil {
				return Value{}, &RuntimeError{Msg: err.Error()}
			}
		}
		return DictVal(d), nil

	case "not":
		v, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		return BoolVal(!Truthy(v)), nil

	case "and":
		lhs, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		if !Truthy(lhs) {
			return lhs, nil
		}
		return ip.Eval(node[2].(S))

	case "or":
		lhs, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		if Truthy(lhs) {
			return lhs, nil
		}
		return ip.Eval(node[2].(S))

	case "cond":
		cond, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		if Truthy(cond) {
			return ip.Eval(node[2].(S))
		}
		return ip.Eval(node[3].(S))

	case "unop":
		v, err := ip.Eval(node[2].(S))
		if err != nil {
			return Value{}, err
		}
		return applyUnop(node[1].(string), v)

	case "binop":
		lhs, err := ip.Eval(node[2].(S))
		if err != nil {
			return Value{}, err
		}
		rhs, err := ip.Eval(node[3].(S))
		if err != nil {
			return Value{}, err
		}
		return applyBinop(node[1].(string), lhs, rhs)

	case "index":
		obj, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		idx, err := ip.Eval(node[2].(S))
		if err != nil {
			return Value{}, err
		}
		return evalIndex(obj, idx)

	case "call":
		callee, err := ip.Eval(node[1].(S))
		if err != nil {
			return Value{}, err
		}
		args, err := ip.evalAll(node[2:])
		if err != nil {
			return Value{}, err
		}
		if callee.Tag != VTBuiltin {
			return Value{}, rtErrf("'%s' object is not callable", callee.TypeName())
		}
		b := callee.Data.(*Builtin)
		if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
			return Value{}, rtErrf("%s() takes %s arguments but %d were given", b.Name, b.arityText(), len(args))
		}
		ip.log.Debug("builtin call", zap.String("name", b.Name), zap.Int("args", len(args)))
		return b.Fn(ip, args)

	default:
		return Value{}, rtErrf("unknown AST node: %v", node[0])
	}
}

func (ip *Interp) evalAll(raw []any) ([]Value, error) {
	out := make([]Value, 0, len(raw))
	for _, r := range raw {
		v, err := ip.Eval(r.(S))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// --- operators --------------------------------------------------------------

func applyUnop(op string, v Value) (Value, error) {
	f, i, isInt, ok := numericValue(v)
	if !ok {
		return Value{}, rtErrf("bad operand type for unary %s: '%s'", op, v.TypeName())
	}
	if op == "+" {
		if isInt {
			return IntVal(i), nil
		}
		return FloatVal(f), nil
	}
	if isInt {
		if i == math.MinInt64 {
			return Value{}, rtErrf("int too large to represent")
		}
		return IntVal(-i), nil
	}
	return FloatVal(-f), nil
}

// --- checked int64 arithmetic ---
// Results outside int64 are a runtime error; there is no silent
// wraparound.

func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func subInt64(a, b int64) (int64, bool) {
	d := a - b
	if (b < 0 && d < a) || (b > 0 && d > a) {
		return 0, false
	}
	return d, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		if a == 1 {
			return b, true
		}
		if b == 1 {
			return a, true
		}
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func applyBinop(op string, a, b Value) (Value, error) {
	switch op {
	case "==":
		return BoolVal(valuesEqual(a, b)), nil
	case "!=":
		return BoolVal(!valuesEqual(a, b)), nil
	case "<", "<=", ">", ">=":
		res, err := orderValues(op, a, b)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(res), nil
	case "in":
		res, err := membership(a, b)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(res), nil
	case "not in":
		res, err := membership(a, b)
		if err != nil {
			return Value{}, err
		}
		return BoolVal(!res), nil
	case "+":
		return opAdd(a, b)
	case "-":
		return opArith("-", a, b)
	case "*":
		return opMul(a, b)
	case "/":
		return opDiv(a, b)
	case "//":
		return opFloorDiv(a, b)
	case "%":
		return opMod(a, b)
	case "**":
		return opPow(a, b)
	default:
		return Value{}, rtErrf("unknown operator: %s", op)
	}
}

func binopTypeErr(op string, a, b Value) error {
	return rtErrf("unsupported operand type(s) for %s: '%s' and '%s'", op, a.TypeName(), b.TypeName())
}

func opAdd(a, b Value) (Value, error) {
	if a.Tag == VTStr && b.Tag == VTStr {
		return StrVal(a.Data.(string) + b.Data.(string)), nil
	}
	if a.Tag == VTList && b.Tag == VTList {
		return ListVal(concatValues(a.Data.([]Value), b.Data.([]Value))), nil
	}
	if a.Tag == VTTuple && b.Tag == VTTuple {
		return TupleVal(concatValues(a.Data.([]Value), b.Data.([]Value))), nil
	}
	return opArith("+", a, b)
}

func concatValues(a, b []Value) []Value {
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// opArith handles "+" and "-" over the numeric group.
func opArith(op string, a, b Value) (Value, error) {
	af, ai, aInt, aok := numericValue(a)
	bf, bi, bInt, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr(op, a, b)
	}
	if aInt && bInt {
		var (
			r  int64
			ok bool
		)
		if op == "+" {
			r, ok = addInt64(ai, bi)
		} else {
			r, ok = subInt64(ai, bi)
		}
		if !ok {
			return Value{}, rtErrf("int too large to represent")
		}
		return IntVal(r), nil
	}
	if op == "+" {
		return FloatVal(af + bf), nil
	}
	return FloatVal(af - bf), nil
}

func opMul(a, b Value) (Value, error) {
	// seq * n and n * seq repetition
	if n, ok := intOperand(b); ok {
		if v, done := repeatValue(a, n); done {
			return v, nil
		}
	}
	if n, ok := intOperand(a); ok {
		if v, done := repeatValue(b, n); done {
			return v, nil
		}
	}
	af, ai, aInt, aok := numericValue(a)
	bf, bi, bInt, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr("*", a, b)
	}
	if aInt && bInt {
		r, ok := mulInt64(ai, bi)
		if !ok {
			return Value{}, rtErrf("int too large to represent")
		}
		return IntVal(r), nil
	}
	return FloatVal(af * bf), nil
}

func intOperand(v Value) (int64, bool) {
	switch v.Tag {
	case VTBool:
		if v.Data.(bool) {
			return 1, true
		}
		return 0, true
	case VTInt:
		return v.Data.(int64), true
	default:
		return 0, false
	}
}

func repeatValue(v Value, n int64) (Value, bool) {
	if n < 0 {
		n = 0
	}
	switch v.Tag {
	case VTStr:
		return StrVal(strings.Repeat(v.Data.(string), int(n))), true
	case VTList:
		return ListVal(repeatSlice(v.Data.([]Value), int(n))), true
	case VTTuple:
		return TupleVal(repeatSlice(v.Data.([]Value), int(n))), true
	default:
		return Value{}, false
	}
}

func repeatSlice(xs []Value, n int) []Value {
	out := make([]Value, 0, len(xs)*n)
	for i := 0; i < n; i++ {
		out = append(out, xs...)
	}
	return out
}

func opDiv(a, b Value) (Value, error) {
	af, _, _, aok := numericValue(a)
	bf, _, _, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr("/", a, b)
	}
	if bf == 0 {
		return Value{}, rtErrf("division by zero")
	}
	return FloatVal(af / bf), nil
}

func opFloorDiv(a, b Value) (Value, error) {
	af, ai, aInt, aok := numericValue(a)
	bf, bi, bInt, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr("//", a, b)
	}
	if aInt && bInt {
		if bi == 0 {
			return Value{}, rtErrf("integer division or modulo by zero")
		}
		if ai == math.MinInt64 && bi == -1 {
			return Value{}, rtErrf("int too large to represent")
		}
		q := ai / bi
		if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
			q--
		}
		return IntVal(q), nil
	}
	if bf == 0 {
		return Value{}, rtErrf("float floor division by zero")
	}
	return FloatVal(math.Floor(af / bf)), nil
}

func opMod(a, b Value) (Value, error) {
	af, ai, aInt, aok := numericValue(a)
	bf, bi, bInt, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr("%", a, b)
	}
	if aInt && bInt {
		if bi == 0 {
			return Value{}, rtErrf("integer division or modulo by zero")
		}
		// n % -1 is always 0; Go's % would fault on MinInt64 % -1.
		if bi == -1 {
			return IntVal(0), nil
		}
		r := ai % bi
		if r != 0 && ((r < 0) != (bi < 0)) {
			r += bi
		}
		return IntVal(r), nil
	}
	if bf == 0 {
		return Value{}, rtErrf("float modulo")
	}
	r := math.Mod(af, bf)
	if r != 0 && ((r < 0) != (bf < 0)) {
		r += bf
	}
	return FloatVal(r), nil
}

func opPow(a, b Value) (Value, error) {
	af, ai, aInt, aok := numericValue(a)
	bf, bi, bInt, bok := numericValue(b)
	if !aok || !bok {
		return Value{}, binopTypeErr("** or pow()", a, b)
	}
	if aInt && bInt && bi >= 0 {
		result := int64(1)
		base := ai
		for e := bi; e > 0; e >>= 1 {
			var ok bool
			if e&1 == 1 {
				result, ok = mulInt64(result, base)
				if !ok {
					return Value{}, rtErrf("int too large to represent")
				}
			}
			if e > 1 {
				base, ok = mulInt64(base, base)
				if !ok {
					return Value{}, rtErrf("int too large to represent")
				}
			}
		}
		return IntVal(result), nil
	}
	if af == 0 && bf < 0 {
		return Value{}, rtErrf("0.0 cannot be raised to a negative power")
	}
	return FloatVal(math.Pow(af, bf)), nil
}

// orderValues implements "<", "<=", ">", ">=". Sequences compare
// lexicographically; the first unequal element decides with the strict
// form of the operator, ties fall through to length.
func orderValues(op string, a, b Value) (bool, error) {
	if af, ai, aInt, aok := numericValue(a); aok {
		bf, bi, bInt, bok := numericValue(b)
		if !bok {
			return false, orderTypeErr(op, a, b)
		}
		if aInt && bInt {
			return orderInts(op, ai, bi), nil
		}
		// float comparisons: NaN makes all of these false
		switch op {
		case "<":
			return af < bf, nil
		case "<=":
			return af <= bf, nil
		case ">":
			return af > bf, nil
		default:
			return af >= bf, nil
		}
	}
	if a.Tag == VTStr && b.Tag == VTStr {
		c := strings.Compare(a.Data.(string), b.Data.(string))
		return orderInts(op, int64(c), 0), nil
	}
	if (a.Tag == VTList && b.Tag == VTList) || (a.Tag == VTTuple && b.Tag == VTTuple) {
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		n := len(ax)
		if len(bx) < n {
			n = len(bx)
		}
		for i := 0; i < n; i++ {
			if !valuesEqual(ax[i], bx[i]) {
				return orderValues(strictOp(op), ax[i], bx[i])
			}
		}
		return orderInts(op, int64(len(ax)), int64(len(bx))), nil
	}
	return false, orderTypeErr(op, a, b)
}

func strictOp(op string) string {
	switch op {
	case "<=":
		return "<"
	case ">=":
		return ">"
	default:
		return op
	}
}

func orderInts(op string, a, b int64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func orderTypeErr(op string, a, b Value) error {
	return rtErrf("'%s' not supported between instances of '%s' and '%s'", op, a.TypeName(), b.TypeName())
}

// membership implements "item in container".
func membership(item, container Value) (bool, error) {
	switch container.Tag {
	case VTStr:
		if item.Tag != VTStr {
			return false, rtErrf("'in <string>' requires string as left operand, not '%s'", item.TypeName())
		}
		return strings.Contains(container.Data.(string), item.Data.(string)), nil
	case VTList, VTTuple:
		for _, v := range container.Data.([]Value) {
			if valuesEqual(item, v) {
				return true, nil
			}
		}
		return false, nil
	case VTSet:
		ok, err := container.Data.(*SetObject).Has(item)
		if err != nil {
			return false, &RuntimeError{Msg: err.Error()}
		}
		return ok, nil
	case VTDict:
		_, ok, err := container.Data.(*DictObject).Get(item)
		if err != nil {
			return false, &RuntimeError{Msg: err.Error()}
		}
		return ok, nil
	default:
		return false, rtErrf("argument of type '%s' is not iterable", container.TypeName())
	}
}

func evalIndex(obj, idx Value) (Value, error) {
	switch obj.Tag {
	case VTList, VTTuple:
		xs := obj.Data.([]Value)
		i, err := seqIndex(obj, idx, len(xs))
		if err != nil {
			return Value{}, err
		}
		return xs[i], nil
	case VTStr:
		runes := []rune(obj.Data.(string))
		i, err := seqIndex(obj, idx, len(runes))
		if err != nil {
			return Value{}, err
		}
		return StrVal(string(runes[i])), nil
	case VTDict:
		v, ok, err := obj.Data.(*DictObject).Get(idx)
		if err != nil {
			return Value{}, &RuntimeError{Msg: err.Error()}
		}
		if !ok {
			return Value{}, rtErrf("KeyError: %s", Repr(idx))
		}
		return v, nil
	default:
		return Value{}, rtErrf("'%s' object is not subscriptable", obj.TypeName())
	}
}

func seqIndex(obj, idx Value, length int) (int, error) {
	n, ok := intOperand(idx)
	if !ok {
		return 0, rtErrf("%s indices must be integers, not '%s'", strings.ToLower(obj.TypeName()), idx.TypeName())
	}
	if n < 0 {
		n += int64(length)
	}
	if n < 0 || n >= int64(length) {
		return 0, rtErrf("%s index out of range", strings.ToLower(obj.TypeName()))
	}
	return int(n), nil
}
