// value.go — the runtime value model.
//
// Values form a closed tagged union constructed by the evaluator. The tag
// determines which Go type lives in Data (see ValueTag). Containers preserve
// insertion order: DictObject and SetObject keep an ordered backing slice
// plus a hash-key index, so iteration order is the order of evaluation.
//
// Key hashing follows Python semantics: bool/int/float values that compare
// equal are the same dict key (True, 1 and 1.0 collide), tuples of hashable
// values are hashable, and list/set/dict keys are a runtime error.
package pyeval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold.
type ValueTag int

const (
	VTNone    ValueTag = iota // None (no payload)
	VTBool                    // bool
	VTInt                     // int64
	VTFloat                   // float64
	VTStr                     // string
	VTList                    // []Value
	VTTuple                   // []Value
	VTSet                     // *SetObject
	VTDict                    // *DictObject
	VTBuiltin                 // *Builtin (callable host function)
)

// Value is the universal runtime carrier. The tagged encoder supports the
// eight kinds bool..dict; VTNone and VTBuiltin evaluate fine but are not
// encodable and fail loudly at tagging time.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// None is the singleton None value.
var None = Value{Tag: VTNone}

// Primitive and container constructors.
func BoolVal(b bool) Value        { return Value{Tag: VTBool, Data: b} }
func IntVal(n int64) Value        { return Value{Tag: VTInt, Data: n} }
func FloatVal(f float64) Value    { return Value{Tag: VTFloat, Data: f} }
func StrVal(s string) Value       { return Value{Tag: VTStr, Data: s} }
func ListVal(xs []Value) Value    { return Value{Tag: VTList, Data: xs} }
func TupleVal(xs []Value) Value   { return Value{Tag: VTTuple, Data: xs} }
func SetVal(s *SetObject) Value   { return Value{Tag: VTSet, Data: s} }
func DictVal(d *DictObject) Value { return Value{Tag: VTDict, Data: d} }
func BuiltinVal(b *Builtin) Value { return Value{Tag: VTBuiltin, Data: b} }

// TypeName reports the user-facing name of the value's kind.
func (v Value) TypeName() string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		return "Bool"
	case VTInt:
		return "Int"
	case VTFloat:
		return "Float"
	case VTStr:
		return "Str"
	case VTList:
		return "List"
	case VTTuple:
		return "Tuple"
	case VTSet:
		return "Set"
	case VTDict:
		return "Dict"
	case VTBuiltin:
		return "Callable"
	default:
		return "Unknown"
	}
}

// String renders a short debug representation. Use Repr for the full
// Python-style rendering.
func (v Value) String() string {
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
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTList:
		return fmt.Sprintf("<list len=%d>", len(v.Data.([]Value)))
	case VTTuple:
		return fmt.Sprintf("<tuple len=%d>", len(v.Data.([]Value)))
	case VTSet:
		return fmt.Sprintf("<set len=%d>", v.Data.(*SetObject).Len())
	case VTDict:
		return fmt.Sprintf("<dict len=%d>", v.Data.(*DictObject).Len())
	case VTBuiltin:
		return fmt.Sprintf("<builtin %s>", v.Data.(*Builtin).Name)
	default:
		return "<unknown>"
	}
}

// DictEntry is one key/value pair of a DictObject.
type DictEntry struct {
	Key Value
	Val Value
}

// DictObject is an insertion-ordered mapping with arbitrary hashable keys.
// Re-assigning an existing key keeps the original key and position and only
// replaces the value, as Python dicts do.
type DictObject struct {
	entries []DictEntry
	index   map[string]int
}

// NewDict returns an empty dict.
func NewDict() *DictObject {
	return &DictObject{index: map[string]int{}}
}

// Set inserts or updates key. Fails if key is unhashable.
func (d *DictObject) Set(key, val Value) error {
	hk, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[hk]; ok {
		d.entries[i].Val = val
		return nil
	}
	d.index[hk] = len(d.entries)
	d.entries = append(d.entries, DictEntry{Key: key, Val: val})
	return nil
}

// Get looks up key. The error is non-nil only for unhashable keys.
func (d *DictObject) Get(key Value) (Value, bool, error) {
	hk, err := hashKey(key)
	if err != nil {
		return Value{}, false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return Value{}, false, nil
	}
	return d.entries[i].Val, true, nil
}

// Len reports the number of entries.
func (d *DictObject) Len() int { return len(d.entries) }

// Entries returns the pairs in insertion order. The slice is shared; do not
// mutate it.
func (d *DictObject) Entries() []DictEntry { return d.entries }

// SetObject is an insertion-ordered set deduplicating via the same hash-key
// scheme as dict keys.
type SetObject struct {
	items []Value
	index map[string]int
}

// NewSet returns an empty set.
func NewSet() *SetObject {
	return &SetObject{index: map[string]int{}}
}

// Add inserts v if an equal item is not already present. Fails for
// unhashable items.
func (s *SetObject) Add(v Value) error {
	hk, err := hashKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.index[hk]; ok {
		return nil
	}
	s.index[hk] = len(s.items)
	s.items = append(s.items, v)
	return nil
}

// Has reports membership. The error is non-nil only for unhashable items.
func (s *SetObject) Has(v Value) (bool, error) {
	hk, err := hashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[hk]
	return ok, nil
}

// Len reports the number of items.
func (s *SetObject) Len() int { return len(s.items) }

// Items returns the items in insertion order. The slice is shared; do not
// mutate it.
func (s *SetObject) Items() []Value { return s.items }

// hashKey canonicalizes a hashable value to a string key. Numeric values
// that compare equal map to the same key: True and 1 and 1.0 all canonicalize
// to "i:1". Non-integral floats key on their bit pattern, so equal NaNs
// collapse and -0.0 keys like 0.
func hashKey(v Value) (string, error) {
	switch v.Tag {
	case VTNone:
		return "N", nil
	case VTBool:
		if v.Data.(bool) {
			return "i:1", nil
		}
		return "i:0", nil
	case VTInt:
		return "i:" + strconv.FormatInt(v.Data.(int64), 10), nil
	case VTFloat:
		f := v.Data.(float64)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f <= math.MaxInt64 {
			return "i:" + strconv.FormatInt(int64(f), 10), nil
		}
		return "f:" + strconv.FormatUint(math.Float64bits(f), 16), nil
	case VTStr:
		return "s:" + v.Data.(string), nil
	case VTTuple:
		xs := v.Data.([]Value)
		parts := make([]string, 0, len(xs))
		for _, x := range xs {
			hk, err := hashKey(x)
			if err != nil {
				return "", err
			}
			parts = append(parts, hk)
		}
		return "t:(" + strings.Join(parts, ",") + ")", nil
	default:
		return "", fmt.Errorf("unhashable type: '%s'", v.TypeName())
	}
}

// numericValue extracts a value of the numeric group (bool/int/float) as a
// float64 plus an exact int64 when the value is integral.
func numericValue(v Value) (f float64, i int64, isInt bool, ok bool) {
	switch v.Tag {
	case VTBool:
		if v.Data.(bool) {
			return 1, 1, true, true
		}
		return 0, 0, true, true
	case VTInt:
		n := v.Data.(int64)
		return float64(n), n, true, true
	case VTFloat:
		return v.Data.(float64), 0, false, true
	default:
		return 0, 0, false, false
	}
}

// valuesEqual implements Python equality: cross-type numeric equality,
// elementwise sequences (list and tuple never equal each other), unordered
// set and dict equality. Builtins compare by identity.
func valuesEqual(a, b Value) bool {
	if af, ai, aInt, aok := numericValue(a); aok {
		if bf, bi, bInt, bok := numericValue(b); bok {
			if aInt && bInt {
				return ai == bi
			}
			return af == bf
		}
		return false
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNone:
		return true
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTList, VTTuple:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !valuesEqual(ax[i], bx[i]) {
				return false
			}
		}
		return true
	case VTSet:
		as := a.Data.(*SetObject)
		bs := b.Data.(*SetObject)
		if as.Len() != bs.Len() {
			return false
		}
		for _, item := range as.Items() {
			ok, err := bs.Has(item)
			if err != nil || !ok {
				return false
			}
		}
		return true
	case VTDict:
		ad := a.Data.(*DictObject)
		bd := b.Data.(*DictObject)
		if ad.Len() != bd.Len() {
			return false
		}
		for _, e := range ad.Entries() {
			bv, ok, err := bd.Get(e.Key)
			if err != nil || !ok || !valuesEqual(e.Val, bv) {
				return false
			}
		}
		return true
	case VTBuiltin:
		return a.Data == b.Data
	default:
		return false
	}
}

// Truthy implements Python truthiness: empty containers, zero numbers, the
// empty string and None are false; everything else (including NaN) is true.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNone:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTFloat:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTList, VTTuple:
		return len(v.Data.([]Value)) > 0
	case VTSet:
		return v.Data.(*SetObject).Len() > 0
	case VTDict:
		return v.Data.(*DictObject).Len() > 0
	default:
		return true
	}
}
