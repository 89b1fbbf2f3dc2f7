// tag.go — the tagged encoder.
//
// Encode turns a runtime Value into a JSON-safe document that preserves the
// value's type identity. Every document is a single-key map naming the kind:
//
//	{"int": 1}  {"float": 1.5}  {"bool": true}  {"str": "a"}
//	{"list": [ ... ]}  {"set": [ ... ]}  {"tuple": [ ... ]}
//	{"dict": [[keyDoc, valDoc], ...]}
//
// so 1, 1.0 and True stay distinguishable after encoding, as do [1, 2] and
// (1, 2). Dict keys may be of any kind and are encoded as full documents.
//
// Non-finite floats cannot be represented in JSON numerics; their payload
// becomes one of the sentinel strings "NaN", "inf", "-inf" while the float
// tag stays in place. This substitution happens here and nowhere else.
//
// Encoding is total over the eight supported kinds and fails loudly for
// anything else (None, callables): there is no silent coercion, and no
// partial document escapes on failure.
package pyeval

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Options controls encoding.
type Options struct {
	// MaxDepth bounds the nesting depth of encoded containers; 0 means
	// unbounded. The root is depth 1.
	MaxDepth int
	// SortSets orders set payloads by their encoded JSON form instead of
	// insertion order, for output that is stable across runs.
	SortSets bool
}

// UnsupportedTypeError reports a value kind outside the encodable set.
type UnsupportedTypeError struct {
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return "tag: unhandled type: " + e.TypeName
}

// DepthError reports input nested deeper than Options.MaxDepth.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("tag: maximum nesting depth exceeded (%d)", e.Limit)
}

// Encode encodes v with default options (unbounded depth, insertion-ordered
// sets).
func Encode(v Value) (any, error) {
	return EncodeWithOptions(v, Options{})
}

// EncodeWithOptions encodes v into a tagged document. The result marshals
// with encoding/json to the wire form above.
func EncodeWithOptions(v Value, opts Options) (any, error) {
	return encode(v, opts, 1)
}

func encode(v Value, opts Options, depth int) (any, error) {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return nil, &DepthError{Limit: opts.MaxDepth}
	}
	switch v.Tag {
	case VTBool:
		return map[string]any{"bool": v.Data.(bool)}, nil

	case VTInt:
		return map[string]any{"int": v.Data.(int64)}, nil

	case VTFloat:
		f := v.Data.(float64)
		var payload any = f
		switch {
		case math.IsNaN(f):
			payload = "NaN"
		case math.IsInf(f, 1):
			payload = "inf"
		case math.IsInf(f, -1):
			payload = "-inf"
		}
		return map[string]any{"float": payload}, nil

	case VTStr:
		return map[string]any{"str": v.Data.(string)}, nil

	case VTList:
		docs, err := encodeAll(v.Data.([]Value), opts, depth+1)
		if err != nil {
			return nil, err
		}
		return map[string]any{"list": docs}, nil

	case VTTuple:
		docs, err := encodeAll(v.Data.([]Value), opts, depth+1)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tuple": docs}, nil

	case VTSet:
		docs, err := encodeAll(v.Data.(*SetObject).Items(), opts, depth+1)
		if err != nil {
			return nil, err
		}
		if opts.SortSets {
			if err := sortByEncoding(docs); err != nil {
				return nil, err
			}
		}
		return map[string]any{"set": docs}, nil

	case VTDict:
		entries := v.Data.(*DictObject).Entries()
		pairs := make([]any, 0, len(entries))
		for _, e := range entries {
			kd, err := encode(e.Key, opts, depth+1)
			if err != nil {
				return nil, err
			}
			vd, err := encode(e.Val, opts, depth+1)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, []any{kd, vd})
		}
		return map[string]any{"dict": pairs}, nil

	default:
		return nil, &UnsupportedTypeError{TypeName: v.TypeName()}
	}
}

func encodeAll(xs []Value, opts Options, depth int) ([]any, error) {
	docs := make([]any, 0, len(xs))
	for _, x := range xs {
		d, err := encode(x, opts, depth)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// sortByEncoding orders documents by their marshaled JSON form.
func sortByEncoding(docs []any) error {
	type keyed struct {
		key string
		doc any
	}
	pairs := make([]keyed, len(docs))
	for i, d := range docs {
		b, err := json.Marshal(d)
		if err != nil {
			return err
		}
		pairs[i] = keyed{key: string(b), doc: d}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	for i, p := range pairs {
		docs[i] = p.doc
	}
	return nil
}
