// tag_test.go
package pyeval

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeJSON evaluates src and marshals the resulting tagged document.
func encodeJSON(t *testing.T, src string, opts Options) string {
	t.Helper()
	v, err := NewInterp().EvalSource(src)
	require.NoError(t, err, "source: %s", src)
	doc, err := EncodeWithOptions(v, opts)
	require.NoError(t, err, "source: %s", src)
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(b)
}

func Test_Encode_Scalars(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1", `{"int":1}`},
		{"-3", `{"int":-3}`},
		{"1.5", `{"float":1.5}`},
		{"1.0", `{"float":1}`},
		{"True", `{"bool":true}`},
		{"False", `{"bool":false}`},
		{"'a'", `{"str":"a"}`},
		{"''", `{"str":""}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, encodeJSON(t, c.src, Options{}), "source: %s", c.src)
	}
}

func Test_Encode_TypeIdentitySurvives(t *testing.T) {
	// 1, 1.0 and True are equal at runtime but must encode distinctly.
	assert.NotEqual(t, encodeJSON(t, "1", Options{}), encodeJSON(t, "1.0", Options{}))
	assert.NotEqual(t, encodeJSON(t, "1", Options{}), encodeJSON(t, "True", Options{}))

	// [1, 2] and (1, 2) likewise.
	assert.Equal(t, `{"list":[{"int":1},{"int":2}]}`, encodeJSON(t, "[1, 2]", Options{}))
	assert.Equal(t, `{"tuple":[{"int":1},{"int":2}]}`, encodeJSON(t, "(1, 2)", Options{}))
}

func Test_Encode_NonFiniteSentinels(t *testing.T) {
	assert.Equal(t, `{"float":"NaN"}`, encodeJSON(t, "float('nan')", Options{}))
	assert.Equal(t, `{"float":"inf"}`, encodeJSON(t, "float('inf')", Options{}))
	assert.Equal(t, `{"float":"-inf"}`, encodeJSON(t, "-float('inf')", Options{}))

	// the literal string "NaN" is a str document, not a float one
	assert.Equal(t, `{"str":"NaN"}`, encodeJSON(t, "'NaN'", Options{}))
}

func Test_Encode_Containers(t *testing.T) {
	assert.Equal(t, `{"list":[]}`, encodeJSON(t, "[]", Options{}))
	assert.Equal(t, `{"tuple":[]}`, encodeJSON(t, "()", Options{}))
	assert.Equal(t, `{"tuple":[{"int":1}]}`, encodeJSON(t, "(1,)", Options{}))
	assert.Equal(t, `{"dict":[]}`, encodeJSON(t, "{}", Options{}))
	assert.Equal(t, `{"set":[{"int":1},{"int":2}]}`, encodeJSON(t, "{1, 2}", Options{}))

	// nesting
	assert.Equal(t,
		`{"list":[{"tuple":[{"int":1},{"str":"a"}]},{"set":[{"bool":true}]}]}`,
		encodeJSON(t, "[(1, 'a'), {True}]", Options{}))
}

func Test_Encode_DictPairsAreDocuments(t *testing.T) {
	// keys are full documents, so non-string keys survive
	assert.Equal(t,
		`{"dict":[[{"int":1},{"str":"a"}]]}`,
		encodeJSON(t, "{1: 'a'}", Options{}))
	assert.Equal(t,
		`{"dict":[[{"tuple":[{"int":1},{"int":2}]},{"str":"x"}]]}`,
		encodeJSON(t, "{(1, 2): 'x'}", Options{}))

	// insertion order preserved
	assert.Equal(t,
		`{"dict":[[{"str":"b"},{"int":1}],[{"str":"a"},{"int":2}]]}`,
		encodeJSON(t, "{'b': 1, 'a': 2}", Options{}))
}

func Test_Encode_UnsupportedTypes(t *testing.T) {
	for src, typeName := range map[string]string{
		"None":         "None",
		"len":          "Callable",
		"[None]":       "None",
		"{1: len}":     "Callable",
		"(1, (None,))": "None",
	} {
		v, err := NewInterp().EvalSource(src)
		require.NoError(t, err, "source: %s", src)
		_, err = Encode(v)
		require.Error(t, err, "source: %s", src)
		var ute *UnsupportedTypeError
		require.ErrorAs(t, err, &ute, "source: %s", src)
		assert.Equal(t, typeName, ute.TypeName)
		assert.Equal(t, "tag: unhandled type: "+typeName, err.Error())
	}
}

func Test_Encode_MaxDepth(t *testing.T) {
	// scalars sit at depth 1
	_, err := EncodeWithOptions(IntVal(1), Options{MaxDepth: 1})
	assert.NoError(t, err)

	// [[1]] needs depth 3
	v, err := NewInterp().EvalSource("[[1]]")
	require.NoError(t, err)
	_, err = EncodeWithOptions(v, Options{MaxDepth: 3})
	assert.NoError(t, err)
	_, err = EncodeWithOptions(v, Options{MaxDepth: 2})
	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Limit)

	// zero means unbounded
	_, err = EncodeWithOptions(v, Options{})
	assert.NoError(t, err)
}

func Test_Encode_SortSets(t *testing.T) {
	// insertion order by default
	assert.Equal(t, `{"set":[{"int":3},{"int":1},{"int":2}]}`,
		encodeJSON(t, "{3, 1, 2}", Options{}))

	// sorted by encoded form when asked
	assert.Equal(t, `{"set":[{"int":1},{"int":2},{"int":3}]}`,
		encodeJSON(t, "{3, 1, 2}", Options{SortSets: true}))

	// mixed kinds sort too, deterministically
	got := encodeJSON(t, "{True, 2, 'a'}", Options{SortSets: true})
	assert.Equal(t, `{"set":[{"bool":true},{"int":2},{"str":"a"}]}`, got)
}

func Test_Encode_Idempotent(t *testing.T) {
	v, err := NewInterp().EvalSource("{'k': [1, (2.5, {True})]}")
	require.NoError(t, err)
	a := func() string {
		doc, err := Encode(v)
		require.NoError(t, err)
		b, err := json.Marshal(doc)
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, a(), a(), "encoding the same value twice must agree")
}

func Test_Encode_FloatPayloadStaysNumeric(t *testing.T) {
	doc, err := Encode(FloatVal(math.MaxFloat64))
	require.NoError(t, err)
	payload := doc.(map[string]any)["float"]
	_, isFloat := payload.(float64)
	assert.True(t, isFloat, "finite floats keep a numeric payload")
}
