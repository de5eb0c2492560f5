package ldgraph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		kind  ValueKind
		value interface{}
	}{
		{name: "string", in: "hello", kind: ValueString, value: "hello"},
		{name: "bool", in: true, kind: ValueBool, value: true},
		{name: "int", in: 42, kind: ValueNumber, value: float64(42)},
		{name: "uint8", in: uint8(7), kind: ValueNumber, value: float64(7)},
		{name: "float32", in: float32(1.5), kind: ValueNumber, value: float64(1.5)},
		{name: "json number", in: json.Number("3.25"), kind: ValueNumber, value: 3.25},
		{name: "map", in: map[string]interface{}{"b": 1, "a": "x"}, kind: ValueJSON,
			value: map[string]interface{}{"a": "x", "b": json.Number("1")}},
		{name: "slice", in: []int{1, 2}, kind: ValueJSON, value: []interface{}{json.Number("1"), json.Number("2")}},
		{name: "raw message", in: json.RawMessage(`{"k": [true]}`), kind: ValueJSON,
			value: map[string]interface{}{"k": []interface{}{true}}},
		{name: "attribute value", in: LangString("chat", "fr"), kind: ValueString, value: "chat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.kind, got.Kind())
			require.Equal(t, tt.value, got.Value())
		})
	}
}

func TestValueOfRejects(t *testing.T) {
	for _, in := range []interface{}{nil, math.NaN(), math.Inf(1), AttributeValue{}, make(chan int)} {
		_, err := ValueOf(in)
		require.ErrorIs(t, err, ErrInvalidArgument, "ValueOf(%T)", in)
	}
}

func TestAttributeValueEqual(t *testing.T) {
	a, err := JSON(map[string]interface{}{"x": 1, "y": []string{"p", "q"}})
	require.NoError(t, err)
	b, err := JSON(json.RawMessage(`{ "y": ["p","q"], "x": 1.0 }`))
	require.NoError(t, err)
	require.True(t, a.Equal(b), "payloads differing only in key order and spacing")

	raw, ok := a.RawJSON()
	require.True(t, ok)
	require.JSONEq(t, `{"x":1,"y":["p","q"]}`, string(raw))

	require.True(t, String("a").Equal(String("a")))
	require.False(t, String("a").Equal(LangString("a", "en")))
	require.False(t, String("1").Equal(Number(1)))
	require.True(t, Number(2).Equal(Number(2)))
}

func TestAttributeValueWithLanguage(t *testing.T) {
	v, err := String("colour").WithLanguage("en-GB")
	require.NoError(t, err)
	require.Equal(t, "en-GB", v.Language())
	require.Equal(t, `"colour"@en-GB`, v.String())

	_, err = Number(3).WithLanguage("en")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAttributeValueExpandedForm(t *testing.T) {
	tests := []struct {
		name  string
		value AttributeValue
		want  map[string]interface{}
	}{
		{
			name:  "plain string",
			value: String("x"),
			want:  map[string]interface{}{"@value": "x"},
		},
		{
			name:  "language string",
			value: LangString("x", "en"),
			want:  map[string]interface{}{"@value": "x", "@language": "en"},
		},
		{
			name:  "json payload",
			value: mustJSON(t, []interface{}{"a", 1}),
			want:  map[string]interface{}{"@value": []interface{}{"a", json.Number("1")}, "@type": "@json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.value.expanded()
			require.Equal(t, tt.want, got)

			back, err := valueFromExpanded(got)
			require.NoError(t, err)
			require.True(t, tt.value.Equal(back), "got %s, want %s", back, tt.value)
		})
	}
}

func TestJSONKeepsLargeIntegers(t *testing.T) {
	v, err := JSON(json.RawMessage(`{"n":12345678901234567890}`))
	require.NoError(t, err)

	raw, ok := v.RawJSON()
	require.True(t, ok)
	require.Equal(t, `{"n":12345678901234567890}`, string(raw))
	require.Equal(t, map[string]interface{}{"n": json.Number("12345678901234567890")}, v.Value())

	again, err := JSON(v.Value())
	require.NoError(t, err)
	require.True(t, v.Equal(again))

	f, err := JSON(json.RawMessage(`[1e2, 2.50]`))
	require.NoError(t, err)
	raw, _ = f.RawJSON()
	require.Equal(t, `[100,2.5]`, string(raw))

	_, err = JSON(json.RawMessage(`{"n":1} {"m":2}`))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = JSON(json.RawMessage(`1e400`))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestValueFromExpandedNullJSON(t *testing.T) {
	v, err := valueFromExpanded(map[string]interface{}{"@value": nil, "@type": "@json"})
	require.NoError(t, err)
	require.Equal(t, ValueJSON, v.Kind())
	raw, ok := v.RawJSON()
	require.True(t, ok)
	require.Equal(t, "null", string(raw))
	require.Nil(t, v.Value())
}

func TestValueFromExpandedRejects(t *testing.T) {
	for _, obj := range []map[string]interface{}{
		{},
		{"@value": nil},
		{"@value": map[string]interface{}{"a": 1}},
	} {
		_, err := valueFromExpanded(obj)
		require.Error(t, err, "%v", obj)
	}
}

func mustJSON(t *testing.T, payload interface{}) AttributeValue {
	t.Helper()
	v, err := JSON(payload)
	require.NoError(t, err)
	return v
}
