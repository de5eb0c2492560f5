package ldgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ValueKind identifies attribute value types.
type ValueKind uint8

const (
	// ValueString is a string scalar, optionally language-tagged.
	ValueString ValueKind = iota + 1
	// ValueNumber is a numeric scalar.
	ValueNumber
	// ValueBool is a boolean scalar.
	ValueBool
	// ValueJSON is an opaque JSON payload (JSON-LD @json).
	ValueJSON
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "boolean"
	case ValueJSON:
		return "json"
	default:
		return "invalid"
	}
}

// AttributeValue is one value of a vertex attribute.
type AttributeValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	// raw holds the compact JSON encoding of a ValueJSON payload.
	raw      json.RawMessage
	language string
}

// String returns a string attribute value.
func String(s string) AttributeValue {
	return AttributeValue{kind: ValueString, str: s}
}

// LangString returns a language-tagged string attribute value.
func LangString(s, language string) AttributeValue {
	return AttributeValue{kind: ValueString, str: s, language: language}
}

// Number returns a numeric attribute value.
func Number(n float64) AttributeValue {
	return AttributeValue{kind: ValueNumber, num: n}
}

// Bool returns a boolean attribute value.
func Bool(b bool) AttributeValue {
	return AttributeValue{kind: ValueBool, b: b}
}

// JSON returns a JSON payload attribute value. Payloads that cannot be
// encoded are rejected.
func JSON(payload interface{}) (AttributeValue, error) {
	if payload == nil {
		return AttributeValue{}, invalidArgument("JSON payload is nil")
	}
	encoded, ok := payload.(json.RawMessage)
	if !ok {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return AttributeValue{}, invalidArgument("JSON payload: %v", err)
		}
	}
	// Re-encode the decoded form so that equal payloads share one encoding.
	decoded, err := decodePayload(encoded)
	if err != nil {
		return AttributeValue{}, invalidArgument("JSON payload: %v", err)
	}
	if decoded, err = canonicalNumbers(decoded); err != nil {
		return AttributeValue{}, invalidArgument("JSON payload: %v", err)
	}
	raw, err := json.Marshal(decoded)
	if err != nil {
		return AttributeValue{}, invalidArgument("JSON payload: %v", err)
	}
	return AttributeValue{kind: ValueJSON, raw: raw}, nil
}

// decodePayload decodes a single JSON value, keeping numbers as json.Number
// so integers beyond float64 precision survive.
func decodePayload(encoded []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(encoded))
	dec.UseNumber()
	var decoded interface{}
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return decoded, nil
}

// canonicalNumbers rewrites the numbers of a decoded payload so that equal
// numbers share one encoding. Integer literals keep every digit; other
// numbers take their shortest float64 form.
func canonicalNumbers(v interface{}) (interface{}, error) {
	switch value := v.(type) {
	case json.Number:
		if isIntegerLiteral(value.String()) {
			return value, nil
		}
		f, err := value.Float64()
		if err != nil || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %s is out of range", value)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	case map[string]interface{}:
		for k, item := range value {
			n, err := canonicalNumbers(item)
			if err != nil {
				return nil, err
			}
			value[k] = n
		}
	case []interface{}:
		for i, item := range value {
			n, err := canonicalNumbers(item)
			if err != nil {
				return nil, err
			}
			value[i] = n
		}
	}
	return v, nil
}

func isIntegerLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValueOf converts a Go value into an AttributeValue.
//
// Strings, booleans and all numeric kinds map to scalars; an AttributeValue
// is returned unchanged; maps, slices, structs and json.RawMessage become
// JSON payloads.
func ValueOf(v interface{}) (AttributeValue, error) {
	switch value := v.(type) {
	case nil:
		return AttributeValue{}, invalidArgument("value is nil")
	case AttributeValue:
		if value.kind == 0 {
			return AttributeValue{}, invalidArgument("value is empty")
		}
		return value, nil
	case *AttributeValue:
		if value == nil || value.kind == 0 {
			return AttributeValue{}, invalidArgument("value is empty")
		}
		return *value, nil
	case string:
		return String(value), nil
	case bool:
		return Bool(value), nil
	case float64:
		return number(value)
	case float32:
		return number(float64(value))
	case int:
		return Number(float64(value)), nil
	case int8:
		return Number(float64(value)), nil
	case int16:
		return Number(float64(value)), nil
	case int32:
		return Number(float64(value)), nil
	case int64:
		return Number(float64(value)), nil
	case uint:
		return Number(float64(value)), nil
	case uint8:
		return Number(float64(value)), nil
	case uint16:
		return Number(float64(value)), nil
	case uint32:
		return Number(float64(value)), nil
	case uint64:
		return Number(float64(value)), nil
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return AttributeValue{}, invalidArgument("number %q: %v", value.String(), err)
		}
		return number(f)
	case json.RawMessage:
		return JSON(value)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
		return JSON(v)
	}
	return AttributeValue{}, invalidArgument("unsupported value type %T", v)
}

func number(f float64) (AttributeValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return AttributeValue{}, invalidArgument("number %v is not representable in JSON", f)
	}
	return Number(f), nil
}

// Kind returns the value type.
func (v AttributeValue) Kind() ValueKind { return v.kind }

// Language returns the language tag, or "" for untagged values.
func (v AttributeValue) Language() string { return v.language }

// IsZero reports whether v holds no value.
func (v AttributeValue) IsZero() bool { return v.kind == 0 }

// WithLanguage returns a copy of a string value tagged with language.
func (v AttributeValue) WithLanguage(language string) (AttributeValue, error) {
	if language != "" && v.kind != ValueString {
		return AttributeValue{}, invalidArgument("language %q requires a string value, got %s", language, v.kind)
	}
	v.language = language
	return v, nil
}

// Value returns the Go representation of the value: string, float64, bool,
// or the decoded JSON payload. Numbers inside a payload are json.Number.
func (v AttributeValue) Value() interface{} {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueBool:
		return v.b
	case ValueJSON:
		decoded, err := decodePayload(v.raw)
		if err != nil {
			return nil
		}
		return decoded
	}
	return nil
}

// Str returns the string value and whether v is a string.
func (v AttributeValue) Str() (string, bool) { return v.str, v.kind == ValueString }

// Float returns the numeric value and whether v is a number.
func (v AttributeValue) Float() (float64, bool) { return v.num, v.kind == ValueNumber }

// Boolean returns the boolean value and whether v is a boolean.
func (v AttributeValue) Boolean() (bool, bool) { return v.b, v.kind == ValueBool }

// RawJSON returns the encoded payload and whether v is a JSON payload.
func (v AttributeValue) RawJSON() (json.RawMessage, bool) {
	if v.kind != ValueJSON {
		return nil, false
	}
	return append(json.RawMessage(nil), v.raw...), true
}

// Equal reports whether v and other hold the same value and language.
// JSON payloads compare by their encoding, which orders object keys.
func (v AttributeValue) Equal(other AttributeValue) bool {
	return v.language == other.language && v.sameValue(other)
}

// sameValue compares values ignoring the language tag.
func (v AttributeValue) sameValue(other AttributeValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == other.str
	case ValueNumber:
		return v.num == other.num
	case ValueBool:
		return v.b == other.b
	case ValueJSON:
		return bytes.Equal(v.raw, other.raw)
	}
	return true
}

func (v AttributeValue) String() string {
	switch v.kind {
	case ValueString:
		if v.language != "" {
			return strconv.Quote(v.str) + "@" + v.language
		}
		return strconv.Quote(v.str)
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueJSON:
		return string(v.raw) + "^^@json"
	}
	return "<invalid>"
}

// expanded returns the JSON-LD value object for v.
func (v AttributeValue) expanded() map[string]interface{} {
	obj := map[string]interface{}{"@value": v.Value()}
	if v.kind == ValueJSON {
		obj["@type"] = "@json"
	}
	if v.language != "" {
		obj["@language"] = v.language
	}
	return obj
}

// valueFromExpanded builds an AttributeValue from an expanded JSON-LD value object.
func valueFromExpanded(obj map[string]interface{}) (AttributeValue, error) {
	raw, ok := obj["@value"]
	if !ok {
		return AttributeValue{}, fmt.Errorf("value object without @value")
	}
	if typ, ok := obj["@type"].(string); ok && typ == "@json" {
		if raw == nil {
			return AttributeValue{kind: ValueJSON, raw: json.RawMessage("null")}, nil
		}
		return JSON(raw)
	}
	if raw == nil {
		return AttributeValue{}, fmt.Errorf("value object with null @value")
	}
	value, err := ValueOf(raw)
	if err != nil {
		return AttributeValue{}, err
	}
	if value.kind == ValueJSON {
		return AttributeValue{}, fmt.Errorf("value object with non-scalar @value of type %T", raw)
	}
	if lang, ok := obj["@language"].(string); ok && lang != "" {
		return value.WithLanguage(lang)
	}
	return value, nil
}
