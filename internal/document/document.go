// Package document provides a read-only view over semi-structured resume and
// job documents. Documents come from AI output and user files, so every
// accessor degrades to an empty value instead of failing on missing or
// mistyped fields.
package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/pelletier/go-toml/v2"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a node of a document tree. The zero Value is null.
//
// The underlying tree only ever holds map[string]any, []any, string, float64,
// bool and nil. A Value is never mutated after construction.
type Value struct {
	raw any
}

// Null is the null value.
var Null = Value{}

// New builds a Value from a decoded tree. The input is copied and normalized,
// so later changes to raw are not observed by the returned Value.
func New(raw any) Value {
	return Value{raw: normalize(raw)}
}

// Parse decodes a JSON document.
func Parse(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Null, fmt.Errorf("decode json document: %w", err)
	}
	return Value{raw: normalize(raw)}, nil
}

// ParseTOML decodes a TOML document.
func ParseTOML(data []byte) (Value, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Null, fmt.Errorf("decode toml document: %w", err)
	}
	return Value{raw: normalize(raw)}, nil
}

// Load reads a document from disk. Files with a .toml extension are decoded as
// TOML, everything else as JSON.
func Load(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null, fmt.Errorf("read document %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Kind reports the tag of the value.
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case bool:
		return KindBool
	case float64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindNull
	}
}

// IsNull reports whether the value is absent or null.
func (v Value) IsNull() bool { return v.raw == nil }

// Get returns the object member named key, or Null.
func (v Value) Get(key string) Value {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Null
	}
	return Value{raw: obj[key]}
}

// Path walks nested object members.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, key := range keys {
		cur = cur.Get(key)
		if cur.IsNull() {
			return Null
		}
	}
	return cur
}

// Index returns the i-th array element, or Null.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Null
	}
	return Value{raw: arr[i]}
}

// Array returns the array elements. Non-arrays yield nil.
func (v Value) Array() []Value {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, item := range arr {
		out[i] = Value{raw: item}
	}
	return out
}

// Len returns the number of array elements or object members.
func (v Value) Len() int {
	switch typed := v.raw.(type) {
	case []any:
		return len(typed)
	case map[string]any:
		return len(typed)
	default:
		return 0
	}
}

// Keys returns the sorted member names of an object.
func (v Value) Keys() []string {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Text returns the string payload or "" for any other kind.
func (v Value) Text() string {
	s, _ := v.raw.(string)
	return s
}

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	f, ok := v.raw.(float64)
	return f, ok
}

// Bool returns the boolean payload.
func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Strings returns the string elements of an array, skipping other kinds.
func (v Value) Strings() []string {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns an independently owned deep copy.
func (v Value) Clone() Value {
	return Value{raw: deepcopy.Copy(v.raw)}
}

// Interface returns a deep copy of the underlying tree.
func (v Value) Interface() any {
	return deepcopy.Copy(v.raw)
}

// MarshalJSON implements json.Marshaler. Object keys are emitted in sorted
// order, which makes the encoding canonical.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Canonical returns the canonical JSON encoding of the value.
func (v Value) Canonical() []byte {
	data, err := json.Marshal(v.raw)
	if err != nil {
		// NaN and Inf leaves from TOML input have no JSON form; fmt sorts map keys too.
		return []byte(fmt.Sprintf("%v", v.raw))
	}
	return data
}

func normalize(raw any) any {
	switch typed := raw.(type) {
	case nil:
		return nil
	case Value:
		return normalize(typed.raw)
	case bool, string, float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int8:
		return float64(typed)
	case int16:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint8:
		return float64(typed)
	case uint16:
		return float64(typed)
	case uint32:
		return float64(typed)
	case uint64:
		return float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return typed.String()
		}
		return f
	case time.Time:
		return typed.Format(time.RFC3339)
	case toml.LocalDate, toml.LocalDateTime, toml.LocalTime:
		return fmt.Sprintf("%s", typed)
	case map[string]any:
		if typed == nil {
			return nil
		}
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalize(item)
		}
		return out
	case map[string]string:
		if typed == nil {
			return nil
		}
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return out
	case []any:
		if typed == nil {
			return nil
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	case []string:
		if typed == nil {
			return nil
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out
	case []map[string]any:
		if typed == nil {
			return nil
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	default:
		// Unknown leaves go through JSON so the tree keeps its invariant.
		data, err := json.Marshal(typed)
		if err != nil {
			return nil
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil
		}
		return normalize(decoded)
	}
}
