package models

import (
	"github.com/goccy/go-json"
)

// JSONValue is a generic type to represent any JSON-like value.
// This can be a string, number, boolean, null, object, or array.
type JSONValue = any

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// JSONObject represents a JSON object that remembers the order its keys were
// first set in. The zero value is ready to use.
type JSONObject struct {
	keys   []string
	values map[string]JSONValue
}

// NewJSONObject creates an empty object with room for capacity keys.
func NewJSONObject(capacity int) *JSONObject {
	return &JSONObject{
		keys:   make([]string, 0, capacity),
		values: make(map[string]JSONValue, capacity),
	}
}

// Set stores value under key. A key that is already present keeps its
// position and takes the new value.
func (o *JSONObject) Set(key string, value JSONValue) {
	if o.values == nil {
		o.values = make(map[string]JSONValue)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *JSONObject) Get(key string) (JSONValue, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (o *JSONObject) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *JSONObject) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Range calls fn for each key in insertion order until fn returns false.
func (o *JSONObject) Range(fn func(key string, value JSONValue) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *JSONObject) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, o)
}

// MarshalJSON encodes the array. Nested objects and arrays are written in a
// single pass instead of one encoder call per level.
func (a JSONArray) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, a)
}

func appendJSON(buf []byte, v JSONValue) ([]byte, error) {
	switch t := v.(type) {
	case *JSONObject:
		if t == nil {
			return append(buf, "null"...), nil
		}
		buf = append(buf, '{')
		for i, k := range t.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, key...)
			buf = append(buf, ':')
			if buf, err = appendJSON(buf, t.values[k]); err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	case JSONArray:
		return appendArray(buf, t)
	case []any:
		return appendArray(buf, t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	}
}

func appendArray(buf []byte, items []JSONValue) ([]byte, error) {
	if items == nil {
		return append(buf, "null"...), nil
	}
	buf = append(buf, '[')
	for i, item := range items {
		if i > 0 {
			buf = append(buf, ',')
		}
		var err error
		if buf, err = appendJSON(buf, item); err != nil {
			return nil, err
		}
	}
	return append(buf, ']'), nil
}

// Document holds a parsed input in a way that's easy for the classifier and
// renderers to work with.
type Document struct {
	Root        JSONValue
	RootIsArray bool   // True if the root of the document is an array
	Source      string // File path, or "stdin"
	Language    string // json, yaml, typescript, ...
}
