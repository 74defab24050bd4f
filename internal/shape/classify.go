package shape

import (
	"encoding/json"
	"sort"

	"github.com/mcncl/shapeview/internal/models"
)

// Classify returns the shape of value. It never fails: anything outside the
// JSON-like domain becomes Unknown. The returned shape owns fresh slices and
// never modifies value.
func Classify(value models.JSONValue) Shape {
	if IsScalar(value) {
		return Simple{Value: value}
	}

	if items, ok := sequence(value); ok {
		switch {
		case allScalar(items):
			return SimpleArray{Items: clone(items)}
		case allSimpleObjects(items):
			rows := make([]Fields, len(items))
			for i, item := range items {
				rows[i], _ = snapshot(item)
			}
			return SimpleTable{Columns: Columns(items), Rows: rows}
		default:
			return NestedTable{Columns: Columns(items), Rows: clone(items)}
		}
	}

	if fields, ok := snapshot(value); ok {
		if fieldsScalar(fields) {
			return SimpleObject{Fields: fields}
		}
		return NestedObject{Fields: fields}
	}

	return Unknown{Value: value}
}

// IsScalar reports whether value is a string, number, boolean or null.
func IsScalar(value models.JSONValue) bool {
	switch value.(type) {
	case nil, string, bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// IsSequence reports whether value is an ordered sequence.
func IsSequence(value models.JSONValue) bool {
	_, ok := sequence(value)
	return ok
}

// IsMapping reports whether value is a string-keyed mapping.
func IsMapping(value models.JSONValue) bool {
	switch value.(type) {
	case *models.JSONObject, map[string]any:
		return true
	}
	return false
}

// IsSimpleArray reports whether value is a sequence of scalars. The empty
// sequence qualifies.
func IsSimpleArray(value models.JSONValue) bool {
	items, ok := sequence(value)
	return ok && allScalar(items)
}

// IsSimpleObject reports whether value is a mapping whose values are all
// scalars.
func IsSimpleObject(value models.JSONValue) bool {
	switch v := value.(type) {
	case *models.JSONObject:
		simple := true
		v.Range(func(_ string, field models.JSONValue) bool {
			simple = IsScalar(field)
			return simple
		})
		return simple
	case map[string]any:
		for _, field := range v {
			if !IsScalar(field) {
				return false
			}
		}
		return true
	}
	return false
}

// IsSimpleTable reports whether value is a non-empty sequence of simple
// objects.
func IsSimpleTable(value models.JSONValue) bool {
	items, ok := sequence(value)
	return ok && len(items) > 0 && allSimpleObjects(items)
}

// Columns returns the distinct keys of the mapping elements of rows, in the
// order they are first seen. Elements that are not mappings are skipped.
func Columns(rows []models.JSONValue) []string {
	columns := []string{}
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, key := range keysOf(row) {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}

// Cell returns row's value for column. It reports false when row is not a
// mapping or has no such key.
func Cell(row models.JSONValue, column string) (models.JSONValue, bool) {
	switch r := row.(type) {
	case *models.JSONObject:
		return r.Get(column)
	case map[string]any:
		v, ok := r[column]
		return v, ok
	case Fields:
		return r.Lookup(column)
	}
	return nil, false
}

func sequence(value models.JSONValue) ([]models.JSONValue, bool) {
	switch v := value.(type) {
	case models.JSONArray:
		return v, true
	case []any:
		return v, true
	}
	return nil, false
}

// keysOf returns a mapping's keys in iteration order. Plain Go maps have no
// order, so their keys are sorted.
func keysOf(value models.JSONValue) []string {
	switch v := value.(type) {
	case *models.JSONObject:
		return v.Keys()
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}
	return nil
}

func snapshot(value models.JSONValue) (Fields, bool) {
	switch v := value.(type) {
	case *models.JSONObject:
		fields := make(Fields, 0, v.Len())
		v.Range(func(key string, field models.JSONValue) bool {
			fields = append(fields, Field{Key: key, Value: field})
			return true
		})
		return fields, true
	case map[string]any:
		keys := keysOf(v)
		fields := make(Fields, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: v[k]}
		}
		return fields, true
	}
	return nil, false
}

func allScalar(items []models.JSONValue) bool {
	for _, item := range items {
		if !IsScalar(item) {
			return false
		}
	}
	return true
}

func allSimpleObjects(items []models.JSONValue) bool {
	for _, item := range items {
		if !IsSimpleObject(item) {
			return false
		}
	}
	return true
}

func fieldsScalar(fields Fields) bool {
	for _, f := range fields {
		if !IsScalar(f.Value) {
			return false
		}
	}
	return true
}

func clone(items []models.JSONValue) []models.JSONValue {
	out := make([]models.JSONValue, len(items))
	copy(out, items)
	return out
}
