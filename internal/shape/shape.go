// Package shape classifies JSON-like values into a small closed set of
// structural shapes that a generic renderer can draw without inspecting the
// value itself.
//
// Classification is shallow: Classify looks one level into a container.
// Renderers that descend into nested objects and tables call Classify again
// on every child value.
package shape

import (
	"fmt"

	"github.com/mcncl/shapeview/internal/models"
)

// Kind is the discriminant of a Shape.
type Kind int

const (
	KindUnknown Kind = iota
	KindSimple
	KindSimpleArray
	KindSimpleObject
	KindSimpleTable
	KindNestedObject
	KindNestedTable
)

var kindNames = [...]string{
	KindUnknown:      "unknown",
	KindSimple:       "simple",
	KindSimpleArray:  "simpleArray",
	KindSimpleObject: "simpleObject",
	KindSimpleTable:  "simpleTable",
	KindNestedObject: "nestedObject",
	KindNestedTable:  "nestedTable",
}

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindUnknown,
	KindSimple,
	KindSimpleArray,
	KindSimpleObject,
	KindSimpleTable,
	KindNestedObject,
	KindNestedTable,
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind as its tag name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Shape is the tagged result of Classify. The concrete type is one of
// Simple, SimpleArray, SimpleObject, SimpleTable, NestedObject, NestedTable
// or Unknown; no other package can add variants.
type Shape interface {
	Kind() Kind
	isShape()
}

// Field is one key/value pair of an object snapshot.
type Field struct {
	Key   string
	Value models.JSONValue
}

// Fields is an ordered snapshot of an object's members.
type Fields []Field

// Lookup returns the value stored under key.
func (f Fields) Lookup(key string) (models.JSONValue, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Keys returns the field keys in order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

// Simple is a scalar: string, number, boolean or null.
type Simple struct {
	Value models.JSONValue
}

// SimpleArray is a sequence whose elements are all scalars, including the
// empty sequence.
type SimpleArray struct {
	Items []models.JSONValue
}

// SimpleObject is a mapping whose values are all scalars.
type SimpleObject struct {
	Fields Fields
}

// NestedObject is a mapping with at least one non-scalar value.
type NestedObject struct {
	Fields Fields
}

// SimpleTable is a non-empty sequence of simple objects. Columns is the
// first-seen union of the rows' keys.
type SimpleTable struct {
	Columns []string
	Rows    []Fields
}

// NestedTable is a non-empty sequence with at least one element that is not
// a simple object. Rows hold the elements as they are; elements that are not
// mappings contribute no columns.
type NestedTable struct {
	Columns []string
	Rows    []models.JSONValue
}

// Unknown carries a value outside the JSON-like domain.
type Unknown struct {
	Value any
}

func (Simple) Kind() Kind       { return KindSimple }
func (SimpleArray) Kind() Kind  { return KindSimpleArray }
func (SimpleObject) Kind() Kind { return KindSimpleObject }
func (NestedObject) Kind() Kind { return KindNestedObject }
func (SimpleTable) Kind() Kind  { return KindSimpleTable }
func (NestedTable) Kind() Kind  { return KindNestedTable }
func (Unknown) Kind() Kind      { return KindUnknown }

func (Simple) isShape()       {}
func (SimpleArray) isShape()  {}
func (SimpleObject) isShape() {}
func (NestedObject) isShape() {}
func (SimpleTable) isShape()  {}
func (NestedTable) isShape()  {}
func (Unknown) isShape()      {}
