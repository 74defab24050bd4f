package models

import (
	stdjson "encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONObject_KeepsInsertionOrder(t *testing.T) {
	obj := NewJSONObject(0)
	obj.Set("zebra", 1)
	obj.Set("apple", 2)
	obj.Set("mango", 3)
	obj.Set("apple", 4)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())

	v, ok := obj.Get("apple")
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = obj.Get("missing")
	assert.False(t, ok)
}

func TestJSONObject_ZeroValueAndNil(t *testing.T) {
	var zero JSONObject
	zero.Set("a", true)
	assert.Equal(t, []string{"a"}, zero.Keys())

	var missing *JSONObject
	assert.Equal(t, 0, missing.Len())
	assert.Nil(t, missing.Keys())
	_, ok := missing.Get("a")
	assert.False(t, ok)
	missing.Range(func(string, JSONValue) bool {
		t.Fatal("range over nil object")
		return true
	})
}

func TestJSONObject_KeysIsACopy(t *testing.T) {
	obj := NewJSONObject(2)
	obj.Set("a", 1)
	obj.Set("b", 2)

	keys := obj.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
}

func TestJSONObject_RangeStopsEarly(t *testing.T) {
	obj := NewJSONObject(3)
	obj.Set("a", 1)
	obj.Set("b", 2)
	obj.Set("c", 3)

	var seen []string
	obj.Range(func(key string, _ JSONValue) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestJSONObject_MarshalJSON(t *testing.T) {
	inner := NewJSONObject(1)
	inner.Set("id", stdjson.Number("7"))

	obj := NewJSONObject(4)
	obj.Set("name", "svc \"quoted\"")
	obj.Set("tags", JSONArray{"a", nil, true})
	obj.Set("owner", inner)
	obj.Set("rows", []any{inner, JSONArray{}})

	b, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"svc \"quoted\"","tags":["a",null,true],"owner":{"id":7},"rows":[{"id":7},[]]}`, string(b))
}

func TestJSONObject_MarshalDeepNesting(t *testing.T) {
	const depth = 2000

	var root JSONValue = "leaf"
	for i := 0; i < depth; i++ {
		obj := NewJSONObject(1)
		obj.Set("n", JSONArray{root})
		root = obj
	}

	b, err := json.Marshal(root)
	require.NoError(t, err)
	assert.Equal(t, depth, strings.Count(string(b), `{"n":[`))
	assert.True(t, strings.HasSuffix(string(b), `"leaf"`+strings.Repeat("]}", depth)))
}
