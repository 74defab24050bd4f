package shape

import (
	"errors"
	"testing"

	"github.com/mcncl/shapeview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visit struct {
	path string
	kind Kind
}

func TestWalk_PreOrderDocumentOrder(t *testing.T) {
	root := mustParse(t, `{"name":"svc","ports":[80,443],"owners":[{"id":1},{"id":2,"team":"ops"}]}`)

	var got []visit
	err := Walk(root, func(path *Path, s Shape) error {
		got = append(got, visit{path.String(), s.Kind()})
		return nil
	})
	require.NoError(t, err)

	want := []visit{
		{"$", KindNestedObject},
		{"$.name", KindSimple},
		{"$.ports", KindSimpleArray},
		{"$.ports[0]", KindSimple},
		{"$.ports[1]", KindSimple},
		{"$.owners", KindSimpleTable},
		{"$.owners[0]", KindSimpleObject},
		{"$.owners[0].id", KindSimple},
		{"$.owners[1]", KindSimpleObject},
		{"$.owners[1].id", KindSimple},
		{"$.owners[1].team", KindSimple},
	}
	assert.Equal(t, want, got)
}

func TestWalk_SkipChildren(t *testing.T) {
	root := mustParse(t, `{"keep":{"a":1},"skip":{"b":2}}`)

	var paths []string
	err := Walk(root, func(path *Path, s Shape) error {
		paths = append(paths, path.String())
		if path.String() == "$.skip" {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"$", "$.keep", "$.keep.a", "$.skip"}, paths)
}

func TestWalk_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	visits := 0
	err := Walk(mustParse(t, `[1,2,3]`), func(path *Path, s Shape) error {
		visits++
		if visits == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, visits)
}

func TestWalk_VeryDeepNesting(t *testing.T) {
	const depth = 10000

	var root models.JSONValue = "leaf"
	for i := 0; i < depth; i++ {
		if i%2 == 0 {
			root = models.JSONArray{root}
		} else {
			obj := models.NewJSONObject(1)
			obj.Set("next", root)
			root = obj
		}
	}

	summary := Summarize(root)
	assert.Equal(t, depth+1, summary.Nodes)
	assert.Equal(t, depth, summary.MaxDepth)
	assert.Equal(t, 1, summary.Counts[KindSimple])
}

func TestPath_String(t *testing.T) {
	var root *Path
	assert.Equal(t, "$", root.String())
	assert.Equal(t, 0, root.Depth())

	p := root.Key("users").Index(3).Key("first name").Key("$ref")
	assert.Equal(t, `$.users[3]["first name"].$ref`, p.String())
	assert.Equal(t, 4, p.Depth())

	// Siblings share a parent without affecting each other.
	parent := root.Key("a")
	left, right := parent.Index(0), parent.Index(1)
	assert.Equal(t, "$.a[0]", left.String())
	assert.Equal(t, "$.a[1]", right.String())
}

func TestSummarize(t *testing.T) {
	root := mustParse(t, `{
		"meta": {"version": 2},
		"rows": [{"a":1,"b":2},{"c":3}],
		"mixed": [{"x":1}, [1]],
		"tags": []
	}`)

	summary := Summarize(root)

	assert.Equal(t, 1, summary.Counts[KindNestedObject])
	assert.Equal(t, 4, summary.Counts[KindSimpleObject]) // meta, two rows, mixed[0]
	assert.Equal(t, 1, summary.Counts[KindSimpleTable])
	assert.Equal(t, 1, summary.Counts[KindNestedTable])
	assert.Equal(t, 2, summary.Counts[KindSimpleArray]) // mixed[1], tags
	assert.Equal(t, 3, summary.MaxDepth)
	assert.Equal(t, 2, summary.Tables)
	assert.Equal(t, "$.rows", summary.WidestTable.String())
	assert.Equal(t, 3, summary.WidestColumns)
}

func TestSummarize_RootTable(t *testing.T) {
	summary := Summarize(mustParse(t, `[{"a":1,"b":2}]`))

	assert.Equal(t, 1, summary.Tables)
	assert.Nil(t, summary.WidestTable)
	assert.Equal(t, "$", summary.WidestTable.String())
	assert.Equal(t, 2, summary.WidestColumns)
}
