package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mcncl/shapeview/internal/models"
)

// Convert turns the tree under n into JSON-like nodes. Ids are taken from
// counter in pre-order. Each node is an object with the keys kind, id, start,
// end, text (leaves only, when enabled), error (only when set) and children
// (only when non-empty).
func Convert(n *sitter.Node, src []byte, opts Options, counter *Counter) *models.JSONObject {
	children := childrenOf(n, opts.NamedOnly)

	node := models.NewJSONObject(7)
	node.Set("kind", n.Type())
	node.Set("id", counter.Next())
	node.Set("start", point(n.StartPoint()))
	node.Set("end", point(n.EndPoint()))
	if opts.IncludeText && len(children) == 0 {
		node.Set("text", n.Content(src))
	}
	if n.IsMissing() || n.Type() == "ERROR" {
		node.Set("error", true)
	}
	if len(children) > 0 {
		converted := make(models.JSONArray, len(children))
		for i, child := range children {
			converted[i] = Convert(child, src, opts, counter)
		}
		node.Set("children", converted)
	}
	return node
}

func childrenOf(n *sitter.Node, namedOnly bool) []*sitter.Node {
	if namedOnly {
		count := int(n.NamedChildCount())
		out := make([]*sitter.Node, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, n.NamedChild(i))
		}
		return out
	}
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

func point(p sitter.Point) *models.JSONObject {
	obj := models.NewJSONObject(2)
	obj.Set("row", int(p.Row))
	obj.Set("column", int(p.Column))
	return obj
}
