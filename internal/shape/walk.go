package shape

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/shapeview/internal/models"
)

// SkipChildren can be returned by a WalkFunc to leave the current value's
// children unvisited.
var SkipChildren = errors.New("skip children")

var identifierRegex = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Path locates a value inside a document. The nil *Path is the root. Paths
// are immutable and share their prefix with their parent.
type Path struct {
	parent  *Path
	key     string
	index   int
	isIndex bool
	depth   int
}

// Key returns the path of the member key of the object at p.
func (p *Path) Key(key string) *Path {
	return &Path{parent: p, key: key, depth: p.Depth() + 1}
}

// Index returns the path of element i of the sequence at p.
func (p *Path) Index(i int) *Path {
	return &Path{parent: p, index: i, isIndex: true, depth: p.Depth() + 1}
}

// Depth is the number of steps from the root.
func (p *Path) Depth() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// String renders the path in JSONPath-like notation, e.g. $.users[0].name.
func (p *Path) String() string {
	steps := make([]*Path, p.Depth())
	for cur := p; cur != nil; cur = cur.parent {
		steps[cur.depth-1] = cur
	}

	var b strings.Builder
	b.WriteByte('$')
	for _, s := range steps {
		switch {
		case s.isIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case identifierRegex.MatchString(s.key):
			b.WriteByte('.')
			b.WriteString(s.key)
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.key))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// WalkFunc is called once per visited value.
type WalkFunc func(path *Path, s Shape) error

// Walk classifies root and every value below it in pre-order, document
// order. It keeps its own stack, so the depth it can handle is bounded by
// memory rather than by the goroutine stack.
func Walk(root models.JSONValue, fn WalkFunc) error {
	type pending struct {
		path  *Path
		value models.JSONValue
	}
	stack := []pending{{value: root}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(cur.path, Classify(cur.value)); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}

		// Children are pushed in reverse so they pop in document order.
		if items, ok := sequence(cur.value); ok {
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, pending{path: cur.path.Index(i), value: items[i]})
			}
			continue
		}
		if fields, ok := snapshot(cur.value); ok {
			for i := len(fields) - 1; i >= 0; i-- {
				stack = append(stack, pending{path: cur.path.Key(fields[i].Key), value: fields[i].Value})
			}
		}
	}
	return nil
}

// Summary describes the shapes found in a document.
type Summary struct {
	Nodes    int
	MaxDepth int
	Counts   map[Kind]int

	// WidestTable is the path of the table with the most columns. It is
	// only meaningful when Tables is non-zero, since the root path is nil.
	Tables        int
	WidestTable   *Path
	WidestColumns int
}

// Summarize walks root and tallies its shapes.
func Summarize(root models.JSONValue) Summary {
	summary := Summary{Counts: make(map[Kind]int, len(Kinds))}
	widest := -1

	_ = Walk(root, func(path *Path, s Shape) error {
		summary.Nodes++
		summary.Counts[s.Kind()]++
		if d := path.Depth(); d > summary.MaxDepth {
			summary.MaxDepth = d
		}

		var columns []string
		switch t := s.(type) {
		case SimpleTable:
			columns = t.Columns
		case NestedTable:
			columns = t.Columns
		default:
			return nil
		}
		summary.Tables++
		if len(columns) > widest {
			widest = len(columns)
			summary.WidestTable = path
			summary.WidestColumns = len(columns)
		}
		return nil
	})
	return summary
}
