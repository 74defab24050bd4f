package render

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

// MarkdownRenderer writes documents as GitHub-flavoured Markdown tables.
// Markdown tables cannot nest, so a nested cell holds its value as inline
// JSON and the value gets its own section further down, headed by its path.
type MarkdownRenderer struct {
	opts Options
}

type section struct {
	path  *shape.Path
	value models.JSONValue
}

func (r *MarkdownRenderer) Render(w io.Writer, v models.JSONValue) error {
	var b strings.Builder

	// Sections are rendered breadth first, so the output reads from the
	// top of the document down.
	queue := []section{{value: v}}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		if cur.path != nil {
			b.WriteString("\n### ")
			b.WriteString(escapeCell(cur.path.String()))
			b.WriteString("\n\n")
		}
		queue = r.section(&b, cur, queue)
	}

	r.opts.Logger.Debug("rendered document", zap.Int("sections", len(queue)), zap.Int("bytes", b.Len()))
	return write(w, b.String())
}

// section writes one value and returns queue extended with the nested
// values it refers to.
func (r *MarkdownRenderer) section(b *strings.Builder, cur section, queue []section) []section {
	// nested renders a non-scalar cell inline and queues it for its own
	// section unless the depth limit has been reached.
	nested := func(path *shape.Path, v models.JSONValue) string {
		if shape.IsScalar(v) {
			return escapeCell(r.opts.scalarText(v))
		}
		if !r.opts.truncated(path.Depth()) && (shape.IsSequence(v) || shape.IsMapping(v)) {
			queue = append(queue, section{path: path, value: v})
		}
		return inlineCode(compactJSON(v))
	}

	switch s := shape.Classify(cur.value).(type) {
	case shape.Simple:
		b.WriteString(escapeCell(r.opts.scalarText(s.Value)))
		b.WriteString("\n")

	case shape.SimpleArray:
		if len(s.Items) == 0 {
			b.WriteString("`[]`\n")
			break
		}
		writeRow(b, []string{"Value"})
		writeDivider(b, 1)
		for _, item := range s.Items {
			writeRow(b, []string{escapeCell(r.opts.scalarText(item))})
		}

	case shape.SimpleObject, shape.NestedObject:
		var fields shape.Fields
		if o, ok := s.(shape.SimpleObject); ok {
			fields = o.Fields
		} else {
			fields = s.(shape.NestedObject).Fields
		}
		fields = r.opts.visibleFields(fields)
		if len(fields) == 0 {
			b.WriteString("`{}`\n")
			break
		}
		writeRow(b, []string{"Key", "Value"})
		writeDivider(b, 2)
		for _, f := range fields {
			writeRow(b, []string{escapeCell(r.opts.label(f.Key)), nested(cur.path.Key(f.Key), f.Value)})
		}

	case shape.SimpleTable:
		columns := r.opts.visibleColumns(s.Columns)
		if len(columns) == 0 {
			b.WriteString(emptyColumns(len(s.Rows)))
			b.WriteString("\n")
			break
		}
		writeRow(b, escapeCells(r.opts.labels(columns)))
		writeDivider(b, len(columns))
		for _, row := range s.Rows {
			cells := make([]string, len(columns))
			for i, column := range columns {
				if v, ok := row.Lookup(column); ok {
					cells[i] = escapeCell(r.opts.scalarText(v))
				}
			}
			writeRow(b, cells)
		}

	case shape.NestedTable:
		columns := r.opts.visibleColumns(s.Columns)
		indexed := hasElementRows(s.Rows)
		headers := escapeCells(r.opts.labels(columns))
		if indexed {
			headers = append([]string{"#"}, headers...)
		}
		if len(headers) == 0 {
			b.WriteString(emptyColumns(len(s.Rows)))
			b.WriteString("\n")
			break
		}
		writeRow(b, headers)
		writeDivider(b, len(headers))
		for i, row := range s.Rows {
			rowPath := cur.path.Index(i)
			cells := make([]string, 0, len(headers))
			if indexed {
				element := ""
				if !shape.IsMapping(row) {
					element = nested(rowPath, row)
				}
				cells = append(cells, element)
			}
			for _, column := range columns {
				cell := ""
				if v, ok := shape.Cell(row, column); ok {
					cell = nested(rowPath.Key(column), v)
				}
				cells = append(cells, cell)
			}
			writeRow(b, cells)
		}

	case shape.Unknown:
		b.WriteString("```json\n")
		b.WriteString(indentJSON(s.Value, "    "))
		b.WriteString("\n```\n")
	}
	return queue
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(c)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeDivider(b *strings.Builder, n int) {
	b.WriteString("|")
	for i := 0; i < n; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

// inlineCode wraps s in a code span long enough not to be closed by any
// backtick run inside it.
func inlineCode(s string) string {
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}
