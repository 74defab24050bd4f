package render

import (
	"html"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

// HTMLRenderer writes documents as nested HTML tables. Simple tables carry
// the class "simple-table", objects and nested tables "nested-table", and
// nulls are wrapped in <span class="null">.
type HTMLRenderer struct {
	opts Options
}

func (r *HTMLRenderer) Render(w io.Writer, v models.JSONValue) error {
	var b strings.Builder
	r.render(&b, v, 0)
	b.WriteByte('\n')
	r.opts.Logger.Debug("rendered document", zap.Int("bytes", b.Len()))
	return write(w, b.String())
}

func (r *HTMLRenderer) render(b *strings.Builder, v models.JSONValue, depth int) {
	s := shape.Classify(v)
	if s.Kind() != shape.KindSimple && s.Kind() != shape.KindUnknown && r.opts.truncated(depth) {
		b.WriteString("<pre>")
		b.WriteString(html.EscapeString(compactJSON(v)))
		b.WriteString("</pre>")
		return
	}

	switch s := s.(type) {
	case shape.Simple:
		r.scalar(b, s.Value)

	case shape.SimpleArray:
		b.WriteString("<table>")
		for _, item := range s.Items {
			b.WriteString("<tr><td>")
			r.scalar(b, item)
			b.WriteString("</td></tr>")
		}
		b.WriteString("</table>")

	case shape.SimpleObject:
		r.object(b, s.Fields, depth)

	case shape.NestedObject:
		r.object(b, s.Fields, depth)

	case shape.SimpleTable:
		columns := r.opts.visibleColumns(s.Columns)
		b.WriteString(`<table class="simple-table">`)
		r.head(b, r.opts.labels(columns))
		b.WriteString("<tbody>")
		for _, row := range s.Rows {
			b.WriteString("<tr>")
			for _, column := range columns {
				b.WriteString("<td>")
				if v, ok := row.Lookup(column); ok {
					r.scalar(b, v)
				}
				b.WriteString("</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")

	case shape.NestedTable:
		columns := r.opts.visibleColumns(s.Columns)
		indexed := hasElementRows(s.Rows)
		headers := r.opts.labels(columns)
		if indexed {
			headers = append([]string{"#"}, headers...)
		}

		b.WriteString(`<table class="nested-table">`)
		r.head(b, headers)
		b.WriteString("<tbody>")
		for _, row := range s.Rows {
			b.WriteString("<tr>")
			if indexed {
				b.WriteString("<td>")
				if !shape.IsMapping(row) {
					r.render(b, row, depth+1)
				}
				b.WriteString("</td>")
			}
			for _, column := range columns {
				b.WriteString("<td>")
				if v, ok := shape.Cell(row, column); ok {
					r.render(b, v, depth+1)
				}
				b.WriteString("</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")

	case shape.Unknown:
		b.WriteString("<div><pre>")
		b.WriteString(html.EscapeString(indentJSON(s.Value, "    ")))
		b.WriteString("</pre></div>")
	}
}

func (r *HTMLRenderer) object(b *strings.Builder, fields shape.Fields, depth int) {
	b.WriteString(`<table class="nested-table">`)
	r.head(b, []string{"Key", "Value"})
	b.WriteString("<tbody>")
	for _, f := range r.opts.visibleFields(fields) {
		b.WriteString("<tr><td>")
		b.WriteString(html.EscapeString(r.opts.label(f.Key)))
		b.WriteString("</td><td>")
		r.render(b, f.Value, depth+1)
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table>")
}

func (r *HTMLRenderer) head(b *strings.Builder, headers []string) {
	b.WriteString("<thead><tr>")
	for _, h := range headers {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead>")
}

func (r *HTMLRenderer) scalar(b *strings.Builder, v models.JSONValue) {
	if v == nil {
		b.WriteString(`<span class="null">`)
		b.WriteString(html.EscapeString(r.opts.NullText))
		b.WriteString("</span>")
		return
	}
	b.WriteString("<span>")
	b.WriteString(html.EscapeString(r.opts.scalarText(v)))
	b.WriteString("</span>")
}
