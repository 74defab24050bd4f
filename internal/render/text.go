package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextRenderer draws documents as nested terminal tables.
type TextRenderer struct {
	opts Options
}

func (r *TextRenderer) Render(w io.Writer, v models.JSONValue) error {
	out := r.render(v, 0)
	r.opts.Logger.Debug("rendered document", zap.Int("bytes", len(out)))
	return write(w, out+"\n")
}

func (r *TextRenderer) render(v models.JSONValue, depth int) string {
	s := shape.Classify(v)
	if s.Kind() != shape.KindSimple && s.Kind() != shape.KindUnknown && r.opts.truncated(depth) {
		return compactJSON(v)
	}

	switch s := s.(type) {
	case shape.Simple:
		return r.opts.scalarText(s.Value)

	case shape.SimpleArray:
		if len(s.Items) == 0 {
			return "[]"
		}
		t := newTable()
		for _, item := range s.Items {
			t.Row(r.opts.scalarText(item))
		}
		return t.String()

	case shape.SimpleObject:
		return r.object(s.Fields, depth)

	case shape.NestedObject:
		return r.object(s.Fields, depth)

	case shape.SimpleTable:
		columns := r.opts.visibleColumns(s.Columns)
		if len(columns) == 0 {
			return emptyColumns(len(s.Rows))
		}
		t := newTable().Headers(r.opts.labels(columns)...)
		for _, row := range s.Rows {
			cells := make([]string, len(columns))
			for i, column := range columns {
				if v, ok := row.Lookup(column); ok {
					cells[i] = r.opts.scalarText(v)
				}
			}
			t.Row(cells...)
		}
		return t.String()

	case shape.NestedTable:
		return r.nestedTable(s, depth)

	case shape.Unknown:
		return indentJSON(s.Value, "    ")
	}
	return ""
}

func (r *TextRenderer) object(fields shape.Fields, depth int) string {
	fields = r.opts.visibleFields(fields)
	if len(fields) == 0 {
		return "{}"
	}
	t := newTable().Headers("Key", "Value")
	for _, f := range fields {
		t.Row(r.opts.label(f.Key), r.render(f.Value, depth+1))
	}
	return t.String()
}

func (r *TextRenderer) nestedTable(s shape.NestedTable, depth int) string {
	columns := r.opts.visibleColumns(s.Columns)
	indexed := hasElementRows(s.Rows)

	headers := r.opts.labels(columns)
	if indexed {
		headers = append([]string{"#"}, headers...)
	}
	if len(headers) == 0 {
		return emptyColumns(len(s.Rows))
	}

	t := newTable().Headers(headers...)
	for _, row := range s.Rows {
		cells := make([]string, 0, len(headers))
		if indexed {
			element := ""
			if !shape.IsMapping(row) {
				element = r.render(row, depth+1)
			}
			cells = append(cells, element)
		}
		for _, column := range columns {
			cell := ""
			if v, ok := shape.Cell(row, column); ok {
				cell = r.render(v, depth+1)
			}
			cells = append(cells, cell)
		}
		t.Row(cells...)
	}
	return t.String()
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func emptyColumns(rows int) string {
	return fmt.Sprintf("(%d rows, no columns)", rows)
}
