package render

import (
	"io"
	"strconv"

	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

// SummaryRenderer prints shape.Summarize as a two-column table.
type SummaryRenderer struct {
	opts Options
}

func (r *SummaryRenderer) Render(w io.Writer, v models.JSONValue) error {
	summary := shape.Summarize(v)

	t := newTable().Headers("Metric", "Value")
	t.Row("nodes", strconv.Itoa(summary.Nodes))
	t.Row("max depth", strconv.Itoa(summary.MaxDepth))
	t.Row("tables", strconv.Itoa(summary.Tables))
	for _, kind := range shape.Kinds {
		if n := summary.Counts[kind]; n > 0 {
			t.Row(kind.String(), strconv.Itoa(n))
		}
	}
	if summary.Tables > 0 {
		t.Row("widest table", summary.WidestTable.String()+" ("+strconv.Itoa(summary.WidestColumns)+" columns)")
	}

	return write(w, t.String()+"\n")
}
