// Package render draws classified documents. Every renderer dispatches on
// shape.Classify and calls it again for each nested value it descends into,
// so the classification rules live in one place.
package render

import (
	"fmt"
	"html"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mcncl/shapeview/internal/config"
	apperrors "github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/formatter"
	"github.com/mcncl/shapeview/internal/logging"
	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/shape"
)

// Renderer writes one document in a particular output format.
type Renderer interface {
	Render(w io.Writer, v models.JSONValue) error
}

// Options tune every renderer. The zero value renders without a depth limit,
// shows null as "null" and leaves headers untouched.
type Options struct {
	// MaxDepth bounds how far renderers descend. Containers nested deeper
	// are shown as compact JSON. 0 means unlimited.
	MaxDepth int

	NullText       string
	HeaderStyle    string
	HeaderMappings map[string]string

	// Hidden reports columns and object keys to leave out.
	Hidden func(column string) bool

	// Indent is used by the json format.
	Indent string

	Logger *zap.Logger
}

// OptionsFromConfig builds renderer options from the render section of cfg.
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	return Options{
		MaxDepth:       cfg.Render.MaxDepth,
		NullText:       cfg.Render.NullText,
		HeaderStyle:    cfg.Render.HeaderStyle,
		HeaderMappings: cfg.Render.HeaderMappings,
		Hidden:         cfg.IsHidden,
		Indent:         cfg.Render.Indent,
		Logger:         logger,
	}
}

// New returns the renderer for format.
func New(format string, opts Options) (Renderer, error) {
	if opts.NullText == "" {
		opts.NullText = "null"
	}
	opts.Logger = logging.OrNop(opts.Logger).With(zap.String("format", format))

	switch format {
	case "text":
		return &TextRenderer{opts: opts}, nil
	case "html":
		return &HTMLRenderer{opts: opts}, nil
	case "markdown":
		return &MarkdownRenderer{opts: opts}, nil
	case "json":
		return &JSONRenderer{opts: opts}, nil
	case "summary":
		return &SummaryRenderer{opts: opts}, nil
	default:
		return nil, apperrors.NewRenderError(fmt.Sprintf("unknown format '%s'", format), apperrors.ErrUnknownFormat)
	}
}

func write(w io.Writer, out string) error {
	if _, err := io.WriteString(w, out); err != nil {
		return apperrors.NewOutputError("failed to write rendered output", err)
	}
	return nil
}

// truncated reports whether a container at depth should be shown flat.
func (o Options) truncated(depth int) bool {
	if o.MaxDepth > 0 && depth >= o.MaxDepth {
		o.Logger.Debug("depth limit reached", zap.Int("depth", depth))
		return true
	}
	return false
}

func (o Options) label(key string) string {
	if label, ok := o.HeaderMappings[key]; ok {
		return label
	}
	return formatter.Header(o.HeaderStyle, key)
}

func (o Options) labels(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = o.label(k)
	}
	return out
}

func (o Options) hidden(key string) bool {
	return o.Hidden != nil && o.Hidden(key)
}

func (o Options) visibleColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if !o.hidden(c) {
			out = append(out, c)
		}
	}
	return out
}

func (o Options) visibleFields(fields shape.Fields) shape.Fields {
	out := make(shape.Fields, 0, len(fields))
	for _, f := range fields {
		if !o.hidden(f.Key) {
			out = append(out, f)
		}
	}
	return out
}

// scalarText formats a scalar for display.
func (o Options) scalarText(v models.JSONValue) string {
	switch s := v.(type) {
	case nil:
		return o.NullText
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}

// hasElementRows reports whether any table row is not a mapping. Such rows
// are shown in a leading "#" column.
func hasElementRows(rows []models.JSONValue) bool {
	for _, row := range rows {
		if !shape.IsMapping(row) {
			return true
		}
	}
	return false
}

func compactJSON(v models.JSONValue) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func indentJSON(v models.JSONValue, indent string) string {
	b, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// Header returns the line that introduces a rendered file. The json format
// has none so its output stays a single JSON document.
func Header(format, path, language string) string {
	line := "File: " + path + " " + language
	switch format {
	case "json":
		return ""
	case "html":
		return `<div class="file-header">` + html.EscapeString(line) + "</div>\n"
	case "markdown":
		return "**File:** " + escapeCell(path) + " " + language + "\n\n"
	default:
		return line + "\n\n"
	}
}
