package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/shapeview/internal/config"
	apperrors "github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/models"
	"github.com/mcncl/shapeview/internal/parser"
)

func mustParse(t *testing.T, input string) models.JSONValue {
	t.Helper()
	doc, err := parser.ParseString(input)
	require.NoError(t, err)
	return doc.Root
}

func renderString(t *testing.T, format string, opts Options, v models.JSONValue) string {
	t.Helper()
	r, err := New(format, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, v))
	return buf.String()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestNew_Formats(t *testing.T) {
	for _, format := range config.Formats {
		t.Run(format, func(t *testing.T) {
			r, err := New(format, Options{})
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New("pdf", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnknownFormat))
	assert.Contains(t, err.Error(), "unknown format 'pdf'")
}

func TestRender_WriteFailure(t *testing.T) {
	r, err := New("text", Options{})
	require.NoError(t, err)

	err = r.Render(failingWriter{}, "value")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeOutput, appErr.Type)
}

// The worked example: two rows with partly different keys.
func TestRender_EndToEndExample(t *testing.T) {
	input := mustParse(t, `[{"x":1,"y":2},{"x":3,"z":4}]`)

	t.Run("html", func(t *testing.T) {
		want := `<table class="simple-table"><thead><tr><th>x</th><th>y</th><th>z</th></tr></thead>` +
			`<tbody><tr><td><span>1</span></td><td><span>2</span></td><td></td></tr>` +
			`<tr><td><span>3</span></td><td></td><td><span>4</span></td></tr></tbody></table>` + "\n"
		assert.Equal(t, want, renderString(t, "html", Options{}, input))
	})

	t.Run("markdown", func(t *testing.T) {
		want := "| x | y | z |\n" +
			"| --- | --- | --- |\n" +
			"| 1 | 2 |  |\n" +
			"| 3 |  | 4 |\n"
		assert.Equal(t, want, renderString(t, "markdown", Options{}, input))
	})

	t.Run("json", func(t *testing.T) {
		want := `{"shape":"simpleTable","columns":["x","y","z"],"rows":[` +
			`{"cells":{"x":1,"y":2,"z":null},"absent":["z"]},` +
			`{"cells":{"x":3,"y":null,"z":4},"absent":["y"]}]}` + "\n"
		assert.Equal(t, want, renderString(t, "json", Options{}, input))
	})

	t.Run("text", func(t *testing.T) {
		out := renderString(t, "text", Options{}, input)
		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

		// border, header, separator, two rows, border
		require.Len(t, lines, 6)
		assert.Regexp(t, `x\s+│\s+y\s+│\s+z`, lines[1])
		assert.Regexp(t, `1\s+│\s+2\s+│\s+│`, lines[3])
		assert.Regexp(t, `3\s+│\s+│\s+4`, lines[4])
	})
}

func nestedInput(depth int) models.JSONValue {
	var root models.JSONValue = "bottom"
	for i := 0; i < depth; i++ {
		switch i % 3 {
		case 0:
			obj := models.NewJSONObject(2)
			obj.Set("level", i)
			obj.Set("next", root)
			root = obj
		case 1:
			root = models.JSONArray{root, "sibling"}
		default:
			obj := models.NewJSONObject(1)
			obj.Set("child", root)
			root = models.JSONArray{obj}
		}
	}
	return root
}

// Rendering re-classifies every nested value; a deeply nested document must
// still come out the other end.
func TestRender_DeepNestingTerminates(t *testing.T) {
	input := nestedInput(500)

	for _, format := range []string{"html", "markdown", "json", "summary"} {
		t.Run(format, func(t *testing.T) {
			out := renderString(t, format, Options{}, input)
			assert.NotEmpty(t, out)
			if format != "summary" {
				assert.Contains(t, out, "bottom")
			}
		})
	}

	t.Run("text", func(t *testing.T) {
		out := renderString(t, "text", Options{MaxDepth: 64}, input)
		assert.Contains(t, out, "bottom")
	})
}

func TestRender_MaxDepthFlattensContainers(t *testing.T) {
	input := mustParse(t, `{"a":{"b":[1,2]}}`)
	opts := Options{MaxDepth: 1}

	assert.Contains(t, renderString(t, "text", opts, input), `{"b":[1,2]}`)
	assert.Contains(t, renderString(t, "html", opts, input), `<pre>{&#34;b&#34;:[1,2]}</pre>`)
	assert.Equal(t,
		`{"shape":"nestedObject","fields":{"a":{"shape":"nestedObject","truncated":true,"value":{"b":[1,2]}}}}`+"\n",
		renderString(t, "json", opts, input))

	// Markdown keeps the inline JSON but adds no section for it.
	md := renderString(t, "markdown", opts, input)
	assert.Contains(t, md, "`{\"b\":[1,2]}`")
	assert.NotContains(t, md, "### ")
}

func TestRender_HeaderStyleAndHiddenColumns(t *testing.T) {
	input := mustParse(t, `[{"user_id":1,"_rev":"a","full_name":"Ann"}]`)
	opts := Options{
		HeaderStyle:    "title",
		HeaderMappings: map[string]string{"user_id": "ID"},
		Hidden:         func(c string) bool { return strings.HasPrefix(c, "_") },
	}

	want := "| ID | Full Name |\n| --- | --- |\n| 1 | Ann |\n"
	assert.Equal(t, want, renderString(t, "markdown", opts, input))

	html := renderString(t, "html", opts, input)
	assert.Contains(t, html, "<th>ID</th><th>Full Name</th>")
	assert.NotContains(t, html, "_rev")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Render.MaxDepth = 3
	cfg.Render.NullText = "-"
	rule, err := config.NewColumnRule("^secret$", "")
	require.NoError(t, err)
	cfg.Render.HiddenColumns = []config.ColumnRule{rule}

	opts := OptionsFromConfig(cfg, nil)
	assert.Equal(t, 3, opts.MaxDepth)
	assert.Equal(t, "-", opts.NullText)
	assert.Equal(t, "  ", opts.Indent)
	assert.True(t, opts.Hidden("secret"))
	assert.False(t, opts.Hidden("public"))

	out := renderString(t, "html", opts, mustParse(t, `{"secret":1,"public":null}`))
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, `<span class="null">-</span>`)
}
