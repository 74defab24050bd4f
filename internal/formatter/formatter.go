package formatter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"github.com/iancoleman/strcase"
)

// Formatter is responsible for turning rendered Markdown into styled terminal output
type Formatter struct {
	style    string
	wordWrap int
}

// NewFormatter creates a new Formatter instance. style is a glamour standard
// style name, or "auto" to pick one from the terminal background.
func NewFormatter(style string, wordWrap int) *Formatter {
	if style == "" {
		style = "auto"
	}
	return &Formatter{style: style, wordWrap: wordWrap}
}

// Format takes Markdown as a string and returns it rendered for a terminal
func (f *Formatter) Format(markdown string) (string, error) {
	// Handle empty input
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	styleOption := glamour.WithStandardStyle(f.style)
	if f.style == "auto" {
		styleOption = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(
		styleOption,
		glamour.WithWordWrap(f.wordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

// Header styles a column header or object key for display. Unknown styles
// leave the key unchanged.
func Header(style, key string) string {
	switch style {
	case "snake":
		return strcase.ToSnake(key)
	case "camel":
		return strcase.ToCamel(key)
	case "lower_camel":
		return strcase.ToLowerCamel(key)
	case "kebab":
		return strcase.ToKebab(key)
	case "title":
		return titleCase(key)
	default:
		return key
	}
}

// titleCase splits key into words the way strcase does and capitalises each one
func titleCase(key string) string {
	words := strings.Fields(strcase.ToDelimited(key, ' '))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
