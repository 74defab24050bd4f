package parser

import (
	"bytes"
	stdjson "encoding/json"
	stderrors "errors" // Standard errors package
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/shapeview/internal/errors" // Custom errors package
	"github.com/mcncl/shapeview/internal/models"
)

// Languages the data parsers understand. Code languages are handled by the
// syntax package.
const (
	LanguageJSON    = "json"
	LanguageYAML    = "yaml"
	LanguageUnknown = "N/A"
)

var extensionLanguages = map[string]string{
	".json":    LanguageJSON,
	".geojson": LanguageJSON,
	".yml":     LanguageYAML,
	".yaml":    LanguageYAML,
	".ts":      "typescript",
	".mts":     "typescript",
	".cts":     "typescript",
	".tsx":     "tsx",
	".js":      "javascript",
	".mjs":     "javascript",
	".cjs":     "javascript",
	".jsx":     "javascript",
	".go":      "go",
	".py":      "python",
}

// DetectLanguage returns the language for a file path based on its extension,
// or LanguageUnknown.
func DetectLanguage(path string) string {
	if strings.TrimSpace(path) == "" {
		return LanguageUnknown
	}
	if lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return LanguageUnknown
}

// IsDataLanguage reports whether lang is parsed by this package rather than
// by a syntax-tree extractor. Files of unknown language are read as JSON.
func IsDataLanguage(lang string) bool {
	switch lang {
	case LanguageJSON, LanguageYAML, LanguageUnknown, "":
		return true
	}
	return false
}

// frame is one open container on the decode stack.
type frame struct {
	object    *models.JSONObject
	array     models.JSONArray
	isObject  bool
	key       string
	expectKey bool
}

// Parse converts JSON data from an io.Reader into a Document. Object keys keep
// their document order.
func Parse(reader io.Reader) (models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read JSON input", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Ensure numbers are read as json.Number

	rootValue, err := decodeValue(decoder)
	if err != nil {
		return models.Document{}, err
	}

	// Anything other than EOF after the root value is an error.
	_, err = decoder.Token()
	switch {
	case stderrors.Is(err, io.EOF):
	case err != nil:
		return models.Document{}, errors.NewParsingError(
			fmt.Sprintf("invalid trailing data after first JSON value: %v", err),
			errors.ErrInvalidJSON,
		)
	default:
		return models.Document{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	// The token stream does not report separators, so commas and colons
	// are checked against the whole input.
	if !json.Valid(data) {
		return models.Document{}, errors.NewParsingError("malformed JSON: misplaced or missing separator", errors.ErrInvalidJSON)
	}

	return newDocument(rootValue, LanguageJSON), nil
}

func syntaxError(format string, args ...any) error {
	return errors.NewParsingError(fmt.Sprintf(format, args...), errors.ErrInvalidJSON)
}

// decodeValue reads exactly one JSON value from the token stream. Containers
// are tracked on an explicit stack so deeply nested input does not grow the
// call stack. Every token is checked against the container it appears in.
func decodeValue(decoder *json.Decoder) (models.JSONValue, error) {
	var (
		stack []*frame
		root  models.JSONValue
		done  bool
		first = true
	)

	attach := func(v models.JSONValue) error {
		if len(stack) == 0 {
			root = v
			done = true
			return nil
		}
		top := stack[len(stack)-1]
		if top.isObject {
			if top.expectKey {
				return syntaxError("object key must be a string, got %s", describeToken(v))
			}
			top.object.Set(top.key, v)
			top.expectKey = true
			return nil
		}
		top.array = append(top.array, v)
		return nil
	}

	for !done {
		tok, err := decoder.Token()
		if err != nil {
			if stderrors.Is(err, io.EOF) {
				if first {
					return nil, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
				}
				return nil, syntaxError("unexpected end of JSON input")
			}
			var syntaxErr *json.SyntaxError
			if stderrors.As(err, &syntaxErr) {
				return nil, syntaxError("JSON syntax error at offset %d", syntaxErr.Offset)
			}
			return nil, syntaxError("failed to decode JSON: %v", err)
		}
		first = false

		var value models.JSONValue
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				if n := len(stack); n > 0 && stack[n-1].isObject && stack[n-1].expectKey {
					return nil, syntaxError("object key must be a string, got an object")
				}
				stack = append(stack, &frame{object: models.NewJSONObject(0), isObject: true, expectKey: true})
				continue
			case '[':
				if n := len(stack); n > 0 && stack[n-1].isObject && stack[n-1].expectKey {
					return nil, syntaxError("object key must be a string, got an array")
				}
				stack = append(stack, &frame{array: models.JSONArray{}})
				continue
			case '}', ']':
				if len(stack) == 0 {
					return nil, syntaxError("unexpected %q", rune(v))
				}
				top := stack[len(stack)-1]
				switch {
				case v == '}' && !top.isObject, v == ']' && top.isObject:
					return nil, syntaxError("mismatched %q", rune(v))
				case top.isObject && !top.expectKey:
					return nil, syntaxError("missing value for key %q", top.key)
				}
				stack = stack[:len(stack)-1]
				if top.isObject {
					value = top.object
				} else {
					value = top.array
				}
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].isObject && stack[n-1].expectKey {
				stack[n-1].key = v
				stack[n-1].expectKey = false
				continue
			}
			value = v
		case json.Number:
			if !validNumber(string(v)) {
				return nil, syntaxError("invalid number literal %q", string(v))
			}
			value = stdjson.Number(string(v))
		case float64:
			value = stdjson.Number(strconv.FormatFloat(v, 'g', -1, 64))
		case bool:
			value = v
		case nil:
			value = nil
		default:
			return nil, syntaxError("unexpected JSON token %T", tok)
		}

		if err := attach(value); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func describeToken(v models.JSONValue) string {
	switch v.(type) {
	case *models.JSONObject:
		return "an object"
	case models.JSONArray:
		return "an array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// validNumber reports whether s is a JSON number: an optional minus, an
// integer part without leading zeros, then optional fraction and exponent.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		if i == len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		if i == len(s) || !isDigit(s[i]) {
			return false
		}
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func newDocument(root models.JSONValue, language string) models.Document {
	_, isArray := root.(models.JSONArray)
	return models.Document{
		Root:        root,
		RootIsArray: isArray,
		Language:    language,
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	// An empty string reader gives io.EOF to the decoder; report it as input error instead.
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseData parses a data document in the given language.
func ParseData(reader io.Reader, language string) (models.Document, error) {
	switch language {
	case LanguageJSON, LanguageUnknown, "":
		return Parse(reader)
	case LanguageYAML:
		return ParseYAML(reader)
	default:
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("language '%s' is not a data language", language),
			errors.ErrUnsupportedLanguage,
		)
	}
}

// ParseFile parses a JSON or YAML file, choosing the parser by extension.
func ParseFile(filePath string) (models.Document, error) {
	content, err := ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}

	doc, err := ParseData(bytes.NewReader(content), DetectLanguage(filePath))
	if err != nil {
		return models.Document{}, err
	}
	doc.Source = filePath
	return doc, nil
}

// ReadFile reads a non-empty input file.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(content) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return content, nil
}
