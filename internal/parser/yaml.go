package parser

import (
	stdjson "encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseYAML converts the first YAML document read from reader into a
// Document. Mapping keys keep their document order, aliases are resolved and
// merge keys are expanded.
func ParseYAML(reader io.Reader) (models.Document, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(reader).Decode(&node); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.Document{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.Document{}, errors.NewParsingError(fmt.Sprintf("YAML syntax error: %v", err), errors.ErrInvalidYAML)
	}

	root, err := convertYAMLNode(&node)
	if err != nil {
		return models.Document{}, errors.NewParsingError(err.Error(), errors.ErrInvalidYAML)
	}
	return newDocument(root, LanguageYAML), nil
}

// convertYAMLNode maps a yaml.Node onto the JSON-like value model.
func convertYAMLNode(node *yaml.Node) (models.JSONValue, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return convertYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return convertYAMLNode(node.Alias)
	case yaml.SequenceNode:
		arr := make(models.JSONArray, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := convertYAMLNode(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		return convertYAMLMapping(node)
	case yaml.ScalarNode:
		return convertYAMLScalar(node)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

func convertYAMLMapping(node *yaml.Node) (models.JSONValue, error) {
	obj := models.NewJSONObject(len(node.Content) / 2)
	var merges []*yaml.Node

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			merges = append(merges, valueNode)
			continue
		}
		if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
			keyNode = keyNode.Alias
		}
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("mapping key at line %d is not a scalar", keyNode.Line)
		}
		value, err := convertYAMLNode(valueNode)
		if err != nil {
			return nil, err
		}
		obj.Set(keyNode.Value, value)
	}

	// Explicit keys win over merged ones.
	for _, m := range merges {
		if err := mergeYAML(obj, m); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func mergeYAML(obj *models.JSONObject, node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind == yaml.SequenceNode {
		for _, item := range node.Content {
			if err := mergeYAML(obj, item); err != nil {
				return err
			}
		}
		return nil
	}
	value, err := convertYAMLNode(node)
	if err != nil {
		return err
	}
	source, ok := value.(*models.JSONObject)
	if !ok {
		return fmt.Errorf("merge value at line %d is not a mapping", node.Line)
	}
	source.Range(func(key string, v models.JSONValue) bool {
		if _, exists := obj.Get(key); !exists {
			obj.Set(key, v)
		}
		return true
	})
	return nil
}

func convertYAMLScalar(node *yaml.Node) (models.JSONValue, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("invalid boolean at line %d: %w", node.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// Out of int64 range; keep the literal.
			return stdjson.Number(node.Value), nil
		}
		return stdjson.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid float at line %d: %w", node.Line, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			// No JSON number for these.
			return node.Value, nil
		}
		return stdjson.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
