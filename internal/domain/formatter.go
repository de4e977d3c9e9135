package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const notationIndent = "  "

// FormatResponse renders a payload in the configured response format.
// FormatJSON produces indented JSON. FormatNotation produces a compact
// indentation-based rendering without JSON punctuation, which spends far
// fewer tokens when the output is consumed by a language model.
func FormatResponse(v interface{}, format ResponseFormat) (string, error) {
	if format == FormatNotation {
		return formatNotation(v)
	}
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}
	return string(encoded), nil
}

// formatNotation renders a value as indentation-based notation. The value
// is first encoded to JSON, then decoded token by token into a tree that
// preserves the encoder's key order: struct fields keep declaration order
// and map keys are sorted, so the rendering is deterministic.
func formatNotation(v interface{}) (string, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	root, err := decodeNotationTree(decoder)
	if err != nil {
		return "", fmt.Errorf("failed to decode response tree: %w", err)
	}

	return strings.Join(renderNotation(root), "\n"), nil
}

// objectNode is a JSON object with its key order preserved.
type objectNode struct {
	keys   []string
	values []interface{}
}

// decodeNotationTree reads one JSON value from the decoder into a tree of
// objectNode, []interface{}, string, json.Number, bool, and nil.
func decodeNotationTree(decoder *json.Decoder) (interface{}, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := token.(json.Delim)
	if !ok {
		// Scalar token: string, json.Number, bool, or nil
		return token, nil
	}

	switch delim {
	case '{':
		node := &objectNode{}
		for decoder.More() {
			keyToken, err := decoder.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyToken.(string)
			if !ok {
				return nil, fmt.Errorf("expected object key, got %v", keyToken)
			}
			value, err := decodeNotationTree(decoder)
			if err != nil {
				return nil, err
			}
			node.keys = append(node.keys, key)
			node.values = append(node.values, value)
		}
		// Consume the closing brace
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return node, nil
	case '[':
		var elements []interface{}
		for decoder.More() {
			element, err := decodeNotationTree(decoder)
			if err != nil {
				return nil, err
			}
			elements = append(elements, element)
		}
		// Consume the closing bracket
		if _, err := decoder.Token(); err != nil {
			return nil, err
		}
		return elements, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// renderNotation renders a decoded tree into indented lines.
func renderNotation(value interface{}) []string {
	switch node := value.(type) {
	case *objectNode:
		if len(node.keys) == 0 {
			return []string{"{}"}
		}
		return renderObject(node, 0)
	case []interface{}:
		if inline, ok := inlineList(node); ok {
			return []string{inline}
		}
		return renderList(node, 0)
	case string:
		return strings.Split(node, "\n")
	default:
		return []string{scalarText(value)}
	}
}

// renderObject renders an object's entries at the given indent level.
// Entries with null values are omitted.
func renderObject(node *objectNode, indent int) []string {
	prefix := strings.Repeat(notationIndent, indent)
	var lines []string

	for i, key := range node.keys {
		value := node.values[i]
		if value == nil {
			continue
		}

		switch typed := value.(type) {
		case *objectNode:
			if len(typed.keys) == 0 {
				lines = append(lines, prefix+key+": {}")
				continue
			}
			lines = append(lines, prefix+key+":")
			lines = append(lines, renderObject(typed, indent+1)...)
		case []interface{}:
			if inline, ok := inlineList(typed); ok {
				lines = append(lines, prefix+key+": "+inline)
				continue
			}
			lines = append(lines, prefix+key+":")
			lines = append(lines, renderList(typed, indent+1)...)
		case string:
			if strings.Contains(typed, "\n") {
				lines = append(lines, prefix+key+":")
				for _, part := range strings.Split(typed, "\n") {
					lines = append(lines, prefix+notationIndent+part)
				}
				continue
			}
			if typed == "" {
				lines = append(lines, prefix+key+":")
				continue
			}
			lines = append(lines, prefix+key+": "+typed)
		default:
			lines = append(lines, prefix+key+": "+scalarText(value))
		}
	}

	if len(lines) == 0 {
		// Every value was null
		return []string{prefix + "{}"}
	}
	return lines
}

// renderList renders list elements at the given indent level, one dash per
// element. A block element's first line shares the dash; its continuation
// lines are aligned under it.
func renderList(elements []interface{}, indent int) []string {
	prefix := strings.Repeat(notationIndent, indent)
	var lines []string

	for _, element := range elements {
		var block []string
		switch typed := element.(type) {
		case *objectNode:
			block = renderObject(typed, 0)
		case []interface{}:
			if inline, ok := inlineList(typed); ok {
				block = []string{inline}
			} else {
				block = renderList(typed, 0)
			}
		case string:
			block = strings.Split(typed, "\n")
		default:
			block = []string{scalarText(element)}
		}

		for i, line := range block {
			if i == 0 {
				lines = append(lines, prefix+"- "+line)
			} else {
				lines = append(lines, prefix+notationIndent+line)
			}
		}
	}

	return lines
}

// inlineList renders a list on a single line when every element is a
// single-line scalar. Empty lists always render inline as [].
func inlineList(elements []interface{}) (string, bool) {
	if len(elements) == 0 {
		return "[]", true
	}

	parts := make([]string, 0, len(elements))
	for _, element := range elements {
		switch typed := element.(type) {
		case *objectNode, []interface{}:
			return "", false
		case string:
			if strings.Contains(typed, "\n") {
				return "", false
			}
			parts = append(parts, typed)
		default:
			parts = append(parts, scalarText(element))
		}
	}

	return "[" + strings.Join(parts, ", ") + "]", true
}

// scalarText renders a scalar token as literal text. Numbers keep the
// exact representation the JSON encoder produced.
func scalarText(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return "null"
	case json.Number:
		return typed.String()
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case string:
		return typed
	default:
		return fmt.Sprintf("%v", typed)
	}
}
