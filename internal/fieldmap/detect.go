package fieldmap

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScalarField is the single field name used when a payload has no structure.
const ScalarField = "value"

// Detect decides whether a raw secret value is a structured multi-field
// record or an opaque scalar and builds the field map accordingly.
//
// A JSON object yields one field per member, in document order. A YAML
// mapping (that is not a JSON object) yields one field per entry, in
// document order. Anything else, including structured parses that produce
// zero fields, collapses to {"value": raw}. Detect never fails.
func Detect(raw string) *FieldMap {
	if m := detectJSON(raw); m != nil && m.Len() > 0 {
		return m
	}
	if m := detectYAML(raw); m != nil && m.Len() > 0 {
		return m
	}
	m := New()
	m.Set(ScalarField, []byte(raw))
	return m
}

// detectJSON returns a field map when raw is exactly one JSON object.
// The token stream is walked directly so member order is preserved;
// non-string members keep their compact JSON form.
func detectJSON(raw string) *FieldMap {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	m := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		var rawValue json.RawMessage
		if err := dec.Decode(&rawValue); err != nil {
			return nil
		}
		m.Set(key, jsonFieldValue(rawValue))
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return nil
	}
	if _, err := dec.Token(); err != io.EOF { // trailing content
		return nil
	}
	return m
}

func jsonFieldValue(raw json.RawMessage) []byte {
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return []byte(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// detectYAML returns a field map when raw is a single-document YAML mapping
// with scalar keys. Scalar values are stringified in a locale-independent
// form; nested values are re-serialized canonically and trimmed of the
// trailing newline yaml.Marshal appends.
func detectYAML(raw string) *FieldMap {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}

	m := New()
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil
		}

		if s, ok := stringifyScalar(valueNode); ok {
			m.Set(keyNode.Value, []byte(s))
			continue
		}

		out, err := yaml.Marshal(valueNode)
		if err != nil {
			return nil
		}
		m.Set(keyNode.Value, []byte(strings.TrimSuffix(string(out), "\n")))
	}
	return m
}

func stringifyScalar(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode {
		return "", false
	}

	var v interface{}
	if err := node.Decode(&v); err != nil {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	case nil:
		return "null", true
	default:
		// Timestamps and other typed scalars take the canonical path.
		return "", false
	}
}
