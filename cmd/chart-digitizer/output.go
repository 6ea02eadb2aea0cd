package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// encode renders v as indented JSON or as YAML. YAML keeps the JSON field
// names and order because it is produced from the JSON document.
func encode(v interface{}, format string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}

	switch format {
	case "", "json":
		return append(data, '\n'), nil
	case "yaml":
		return jsonToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// extension returns the file extension for an output format.
func extension(format string) string {
	if format == "yaml" {
		return ".yaml"
	}
	return ".json"
}

func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle drops the flow and quoting styles inherited from JSON. Strings
// that would read as another type stay quoted.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
