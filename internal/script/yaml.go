package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML list of ops. Each item is a mapping with an
// "op" key naming the kind; the remaining keys are its arguments.
//
//   - op: connect
//     net: n1
//     port: A.Q
func ParseYAML(data []byte) ([]Op, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return DecodeNodes(nodes)
}

// DecodeNodes decodes already-parsed YAML op items. Errors name the item
// index and its source line.
func DecodeNodes(nodes []yaml.Node) ([]Op, error) {
	ops := make([]Op, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		op, err := decodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("op %d (line %d): %w", i+1, n.Line, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeNode(n *yaml.Node) (Op, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping")
	}
	var m map[string]any
	if err := n.Decode(&m); err != nil {
		return nil, err
	}
	kind, ok := m["op"].(string)
	if !ok || kind == "" {
		return nil, fmt.Errorf("missing op kind")
	}
	delete(m, "op")
	return Decode(kind, m)
}

// ParseFile reads a script file. Files ending in .yaml or .yml are YAML;
// anything else is the text format.
func ParseFile(path string) ([]Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(filepath.Base(path), string(data))
	}
}
