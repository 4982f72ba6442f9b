package output

import (
	"encoding/json"
	"io"
	"sort"

	"go.yaml.in/yaml/v3"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format formats data as YAML. json.Number values from DecodeJSON are
// written as plain numeric scalars with their digits intact.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	node, err := toNode(data)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case json.Number:
		// Untagged plain scalar: digits beyond 64 bits are written as-is.
		return &yaml.Node{Kind: yaml.ScalarNode, Value: val.String()}, nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range keys {
			key := &yaml.Node{}
			if err := key.Encode(k); err != nil {
				return nil, err
			}
			child, err := toNode(val[k])
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, key, child)
		}
		return node, nil

	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, err
		}
		return node, nil
	}
}
