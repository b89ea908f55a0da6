package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

// Legacy writes doc through the yaml.v3 encoder with generic quoting:
// strings that need quotes get single quotes and everything else is left to
// the encoder. The result is meant to be passed through normalize.Apply.
func Legacy(doc *types.Node) (string, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indentWidth)

	if err := enc.Encode(toYAMLNode(doc)); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to flush YAML: %w", err)
	}

	return buf.String(), nil
}

func toYAMLNode(n *types.Node) *yaml.Node {
	switch n.Kind() {
	case types.KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if n.Len() == 0 {
			out.Style = yaml.FlowStyle
		}
		n.Each(func(key string, value *types.Node) {
			out.Content = append(out.Content, keyNode(key), toYAMLNode(value))
		})
		return out
	case types.KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if n.Len() == 0 {
			out.Style = yaml.FlowStyle
		}
		for _, item := range n.Items() {
			out.Content = append(out.Content, toYAMLNode(item))
		}
		return out
	case types.KindString:
		s, _ := n.Str()
		return stringNode(s)
	case types.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: n.Literal()}
	case types.KindNumber:
		// No tag: the encoder resolves the literal itself and writes it bare.
		return &yaml.Node{Kind: yaml.ScalarNode, Value: n.Literal()}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func stringNode(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if Safe(s) == SingleQuoted {
		node.Style = yaml.SingleQuotedStyle
	}
	return node
}

func keyNode(key string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	if KeyStyle(key) == SingleQuoted {
		node.Style = yaml.SingleQuotedStyle
	}
	return node
}
