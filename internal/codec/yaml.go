package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"sxnet/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlFragment represents the YAML document for one host
type yamlFragment struct {
	Host       string     `yaml:"host,omitempty"`
	Interfaces []yamlNode `yaml:"interfaces"`
	Relations  []yamlEdge `yaml:"relations,omitempty"`
}

type yamlNode struct {
	Name       string         `yaml:"name"`
	Kind       string         `yaml:"kind"`
	Label      string         `yaml:"label,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
	Source     string         `yaml:"source,omitempty"`
}

type yamlEdge struct {
	ID         string         `yaml:"id,omitempty"`
	From       string         `yaml:"from"`
	To         string         `yaml:"to"`
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// Parse reads a graph fragment from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.GraphFragment, error) {
	var yf yamlFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fragment := domain.NewGraphFragment()
	fragment.Host = yf.Host

	for _, yn := range yf.Interfaces {
		fragment.AddNode(domain.Node{
			ID:         yn.Name,
			Type:       domain.NodeType(yn.Kind),
			Label:      yn.Label,
			Properties: yn.Properties,
			Source:     yn.Source,
		})
	}

	for _, ye := range yf.Relations {
		fragment.AddEdge(domain.Edge{
			ID:         ye.ID,
			FromID:     ye.From,
			ToID:       ye.To,
			Type:       domain.EdgeType(ye.Type),
			Properties: ye.Properties,
		})
	}

	if err := normalize(fragment); err != nil {
		return nil, fmt.Errorf("invalid graph: %w", err)
	}
	return fragment, nil
}

// Export writes a graph fragment as YAML
func (c *YAMLCodec) Export(fragment *domain.GraphFragment, w io.Writer) error {
	yf := yamlFragment{
		Host:       fragment.Host,
		Interfaces: make([]yamlNode, 0, len(fragment.Nodes)),
		Relations:  make([]yamlEdge, 0, len(fragment.Edges)),
	}

	for _, node := range fragment.Nodes {
		label := node.Label
		if label == node.ID {
			label = ""
		}
		yf.Interfaces = append(yf.Interfaces, yamlNode{
			Name:       node.ID,
			Kind:       string(node.Type),
			Label:      label,
			Properties: node.Properties,
			Source:     node.Source,
		})
	}

	for _, edge := range fragment.Edges {
		yf.Relations = append(yf.Relations, yamlEdge{
			ID:         edge.ID,
			From:       edge.FromID,
			To:         edge.ToID,
			Type:       string(edge.Type),
			Properties: edge.Properties,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
