package domain

// NodeType represents the kind of network interface a node stands for
type NodeType string

const (
	NodeTypeInterface NodeType = "interface"
	NodeTypeBond      NodeType = "bond"
	NodeTypeBridge    NodeType = "bridge"
	NodeTypeAlias     NodeType = "alias"
	NodeTypeLoopback  NodeType = "loopback"
)

// Node represents one interface of an analyzed host in an exported graph
type Node struct {
	ID         string         `json:"id"`
	Type       NodeType       `json:"type"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
	Source     string         `json:"source,omitempty"`
}

// NewNode creates a new node with initialized properties
func NewNode(id string, nodeType NodeType, label string) *Node {
	return &Node{
		ID:         id,
		Type:       nodeType,
		Label:      label,
		Properties: make(map[string]any),
	}
}

// SetProperty sets a property value
func (n *Node) SetProperty(key string, value any) {
	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}
	n.Properties[key] = value
}

// GetProperty gets a property value
func (n *Node) GetProperty(key string) (any, bool) {
	if n.Properties == nil {
		return nil, false
	}
	val, ok := n.Properties[key]
	return val, ok
}

// GetPropertyString gets a property as a string
func (n *Node) GetPropertyString(key string) string {
	val, ok := n.GetProperty(key)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
