package domain

import (
	"testing"
)

func TestNewNode(t *testing.T) {
	node := NewNode("bond0", NodeTypeBond, "bond0")

	if node.ID != "bond0" {
		t.Errorf("expected ID 'bond0', got %s", node.ID)
	}
	if node.Type != NodeTypeBond {
		t.Errorf("expected type %s, got %s", NodeTypeBond, node.Type)
	}
	if node.Properties == nil {
		t.Error("expected Properties to be initialized")
	}
}

func TestNodeSetGetProperty(t *testing.T) {
	node := NewNode("eth0", NodeTypeInterface, "eth0")

	t.Run("set and get string property", func(t *testing.T) {
		node.SetProperty("ipv4_address", "192.168.1.1")
		val, ok := node.GetProperty("ipv4_address")
		if !ok {
			t.Error("expected property to exist")
		}
		if val != "192.168.1.1" {
			t.Errorf("expected '192.168.1.1', got %v", val)
		}
	})

	t.Run("get non-existent property", func(t *testing.T) {
		_, ok := node.GetProperty("nonexistent")
		if ok {
			t.Error("expected property not to exist")
		}
	})

	t.Run("set property on nil map initializes map", func(t *testing.T) {
		node := &Node{}
		node.SetProperty("key", "value")
		if node.Properties == nil {
			t.Error("expected Properties to be initialized")
		}
	})
}

func TestGetPropertyString(t *testing.T) {
	node := NewNode("eth0", NodeTypeInterface, "eth0")

	t.Run("returns string value", func(t *testing.T) {
		node.SetProperty("module", "igb")
		if val := node.GetPropertyString("module"); val != "igb" {
			t.Errorf("expected 'igb', got %s", val)
		}
	})

	t.Run("returns empty string for non-string value", func(t *testing.T) {
		node.SetProperty("mtu", 1500)
		if val := node.GetPropertyString("mtu"); val != "" {
			t.Errorf("expected empty string, got %s", val)
		}
	})

	t.Run("returns empty string for non-existent property", func(t *testing.T) {
		if val := node.GetPropertyString("nonexistent"); val != "" {
			t.Errorf("expected empty string, got %s", val)
		}
	})
}

func TestGraphFragment(t *testing.T) {
	fragment := NewGraphFragment()
	fragment.AddNode(*NewNode("eth0", NodeTypeInterface, "eth0"))
	fragment.AddNode(*NewNode("br0", NodeTypeBridge, "br0"))
	fragment.AddEdge(*NewEdge("eth0", "br0", EdgeTypeVirtual))

	t.Run("find node", func(t *testing.T) {
		if n := fragment.FindNode("br0"); n == nil || n.Type != NodeTypeBridge {
			t.Errorf("expected bridge node br0, got %v", n)
		}
		if n := fragment.FindNode("missing"); n != nil {
			t.Errorf("expected nil for missing node, got %v", n)
		}
	})

	t.Run("edges of type", func(t *testing.T) {
		if got := len(fragment.EdgesOfType(EdgeTypeVirtual)); got != 1 {
			t.Errorf("expected 1 virtual edge, got %d", got)
		}
		if got := len(fragment.EdgesOfType(EdgeTypeAggregation)); got != 0 {
			t.Errorf("expected 0 aggregation edges, got %d", got)
		}
	})
}
