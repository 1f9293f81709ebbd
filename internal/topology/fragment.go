package topology

import (
	"sxnet/internal/domain"
)

// Fragment exports the graph as a portable GraphFragment. Nodes are emitted in
// name order, followed by aggregation, vlan and virtual edges.
func (g *Graph) Fragment(source string) *domain.GraphFragment {
	frag := domain.NewGraphFragment()

	for _, n := range g.Nodes() {
		node := domain.NewNode(n.Name, g.Kind(n), n.Name)
		node.Source = source
		setIfPresent(node, "module", n.Module())
		setIfPresent(node, "hw_address", n.HardwareAddress)
		setIfPresent(node, "ipv4_address", n.IPv4Address)
		setIfPresent(node, "subnet_mask", n.SubnetMask)
		setIfPresent(node, "boot_protocol", n.BootProtocol())
		if n.MTU >= 0 {
			node.SetProperty("mtu", n.MTU)
		}
		if len(n.States) > 0 {
			node.SetProperty("states", n.States)
		}
		if len(n.Hostnames()) > 0 {
			node.SetProperty("hostnames", n.Hostnames())
		}
		node.SetProperty("onboot", n.IsOnBoot())
		if n.IsBondedMaster() {
			node.SetProperty("bonding_mode", int(n.BondedModeNumber()))
			node.SetProperty("bonding_mode_name", n.BondedModeName())
			setIfPresent(node, "bonding_opts", n.BondedOptions())
		}
		frag.AddNode(*node)
	}

	for _, master := range g.names {
		for _, slave := range g.slaves[master] {
			frag.AddEdge(*domain.NewEdge(slave, master, domain.EdgeTypeAggregation))
		}
	}
	for _, name := range g.names {
		if parent, ok := g.parents[name]; ok {
			frag.AddEdge(*domain.NewEdge(name, parent, domain.EdgeTypeVLAN))
		}
	}
	for _, name := range g.names {
		if bridge, ok := g.bridges[name]; ok {
			frag.AddEdge(*domain.NewEdge(name, bridge, domain.EdgeTypeVirtual))
		}
	}

	return frag
}

func setIfPresent(node *domain.Node, key, value string) {
	if value != "" {
		node.SetProperty(key, value)
	}
}
