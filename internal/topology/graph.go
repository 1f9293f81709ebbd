package topology

import (
	"slices"
	"sort"
	"strings"

	"sxnet/internal/domain"
	"sxnet/internal/netsrc"
)

// Input is the set of already-loaded sources for one host. A nil slice or map
// means the source was absent.
type Input struct {
	Hosts      netsrc.HostsTable
	Interfaces []netsrc.InterfaceRecord
	// Configs maps an interface name to the raw lines of its ifcfg file
	Configs    map[string][]string
	Directives []netsrc.ModuleDirective
	// ProcNet maps a /proc/net (or /proc/net/bonding) file name to its lines
	ProcNet map[string][]string
	// Commands maps a networking command key such as ethtool_-i_eth0 to its output
	Commands map[string][]string
}

// Graph owns every node of one host keyed by interface name. Relations are kept
// in tables keyed by name; every stored relation names a node present in nodes.
type Graph struct {
	nodes   map[string]*Node
	names   []string
	slaves  map[string][]string
	parents map[string]string
	bridges map[string]string
}

// NewGraph builds the nodes for every interface record and resolves their relations
func NewGraph(in Input) *Graph {
	hosts := in.Hosts
	if hosts == nil {
		hosts = netsrc.HostsTable{}
	}
	src := &sources{
		hosts:      hosts,
		directives: in.Directives,
		procNet:    in.ProcNet,
		driverInfo: netsrc.DriverInfoByInterface(in.Commands),
	}

	g := &Graph{
		nodes:   make(map[string]*Node),
		slaves:  make(map[string][]string),
		parents: make(map[string]string),
		bridges: make(map[string]string),
	}

	for _, rec := range in.Interfaces {
		if rec.Name == "" {
			continue
		}
		if _, exists := g.nodes[rec.Name]; exists {
			continue
		}
		config := netsrc.ParseIfcfg(in.Configs[rec.Name])
		g.nodes[rec.Name] = newNode(rec, config, src)
		g.names = append(g.names, rec.Name)
	}
	sort.Strings(g.names)

	g.Resolve()
	return g
}

// Resolve runs the bonding, alias and bridge passes. Running it again does not
// change the result.
func (g *Graph) Resolve() {
	g.resolveBonding()
	g.resolveAliases()
	g.resolveBridges()
}

func (g *Graph) resolveBonding() {
	for _, name := range g.names {
		master := g.nodes[name].BondedMaster()
		if master == "" || master == name {
			continue
		}
		if _, ok := g.nodes[master]; !ok {
			continue
		}
		if !slices.Contains(g.slaves[master], name) {
			g.slaves[master] = append(g.slaves[master], name)
		}
	}
}

func (g *Graph) resolveAliases() {
	for _, name := range g.names {
		if parent, ok := g.aliasBase(name); ok {
			g.parents[name] = parent
		}
	}
}

// aliasBase checks the dot form (eth0.100) before the colon form (eth0:1)
func (g *Graph) aliasBase(name string) (string, bool) {
	for _, sep := range []string{".", ":"} {
		parts := strings.Split(name, sep)
		if len(parts) != 2 || parts[0] == name {
			continue
		}
		if _, ok := g.nodes[parts[0]]; ok {
			return parts[0], true
		}
	}
	return "", false
}

func (g *Graph) resolveBridges() {
	for _, name := range g.names {
		bridge := g.nodes[name].BridgeName()
		if bridge == "" || bridge == name {
			continue
		}
		if _, ok := g.nodes[bridge]; ok {
			g.bridges[name] = bridge
		}
	}
}

// Len returns the number of interfaces in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node for an interface name, or nil
func (g *Graph) Node(name string) *Node {
	return g.nodes[name]
}

// Nodes returns every node sorted by interface name
func (g *Graph) Nodes() []*Node {
	return g.filter(func(*Node) bool { return true })
}

// BondedMasters returns the bonding masters sorted by interface name
func (g *Graph) BondedMasters() []*Node {
	return g.filter((*Node).IsBondedMaster)
}

// Bridged returns the bridge members sorted by interface name
func (g *Graph) Bridged() []*Node {
	return g.filter((*Node).IsBridged)
}

func (g *Graph) filter(keep func(*Node) bool) []*Node {
	out := make([]*Node, 0, len(g.names))
	for _, name := range g.names {
		if n := g.nodes[name]; keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// BondedSlaves returns the slaves registered for a master, in resolution order
func (g *Graph) BondedSlaves(name string) []*Node {
	out := make([]*Node, 0, len(g.slaves[name]))
	for _, slave := range g.slaves[name] {
		out = append(out, g.nodes[slave])
	}
	return out
}

// ParentAlias returns the base interface of a VLAN or alias sub-interface, or nil
func (g *Graph) ParentAlias(name string) *Node {
	if parent, ok := g.parents[name]; ok {
		return g.nodes[parent]
	}
	return nil
}

// BridgeParent returns the virtual bridge an interface is a member of, or nil
func (g *Graph) BridgeParent(name string) *Node {
	if bridge, ok := g.bridges[name]; ok {
		return g.nodes[bridge]
	}
	return nil
}

// AliasMap inverts the parent relation: base interface name to its sub-interfaces
// in name order.
func (g *Graph) AliasMap() map[string][]*Node {
	out := make(map[string][]*Node)
	for _, name := range g.names {
		if parent, ok := g.parents[name]; ok {
			out[parent] = append(out[parent], g.nodes[name])
		}
	}
	return out
}

// Kind classifies a node for export and metrics
func (g *Graph) Kind(n *Node) domain.NodeType {
	switch {
	case n.IsBondedMaster():
		return domain.NodeTypeBond
	case n.IsVirtualBridge():
		return domain.NodeTypeBridge
	case g.parents[n.Name] != "":
		return domain.NodeTypeAlias
	case n.Name == "lo" || n.HasState("LOOPBACK"):
		return domain.NodeTypeLoopback
	default:
		return domain.NodeTypeInterface
	}
}
