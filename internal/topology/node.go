package topology

import (
	"fmt"
	"strings"
	"sync"

	"sxnet/internal/netsrc"
)

// Configuration keys read from ifcfg-<iface> files
const (
	KeyIPAddr      = "IPADDR"
	KeyNetmask     = "NETMASK"
	KeyPrefix      = "PREFIX"
	KeyHWAddr      = "HWADDR"
	KeyBootProto   = "BOOTPROTO"
	KeyOnBoot      = "ONBOOT"
	KeyMaster      = "MASTER"
	KeySlave       = "SLAVE"
	KeyBondingOpts = "BONDING_OPTS"
	KeyBridge      = "BRIDGE"
	KeyType        = "TYPE"
)

// sources are the host-wide inputs shared by every node of a graph
type sources struct {
	hosts      netsrc.HostsTable
	directives []netsrc.ModuleDirective
	procNet    map[string][]string
	driverInfo map[string]map[string]string
}

// Node is one interface enriched with its configuration and the host-wide sources.
// Identity fields are fixed at construction; relations live on the owning Graph.
type Node struct {
	netsrc.InterfaceRecord

	config    netsrc.ConfigMap
	src       *sources
	hostnames []string

	modeOnce sync.Once
	mode     BondingMode
}

// newNode applies the configuration fallback: enumeration output wins when both
// sources carry a value.
func newNode(rec netsrc.InterfaceRecord, config netsrc.ConfigMap, src *sources) *Node {
	ipv4Addr := rec.IPv4Address
	if ipv4Addr == "" {
		ipv4Addr = config.Get(KeyIPAddr)
	}
	mask := rec.SubnetMask
	if mask == "" {
		mask = config.Get(KeyNetmask)
	}
	if mask == "" {
		mask = config.Get(KeyPrefix)
	}
	hwAddr := rec.HardwareAddress
	if hwAddr == "" {
		hwAddr = config.Get(KeyHWAddr)
	}

	n := &Node{
		InterfaceRecord: netsrc.NewInterfaceRecord(rec.Name, hwAddr, ipv4Addr, mask, rec.States, rec.MTU),
		config:          config,
		src:             src,
		mode:            BondingModeUnknown,
	}
	n.hostnames = src.hosts.Lookup(n.IPv4Address)
	return n
}

// Config returns the raw configuration value for key, or an empty string
func (n *Node) Config(key string) string {
	return n.config.Get(key)
}

// ConfigMap returns a copy of the interface configuration
func (n *Node) ConfigMap() netsrc.ConfigMap {
	out := make(netsrc.ConfigMap, len(n.config))
	for k, v := range n.config {
		out[k] = v
	}
	return out
}

// Hostnames returns the names the hosts table lists for this interface's address
func (n *Node) Hostnames() []string {
	return n.hostnames
}

// HasHostnameMapped reports whether hostname appears anywhere in the hosts table,
// not only against this interface.
func (n *Node) HasHostnameMapped(hostname string) bool {
	return n.src.hosts.Contains(hostname)
}

// IsOnBoot reports whether the interface is configured to start at boot
func (n *Node) IsOnBoot() bool {
	return strings.EqualFold(n.config.Get(KeyOnBoot), "yes")
}

// Module returns the kernel module driving the interface: a modprobe alias first,
// then the driver reported by ethtool -i.
func (n *Node) Module() string {
	for _, d := range n.src.directives {
		if d.Command == netsrc.ModuleAlias && d.Wildcard == n.Name {
			return d.ModuleName
		}
	}
	if info, ok := n.src.driverInfo[n.Name]; ok {
		return info["driver"]
	}
	return ""
}

// DriverInfo returns the parsed ethtool -i output for the interface
func (n *Node) DriverInfo() map[string]string {
	if info, ok := n.src.driverInfo[n.Name]; ok {
		return info
	}
	return map[string]string{}
}

// BootProtocol returns BOOTPROTO, reporting "static" for the common
// BOOTPROTO=none with IPADDR set.
func (n *Node) BootProtocol() string {
	proto := n.config.Get(KeyBootProto)
	if strings.EqualFold(proto, "none") && n.config.Get(KeyIPAddr) != "" {
		return "static"
	}
	return proto
}

// IsBondedMaster reports whether the interface is a bonding master
func (n *Node) IsBondedMaster() bool {
	return strings.EqualFold(n.Module(), "bonding") || n.BondedModeNumber() >= 0
}

// IsBondedSlave reports whether the interface is configured as a bonding slave
func (n *Node) IsBondedSlave() bool {
	return strings.EqualFold(n.config.Get(KeySlave), "yes") && n.BondedMaster() != ""
}

// BondedMaster returns the configured MASTER interface name
func (n *Node) BondedMaster() string {
	return strings.ReplaceAll(n.config.Get(KeyMaster), `"`, "")
}

// BondedOptions joins BONDING_OPTS with the modprobe options for the interface
// or for the module it is aliased to.
func (n *Node) BondedOptions() string {
	var alias string
	for _, d := range n.src.directives {
		if d.Command == netsrc.ModuleAlias && strings.EqualFold(d.Wildcard, n.Name) {
			alias = d.ModuleName
		}
	}

	opts := []string{n.config.Get(KeyBondingOpts)}
	for _, d := range n.src.directives {
		if d.Command != netsrc.ModuleOptions {
			continue
		}
		if strings.EqualFold(d.ModuleName, n.Name) || (alias != "" && strings.EqualFold(d.ModuleName, alias)) {
			opts = append(opts, d.Options...)
		}
	}
	return strings.TrimSpace(strings.Join(opts, " "))
}

// BondedModeNumber resolves the bonding mode from the bonding options, falling back
// to /proc/net/bonding/<iface>. Computed once per node.
func (n *Node) BondedModeNumber() BondingMode {
	n.modeOnce.Do(func() {
		if mode, ok := modeFromOptions(n.BondedOptions()); ok {
			n.mode = mode
			return
		}
		if lines, ok := n.src.procNet[n.Name]; ok {
			if mode, ok := modeFromProc(lines); ok {
				n.mode = mode
			}
		}
	})
	return n.mode
}

// BondedModeName returns the official name of the resolved bonding mode
func (n *Node) BondedModeName() string {
	return n.BondedModeNumber().String()
}

// IsBridged reports whether the interface is a member of a bridge
func (n *Node) IsBridged() bool {
	return n.config.Get(KeyBridge) != ""
}

// IsVirtualBridge reports whether the interface is itself a bridge
func (n *Node) IsVirtualBridge() bool {
	return strings.EqualFold(n.config.Get(KeyType), "bridge")
}

// BridgeName returns the configured BRIDGE interface name
func (n *Node) BridgeName() string {
	return n.config.Get(KeyBridge)
}

// String returns a short multi-line summary of the interface
func (n *Node) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "interface:         %s\n", n.Name)
	if module := n.Module(); module != "" {
		fmt.Fprintf(&b, "module:            %s\n", module)
	}
	if n.HardwareAddress != "" {
		fmt.Fprintf(&b, "hw address:        %s\n", n.HardwareAddress)
	}
	if n.IPv4Address != "" {
		fmt.Fprintf(&b, "ipv4 address:      %s\n", n.IPv4Address)
	}
	return b.String()
}
