package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxnet/internal/domain"
	"sxnet/internal/netsrc"
)

func rec(name, ipv4 string) netsrc.InterfaceRecord {
	return netsrc.NewInterfaceRecord(name, "", ipv4, "", nil, -1)
}

func cfg(s string) []string {
	return strings.Split(s, "\n")
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func bondedInput() Input {
	return Input{
		Interfaces: []netsrc.InterfaceRecord{
			rec("eth2", ""),
			rec("bond0", "10.0.0.10"),
			rec("eth1", ""),
			rec("bond1", "10.0.1.10"),
		},
		Configs: map[string][]string{
			"bond0": cfg(`DEVICE=bond0
BONDING_OPTS="mode=802.3ad miimon=100"
ONBOOT=yes`),
			"eth1": cfg(`DEVICE=eth1
MASTER="bond0"
SLAVE=yes`),
			"eth2": cfg(`DEVICE=eth2
MASTER=bond0
SLAVE=YES`),
		},
		ProcNet: map[string][]string{
			"bond1": cfg(`Ethernet Channel Bonding Driver: v3.7.1 (April 27, 2011)

Bonding Mode: fault-tolerance (active-backup)
Primary Slave: None`),
		},
	}
}

func TestGraphBonding(t *testing.T) {
	g := NewGraph(bondedInput())
	require.Equal(t, 4, g.Len())

	t.Run("slaves registered once across repeated resolution", func(t *testing.T) {
		g.Resolve()
		g.Resolve()
		assert.Equal(t, []string{"eth1", "eth2"}, names(g.BondedSlaves("bond0")))
		assert.Empty(t, g.BondedSlaves("eth1"))
	})

	t.Run("mode from bonding options", func(t *testing.T) {
		bond := g.Node("bond0")
		require.NotNil(t, bond)
		assert.True(t, bond.IsBondedMaster())
		assert.Equal(t, BondingMode8023AD, bond.BondedModeNumber())
		assert.Equal(t, "802.3ad", bond.BondedModeName())
		assert.Equal(t, "mode=802.3ad miimon=100", bond.BondedOptions())
	})

	t.Run("mode from proc bonding state", func(t *testing.T) {
		bond := g.Node("bond1")
		assert.Equal(t, BondingModeActiveBackup, bond.BondedModeNumber())
		assert.Equal(t, "active-backup", bond.BondedModeName())
		assert.True(t, bond.IsBondedMaster())
	})

	t.Run("slave predicates", func(t *testing.T) {
		eth1 := g.Node("eth1")
		assert.True(t, eth1.IsBondedSlave())
		assert.Equal(t, "bond0", eth1.BondedMaster())
		assert.False(t, eth1.IsBondedMaster())
		assert.Equal(t, BondingModeUnknown, eth1.BondedModeNumber())
		assert.Equal(t, "unknown bonding mode", eth1.BondedModeName())
	})

	t.Run("masters sorted by name", func(t *testing.T) {
		assert.Equal(t, []string{"bond0", "bond1"}, names(g.BondedMasters()))
		assert.Equal(t, []string{"bond0", "bond1", "eth1", "eth2"}, names(g.Nodes()))
	})
}

func TestGraphMasterNotPresent(t *testing.T) {
	g := NewGraph(Input{
		Interfaces: []netsrc.InterfaceRecord{rec("eth1", "")},
		Configs:    map[string][]string{"eth1": cfg("MASTER=bond9\nSLAVE=yes")},
	})

	assert.True(t, g.Node("eth1").IsBondedSlave())
	assert.Empty(t, g.BondedSlaves("bond9"))
	assert.Nil(t, g.Node("bond9"))
}

func TestGraphAliases(t *testing.T) {
	g := NewGraph(Input{
		Interfaces: []netsrc.InterfaceRecord{
			rec("eth0:1", "10.0.0.2"),
			rec("eth0.100", "172.16.0.2"),
			rec("eth0", "10.0.0.1"),
			rec("vlan5.7", ""),
			rec("a.b.c", ""),
		},
	})

	parent := g.ParentAlias("eth0.100")
	require.NotNil(t, parent)
	assert.Equal(t, "eth0", parent.Name)

	parent = g.ParentAlias("eth0:1")
	require.NotNil(t, parent)
	assert.Equal(t, "eth0", parent.Name)

	assert.Nil(t, g.ParentAlias("vlan5.7"), "base interface not present")
	assert.Nil(t, g.ParentAlias("a.b.c"), "more than two parts")
	assert.Nil(t, g.ParentAlias("eth0"))

	aliases := g.AliasMap()
	require.Len(t, aliases, 1)
	assert.Equal(t, []string{"eth0.100", "eth0:1"}, names(aliases["eth0"]))
}

func TestGraphBridges(t *testing.T) {
	g := NewGraph(Input{
		Interfaces: []netsrc.InterfaceRecord{
			rec("eth4", ""),
			rec("br0", "192.168.122.1"),
			rec("eth3", ""),
			rec("eth5", ""),
		},
		Configs: map[string][]string{
			"br0":  cfg("DEVICE=br0\nTYPE=Bridge"),
			"eth3": cfg("BRIDGE=br0"),
			"eth4": cfg("BRIDGE=br0"),
			"eth5": cfg("BRIDGE=br9"),
		},
	})

	assert.True(t, g.Node("br0").IsVirtualBridge())
	assert.Equal(t, []string{"eth3", "eth4", "eth5"}, names(g.Bridged()))

	bridge := g.BridgeParent("eth3")
	require.NotNil(t, bridge)
	assert.Equal(t, "br0", bridge.Name)
	assert.Nil(t, g.BridgeParent("eth5"), "br9 is not in the graph")
	assert.Equal(t, "br9", g.Node("eth5").BridgeName())
}

func TestGraphFirstRecordWins(t *testing.T) {
	g := NewGraph(Input{
		Interfaces: []netsrc.InterfaceRecord{
			rec("eth0", "10.0.0.1"),
			rec("eth0", "10.0.0.99"),
			rec("", "10.0.0.50"),
		},
	})

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, "10.0.0.1", g.Node("eth0").IPv4Address)
}

func TestNodeConfigFallback(t *testing.T) {
	g := NewGraph(Input{
		Hosts: netsrc.ParseHosts(cfg("192.168.1.5 web1 web1.example.com")),
		Interfaces: []netsrc.InterfaceRecord{
			rec("eth0", ""),
			netsrc.NewInterfaceRecord("eth1", "52:54:00:00:00:01", "10.0.0.1", "8", nil, 1500),
			rec("eth2", ""),
		},
		Configs: map[string][]string{
			"eth0": cfg(`IPADDR=192.168.1.5
NETMASK=255.255.255.0
HWADDR=52:54:00:00:00:00
BOOTPROTO=none # static address`),
			"eth1": cfg(`IPADDR=10.9.9.9
HWADDR=ff:ff:ff:ff:ff:ff
BOOTPROTO=dhcp`),
			"eth2": cfg(`IPADDR=10.2.2.2
PREFIX=24`),
		},
	})

	eth0 := g.Node("eth0")
	assert.Equal(t, "192.168.1.5", eth0.IPv4Address)
	assert.Equal(t, "255.255.255.0", eth0.SubnetMask)
	assert.Equal(t, "52:54:00:00:00:00", eth0.HardwareAddress)
	assert.Equal(t, "static", eth0.BootProtocol())
	assert.Equal(t, []string{"web1", "web1.example.com"}, eth0.Hostnames())
	assert.True(t, eth0.HasHostnameMapped("web1.example.com"))
	assert.False(t, eth0.IsOnBoot())

	eth1 := g.Node("eth1")
	assert.Equal(t, "10.0.0.1", eth1.IPv4Address, "enumeration output wins")
	assert.Equal(t, "255.0.0.0", eth1.SubnetMask)
	assert.Equal(t, "52:54:00:00:00:01", eth1.HardwareAddress)
	assert.Equal(t, "dhcp", eth1.BootProtocol())
	assert.Empty(t, eth1.Hostnames())

	eth2 := g.Node("eth2")
	assert.Equal(t, "255.255.255.0", eth2.SubnetMask)
	assert.Equal(t, "10.2.2.2", eth2.Config("ipaddr"))
}

func TestNodeModule(t *testing.T) {
	g := NewGraph(Input{
		Interfaces: []netsrc.InterfaceRecord{rec("eth0", ""), rec("eth1", ""), rec("bond2", ""), rec("eth9", "")},
		Directives: netsrc.ParseModprobe(cfg(`alias eth0 e1000e
alias bond2 bonding
options bonding mode=balance-alb miimon=100
install pcspkr /bin/true`)),
		Commands: map[string][]string{
			"ethtool_-i_eth0": cfg("driver: igb"),
			"ethtool_-i_eth1": cfg("driver: bnx2\nversion: 2.2.1\nbus-info: 0000:01:00.0"),
			"ip_route":        cfg("default via 10.0.0.1 dev eth0"),
		},
	})

	assert.Equal(t, "e1000e", g.Node("eth0").Module(), "modprobe alias wins over ethtool")
	assert.Equal(t, "bnx2", g.Node("eth1").Module())
	assert.Equal(t, "0000:01:00.0", g.Node("eth1").DriverInfo()["bus-info"])
	assert.Empty(t, g.Node("eth9").Module())
	assert.Empty(t, g.Node("eth9").DriverInfo())

	bond := g.Node("bond2")
	assert.Equal(t, "bonding", bond.Module())
	assert.True(t, bond.IsBondedMaster())
	assert.Equal(t, "mode=balance-alb miimon=100", bond.BondedOptions())
	assert.Equal(t, BondingModeBalanceALB, bond.BondedModeNumber())
}

func TestGraphFragment(t *testing.T) {
	in := bondedInput()
	in.Interfaces = append(in.Interfaces, rec("bond0.100", "172.16.0.2"), rec("br0", ""), rec("lo", "127.0.0.1"))
	in.Configs["bond0.100"] = cfg("BRIDGE=br0")
	in.Configs["br0"] = cfg("TYPE=bridge")
	g := NewGraph(in)

	frag := g.Fragment("sosreport-web1")
	require.Len(t, frag.Nodes, 7)
	assert.Equal(t, "bond0", frag.Nodes[0].ID)
	assert.Equal(t, domain.NodeTypeBond, frag.Nodes[0].Type)
	assert.Equal(t, "sosreport-web1", frag.Nodes[0].Source)
	assert.Equal(t, "802.3ad", frag.Nodes[0].GetPropertyString("bonding_mode_name"))

	assert.Equal(t, domain.NodeTypeAlias, frag.FindNode("bond0.100").Type)
	assert.Equal(t, domain.NodeTypeBridge, frag.FindNode("br0").Type)
	assert.Equal(t, domain.NodeTypeLoopback, frag.FindNode("lo").Type)
	assert.Equal(t, domain.NodeTypeInterface, frag.FindNode("eth1").Type)

	agg := frag.EdgesOfType(domain.EdgeTypeAggregation)
	require.Len(t, agg, 2)
	assert.Equal(t, "eth1", agg[0].FromID)
	assert.Equal(t, "bond0", agg[0].ToID)

	vlan := frag.EdgesOfType(domain.EdgeTypeVLAN)
	require.Len(t, vlan, 1)
	assert.Equal(t, "bond0.100", vlan[0].FromID)

	virt := frag.EdgesOfType(domain.EdgeTypeVirtual)
	require.Len(t, virt, 1)
	assert.Equal(t, "br0", virt[0].ToID)
}
