// Package topology fuses the parsed sources of one host into a graph of interfaces.
//
// NewGraph builds in two phases. First one Node is constructed per interface name,
// enriched from its ifcfg file, the hosts table, modprobe directives, /proc/net/bonding
// state and ethtool driver info. Then the linking passes run over the completed name
// space:
//
//   - bonding: MASTER=<iface> registers the node as a slave of that master
//   - alias: eth0.100 and eth0:1 resolve to their base interface eth0
//   - bridge: BRIDGE=<iface> links a member to its virtual bridge
//
// Nodes never reference each other. Relations are stored on the Graph keyed by
// interface name and only ever name nodes present in the graph.
package topology
