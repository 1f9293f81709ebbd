// Package domain defines the exported graph types for reconstructed host topologies.
//
// A GraphFragment is the portable form of one host's topology: one Node per interface and
// one Edge per resolved relation. It is what the codecs serialize and what the snapshot
// store persists.
//
// # Core Types
//
// Node represents an interface (physical, bond master, bridge, VLAN/alias or loopback)
// with its enrichment attributes stored as properties.
//
// Edge represents a typed relation between two interfaces:
//
//   - aggregation: bonding slave -> bonding master
//   - vlan: VLAN or alias sub-interface -> base interface
//   - virtual: bridge member -> virtual bridge
//
// # Design Principles
//
// - No database or external dependencies
// - Deterministic edge IDs so repeated exports of the same host compare equal
package domain
