// Package netsrc parses the raw text captured by a diagnostic collector into typed records.
//
// Every parser takes the lines of one captured file. A nil slice means the file was not
// collected. Parsers never return errors: absent input produces an empty container, lines that
// match no known pattern are skipped, and a field that fails secondary validation (a
// non-numeric MTU, a bad CIDR prefix) falls back to its default without dropping the record.
//
// # Sources
//
//   - /etc/hosts: ParseHosts
//   - ip address: ParseIPAddress
//   - ifconfig -a: ParseIfconfig (legacy "Link encap" output in English and Spanish, and the
//     newer "flags=" output)
//   - ifcfg-<iface>: ParseIfcfg, built on the generic ParseKeyValues
//   - modprobe.conf: ParseModprobe
//   - ethtool -i <iface>: ParseEthtoolDriverInfo
//
// The enumeration formats are independent heuristics. They share the InterfaceRecord result
// type and nothing else.
package netsrc
