package netsrc

import (
	"regexp"
	"strings"
)

// Legacy net-tools output, English and Spanish locales:
//
//	eth0      Link encap:Ethernet  HWaddr 00:16:3E:11:22:33
//	          inet addr:10.0.0.5  Bcast:10.0.0.255  Mask:255.255.255.0
//	          inet6 addr: fe80::216:3eff:fe11:2233/64 Scope:Link
//	          UP BROADCAST RUNNING MULTICAST  MTU:1500  Metric:1
var (
	ifcHeaderRe   = regexp.MustCompile(`^(\S+)\s+Link\b.*HW\S*\s+([0-9a-zA-Z:]\S*)`)
	ifcLoopbackRe = regexp.MustCompile(`^(\S+)\s+Link encap:\s*(?:Local Loopback|Loopback Local)`)
	ifcInetRe     = regexp.MustCompile(`(?:inet addr|inet end\.):\s?([\d.]+)\s.*(?:Mask|Masc):([\d.]+)`)
	ifcInet6Re    = regexp.MustCompile(`inet6`)
	ifcMTURe      = regexp.MustCompile(`^(.*?)\s+MTU:(\S+)\s+M\S*:(\S*)`)
)

// Newer net-tools output:
//
//	eth0: flags=4163<UP,BROADCAST,RUNNING,MULTICAST>  mtu 1500
//	        inet 10.0.0.5  netmask 255.255.255.0  broadcast 10.0.0.255
//	        ether 00:16:3e:11:22:33  txqueuelen 1000  (Ethernet)
var (
	ifcFlagsHeaderRe = regexp.MustCompile(`^(\S+?):\s+flags=\d+<([^>]*)>(?:\s+mtu\s+(\S+))?`)
	ifcFlagsInetRe   = regexp.MustCompile(`^inet\s+([\d.]+)(?:\s+netmask\s+([\d.]+))?`)
	ifcFlagsEtherRe  = regexp.MustCompile(`^ether\s+(\S+)`)
)

// ParseIfconfig parses `ifconfig -a` output.
// Every recognized header yields a record, even when its address lines are missing.
func ParseIfconfig(lines []string) []InterfaceRecord {
	records := []InterfaceRecord{}

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := ifcHeaderRe.FindStringSubmatch(line); m != nil {
			records = append(records, parseLegacyStanza(lines, i, m[1], m[2]))
			continue
		}
		if m := ifcLoopbackRe.FindStringSubmatch(line); m != nil {
			records = append(records, parseLegacyStanza(lines, i, m[1], ""))
			continue
		}
		if m := ifcFlagsHeaderRe.FindStringSubmatch(line); m != nil {
			records = append(records, parseFlagsStanza(lines, i, m))
		}
	}

	return records
}

// parseLegacyStanza looks at most three lines past the header: the IPv4 line,
// an optional inet6 line and the states/MTU line.
func parseLegacyStanza(lines []string, header int, name, hwAddr string) InterfaceRecord {
	var ipv4Addr, mask string
	states := []string{}
	mtu := -1

	next := header + 1
	line := lineAt(lines, next)

	if m := ifcInetRe.FindStringSubmatch(line); m != nil {
		ipv4Addr = m[1]
		mask = m[2]
		next++
		line = lineAt(lines, next)
	}
	if ifcInet6Re.MatchString(line) {
		next++
		line = lineAt(lines, next)
	}
	if m := ifcMTURe.FindStringSubmatch(line); m != nil {
		states = strings.Fields(m[1])
		mtu = parseMTU(m[2])
	}

	return NewInterfaceRecord(name, hwAddr, ipv4Addr, mask, states, mtu)
}

func parseFlagsStanza(lines []string, header int, m []string) InterfaceRecord {
	name := m[1]
	states := splitStates(m[2])
	mtu := -1
	if m[3] != "" {
		mtu = parseMTU(m[3])
	}

	var hwAddr, ipv4Addr, mask string
	for j := header + 1; j < len(lines); j++ {
		raw := lines[j]
		line := strings.TrimSpace(raw)
		// Stanzas are separated by a blank line or a new unindented header
		if line == "" || (raw != "" && raw[0] != ' ' && raw[0] != '\t') {
			break
		}
		if im := ifcFlagsInetRe.FindStringSubmatch(line); im != nil && ipv4Addr == "" {
			ipv4Addr = im[1]
			mask = im[2]
			continue
		}
		if em := ifcFlagsEtherRe.FindStringSubmatch(line); em != nil && hwAddr == "" {
			hwAddr = em[1]
		}
	}

	return NewInterfaceRecord(name, hwAddr, ipv4Addr, mask, states, mtu)
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[i])
}
