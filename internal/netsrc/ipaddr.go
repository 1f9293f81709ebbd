package netsrc

import (
	"regexp"
	"strings"
)

var (
	// 2: eth0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc pfifo_fast state UP qlen 1000
	ipHeaderRe = regexp.MustCompile(`^\d+:\s+([^\s:]+(?::[^\s:]+)*?):\s+<([^>]*)>(?:.*?\bmtu\s+(\d+))?`)
	// link/ether 52:54:00:12:34:56 brd ff:ff:ff:ff:ff:ff
	ipLinkRe = regexp.MustCompile(`^link/(\S+)\s+(\S+)\s+brd\s+\S+`)
	// inet 192.168.1.10/24 brd 192.168.1.255 scope global eth0
	ipInetRe = regexp.MustCompile(`^inet\s+([\d.]+)(?:/([\d.]+))?`)
)

// ParseIPAddress parses `ip address` output.
// One record is produced per stanza that carries an IPv4 address; the first inet line wins.
func ParseIPAddress(lines []string) []InterfaceRecord {
	records := []InterfaceRecord{}

	for i := 0; i < len(lines); i++ {
		m := ipHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}

		name := m[1]
		// VLAN devices are listed as eth0.100@eth0
		if at := strings.Index(name, "@"); at > 0 {
			name = name[:at]
		}
		states := splitStates(m[2])
		mtu := -1
		if m[3] != "" {
			mtu = parseMTU(m[3])
		}

		var hwAddr, ipv4Addr, mask string
		found := false
		for j := i + 1; j < len(lines); j++ {
			line := strings.TrimSpace(lines[j])
			if ipHeaderRe.MatchString(line) {
				break
			}
			if lm := ipLinkRe.FindStringSubmatch(line); lm != nil {
				if hwAddr == "" {
					hwAddr = lm[2]
				}
				continue
			}
			if im := ipInetRe.FindStringSubmatch(line); im != nil && !found {
				ipv4Addr = im[1]
				mask = im[2]
				found = true
			}
		}

		if found {
			records = append(records, NewInterfaceRecord(name, hwAddr, ipv4Addr, mask, states, mtu))
		}
	}

	return records
}

func splitStates(s string) []string {
	states := []string{}
	for _, st := range strings.Split(s, ",") {
		if st = strings.TrimSpace(st); st != "" {
			states = append(states, st)
		}
	}
	return states
}
