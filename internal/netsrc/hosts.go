package netsrc

import (
	"regexp"
	"strings"
)

// HostsTable maps an IPv4 address to every hostname listed for it
type HostsTable map[string][]string

var hostsLineRe = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\s(.*)`)

// ParseHosts builds a HostsTable from /etc/hosts.
// Repeated addresses are merged by appending their names.
func ParseHosts(lines []string) HostsTable {
	table := make(HostsTable)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m := hostsLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ip := m[1]
		names, _, _ := strings.Cut(m[2], "#")
		table[ip] = append(table[ip], strings.Fields(names)...)
	}
	return table
}

// Lookup returns the hostnames for ip, or nil
func (t HostsTable) Lookup(ip string) []string {
	if ip == "" {
		return nil
	}
	return t[ip]
}

// Contains reports whether hostname is listed for any address
func (t HostsTable) Contains(hostname string) bool {
	for _, names := range t {
		for _, name := range names {
			if name == hostname {
				return true
			}
		}
	}
	return false
}
