package netsrc

import (
	"strings"
)

// EthtoolDriverPrefix is the networking command key prefix of `ethtool -i <iface>` output
const EthtoolDriverPrefix = "ethtool_-i_"

// ParseEthtoolDriverInfo parses `ethtool -i` output into key/value pairs:
//
//	driver: e1000e
//	version: 3.2.6-k
//	bus-info: 0000:00:19.0
func ParseEthtoolDriverInfo(lines []string) map[string]string {
	info := make(map[string]string)
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		info[key] = strings.TrimSpace(value)
	}
	return info
}

// DriverInfoByInterface extracts every ethtool -i capture from a networking command bag,
// keyed by interface name.
func DriverInfoByInterface(commands map[string][]string) map[string]map[string]string {
	byIface := make(map[string]map[string]string)
	for key, lines := range commands {
		iface, ok := strings.CutPrefix(key, EthtoolDriverPrefix)
		if !ok || iface == "" {
			continue
		}
		byIface[iface] = ParseEthtoolDriverInfo(lines)
	}
	return byIface
}
