package netsrc

import (
	"net"
	"strconv"
	"strings"
)

// InterfaceRecord is the identity of one interface as reported by enumeration output
type InterfaceRecord struct {
	Name            string   `json:"name" yaml:"name"`
	HardwareAddress string   `json:"hw_address,omitempty" yaml:"hw_address,omitempty"`
	IPv4Address     string   `json:"ipv4_address,omitempty" yaml:"ipv4_address,omitempty"`
	SubnetMask      string   `json:"subnet_mask,omitempty" yaml:"subnet_mask,omitempty"`
	States          []string `json:"states,omitempty" yaml:"states,omitempty"`
	MTU             int      `json:"mtu" yaml:"mtu"` // -1 when unknown
}

// NewInterfaceRecord creates a record, converting a CIDR prefix mask to dotted decimal
func NewInterfaceRecord(name, hwAddr, ipv4Addr, subnetMask string, states []string, mtu int) InterfaceRecord {
	if subnetMask != "" && !strings.Contains(subnetMask, ".") {
		subnetMask = CIDRToDotted(subnetMask)
	}
	if states == nil {
		states = []string{}
	}
	return InterfaceRecord{
		Name:            name,
		HardwareAddress: hwAddr,
		IPv4Address:     ipv4Addr,
		SubnetMask:      subnetMask,
		States:          states,
		MTU:             mtu,
	}
}

// HasState reports whether the interface carries the given link state flag
func (r InterfaceRecord) HasState(state string) bool {
	for _, s := range r.States {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}

// String returns "name: ip/mask", dropping the parts that are unknown
func (r InterfaceRecord) String() string {
	s := r.Name
	if r.IPv4Address != "" {
		s += ": " + r.IPv4Address
		if r.SubnetMask != "" {
			s += "/" + r.SubnetMask
		}
	}
	return s
}

// CIDRToDotted converts a prefix length such as "24" into "255.255.255.0".
// Returns an empty string when prefix is not an integer in [0,32].
func CIDRToDotted(prefix string) string {
	bits, err := strconv.Atoi(strings.TrimSpace(prefix))
	if err != nil {
		return ""
	}
	mask := net.CIDRMask(bits, 32)
	if mask == nil {
		return ""
	}
	return net.IP(mask).String()
}

// parseMTU returns -1 for anything that is not a positive integer
func parseMTU(s string) int {
	mtu, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || mtu < 0 {
		return -1
	}
	return mtu
}
