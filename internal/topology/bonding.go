package topology

import (
	"strconv"
	"strings"
)

// BondingMode is the numeric Linux bonding mode. BondingModeUnknown covers both
// "not determined" and "configured but unrecognized".
type BondingMode int

const (
	BondingModeUnknown      BondingMode = -1
	BondingModeBalanceRR    BondingMode = 0
	BondingModeActiveBackup BondingMode = 1
	BondingModeBalanceXOR   BondingMode = 2
	BondingModeBroadcast    BondingMode = 3
	BondingMode8023AD       BondingMode = 4
	BondingModeBalanceTLB   BondingMode = 5
	BondingModeBalanceALB   BondingMode = 6
)

// Official mode names as accepted by the bonding driver's mode= option
var bondingModeNames = map[BondingMode]string{
	BondingModeUnknown:      "unknown bonding mode",
	BondingModeBalanceRR:    "balance-rr",
	BondingModeActiveBackup: "active-backup",
	BondingModeBalanceXOR:   "balance-xor",
	BondingModeBroadcast:    "broadcast",
	BondingMode8023AD:       "802.3ad",
	BondingModeBalanceTLB:   "balance-tlb",
	BondingModeBalanceALB:   "balance-alb",
}

// Names written to /proc/net/bonding/<bond> differ from the option names
var procBondingModes = map[string]BondingMode{
	"unknown bonding mode":                  BondingModeUnknown,
	"load balancing (round-robin)":          BondingModeBalanceRR,
	"balance-rr":                            BondingModeBalanceRR,
	"active-backup":                         BondingModeActiveBackup,
	"fault-tolerance (active-backup)":       BondingModeActiveBackup,
	"balance-xor":                           BondingModeBalanceXOR,
	"load balancing (xor)":                  BondingModeBalanceXOR,
	"broadcast":                             BondingModeBroadcast,
	"fault-tolerance (broadcast)":           BondingModeBroadcast,
	"802.3ad":                               BondingMode8023AD,
	"IEEE 802.3ad Dynamic link aggregation": BondingMode8023AD,
	"balance-tlb":                           BondingModeBalanceTLB,
	"transmit load balancing":               BondingModeBalanceTLB,
	"balance-alb":                           BondingModeBalanceALB,
	"adaptive load balancing":               BondingModeBalanceALB,
}

// String returns the official mode name
func (m BondingMode) String() string {
	if name, ok := bondingModeNames[m]; ok {
		return name
	}
	return bondingModeNames[BondingModeUnknown]
}

// ParseBondingMode matches a mode= option value by number or official name
func ParseBondingMode(value string) (BondingMode, bool) {
	for mode, name := range bondingModeNames {
		if value == strconv.Itoa(int(mode)) || value == name {
			return mode, true
		}
	}
	return BondingModeUnknown, false
}

// modeFromOptions scans space separated bonding options for mode=<value>
func modeFromOptions(options string) (BondingMode, bool) {
	for _, opt := range strings.Fields(options) {
		key, value, ok := strings.Cut(opt, "=")
		if !ok || !strings.EqualFold(key, "mode") || strings.Contains(value, "=") {
			continue
		}
		if mode, ok := ParseBondingMode(value); ok {
			return mode, true
		}
	}
	return BondingModeUnknown, false
}

// modeFromProc scans /proc/net/bonding/<bond> for the "Bonding Mode:" line
func modeFromProc(lines []string) (BondingMode, bool) {
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.HasPrefix(strings.TrimSpace(key), "Bonding Mode") {
			continue
		}
		if mode, ok := procBondingModes[strings.TrimSpace(value)]; ok {
			return mode, true
		}
	}
	return BondingModeUnknown, false
}
