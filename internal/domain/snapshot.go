package domain

import "time"

// Snapshot is a stored analysis of one report
type Snapshot struct {
	ID            string         `json:"id"`
	Host          string         `json:"host"`
	Report        string         `json:"report"`
	DistroRelease string         `json:"distro_release,omitempty"`
	Uname         string         `json:"uname,omitempty"`
	Uptime        string         `json:"uptime,omitempty"`
	Interfaces    int            `json:"interfaces"`
	CreatedAt     time.Time      `json:"created_at"`
	Fragment      *GraphFragment `json:"fragment,omitempty"`
}

// AddressMatch is one stored interface carrying a searched IPv4 address
type AddressMatch struct {
	SnapshotID  string    `json:"snapshot_id"`
	Host        string    `json:"host"`
	Interface   string    `json:"interface"`
	IPv4Address string    `json:"ipv4_address"`
	CreatedAt   time.Time `json:"created_at"`
}
