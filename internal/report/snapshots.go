package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"sxnet/internal/domain"
)

const listTimeLayout = "2006-01-02 15:04:05"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Snapshots renders stored snapshots, one row each
func Snapshots(snaps []domain.Snapshot) string {
	if len(snaps) == 0 {
		return "No snapshots stored\n"
	}
	t := newTable("id", "host", "report", "interfaces", "created")
	for _, s := range snaps {
		t.Row(s.ID, s.Host, s.Report, fmt.Sprint(s.Interfaces), s.CreatedAt.Local().Format(listTimeLayout))
	}
	return t.String() + "\n"
}

// AddressMatches renders the stored interfaces that carried an address
func AddressMatches(ipv4 string, matches []domain.AddressMatch) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No stored interface carried %s\n", ipv4)
	}
	t := newTable("host", "interface", "ipv4_addr", "snapshot", "created")
	for _, m := range matches {
		t.Row(m.Host, m.Interface, m.IPv4Address, m.SnapshotID, m.CreatedAt.Local().Format(listTimeLayout))
	}
	return t.String() + "\n"
}
