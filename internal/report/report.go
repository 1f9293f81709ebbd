// Package report renders an analyzed host as plain text summary tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sxnet/internal/topology"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Section is one titled table of the report
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Sections builds the summary tables of a graph. Tables without rows are left out.
func Sections(g *topology.Graph) []Section {
	candidates := []Section{
		bondingSection(g),
		bridgedSection(g),
		aliasSection(g),
		networkingSection(g),
	}
	sections := make([]Section, 0, len(candidates))
	for _, s := range candidates {
		if len(s.Rows) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}

func bondingSection(g *topology.Graph) Section {
	s := Section{
		Title:   "Bonding Summary",
		Headers: []string{"device", "mode_#", "mode_name", "slave_interfaces", "ipv4_address"},
	}
	for _, bond := range g.BondedMasters() {
		slaves := make([]string, 0)
		for _, slave := range g.BondedSlaves(bond.Name) {
			slaves = append(slaves, fmt.Sprintf("%s(%s)", slave.Name, slave.Module()))
		}
		s.Rows = append(s.Rows, []string{
			bond.Name,
			fmt.Sprint(int(bond.BondedModeNumber())),
			bond.BondedModeName(),
			strings.Join(slaves, " | "),
			bond.IPv4Address,
		})
	}
	return s
}

func bridgedSection(g *topology.Graph) Section {
	s := Section{
		Title:   "Bridged Interfaces Summary",
		Headers: []string{"bridge_device", "virtual_bridge_device", "ipv4_addr"},
	}
	for _, member := range g.Bridged() {
		bridge := g.BridgeParent(member.Name)
		if bridge == nil {
			continue
		}
		s.Rows = append(s.Rows, []string{member.Name, bridge.Name, bridge.IPv4Address})
	}
	return s
}

func aliasSection(g *topology.Graph) Section {
	s := Section{
		Title:   "Networking Aliases Summary",
		Headers: []string{"device", "alias_interfaces"},
	}
	aliases := g.AliasMap()
	// AliasMap keys follow no order; walk the sorted nodes instead
	for _, n := range g.Nodes() {
		children, ok := aliases[n.Name]
		if !ok {
			continue
		}
		names := make([]string, 0, len(children))
		for _, child := range children {
			names = append(names, child.Name)
		}
		s.Rows = append(s.Rows, []string{n.Name, strings.Join(names, " | ")})
	}
	return s
}

func networkingSection(g *topology.Graph) Section {
	s := Section{
		Title:   "Networking Summary",
		Headers: []string{"device", "module", "hw_addr", "ipv4_addr"},
	}
	for _, n := range g.Nodes() {
		s.Rows = append(s.Rows, []string{n.Name, n.Module(), n.HardwareAddress, n.IPv4Address})
	}
	return s
}

// Table renders a section as a bordered table
func (s Section) Table() string {
	return newTable(s.Headers...).Rows(s.Rows...).String()
}

// Render returns the full report for a host: the system summary followed by
// every non-empty table.
func Render(hostname, summary string, g *topology.Graph) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Network Summary: " + hostname))
	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("System Summary"))
	b.WriteString("\n")
	b.WriteString(summary)
	b.WriteString("\n")

	for _, s := range Sections(g) {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		b.WriteString(s.Table())
		b.WriteString("\n")
	}
	return b.String()
}

// Write renders the report to w
func Write(w io.Writer, hostname, summary string, g *topology.Graph) error {
	if _, err := io.WriteString(w, Render(hostname, summary, g)); err != nil {
		return fmt.Errorf("failed to write report for %s: %w", hostname, err)
	}
	return nil
}
