package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sxnet/internal/domain"
	"sxnet/internal/netsrc"
	"sxnet/internal/topology"
)

func lines(s string) []string {
	return strings.Split(s, "\n")
}

func testGraph() *topology.Graph {
	return topology.NewGraph(topology.Input{
		Interfaces: []netsrc.InterfaceRecord{
			netsrc.NewInterfaceRecord("bond0", "52:54:00:aa:00:01", "10.0.0.5", "24", nil, 1500),
			netsrc.NewInterfaceRecord("bond0.100", "", "10.0.100.5", "24", nil, 1500),
			netsrc.NewInterfaceRecord("eth0", "52:54:00:aa:00:01", "", "", nil, 1500),
			netsrc.NewInterfaceRecord("eth1", "52:54:00:aa:00:02", "", "", nil, 1500),
			netsrc.NewInterfaceRecord("eth2", "52:54:00:aa:00:03", "", "", nil, 1500),
			netsrc.NewInterfaceRecord("br0", "", "192.168.122.1", "24", nil, 1500),
		},
		Configs: map[string][]string{
			"bond0": lines("BONDING_OPTS=\"mode=4 miimon=100\""),
			"eth0":  lines("MASTER=bond0\nSLAVE=yes"),
			"eth1":  lines("MASTER=bond0\nSLAVE=yes"),
			"eth2":  lines("BRIDGE=br0"),
			"br0":   lines("TYPE=Bridge"),
		},
		Directives: netsrc.ParseModprobe(lines("alias eth0 e1000e\nalias eth1 e1000e")),
	})
}

func findSection(t *testing.T, sections []Section, title string) Section {
	t.Helper()
	for _, s := range sections {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("section %q not rendered", title)
	return Section{}
}

func TestSections(t *testing.T) {
	sections := Sections(testGraph())
	require.Len(t, sections, 4)

	t.Run("bonding", func(t *testing.T) {
		s := findSection(t, sections, "Bonding Summary")
		assert.Equal(t, [][]string{
			{"bond0", "4", "802.3ad", "eth0(e1000e) | eth1(e1000e)", "10.0.0.5"},
		}, s.Rows)
	})

	t.Run("bridged", func(t *testing.T) {
		s := findSection(t, sections, "Bridged Interfaces Summary")
		assert.Equal(t, [][]string{{"eth2", "br0", "192.168.122.1"}}, s.Rows)
	})

	t.Run("aliases listed once per device", func(t *testing.T) {
		s := findSection(t, sections, "Networking Aliases Summary")
		assert.Equal(t, [][]string{{"bond0", "bond0.100"}}, s.Rows)
	})

	t.Run("networking in name order", func(t *testing.T) {
		s := findSection(t, sections, "Networking Summary")
		require.Len(t, s.Rows, 6)
		assert.Equal(t, []string{"bond0", "", "52:54:00:aa:00:01", "10.0.0.5"}, s.Rows[0])
		assert.Equal(t, []string{"eth0", "e1000e", "52:54:00:aa:00:01", ""}, s.Rows[3])
	})
}

func TestSectionsOmitEmpty(t *testing.T) {
	g := topology.NewGraph(topology.Input{
		Interfaces: []netsrc.InterfaceRecord{
			netsrc.NewInterfaceRecord("eth0", "", "10.0.0.1", "24", nil, -1),
		},
	})
	sections := Sections(g)
	require.Len(t, sections, 1)
	assert.Equal(t, "Networking Summary", sections[0].Title)

	assert.Empty(t, Sections(topology.NewGraph(topology.Input{})))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "web1", "Hostname:     web1", testGraph())
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{
		"Network Summary: web1",
		"System Summary",
		"Hostname:     web1",
		"Bonding Summary",
		"slave_interfaces",
		"eth0(e1000e) | eth1(e1000e)",
		"Bridged Interfaces Summary",
		"virtual_bridge_device",
		"Networking Aliases Summary",
		"Networking Summary",
		"192.168.122.1",
	} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Bonding Summary"), strings.Index(out, "Networking Summary"))
}

func TestSnapshots(t *testing.T) {
	assert.Equal(t, "No snapshots stored\n", Snapshots(nil))

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := Snapshots([]domain.Snapshot{
		{ID: "a1", Host: "web1", Report: "sosreport-web1", Interfaces: 6, CreatedAt: created},
		{ID: "b2", Host: "db1", Report: "sosreport-db1", Interfaces: 3, CreatedAt: created},
	})
	for _, want := range []string{"interfaces", "a1", "web1", "sosreport-db1", "6"} {
		assert.Contains(t, out, want)
	}
}

func TestAddressMatches(t *testing.T) {
	assert.Contains(t, AddressMatches("10.9.9.9", nil), "No stored interface carried 10.9.9.9")

	out := AddressMatches("10.0.0.5", []domain.AddressMatch{
		{SnapshotID: "a1", Host: "web1", Interface: "bond0", IPv4Address: "10.0.0.5", CreatedAt: time.Now()},
	})
	assert.Contains(t, out, "bond0")
	assert.Contains(t, out, "web1")
}
