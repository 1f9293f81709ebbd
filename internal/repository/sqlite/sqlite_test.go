package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"sxnet/internal/domain"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// testFragment builds a small bonded host graph
func testFragment() *domain.GraphFragment {
	frag := domain.NewGraphFragment()
	frag.Host = "web1"

	bond := domain.NewNode("bond0", domain.NodeTypeBond, "bond0")
	bond.SetProperty("ipv4_address", "10.0.0.10")
	bond.SetProperty("bonding_mode_name", "802.3ad")
	frag.AddNode(*bond)

	eth0 := domain.NewNode("eth0", domain.NodeTypeInterface, "eth0")
	eth0.SetProperty("module", "e1000e")
	frag.AddNode(*eth0)

	lo := domain.NewNode("lo", domain.NodeTypeLoopback, "lo")
	lo.SetProperty("ipv4_address", "127.0.0.1")
	frag.AddNode(*lo)

	frag.AddEdge(*domain.NewEdge("eth0", "bond0", domain.EdgeTypeAggregation))
	return frag
}

func testSnapshot(host string, createdAt time.Time) *domain.Snapshot {
	frag := testFragment()
	frag.Host = host
	return &domain.Snapshot{
		Host:          host,
		Report:        "sosreport-" + host,
		DistroRelease: "Red Hat Enterprise Linux Server release 7.9 (Maipo)",
		Uptime:        "10:01:02 up 3 days",
		CreatedAt:     createdAt,
		Fragment:      frag,
	}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "x", Valid: true}, "x"},
		{"invalid", sql.NullString{String: "x"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestStringToNull(t *testing.T) {
	assertEqual(t, sql.NullString{}, stringToNull(""))
	assertEqual(t, sql.NullString{String: "a", Valid: true}, stringToNull("a"))
}

func TestTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 5, time.FixedZone("CET", 3600))
	parsed, err := parseTime(formatTime(ts))
	assertNoError(t, err)
	if !parsed.Equal(ts) {
		t.Fatalf("expected %v, got %v", ts, parsed)
	}

	_, err = parseTime("yesterday")
	if err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}

func TestFragmentBlob(t *testing.T) {
	blob, err := encodeFragment(testFragment())
	assertNoError(t, err)

	frag, err := decodeFragment(blob)
	assertNoError(t, err)
	assertEqual(t, "web1", frag.Host)
	assertEqual(t, 3, len(frag.Nodes))
	assertEqual(t, 1, len(frag.Edges))

	if _, err := decodeFragment([]byte("not snappy")); err == nil {
		t.Fatal("expected error for corrupt blob")
	}
}

// ============================================================================
// Snapshot Tests
// ============================================================================

func TestSaveAndGetSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := testSnapshot("web1", time.Time{})
	assertNoError(t, repo.SaveSnapshot(ctx, snap))
	if snap.ID == "" {
		t.Fatal("expected generated snapshot ID")
	}
	if snap.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	got, err := repo.GetSnapshot(ctx, snap.ID)
	assertNoError(t, err)
	assertEqual(t, snap.Host, got.Host)
	assertEqual(t, snap.Report, got.Report)
	assertEqual(t, snap.DistroRelease, got.DistroRelease)
	assertEqual(t, "", got.Uname)
	assertEqual(t, 3, got.Interfaces)
	if !got.CreatedAt.Equal(snap.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, snap.CreatedAt)
	}

	bond := got.Fragment.FindNode("bond0")
	if bond == nil {
		t.Fatal("bond0 missing from stored fragment")
	}
	assertEqual(t, "802.3ad", bond.GetPropertyString("bonding_mode_name"))
	assertEqual(t, domain.EdgeTypeAggregation, got.Fragment.Edges[0].Type)
}

func TestSaveSnapshotWithoutFragment(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.SaveSnapshot(context.Background(), &domain.Snapshot{Host: "web1"})
	if err == nil {
		t.Fatal("expected error for snapshot without fragment")
	}
}

func TestSaveSnapshotReplacesAddressIndex(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := testSnapshot("web1", time.Time{})
	assertNoError(t, repo.SaveSnapshot(ctx, snap))

	snap.Fragment.Nodes[0].SetProperty("ipv4_address", "10.0.0.99")
	assertNoError(t, repo.SaveSnapshot(ctx, snap))

	old, err := repo.FindInterfacesByAddress(ctx, "10.0.0.10")
	assertNoError(t, err)
	assertEqual(t, 0, len(old))

	updated, err := repo.FindInterfacesByAddress(ctx, "10.0.0.99")
	assertNoError(t, err)
	assertEqual(t, 1, len(updated))

	all, err := repo.ListSnapshots(ctx, "")
	assertNoError(t, err)
	assertEqual(t, 1, len(all))
}

func TestGetSnapshotNotFound(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.GetSnapshot(context.Background(), "missing")
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestListSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := testSnapshot("web1", base)
	newer := testSnapshot("web1", base.Add(time.Hour))
	other := testSnapshot("db1", base.Add(30*time.Minute))
	for _, s := range []*domain.Snapshot{older, newer, other} {
		assertNoError(t, repo.SaveSnapshot(ctx, s))
	}

	all, err := repo.ListSnapshots(ctx, "")
	assertNoError(t, err)
	assertEqual(t, 3, len(all))
	assertEqual(t, newer.ID, all[0].ID)
	assertEqual(t, other.ID, all[1].ID)
	assertEqual(t, older.ID, all[2].ID)
	if all[0].Fragment != nil {
		t.Error("ListSnapshots should not decode fragments")
	}

	web1, err := repo.ListSnapshots(ctx, "web1")
	assertNoError(t, err)
	assertEqual(t, 2, len(web1))

	none, err := repo.ListSnapshots(ctx, "unknown")
	assertNoError(t, err)
	assertEqual(t, 0, len(none))
}

func TestDeleteSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	snap := testSnapshot("web1", time.Time{})
	assertNoError(t, repo.SaveSnapshot(ctx, snap))
	assertNoError(t, repo.DeleteSnapshot(ctx, snap.ID))

	_, err := repo.GetSnapshot(ctx, snap.ID)
	if !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
	}

	matches, err := repo.FindInterfacesByAddress(ctx, "10.0.0.10")
	assertNoError(t, err)
	assertEqual(t, 0, len(matches))

	if err := repo.DeleteSnapshot(ctx, snap.ID); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on second delete, got %v", err)
	}
}

func TestFindInterfacesByAddress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := testSnapshot("web1", base)
	second := testSnapshot("web2", base.Add(time.Hour))
	assertNoError(t, repo.SaveSnapshot(ctx, first))
	assertNoError(t, repo.SaveSnapshot(ctx, second))

	matches, err := repo.FindInterfacesByAddress(ctx, "127.0.0.1")
	assertNoError(t, err)
	assertEqual(t, 2, len(matches))
	assertEqual(t, "web2", matches[0].Host)
	assertEqual(t, "lo", matches[0].Interface)
	assertEqual(t, first.ID, matches[1].SnapshotID)

	none, err := repo.FindInterfacesByAddress(ctx, "192.0.2.1")
	assertNoError(t, err)
	assertEqual(t, 0, len(none))
}
