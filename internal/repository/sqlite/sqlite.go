package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sxnet/internal/domain"
	"sxnet/internal/repository"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested ID
var ErrSnapshotNotFound = repository.ErrSnapshotNotFound

// Repository implements repository.SnapshotRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the snapshot database at dbPath.
// ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if dbPath != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		host TEXT NOT NULL,
		report TEXT NOT NULL,
		distro_release TEXT,
		uname TEXT,
		uptime TEXT,
		interface_count INTEGER NOT NULL DEFAULT 0,
		fragment BLOB NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_addresses (
		snapshot_id TEXT NOT NULL,
		interface TEXT NOT NULL,
		ipv4_address TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, interface),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_host ON snapshots(host);
	CREATE INDEX IF NOT EXISTS idx_snapshot_addresses_ipv4 ON snapshot_addresses(ipv4_address);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSnapshot stores a snapshot and indexes its interface addresses.
// An empty ID is filled with a new UUID and a zero CreatedAt with the current time.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if snap.Fragment == nil {
		return fmt.Errorf("snapshot %q has no graph fragment", snap.Host)
	}
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	snap.Interfaces = len(snap.Fragment.Nodes)

	blob, err := encodeFragment(snap.Fragment)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, host, report, distro_release, uname, uptime, interface_count, fragment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			host = excluded.host,
			report = excluded.report,
			distro_release = excluded.distro_release,
			uname = excluded.uname,
			uptime = excluded.uptime,
			interface_count = excluded.interface_count,
			fragment = excluded.fragment
	`, snap.ID, snap.Host, snap.Report, stringToNull(snap.DistroRelease), stringToNull(snap.Uname),
		stringToNull(snap.Uptime), snap.Interfaces, blob, formatTime(snap.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_addresses WHERE snapshot_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("failed to clear address index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_addresses (snapshot_id, interface, ipv4_address) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare address insert: %w", err)
	}
	defer stmt.Close()

	for _, node := range snap.Fragment.Nodes {
		addr := node.GetPropertyString("ipv4_address")
		if addr == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, node.ID, addr); err != nil {
			return fmt.Errorf("failed to index address of %s: %w", node.ID, err)
		}
	}

	return tx.Commit()
}

// GetSnapshot loads a snapshot including its decoded graph fragment
func (r *Repository) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, host, report, distro_release, uname, uptime, interface_count, created_at, fragment
		FROM snapshots WHERE id = ?
	`, id)

	var (
		snap                   domain.Snapshot
		release, uname, uptime sql.NullString
		createdAt              string
		blob                   []byte
	)
	err := row.Scan(&snap.ID, &snap.Host, &snap.Report, &release, &uname, &uptime, &snap.Interfaces, &createdAt, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap.DistroRelease = nullToString(release)
	snap.Uname = nullToString(uname)
	snap.Uptime = nullToString(uptime)
	if snap.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if snap.Fragment, err = decodeFragment(blob); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListSnapshots returns snapshot summaries, newest first, without fragments.
// An empty host lists every snapshot.
func (r *Repository) ListSnapshots(ctx context.Context, host string) ([]domain.Snapshot, error) {
	query := `
		SELECT id, host, report, distro_release, uname, uptime, interface_count, created_at
		FROM snapshots
	`
	var args []any
	if host != "" {
		query += " WHERE host = ?"
		args = append(args, host)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.Snapshot, 0)
	for rows.Next() {
		var (
			snap                   domain.Snapshot
			release, uname, uptime sql.NullString
			createdAt              string
		)
		if err := rows.Scan(&snap.ID, &snap.Host, &snap.Report, &release, &uname, &uptime, &snap.Interfaces, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.DistroRelease = nullToString(release)
		snap.Uname = nullToString(uname)
		snap.Uptime = nullToString(uptime)
		if snap.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// DeleteSnapshot removes a snapshot and its address index
func (r *Repository) DeleteSnapshot(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	return nil
}

// FindInterfacesByAddress lists every stored interface that carried ipv4, newest first
func (r *Repository) FindInterfacesByAddress(ctx context.Context, ipv4 string) ([]domain.AddressMatch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.snapshot_id, s.host, a.interface, a.ipv4_address, s.created_at
		FROM snapshot_addresses a
		JOIN snapshots s ON s.id = a.snapshot_id
		WHERE a.ipv4_address = ?
		ORDER BY s.created_at DESC, a.interface
	`, ipv4)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.AddressMatch, 0)
	for rows.Next() {
		var (
			m         domain.AddressMatch
			createdAt string
		)
		if err := rows.Scan(&m.SnapshotID, &m.Host, &m.Interface, &m.IPv4Address, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		if m.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return matches, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
