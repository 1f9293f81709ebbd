package repository

import (
	"context"
	"errors"

	"sxnet/internal/domain"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested ID
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository defines the interface for topology snapshot storage
type SnapshotRepository interface {
	// Write operations
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
	DeleteSnapshot(ctx context.Context, id string) error

	// Read operations
	GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, host string) ([]domain.Snapshot, error)
	FindInterfacesByAddress(ctx context.Context, ipv4 string) ([]domain.AddressMatch, error)

	// Close releases resources
	Close() error
}
