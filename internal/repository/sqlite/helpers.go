package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"sxnet/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Timestamp Helpers
// ============================================================================

// Fixed width so that created_at sorts lexically in time order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// ============================================================================
// Fragment Blob Helpers
// ============================================================================

// encodeFragment marshals a graph fragment to JSON and snappy compresses it
func encodeFragment(frag *domain.GraphFragment) ([]byte, error) {
	data, err := json.Marshal(frag)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fragment: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// decodeFragment reverses encodeFragment
func decodeFragment(blob []byte) (*domain.GraphFragment, error) {
	data, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress fragment: %w", err)
	}
	frag := domain.NewGraphFragment()
	if err := json.Unmarshal(data, frag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fragment: %w", err)
	}
	return frag, nil
}
