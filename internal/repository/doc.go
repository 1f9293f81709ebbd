// Package repository defines the data access interface for topology snapshots.
//
// A snapshot is the exported graph of one analyzed report together with the host
// summary it was taken from. The implementation lives in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores each snapshot as one row holding the
// snappy-compressed JSON graph fragment, plus an address index table so stored
// hosts can be searched by interface IPv4 address without decoding fragments.
// It handles:
//
// - Schema creation on open
// - UUID snapshot identifiers
// - Cascade deletes of the address index
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
