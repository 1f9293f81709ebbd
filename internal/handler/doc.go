// Package handler implements the HTTP API of the snapshot server.
//
// SnapshotHandler exposes the snapshots stored by the analysis service:
//
//	GET    /api/snapshots                     list, newest first (?host= filters)
//	GET    /api/snapshots/{id}                one snapshot with its graph fragment
//	DELETE /api/snapshots/{id}                remove a snapshot
//	GET    /api/snapshots/{id}/export/{format} graph fragment as json or yaml
//	GET    /api/addresses/{ip}                stored interfaces that carried an IPv4 address
//
// Errors are returned as JSON with an {error, details} body. Unknown snapshot
// IDs give 404.
//
// Middleware provides panic recovery, CORS and request logging.
package handler
