// Package service turns collected diagnostic reports into resolved network topologies.
//
// AnalysisService reads every networking source of a report through a
// loader.Archive, hands the parsed input to topology.NewGraph and returns an
// Analysis holding the graph plus the host summary (hostname, release, uptime,
// uname). Sources that are missing from the report are not an error; they are
// listed in Analysis.Missing, counted in the metrics registry and published on
// the EventBus.
//
// # Persistence
//
// Save stores an analysis as a snapshot through a repository.SnapshotRepository.
// The service works without one; Save then returns ErrNoRepository.
//
// # Design Principles
//
// - Services own source discovery; the topology package never touches files
// - Context-aware so a slow archive can be abandoned between sources
// - Safe to call concurrently for different reports
package service
