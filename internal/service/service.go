package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"sxnet/internal/config"
	"sxnet/internal/domain"
	"sxnet/internal/loader"
	"sxnet/internal/metrics"
	"sxnet/internal/repository"
	"sxnet/internal/topology"
)

// ErrNoRepository is returned by Save when no snapshot store is configured
var ErrNoRepository = errors.New("snapshot store not configured")

// Analysis is the reconstructed network state of one report
type Analysis struct {
	Report        string
	Hostname      string
	Uptime        string
	DistroRelease string
	Uname         string
	Graph         *topology.Graph
	// Missing lists the sources that were absent from the report
	Missing []string
}

// Fragment exports the analysis graph tagged with its host name
func (a *Analysis) Fragment() *domain.GraphFragment {
	frag := a.Graph.Fragment(a.Report)
	frag.Host = a.Hostname
	return frag
}

// Summary returns the host summary block. Long uname output wraps after the
// kernel version.
func (a *Analysis) Summary() string {
	var uname strings.Builder
	for i, field := range strings.Fields(a.Uname) {
		if i == 5 {
			uname.WriteString("\n              ")
		} else if i > 0 {
			uname.WriteString(" ")
		}
		uname.WriteString(field)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hostname:     %s\n", a.Hostname)
	fmt.Fprintf(&b, "RH Release:   %s\n", a.DistroRelease)
	fmt.Fprintf(&b, "Uptime:       %s\n", a.Uptime)
	fmt.Fprintf(&b, "Uname -a:     %s", uname.String())
	return b.String()
}

// AnalysisService turns report archives into topology graphs
type AnalysisService struct {
	sources  config.SourcesConfig
	metrics  *metrics.Registry
	repo     repository.SnapshotRepository
	eventBus *EventBus

	// Verbose logs every source read
	Verbose bool
}

// NewAnalysisService creates an analysis service. repo and eventBus may be nil;
// a nil registry gets a private one.
func NewAnalysisService(sources config.SourcesConfig, m *metrics.Registry, repo repository.SnapshotRepository, eventBus *EventBus) *AnalysisService {
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &AnalysisService{
		sources:  sources,
		metrics:  m,
		repo:     repo,
		eventBus: eventBus,
	}
}

// Analyze reads the sources of a report and resolves its topology
func (s *AnalysisService) Analyze(ctx context.Context, archive loader.Archive) (*Analysis, error) {
	start := time.Now()
	s.eventBus.Publish(Event{Type: EventAnalysisStarted, Report: archive.Name()})

	analysis, err := s.analyze(ctx, archive)
	if err != nil {
		s.metrics.RecordAnalysis("error", time.Since(start))
		s.eventBus.Publish(Event{
			Type:    EventAnalysisFailed,
			Report:  archive.Name(),
			Payload: map[string]string{"error": err.Error()},
		})
		return nil, fmt.Errorf("analyze %s: %w", archive.Name(), err)
	}

	s.metrics.RecordAnalysis("success", time.Since(start))
	s.metrics.SetInterfaces(kindCounts(analysis.Graph))
	s.eventBus.Publish(Event{
		Type:   EventAnalysisCompleted,
		Report: archive.Name(),
		Payload: map[string]string{
			"host":       analysis.Hostname,
			"interfaces": fmt.Sprint(analysis.Graph.Len()),
		},
	})
	return analysis, nil
}

func (s *AnalysisService) analyze(ctx context.Context, archive loader.Archive) (*Analysis, error) {
	c := &collector{svc: s, archive: archive}

	analysis := &Analysis{Report: archive.Name()}
	var err error
	if analysis.Hostname, err = c.firstLine(s.sources.Hostname); err != nil {
		return nil, err
	}
	if analysis.Hostname == "" {
		analysis.Hostname = archive.Name()
	}
	if analysis.Uptime, err = c.firstLine(s.sources.Uptime); err != nil {
		return nil, err
	}
	if analysis.DistroRelease, err = c.firstLine(s.sources.Release); err != nil {
		return nil, err
	}
	if analysis.Uname, err = c.firstLine(s.sources.Uname); err != nil {
		return nil, err
	}

	in, err := c.input(ctx)
	if err != nil {
		return nil, err
	}

	analysis.Graph = topology.NewGraph(in)
	analysis.Missing = c.missing
	if s.Verbose {
		log.Printf("%s: %d interfaces, %d bonded masters, %d bridged",
			archive.Name(), analysis.Graph.Len(), len(analysis.Graph.BondedMasters()), len(analysis.Graph.Bridged()))
	}
	return analysis, nil
}

// Save stores the analysis as a snapshot
func (s *AnalysisService) Save(ctx context.Context, analysis *Analysis) (*domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}

	snap := &domain.Snapshot{
		Host:          analysis.Hostname,
		Report:        analysis.Report,
		DistroRelease: analysis.DistroRelease,
		Uname:         analysis.Uname,
		Uptime:        analysis.Uptime,
		Fragment:      analysis.Fragment(),
	}
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("save snapshot of %s: %w", analysis.Hostname, err)
	}

	s.metrics.SnapshotsSavedTotal.Inc()
	s.eventBus.Publish(Event{
		Type:    EventSnapshotSaved,
		Report:  analysis.Report,
		Payload: map[string]string{"id": snap.ID, "host": snap.Host},
	})
	return snap, nil
}

// ListSnapshots returns stored snapshots, optionally for one host
func (s *AnalysisService) ListSnapshots(ctx context.Context, host string) ([]domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.ListSnapshots(ctx, host)
}

// GetSnapshot returns a stored snapshot including its graph fragment
func (s *AnalysisService) GetSnapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.GetSnapshot(ctx, id)
}

// DeleteSnapshot removes a stored snapshot
func (s *AnalysisService) DeleteSnapshot(ctx context.Context, id string) error {
	if s.repo == nil {
		return ErrNoRepository
	}
	return s.repo.DeleteSnapshot(ctx, id)
}

// FindAddress returns the stored interfaces that carried an IPv4 address
func (s *AnalysisService) FindAddress(ctx context.Context, ipv4 string) ([]domain.AddressMatch, error) {
	if s.repo == nil {
		return nil, ErrNoRepository
	}
	return s.repo.FindInterfacesByAddress(ctx, ipv4)
}

func kindCounts(g *topology.Graph) map[string]int {
	counts := make(map[string]int)
	for _, n := range g.Nodes() {
		counts[string(g.Kind(n))]++
	}
	return counts
}
