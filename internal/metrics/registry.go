package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the analysis metrics
type Registry struct {
	SourceRecordsTotal  *prometheus.CounterVec
	SourcesMissingTotal *prometheus.CounterVec
	Interfaces          *prometheus.GaugeVec
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram
	SnapshotsSavedTotal prometheus.Counter

	registry *prometheus.Registry
	// guards the reset and refill of Interfaces
	interfacesMu sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.SourceRecordsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxnet_source_records_total",
			Help: "Records parsed from report sources",
		},
		[]string{"source"}, // hosts, interfaces, ifcfg, modprobe, proc_net, commands
	)

	r.SourcesMissingTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxnet_sources_missing_total",
			Help: "Sources that were absent from a report",
		},
		[]string{"source"},
	)

	r.Interfaces = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sxnet_interfaces",
			Help: "Interfaces in the most recently analyzed report by kind",
		},
		[]string{"kind"}, // interface, bond, bridge, alias, loopback
	)

	r.AnalysesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sxnet_analyses_total",
			Help: "Report analyses by result",
		},
		[]string{"status"}, // success, error
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sxnet_analysis_duration_seconds",
			Help:    "Time spent loading and resolving one report",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.SnapshotsSavedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sxnet_snapshots_saved_total",
			Help: "Topology snapshots written to the snapshot store",
		},
	)

	return r
}

// Gatherer exposes the underlying registry for collection
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordSource records the number of records parsed from a source
func (r *Registry) RecordSource(source string, records int) {
	r.SourceRecordsTotal.WithLabelValues(source).Add(float64(records))
}

// RecordMissingSource records a source that was not present in a report
func (r *Registry) RecordMissingSource(source string) {
	r.SourcesMissingTotal.WithLabelValues(source).Inc()
}

// RecordAnalysis records the result of one report analysis
func (r *Registry) RecordAnalysis(status string, duration time.Duration) {
	r.AnalysesTotal.WithLabelValues(status).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
}

// SetInterfaces replaces the per kind interface counts. Concurrent callers never
// leave a mix of two reports behind.
func (r *Registry) SetInterfaces(counts map[string]int) {
	r.interfacesMu.Lock()
	defer r.interfacesMu.Unlock()
	r.Interfaces.Reset()
	for kind, n := range counts {
		r.Interfaces.WithLabelValues(kind).Set(float64(n))
	}
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
