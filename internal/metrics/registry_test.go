package metrics

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.SourceRecordsTotal == nil {
		t.Error("SourceRecordsTotal not initialized")
	}
	if r.AnalysisDuration == nil {
		t.Error("AnalysisDuration not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordSource(t *testing.T) {
	r := NewRegistry()
	r.RecordSource("hosts", 3)
	r.RecordSource("hosts", 2)
	r.RecordSource("ifcfg", 0)

	counter, err := r.SourceRecordsTotal.GetMetricWithLabelValues("hosts")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 5 {
		t.Errorf("Counter value = %v, want 5", metric.Counter.GetValue())
	}
}

func TestSetInterfacesResets(t *testing.T) {
	r := NewRegistry()
	r.SetInterfaces(map[string]int{"bond": 2, "interface": 4})
	r.SetInterfaces(map[string]int{"interface": 1})

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "sxnet_interfaces" {
			continue
		}
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("got %d series, want 1 after reset", len(mf.GetMetric()))
		}
		if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 1 {
			t.Errorf("interface gauge = %v, want 1", v)
		}
		return
	}
	t.Error("sxnet_interfaces not gathered")
}

func TestSetInterfacesConcurrent(t *testing.T) {
	r := NewRegistry()
	web := map[string]int{"bond": 2, "interface": 4, "alias": 1}
	db := map[string]int{"bridge": 1, "loopback": 1}

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		counts := web
		if i%2 == 1 {
			counts = db
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SetInterfaces(counts)
		}()
	}
	wg.Wait()

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	got := make(map[string]int)
	for _, mf := range families {
		if mf.GetName() != "sxnet_interfaces" {
			continue
		}
		for _, m := range mf.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = int(m.GetGauge().GetValue())
		}
	}
	if !reflect.DeepEqual(got, web) && !reflect.DeepEqual(got, db) {
		t.Errorf("interface gauges = %v, want exactly %v or %v", got, web, db)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordAnalysis("success", 20*time.Millisecond)
	r.RecordAnalysis("error", 5*time.Millisecond)
	r.RecordMissingSource("modprobe")

	path := filepath.Join(t.TempDir(), "sxnet.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`sxnet_analyses_total{status="success"} 1`,
		`sxnet_analyses_total{status="error"} 1`,
		`sxnet_analysis_duration_seconds_count 2`,
		`sxnet_sources_missing_total{source="modprobe"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
