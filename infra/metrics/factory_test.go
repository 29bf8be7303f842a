package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/energylp/core/factory"
	coremetrics "github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/infra/kpi"
)

func TestBuiltinSinks(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop", Name: "quiet"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if _, ok := s.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus", Conf: map[string]any{"port": 9090}}}); err == nil {
		t.Fatal("expected error for unknown prometheus key")
	}
}

func TestEcoSinkSQLite(t *testing.T) {
	prev := EcoStore()
	t.Cleanup(func() {
		ecoMu.Lock()
		ecoStore = prev
		ecoMu.Unlock()
	})
	path := filepath.Join(t.TempDir(), "kpi.db")
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "eco", Conf: map[string]any{"sqlite_path": path}}})
	if err != nil {
		t.Fatalf("create eco: %v", err)
	}
	store, ok := EcoStore().(*kpi.SQLiteStore)
	if !ok {
		t.Fatalf("expected SQLiteStore, got %T", EcoStore())
	}
	defer store.Close()

	now := time.Now()
	if err := s.RecordSolve(coremetrics.SolveEvent{Site: "plant", Feasible: true, ImportMWh: 2, Time: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	recs, err := store.Query("plant", now, now)
	if err != nil || len(recs) != 1 || recs[0].ImportedMWh != 2 {
		t.Fatalf("unexpected records %v err=%v", recs, err)
	}
}
