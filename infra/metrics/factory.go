package metrics

import (
	"sync"

	"github.com/kilianp07/energylp/core/factory"
	coremetrics "github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/metrics/eco"
	"github.com/kilianp07/energylp/infra/kpi"
)

var (
	ecoMu sync.RWMutex
	// ecoStore backs factory-built eco sinks so the daily records can be
	// served next to the metrics.
	ecoStore eco.Store = eco.NewMemoryStore()
)

// EcoStore returns the store of the last eco sink built by the factory, or
// an in-memory store when none was configured with a database.
func EcoStore() eco.Store {
	ecoMu.RLock()
	defer ecoMu.RUnlock()
	return ecoStore
}

// EcoConfig configures the eco sink. SQLitePath persists the daily records;
// when empty they are kept in memory.
type EcoConfig struct {
	Name       string `json:"name"`
	SQLitePath string `json:"sqlite_path"`
}

func newEcoSink(c EcoConfig) (coremetrics.MetricsSink, error) {
	ecoMu.Lock()
	defer ecoMu.Unlock()
	if c.SQLitePath != "" {
		store, err := kpi.NewSQLiteStore(c.SQLitePath)
		if err != nil {
			return nil, err
		}
		ecoStore = store
	}
	return NewEcoSink(ecoStore, nil)
}

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c PromConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPromSink(c)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterMetricsSink("eco", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c EcoConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return newEcoSink(c)
	})
}
