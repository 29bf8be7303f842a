package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/core/metrics/eco"
)

// EcoSink aggregates feasible runs into daily site records and exposes them
// as gauges.
type EcoSink struct {
	store    eco.Store
	imported *prometheus.GaugeVec
	net      *prometheus.GaugeVec
	carbon   *prometheus.GaugeVec
}

// NewEcoSink creates a sink with Prometheus gauges registered on reg.
func NewEcoSink(store eco.Store, reg prometheus.Registerer) (*EcoSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &EcoSink{store: store}
	var err error
	if s.imported, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_imported_energy_mwh",
		Help: "Daily energy imported by a site",
	}, []string{"site", "day"})); err != nil {
		return nil, err
	}
	if s.net, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_net_import_mwh",
		Help: "Daily imports minus exports of a site",
	}, []string{"site", "day"})); err != nil {
		return nil, err
	}
	if s.carbon, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_carbon_tonnes",
		Help: "Daily grid and gas emissions of a site",
	}, []string{"site", "day"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSolve adds the run to its day and refreshes the gauges.
func (s *EcoSink) RecordSolve(ev core.SolveEvent) error {
	if !ev.Feasible {
		return nil
	}
	rec := eco.Record{
		Site:         ev.Site,
		Date:         ev.Time,
		ImportedMWh:  ev.ImportMWh,
		ExportedMWh:  ev.ExportMWh,
		CarbonTonnes: ev.CarbonTonnes,
		Runs:         1,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	records, err := s.store.Query(ev.Site, ev.Time, ev.Time)
	if err != nil || len(records) == 0 {
		return err
	}
	day := eco.Day(ev.Time).Format("2006-01-02")
	r := records[0]
	s.imported.WithLabelValues(ev.Site, day).Set(r.ImportedMWh)
	s.net.WithLabelValues(ev.Site, day).Set(r.NetImportMWh())
	s.carbon.WithLabelValues(ev.Site, day).Set(r.CarbonTonnes)
	return nil
}
