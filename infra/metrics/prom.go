package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/energylp/core/metrics"
)

// DefaultPushJob is the pushgateway job name used when none is configured.
const DefaultPushJob = "energylp"

// PromConfig configures a PromSink. When PushURL is set the sink owns a
// private registry and pushes it to a Prometheus pushgateway after every run,
// which suits one-shot CLI invocations.
type PromConfig struct {
	Name    string `json:"name"`
	PushURL string `json:"push_url"`
	Job     string `json:"job"`
}

// PromSink records optimisation runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	spill     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective *prometheus.GaugeVec
	nodes     *prometheus.GaugeVec
	pusher    *push.Pusher
}

// NewPromSink registers the run metrics on the default registerer, or on a
// private registry pushed to cfg.PushURL.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	if cfg.PushURL == "" {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	}
	if cfg.Job == "" {
		cfg.Job = DefaultPushJob
	}
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		return nil, err
	}
	s.pusher = push.New(cfg.PushURL, cfg.Job).Gatherer(reg)
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energylp_optimisation_runs_total",
		Help: "Total number of optimisation runs",
	}, []string{"objective", "feasible"})); err != nil {
		return nil, err
	}
	if s.spill, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "energylp_spill_runs_total",
		Help: "Number of runs whose solution used a spill asset",
	}, []string{"objective"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energylp_optimisation_duration_seconds",
		Help:    "Time spent formulating and solving a run",
		Buckets: prometheus.DefBuckets,
	}, []string{"objective"})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "energylp_objective_value",
		Help: "Objective value of the last feasible run",
	}, []string{"objective"})); err != nil {
		return nil, err
	}
	if s.nodes, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "energylp_branch_and_bound_nodes",
		Help: "Relaxations solved by the last run",
	}, []string{"objective"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSolve updates the run metrics and pushes them when configured.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Objective, strconv.FormatBool(ev.Feasible)).Inc()
	s.duration.WithLabelValues(ev.Objective).Observe(ev.Duration.Seconds())
	s.nodes.WithLabelValues(ev.Objective).Set(float64(ev.Nodes))
	if ev.Feasible {
		s.objective.WithLabelValues(ev.Objective).Set(ev.Value)
	}
	if ev.Spill {
		s.spill.WithLabelValues(ev.Objective).Inc()
	}
	if s.pusher == nil {
		return nil
	}
	if err := s.pusher.Push(); err != nil {
		return fmt.Errorf("prometheus push: %w", err)
	}
	return nil
}
