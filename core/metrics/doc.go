// Package metrics defines the events recorded for every optimisation run and
// the sinks that receive them. Sinks like PromSink and InfluxSink live in
// infra/metrics and register themselves with the factory in this package.
// NewMetricsSink returns a MultiSink automatically when multiple sinks are
// configured.
package metrics
