package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/energylp/core/metrics"
	"github.com/kilianp07/energylp/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket runs are written to.
type InfluxConfig struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes optimisation runs to an InfluxDB instance using the
// official client. Tags and fields are added in lexical order.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordSolve writes one optimisation_run point. Solved quantities are
// omitted for infeasible runs, whose values are NaN.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimisation_run").
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddTag("objective", ev.Objective).
		AddTag("run_id", ev.RunID).
		AddTag("site", ev.Site)
	if ev.Feasible {
		p = p.AddField("carbon_t", round3(ev.CarbonTonnes)).
			AddField("cost", round3(ev.Cost))
	}
	p = p.AddField("constraints", ev.Constraints).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000))
	if ev.Feasible {
		p = p.AddField("export_mwh", round3(ev.ExportMWh)).
			AddField("import_mwh", round3(ev.ImportMWh))
	}
	p = p.AddField("intervals", ev.Intervals).
		AddField("nodes", ev.Nodes)
	if ev.Feasible {
		p = p.AddField("objective_value", round3(ev.Value))
	}
	p = p.AddField("spill", ev.Spill).
		AddField("spill_columns", ev.SpillColumns).
		AddField("variables", ev.Variables).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordIntervals writes one site_interval point per interval in a single
// request.
func (s *InfluxSink) RecordIntervals(runID string, points []coremetrics.IntervalPoint) error {
	if len(points) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pts := make([]*write.Point, 0, len(points))
	for _, ip := range points {
		if math.IsNaN(ip.ImportMWh) {
			continue
		}
		pts = append(pts, write.NewPointWithMeasurement("site_interval").
			AddTag("interval", strconv.Itoa(ip.Index)).
			AddTag("run_id", runID).
			AddField("carbon_intensity", round3(ip.CarbonIntensity)).
			AddField("export_mwh", round3(ip.ExportMWh)).
			AddField("import_mwh", round3(ip.ImportMWh)).
			AddField("price", round3(ip.Price)).
			SetTime(ip.Time))
	}
	if len(pts) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
