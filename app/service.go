package app

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/energylp/api/optimize"
	"github.com/kilianp07/energylp/api/sites"
	"github.com/kilianp07/energylp/config"
	"github.com/kilianp07/energylp/core/logger"
	"github.com/kilianp07/energylp/infra/metrics"
)

// Service serves the optimisation API, the site KPIs and the Prometheus
// metrics on one address.
type Service struct {
	Runner *Runner
	srv    *http.Server
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config, log logger.Logger) (*Service, error) {
	runner, err := NewRunner(cfg, log)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/api/optimize", optimize.NewHandler(runner, cfg.Server.Token, log))
	mux.Handle("/api/sites/", sites.NewKPIHandler(metrics.EcoStore()))
	mux.Handle("/metrics", promhttp.Handler())
	return &Service{
		Runner: runner,
		srv:    &http.Server{Addr: cfg.Server.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log,
	}, nil
}

// Handler returns the routes of the service.
func (s *Service) Handler() http.Handler { return s.srv.Handler }

// Run serves until the context is cancelled, then shuts the server down.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("server shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Runner.Close()
	return nil
}
