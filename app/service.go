// Package app wires the configured adapters into a running sweep service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ngworks1909/pulse-backend/api/fares"
	"github.com/ngworks1909/pulse-backend/config"
	coremetrics "github.com/ngworks1909/pulse-backend/core/metrics"
	"github.com/ngworks1909/pulse-backend/core/sweep"
	"github.com/ngworks1909/pulse-backend/infra/alertstore"
	"github.com/ngworks1909/pulse-backend/infra/faresource"
	"github.com/ngworks1909/pulse-backend/infra/journal"
	"github.com/ngworks1909/pulse-backend/infra/logger"
	"github.com/ngworks1909/pulse-backend/infra/metrics"
	"github.com/ngworks1909/pulse-backend/infra/mqtt"
	"github.com/ngworks1909/pulse-backend/infra/push"
	"github.com/ngworks1909/pulse-backend/internal/eventbus"
)

// Service orchestrates the sweep manager and its adapters.
type Service struct {
	Manager *sweep.Manager
	Store   *alertstore.SQLiteStore

	bus         eventbus.EventBus
	bridge      *mqtt.Bridge
	log         logger.Logger
	interval    time.Duration
	promEnabled bool
	promPort    string
	api         config.APIConfig
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := alertstore.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("alert store: %w", err)
	}
	source := faresource.NewClient(cfg.FareSource, logger.New("fare-source"))
	notifier := push.NewClient(cfg.Push, logger.New("expo-push"))

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	manager, err := sweep.NewManager(st, source, notifier, sink, bus, logger.New("sweep"), cfg.Sweep.Workers)
	if err != nil {
		return nil, fmt.Errorf("sweep manager: %w", err)
	}
	if cfg.Journal.Enabled {
		j, err := journal.NewJSONLStore(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		manager.SetJournal(j)
	}

	var bridge *mqtt.Bridge
	if cfg.MQTT.Enabled {
		bridge, err = mqtt.NewBridge(cfg.MQTT, bus)
		if err != nil {
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
	}

	return &Service{
		Manager:     manager,
		Store:       st,
		bus:         bus,
		bridge:      bridge,
		log:         logg,
		interval:    time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
		api:         cfg.API,
	}, nil
}

// Run starts the service and blocks until the context is cancelled. The first
// sweep fires immediately, then every configured interval.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.api.Enabled {
		go s.serveAPI(ctx)
	}

	ticks := make(chan time.Time, 1)
	done := make(chan struct{})
	go func() {
		s.Manager.Run(ctx, ticks)
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	ticks <- time.Now()
	for {
		select {
		case <-ctx.Done():
			close(ticks)
			<-done
			return nil
		case t := <-ticker.C:
			select {
			case ticks <- t:
			default:
				s.log.Warnf("sweep still running, skipping tick")
			}
		}
	}
}

func (s *Service) serveAPI(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/api/fares", fares.NewHandler(s.Store, s.api.Token))
	srv := &http.Server{Addr: s.api.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Errorf("api server: %v", err)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bridge != nil {
		if err := s.bridge.Close(); err != nil {
			s.log.Errorf("bridge close: %v", err)
		}
	}
	s.bus.Close()
	if err := s.Manager.Close(); err != nil {
		s.log.Errorf("manager close: %v", err)
	}
	return s.Store.Close()
}
