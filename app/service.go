// Package app assembles the dispatch service from its configuration.
package app

import (
	"context"
	"fmt"

	"github.com/chargenet/roaming/api"
	"github.com/chargenet/roaming/config"
	"github.com/chargenet/roaming/core/cdr"
	"github.com/chargenet/roaming/core/directory"
	"github.com/chargenet/roaming/core/dispatch"
	coremetrics "github.com/chargenet/roaming/core/metrics"
	"github.com/chargenet/roaming/infra/logger"
	"github.com/chargenet/roaming/infra/metrics"
	"github.com/chargenet/roaming/infra/mqtt"
	"github.com/chargenet/roaming/internal/eventbus"
)

// Service orchestrates the dispatch engine and its surfaces.
type Service struct {
	Engine    *dispatch.Engine
	Providers *directory.ProviderIndex
	Router    *cdr.Router

	cfg        *config.Config
	bus        *eventbus.Bus
	sink       coremetrics.MetricsSink
	mqttClient *mqtt.PahoClient
	log        logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()
	providers := directory.NewProviderIndex()
	roaming := dispatch.NewRoamingRegistry()
	sessions := directory.NewMemorySessions()
	reservations := directory.NewMemoryReservations()

	// The engine and router publish to the bus only; the sink is fed
	// asynchronously by the event collector so slow sinks never delay a
	// dispatch.
	router, err := cdr.NewRouter(providers, roaming, sessions, nil, nil, bus, logger.New("cdr-router"))
	if err != nil {
		return nil, fmt.Errorf("cdr router: %w", err)
	}
	engine, err := dispatch.NewEngine(cfg.Dispatch, providers, roaming, reservations, sessions, router, nil, bus, logger.New("dispatch-engine"))
	if err != nil {
		return nil, fmt.Errorf("dispatch engine: %w", err)
	}

	svc := &Service{
		Engine:    engine,
		Providers: providers,
		Router:    router,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		log:       logg,
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttClient = client
	}
	return svc, nil
}

// Run starts the service surfaces and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.mqttClient != nil {
		mqtt.StartEventPublisher(ctx, s.bus, s.mqttClient, s.cfg.MQTT.TopicPrefix, s.log)
	}
	if addr := s.cfg.HTTP.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	server := api.NewServer(s.Engine, s.Router, "", logger.New("api"))
	return api.StartServer(ctx, s.cfg.HTTP.Addr, server.Handler(), s.log)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	s.bus.Close()
	return nil
}
