package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor/session"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/api/app"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/event"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/harvest"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/dedup"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/rabbitmq"
)

const readinessMinErrorAge = 5 * time.Second

func runServe(ctx context.Context, cfg Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	catalog, err := advisor.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	metrics := app.NewMetrics()
	sessions := session.NewStore(cfg.SessionTTL)
	go sweepSessions(ctx, sessions, logger)

	// === Event sinks ===
	var (
		sinks      []event.Sink
		writer     *event.Writer
		mqttSink   *event.MQTTSink
		mqttClient mqtt.Client
	)
	if cfg.InfluxURL != "" {
		opts := influxdb2.DefaultOptions().SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
		influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
		defer influx.Close()
		writer = event.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket), logger.Named("influx"))
		sinks = append(sinks, writer)
	}
	if cfg.MQTTEnabled {
		mqttClient, err = rabbitmq.NewRabbitMQConn(ctx, &cfg.Rabbit, logger.Named("mqtt"))
		if err != nil {
			return err
		}
		defer rabbitmq.CloseRabbitMQConn(mqttClient, logger)
		mqttSink = event.NewMQTTSink(rabbitmq.NewPublisher(mqttClient, 0), cfg.EventTopic)
		sinks = append(sinks, mqttSink)
	}
	exporter := event.NewExporter(cfg.Breaker, sinks,
		event.WithQueueSize(cfg.EventQueueSize),
		event.WithLogger(logger.Named("export")),
		event.WithMetrics(metrics.SinkState, metrics.SinkSent))
	defer exporter.Close()

	svc := advisor.NewService(advisor.Config{EfficiencyWeight: cfg.EfficiencyWeight}, catalog, sessions,
		advisor.WithEventSink(exporter),
		advisor.WithLogger(logger.Named("advisor")))

	// === Harvest reports ===
	if mqttClient != nil {
		consumer := rabbitmq.NewConsumer(mqttClient, cfg.HarvestTopic, 1, logger.Named("harvest"))
		ingestor := harvest.NewIngestor(consumer, svc, dedup.New(cfg.DedupTTL, 0), logger.Named("harvest"))
		go func() {
			if err := ingestor.Start(ctx); err != nil {
				logger.Error("harvest ingestion stopped", zap.Error(err))
			}
		}()
	}

	// === HTTP ===
	deps := event.ReadyDeps{Writer: writer, Exporter: exporter, Strict: cfg.StrictReadyz}
	if mqttSink != nil {
		deps.MQTT = mqttSink
	}
	api := app.New(app.Config{
		UploadDir:    cfg.UploadDir,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Logger:       logger.Named("http"),
		Metrics:      metrics,
		Ready:        event.NewReadyHandler(deps, readinessMinErrorAge),
	}, svc)
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// === gRPC health ===
	var gh *grpcHealth
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			return fmt.Errorf("grpc health listen: %w", err)
		}
		gh = newGRPCHealth(logger.Named("grpc"))
		go func() {
			if err := gh.Serve(lis); err != nil {
				logger.Error("grpc health server error", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("advisor listening",
			zap.String("addr", hs.Addr),
			zap.Float64("efficiency_weight", cfg.EfficiencyWeight),
			zap.Int("event_sinks", len(sinks)))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if gh != nil {
		gh.SetServing(true)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("http server error", zap.Error(err))
		if gh != nil {
			gh.Stop()
		}
		return err
	}

	if gh != nil {
		gh.Stop()
	}
	shCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	return hs.Shutdown(shCtx)
}

func sweepSessions(ctx context.Context, s *session.Store, logger *zap.Logger) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
