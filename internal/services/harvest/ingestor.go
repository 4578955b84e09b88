// Package harvest turns harvest reports published by field devices into
// historical analyses for the reporting farm's session.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/dedup"
	"github.com/LeonardoBeccarini/agri_advisor/pkg/rabbitmq"
)

const DefaultTopic = "harvest/report/#"

// HistoricalUpdater is the part of the advisor the ingestor drives.
type HistoricalUpdater interface {
	AnalyzeHistorical(ctx context.Context, req advisor.HistoricalRequest) (model.HistoricalAnalysis, error)
}

type Ingestor struct {
	consumer rabbitmq.IConsumer
	updater  HistoricalUpdater
	deduper  *dedup.Deduper
	logger   *zap.Logger
}

func NewIngestor(consumer rabbitmq.IConsumer, updater HistoricalUpdater, d *dedup.Deduper, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{consumer: consumer, updater: updater, deduper: d, logger: logger}
}

// Start subscribes and blocks until ctx is cancelled.
func (in *Ingestor) Start(ctx context.Context) error {
	in.consumer.SetHandler(func(topic string, m mqtt.Message) error {
		return in.HandlePayload(ctx, topic, m.Payload())
	})
	return in.consumer.ConsumeMessage(ctx)
}

// HandlePayload decodes one report and applies it. Duplicates are ignored.
func (in *Ingestor) HandlePayload(ctx context.Context, topic string, payload []byte) error {
	if !in.deduper.ShouldProcess(dedup.Key(payload)) {
		in.logger.Debug("duplicate harvest report", zap.String("topic", topic))
		return nil
	}

	var r model.HarvestReport
	if err := json.Unmarshal(payload, &r); err != nil {
		return fmt.Errorf("decode harvest report: %w", err)
	}
	if r.SessionID == "" {
		r.SessionID = SessionFromTopic(topic)
	}

	a, err := in.updater.AnalyzeHistorical(ctx, advisor.HistoricalRequest{
		SessionID:   r.SessionID,
		Crop:        r.Crop,
		ActualYield: r.ActualYield,
		AreaSqm:     r.AreaSqm,
		ActualWater: r.ActualWater,
	})
	if err != nil {
		return fmt.Errorf("harvest report for session %q: %w", r.SessionID, err)
	}

	in.logger.Info("harvest report applied",
		zap.String("session", r.SessionID),
		zap.String("crop", a.PreviousCrop),
		zap.Float64("ratio", a.WaterEfficiencyRatio))
	return nil
}

// SessionFromTopic extracts {session} from "harvest/report/{session}".
func SessionFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) < 3 || parts[0] != "harvest" || parts[1] != "report" {
		return ""
	}
	return strings.Join(parts[2:], "/")
}
