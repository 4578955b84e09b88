package advisor

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/entities"
	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor/session"
)

// EventSink receives a record of every completed advisory operation.
// Implementations must not block the caller for long and never fail it.
type EventSink interface {
	Emit(ctx context.Context, evt messages.AdvisoryEvent)
}

type Config struct {
	// EfficiencyWeight scales the improve_efficiency adjustment. Zero selects
	// DefaultEfficiencyWeight; no weight value turns the adjustment off.
	EfficiencyWeight float64
	RandomSource     rand.Source // nil seeds from the clock
}

// Service is the classifier -> scorer -> reporter pipeline plus the
// per-session historical analysis.
type Service struct {
	catalog    *Catalog
	classifier *Classifier
	scorer     *Scorer
	reporter   *Reporter
	sessions   *session.Store
	sink       EventSink
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Service)

func WithEventSink(s EventSink) Option { return func(svc *Service) { svc.sink = s } }
func WithLogger(l *zap.Logger) Option { return func(svc *Service) { svc.logger = l } }
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

func NewService(cfg Config, catalog *Catalog, sessions *session.Store, opts ...Option) *Service {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if sessions == nil {
		sessions = session.NewStore(0)
	}
	if cfg.EfficiencyWeight == 0 {
		cfg.EfficiencyWeight = DefaultEfficiencyWeight
	}
	svc := &Service{
		catalog:    catalog,
		classifier: NewClassifier(cfg.RandomSource),
		scorer:     NewScorer(catalog, cfg.EfficiencyWeight),
		sessions:   sessions,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(svc)
	}
	svc.reporter = NewReporter(catalog, svc.now)
	return svc
}

func (s *Service) Catalog() *Catalog { return s.catalog }

type SoilRequest struct {
	SessionID   string
	ImageHint   string
	Soil        entities.SoilType // skips classification when valid
	AreaSqm     float64
	PrevCrops   string
	Preference  string
	DesiredCrop string
}

type SoilResult struct {
	SoilType        entities.SoilType           `json:"soil_type"`
	Recommendations []entities.SuitabilityEntry `json:"recommendations"`
}

// AnalyzeSoil classifies the plot and ranks the catalog for it, using the
// session's historical analysis when the preference asks for it.
func (s *Service) AnalyzeSoil(ctx context.Context, req SoilRequest) SoilResult {
	soil := req.Soil
	if !soil.Valid() {
		soil = s.classifier.Classify(req.ImageHint)
	}

	in := ScoreInput{
		Soil:        soil,
		AreaSqm:     req.AreaSqm,
		PrevCrops:   ParsePrevCrops(req.PrevCrops),
		Preference:  ParsePreference(req.Preference),
		DesiredCrop: req.DesiredCrop,
	}
	if h, ok := s.sessions.Get(req.SessionID); ok {
		in.Historical = &h
	}
	recs := s.scorer.Score(in)

	s.logger.Debug("soil analyzed",
		zap.String("session", req.SessionID),
		zap.String("soil", string(soil)),
		zap.String("preference", string(in.Preference)),
		zap.Bool("historical", in.Historical != nil))

	evt := messages.AdvisoryEvent{
		EventType: messages.EventSoilAnalyzed,
		SessionID: req.SessionID,
		Soil:      string(soil),
		Fields: map[string]interface{}{
			"area_sqm":   req.AreaSqm,
			"preference": string(in.Preference),
		},
		Timestamp: s.now().UTC(),
	}
	if len(recs) > 0 {
		evt.Crop = recs[0].Crop
		evt.Fields["top_score"] = recs[0].Score
	}
	s.emit(ctx, evt)

	return SoilResult{SoilType: soil, Recommendations: recs}
}

type PlanRequest struct {
	SessionID       string
	Crop            string
	AreaSqm         float64
	Soil            entities.SoilType
	Location        string
	Recommendations []entities.SuitabilityEntry
}

func (s *Service) GeneratePlan(ctx context.Context, req PlanRequest) (Report, error) {
	rep, err := s.reporter.Generate(ReportInput{
		Crop:     req.Crop,
		AreaSqm:  req.AreaSqm,
		Soil:     req.Soil,
		Location: req.Location,
		Score:    ScoreFor(req.Recommendations, req.Crop),
	})
	if err != nil {
		s.logger.Info("plan rejected", zap.String("crop", req.Crop), zap.Error(err))
		return Report{}, err
	}

	s.emit(ctx, messages.AdvisoryEvent{
		EventType: messages.EventPlanGenerated,
		SessionID: req.SessionID,
		Crop:      rep.Crop,
		Soil:      string(req.Soil),
		Fields: map[string]interface{}{
			"area_ha":    rep.AreaHa,
			"total_cost": rep.TotalCost,
			"revenue":    rep.TotalRevenue,
			"net_profit": rep.NetProfit,
			"water_m3":   rep.TotalWaterM3,
		},
		Timestamp: s.now().UTC(),
	})
	return rep, nil
}

type HistoricalRequest struct {
	SessionID   string
	Crop        string
	ActualYield float64
	AreaSqm     float64
	ActualWater float64
}

// AnalyzeHistorical replaces the session's analysis; earlier seasons are discarded.
func (s *Service) AnalyzeHistorical(ctx context.Context, req HistoricalRequest) (entities.HistoricalAnalysis, error) {
	a, err := AnalyzeHistorical(req.ActualYield, req.AreaSqm, req.ActualWater, req.Crop, s.now().UTC())
	if err != nil {
		return entities.HistoricalAnalysis{}, err
	}
	s.sessions.Put(req.SessionID, a)

	s.logger.Info("historical analysis updated",
		zap.String("session", req.SessionID),
		zap.String("crop", a.PreviousCrop),
		zap.Float64("ratio", a.WaterEfficiencyRatio))

	s.emit(ctx, messages.AdvisoryEvent{
		EventType: messages.EventHistoricalUpdated,
		SessionID: req.SessionID,
		Crop:      a.PreviousCrop,
		Fields: map[string]interface{}{
			"actual_yield":     req.ActualYield,
			"actual_water":     req.ActualWater,
			"area_sqm":         req.AreaSqm,
			"water_efficiency": a.WaterEfficiencyRatio,
		},
		Timestamp: a.UpdatedAt,
	})
	return a, nil
}

// Historical exposes the session's current analysis.
func (s *Service) Historical(sessionID string) (entities.HistoricalAnalysis, bool) {
	return s.sessions.Get(sessionID)
}

func (s *Service) emit(ctx context.Context, evt messages.AdvisoryEvent) {
	if s.sink != nil {
		s.sink.Emit(ctx, evt)
	}
}
