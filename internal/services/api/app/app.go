package app

import (
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/services/advisor"
)

const DefaultMaxBodyBytes = 10 << 20

type Config struct {
	UploadDir    string
	MaxBodyBytes int64

	Logger  *zap.Logger
	Metrics *Metrics
	// Ready serves /readyz; nil answers a static ok.
	Ready http.Handler
}

// App is the HTTP front of the advisor.
type App struct {
	cfg     Config
	svc     *advisor.Service
	logger  *zap.Logger
	metrics *Metrics
}

func New(cfg Config, svc *advisor.Service) *App {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join(os.TempDir(), "agri_advisor_uploads")
	}
	return &App{cfg: cfg, svc: svc, logger: cfg.Logger, metrics: cfg.Metrics}
}

// Routes builds the full handler tree: API routes get CORS and a body limit,
// everything is gzip-compressed when the client accepts it.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	ready := a.cfg.Ready
	if ready == nil {
		ready = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ready": true})
		})
	}
	mux.Handle("GET /readyz", ready)
	mux.Handle("GET /metrics", a.metrics.Handler())

	mux.Handle("POST /api/analyze_soil", a.api("analyze_soil", a.handleAnalyzeSoil))
	mux.Handle("POST /api/generate_plan", a.api("generate_plan", a.handleGeneratePlan))
	mux.Handle("POST /api/analyze_historical", a.api("analyze_historical", a.handleAnalyzeHistorical))
	mux.HandleFunc("OPTIONS /api/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return gzipped(cors(a.accessLog(mux)))
}

// api wraps an endpoint with its metrics and the request body limit.
func (a *App) api(route string, h http.HandlerFunc) http.Handler {
	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, a.cfg.MaxBodyBytes)
		h(w, r)
	})
	return a.metrics.Instrument(route, limited)
}
