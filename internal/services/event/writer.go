package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
)

// ErrRecentWriteFailure is returned while an asynchronous Influx write failed
// less than errorWindow ago, so the circuit breaker can see it.
var ErrRecentWriteFailure = errors.New("influx: recent write failure")

const errorWindow = 5 * time.Second

// pointWriter is the subset of influx api.WriteAPI the Writer needs.
type pointWriter interface {
	WritePoint(point *write.Point)
	Errors() <-chan error
}

// Writer wraps the non-blocking Influx WriteAPI and remembers when the last
// asynchronous write failed, for readiness and for the breaker.
type Writer struct {
	api    pointWriter
	logger *zap.Logger

	mu      sync.RWMutex
	lastErr time.Time
	counts  map[string]int64
}

// NewWriter drains the WriteAPI error channel until the Influx client is closed.
func NewWriter(w pointWriter, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ww := &Writer{
		api:     w,
		logger:  logger,
		lastErr: time.Now().Add(-24 * time.Hour),
		counts:  make(map[string]int64),
	}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			ww.mu.Lock()
			ww.lastErr = time.Now()
			ww.mu.Unlock()
			logger.Warn("influx write error", zap.Error(err))
		}
	}()
	return ww
}

func (w *Writer) Name() string { return "influx" }

// Send queues the event; delivery errors surface later through the error channel.
func (w *Writer) Send(_ context.Context, evt messages.AdvisoryEvent) error {
	if w.LastErrorAge() < errorWindow {
		return ErrRecentWriteFailure
	}
	w.api.WritePoint(EventToPoint(evt))
	w.mu.Lock()
	w.counts[evt.EventType]++
	w.mu.Unlock()
	return nil
}

// LastErrorAge reports how long ago the last write failed.
func (w *Writer) LastErrorAge() time.Duration {
	if w == nil {
		return 99999 * time.Hour
	}
	w.mu.RLock()
	t := w.lastErr
	w.mu.RUnlock()
	return time.Since(t)
}

// Count is the number of events of one type handed to Influx.
func (w *Writer) Count(eventType string) int64 {
	if w == nil {
		return 0
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counts[eventType]
}
