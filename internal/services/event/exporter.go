package event

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/agri_advisor/internal/model/messages"
)

const DefaultQueueSize = 256

// Sink is one export destination for advisory events.
type Sink interface {
	Name() string
	Send(ctx context.Context, evt messages.AdvisoryEvent) error
}

type BreakerConfig struct {
	Failures int           // consecutive failures before opening
	OpenFor  time.Duration // time spent open before a half-open trial request
	Interval time.Duration // closed-state counter reset period, 0 keeps counts
}

type guardedSink struct {
	sink Sink
	cb   *gobreaker.CircuitBreaker
}

type queued struct {
	ctx context.Context
	evt messages.AdvisoryEvent
}

// Exporter fans events out to every sink from a single background worker.
// Emit only enqueues: when the queue is full the event is dropped. A sink
// failure is logged and fed to that sink's breaker; it never reaches the caller.
type Exporter struct {
	sinks     []guardedSink
	logger    *zap.Logger
	states    *prometheus.GaugeVec
	sent      *prometheus.CounterVec
	queueSize int

	mu     sync.RWMutex
	closed bool
	queue  chan queued
	done   chan struct{}
}

type ExporterOption func(*Exporter)

func WithLogger(l *zap.Logger) ExporterOption { return func(e *Exporter) { e.logger = l } }

func WithQueueSize(n int) ExporterOption { return func(e *Exporter) { e.queueSize = n } }

// WithMetrics reports breaker state (0 closed, 1 half-open, 2 open) and send
// outcomes per sink. Events dropped on a full queue count under sink "queue".
func WithMetrics(states *prometheus.GaugeVec, sent *prometheus.CounterVec) ExporterOption {
	return func(e *Exporter) { e.states, e.sent = states, sent }
}

// NewExporter starts the delivery worker when at least one sink is given.
// Close stops it.
func NewExporter(bc BreakerConfig, sinks []Sink, opts ...ExporterOption) *Exporter {
	e := &Exporter{logger: zap.NewNop(), queueSize: DefaultQueueSize}
	for _, o := range opts {
		o(e)
	}
	if e.queueSize < 1 {
		e.queueSize = 1
	}
	if bc.Failures < 1 {
		bc.Failures = 3
	}
	if bc.OpenFor <= 0 {
		bc.OpenFor = 30 * time.Second
	}

	for _, s := range sinks {
		if s == nil {
			continue
		}
		fails := uint32(bc.Failures)
		cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     s.Name(),
			Interval: bc.Interval,
			Timeout:  bc.OpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= fails
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				e.logger.Warn("event sink breaker state change",
					zap.String("sink", name), zap.String("from", from.String()), zap.String("to", to.String()))
				if e.states != nil {
					e.states.WithLabelValues(name).Set(float64(to))
				}
			},
		})
		if e.states != nil {
			e.states.WithLabelValues(s.Name()).Set(float64(gobreaker.StateClosed))
		}
		e.sinks = append(e.sinks, guardedSink{sink: s, cb: cb})
	}

	if len(e.sinks) > 0 {
		e.queue = make(chan queued, e.queueSize)
		e.done = make(chan struct{})
		go e.run()
	}
	return e
}

// Emit implements advisor.EventSink. It never blocks.
func (e *Exporter) Emit(ctx context.Context, evt messages.AdvisoryEvent) {
	if e.queue == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}
	select {
	case e.queue <- queued{ctx: context.WithoutCancel(ctx), evt: evt}:
	default:
		e.logger.Warn("event queue full, dropping event", zap.String("type", evt.EventType))
		e.count("queue", "dropped")
	}
}

// Close delivers what is already queued and stops the worker.
func (e *Exporter) Close() {
	if e.queue == nil {
		return
	}
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()
	<-e.done
}

func (e *Exporter) run() {
	defer close(e.done)
	for q := range e.queue {
		e.deliver(q.ctx, q.evt)
	}
}

func (e *Exporter) deliver(ctx context.Context, evt messages.AdvisoryEvent) {
	for _, g := range e.sinks {
		_, err := g.cb.Execute(func() (interface{}, error) {
			return nil, g.sink.Send(ctx, evt)
		})
		outcome := "ok"
		if err != nil {
			outcome = "error"
			e.logger.Warn("event export failed",
				zap.String("sink", g.sink.Name()), zap.String("type", evt.EventType), zap.Error(err))
		}
		e.count(g.sink.Name(), outcome)
	}
}

func (e *Exporter) count(sink, outcome string) {
	if e.sent != nil {
		e.sent.WithLabelValues(sink, outcome).Inc()
	}
}

// States reports the breaker state of each sink by name.
func (e *Exporter) States() map[string]string {
	out := make(map[string]string, len(e.sinks))
	for _, g := range e.sinks {
		out[g.sink.Name()] = g.cb.State().String()
	}
	return out
}
