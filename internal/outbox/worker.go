package outbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/events"
)

// Sink delivers one activity to an external system.
type Sink interface {
	Send(ctx context.Context, a events.Activity) error
	Close() error
}

// Config controls batch size and flush cadence.
type Config struct {
	BatchSize int           // max activities forwarded per flush
	Interval  time.Duration // flush interval
}

// Worker drains the bus and forwards activities to a sink. Delivery is best
// effort: a failed send is logged and the activity dropped.
type Worker struct {
	src  <-chan events.Activity
	sink Sink
	log  zerolog.Logger
	cfg  Config
}

// NewWorker constructs a Worker from dependencies.
func NewWorker(bus *events.Bus, sink Sink, cfg Config, log zerolog.Logger) *Worker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Worker{src: bus.Subscribe(), sink: sink, log: log, cfg: cfg}
}

// Run forwards activities until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Int("batch", w.cfg.BatchSize).Dur("interval", w.cfg.Interval).Msg("outbox worker starting")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// use a fresh context so the final flush is not cut short
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			n := w.processOnce(flushCtx)
			cancel()
			w.log.Info().Int("flushed", n).Msg("outbox worker stopping")
			return ctx.Err()
		case <-ticker.C:
			w.processOnce(ctx)
		}
	}
}

// processOnce forwards up to BatchSize queued activities and returns how many were sent.
func (w *Worker) processOnce(ctx context.Context) int {
	sent := 0
	for i := 0; i < w.cfg.BatchSize; i++ {
		select {
		case a := <-w.src:
			if err := w.sink.Send(ctx, a); err != nil {
				w.log.Error().Err(err).Str("kind", string(a.Kind)).Int64("user_id", a.UserID).Msg("outbox send failed")
				continue
			}
			sent++
		default:
			return sent
		}
	}
	return sent
}

// LogSink writes activities to the log. Used when no broker is configured.
type LogSink struct{ Log zerolog.Logger }

func (s LogSink) Send(_ context.Context, a events.Activity) error {
	s.Log.Debug().Str("kind", string(a.Kind)).Int64("user_id", a.UserID).Str("event_id", a.EventID).Msg("activity")
	return nil
}

func (s LogSink) Close() error { return nil }
