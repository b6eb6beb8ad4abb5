package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/machi-events/eventfinder/internal/events"
)

const (
	streamName    = "EVENTFINDER"
	subjectPrefix = "eventfinder."
)

// NATSSink publishes activities to a JetStream stream under eventfinder.<kind>.
type NATSSink struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log zerolog.Logger
}

// NewNATSSink connects to url and ensures the stream exists.
func NewNATSSink(ctx context.Context, url string, log zerolog.Logger) (*NATSSink, error) {
	nc, err := nats.Connect(url, nats.Name("event-service"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		log.Warn().Err(err).Str("stream", streamName).Msg("failed to create stream (may already exist)")
	}
	return &NATSSink{nc: nc, js: js, log: log}, nil
}

// Subject returns the subject an activity kind is published on.
func Subject(k events.Kind) string { return subjectPrefix + string(k) }

func (s *NATSSink) Send(ctx context.Context, a events.Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := s.js.Publish(pctx, Subject(a.Kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", a.Kind, err)
	}
	return nil
}

// HealthPing implements health.HealthPinger.
func (s *NATSSink) HealthPing(ctx context.Context) error {
	if !s.nc.IsConnected() {
		return fmt.Errorf("nats not connected: %s", s.nc.Status())
	}
	return nil
}

func (s *NATSSink) Close() error {
	if err := s.nc.Drain(); err != nil {
		s.nc.Close()
		return err
	}
	return nil
}
