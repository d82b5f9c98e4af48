package collector

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"logguard/internal/config"
	"logguard/internal/model"
)

// KafkaSource drains JSON event messages from a topic into one batch.
// Collection stops at max_batch messages or after idle_timeout without a
// new message, whichever comes first.
type KafkaSource struct {
	cfg    config.KafkaConfig
	logger *slog.Logger
}

func NewKafkaSource(cfg config.KafkaConfig, logger *slog.Logger) *KafkaSource {
	return &KafkaSource{cfg: cfg, logger: logger}
}

func (s *KafkaSource) Collect(ctx context.Context) ([]model.RawEvent, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.cfg.Brokers,
		Topic:    s.cfg.Topic,
		GroupID:  s.cfg.GroupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	events := make([]model.RawEvent, 0)
	for len(events) < s.cfg.MaxBatch {
		readCtx, cancel := context.WithTimeout(ctx, s.cfg.IdleTimeout)
		m, err := reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			if ctx.Err() != nil {
				break
			}
			if s.logger != nil {
				s.logger.Warn("kafka read error", "err", err)
			}
			continue
		}
		ev, err := ParseJSONBytes(m.Value)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("kafka message is not a JSON object", "err", err)
			}
			continue
		}
		events = append(events, ev)
	}
	if s.logger != nil {
		s.logger.Info("kafka batch collected", "topic", s.cfg.Topic, "events", len(events))
	}
	return events, nil
}

// ParseJSONBytes decodes a single JSON object into a raw event.
func ParseJSONBytes(data []byte) (model.RawEvent, error) {
	var ev model.RawEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
