package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes messages keyed by user ID so one member's upgrades
// stay ordered within a partition.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

func NewKafkaSink(client *kgo.Client, topic string) *KafkaSink {
	return &KafkaSink{client: client, topic: topic}
}

func (s *KafkaSink) Deliver(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(msg.UserID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(msg.EventID)},
			{Key: "verification_type", Value: []byte(msg.VerificationType)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", s.topic, err)
	}
	return nil
}

// maxStreamLen caps the Redis stream; trimming is approximate.
const maxStreamLen = 100_000

// RedisStreamSink appends messages to a Redis stream.
type RedisStreamSink struct {
	client redis.Cmdable
	stream string
}

func NewRedisStreamSink(client redis.Cmdable, stream string) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream}
}

func (s *RedisStreamSink) Deliver(ctx context.Context, msg Message) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]any{
			"event_id":          msg.EventID,
			"user_id":           msg.UserID,
			"tier":              msg.Tier,
			"verification_type": msg.VerificationType,
			"verified_by":       msg.VerifiedBy,
			"verified_at":       msg.VerifiedAt.UnixMilli(),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// LogSink writes messages to the logger. It is the sink of last resort when
// no broker is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "tier upgrade",
		"event_id", msg.EventID,
		"user_id", msg.UserID,
		"tier", msg.Tier,
		"verification_type", msg.VerificationType,
		"verified_by", msg.VerifiedBy,
	)
	return nil
}

// FanoutSink delivers to every sink and joins their errors.
type FanoutSink []Sink

func (f FanoutSink) Deliver(ctx context.Context, msg Message) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Deliver(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
