package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
	"github.com/LavaJover/shvark-rate-service/internal/infrastructure/metrics"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	Stage       string
	MaxAttempts int
	RetryDelay  time.Duration
}

// Consumer delivers each message to a handler at least once. Offsets are
// committed only after the handler succeeded or the message was handed to
// the dead-letter sink.
type Consumer struct {
	reader      messageReader
	deadLetters DeadLetterSink
	stage       string
	maxAttempts int
	retryDelay  time.Duration
	log         *slog.Logger
	metrics     *metrics.RateMetrics
}

func NewConsumer(cfg ConsumerConfig, deadLetters DeadLetterSink, log *slog.Logger, m *metrics.RateMetrics) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		CommitInterval: 0,
	})
	return newConsumer(reader, cfg, deadLetters, log, m)
}

func newConsumer(reader messageReader, cfg ConsumerConfig, deadLetters DeadLetterSink, log *slog.Logger, m *metrics.RateMetrics) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Consumer{
		reader:      reader,
		deadLetters: deadLetters,
		stage:       cfg.Stage,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		log:         log.With("stage", cfg.Stage, "topic", cfg.Topic),
		metrics:     m,
	}
}

// Consume blocks until ctx is cancelled or the reader fails. A cancelled
// context is a clean shutdown and returns nil.
func (c *Consumer) Consume(ctx context.Context, handler domain.MessageHandler) error {
	defer c.reader.Close()
	c.log.Info("consumer started")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.process(ctx, handler, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", m.Offset, err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, handler domain.MessageHandler, m kafka.Message) error {
	msg := domain.Message{Key: m.Key, Value: m.Value, Headers: fromKafkaHeaders(m.Headers)}

	var lastErr error
	attempts := 0
	for attempts < c.maxAttempts {
		attempts++
		lastErr = handler(ctx, msg)
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetriable(lastErr) || attempts == c.maxAttempts {
			break
		}

		c.metrics.RecordRetry(c.stage)
		c.log.Warn("task failed, retrying",
			"key", string(m.Key), "attempt", attempts, "max_attempts", c.maxAttempts, "error", lastErr)
		if err := sleep(ctx, c.retryDelay*time.Duration(attempts)); err != nil {
			return err
		}
	}

	return c.deadLetter(ctx, m, attempts, lastErr)
}

func (c *Consumer) deadLetter(ctx context.Context, m kafka.Message, attempts int, cause error) error {
	letter := domain.DeadLetter{
		Stage:    c.stage,
		Key:      string(m.Key),
		Payload:  m.Value,
		Attempts: attempts,
		Error:    cause.Error(),
		FailedAt: time.Now().UTC(),
	}
	c.metrics.RecordDeadLetter(c.stage)
	c.log.Error("task moved to dead letter",
		"key", letter.Key, "attempts", attempts, "partition", m.Partition, "offset", m.Offset, "error", cause)

	if c.deadLetters == nil {
		return nil
	}
	if err := c.deadLetters.Send(ctx, letter); err != nil {
		return fmt.Errorf("dead-letter offset %d: %w", m.Offset, errors.Join(err, cause))
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
