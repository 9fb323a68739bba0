package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-rate-service/internal/domain"
)

type DeadLetterSink interface {
	Send(ctx context.Context, letter domain.DeadLetter) error
}

type DeadLetterPublisher struct {
	publisher domain.PublisherPort
	topic     string
}

func NewDeadLetterPublisher(publisher domain.PublisherPort, topic string) *DeadLetterPublisher {
	return &DeadLetterPublisher{publisher: publisher, topic: topic}
}

func (d *DeadLetterPublisher) Send(ctx context.Context, letter domain.DeadLetter) error {
	v, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	return d.publisher.Publish(ctx, d.topic, domain.Message{
		Key:     []byte(letter.Key),
		Value:   v,
		Headers: map[string]string{headerStage: letter.Stage},
	})
}

// MultiSink delivers a letter to every sink. The letter counts as dead-lettered
// once any sink accepted it; the other failures are only logged. It fails
// when no sink accepted the letter.
type MultiSink struct {
	sinks []DeadLetterSink
	log   *slog.Logger
}

func NewMultiSink(log *slog.Logger, sinks ...DeadLetterSink) *MultiSink {
	if log == nil {
		log = slog.Default()
	}
	return &MultiSink{sinks: sinks, log: log}
}

func (m *MultiSink) Add(sink DeadLetterSink) {
	m.sinks = append(m.sinks, sink)
}

func (m *MultiSink) Send(ctx context.Context, letter domain.DeadLetter) error {
	var errs []error
	delivered := 0
	for _, s := range m.sinks {
		if err := s.Send(ctx, letter); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		if len(errs) == 0 {
			return errors.New("no dead-letter sinks configured")
		}
		return errors.Join(errs...)
	}
	for _, err := range errs {
		m.log.Warn("dead-letter sink failed", "stage", letter.Stage, "key", letter.Key, "error", err)
	}
	return nil
}
