package domain

import "context"

type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

// MessageHandler processes one delivery. A nil error acknowledges it.
type MessageHandler func(ctx context.Context, msg Message) error

type ConsumerPort interface {
	Consume(ctx context.Context, handler MessageHandler) error
}
