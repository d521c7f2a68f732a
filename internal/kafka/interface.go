package kafka

import (
	"context"

	"github.com/gullrabia/Chat-app/internal/domain"
)

// MessageProducer publishes persisted messages to a stream for downstream
// consumers (search indexing, analytics, export). Best-effort: a produce
// failure never fails the send that triggered it.
type MessageProducer interface {
	ProduceMessage(ctx context.Context, msg *domain.Message) error
	Close() error
}

// NopProducer is used when the stream is disabled.
type NopProducer struct{}

func (NopProducer) ProduceMessage(ctx context.Context, msg *domain.Message) error { return nil }
func (NopProducer) Close() error                                                  { return nil }
