package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler получает топик, чтобы один consumer мог обслуживать несколько топиков.
type Handler func(ctx context.Context, topic string, key, value []byte) error

type Consumer struct {
	r messageReader
}

func NewConsumer(brokers []string, topics []string, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = topics
	} else if len(topics) > 0 {
		cfg.Topic = topics[0]
	}
	return &Consumer{
		r: kafka.NewReader(cfg),
	}
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume читает до первой ошибки. Отмена ctx возвращается как ctx.Err() без обёртки,
// чтобы воркер отличал остановку от сбоя брокера.
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(ctx, msg.Topic, msg.Key, msg.Value); err != nil {
			// без commit: сообщение придёт снова после рестарта
			return errors.Wrapf(err, "handle %s@%d/%d", msg.Topic, msg.Partition, msg.Offset)
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err, "commit %s@%d/%d", msg.Topic, msg.Partition, msg.Offset)
		}
	}
}
