package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher announces catalog changes
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// AmqpPublisher sends changes to a RabbitMQ topic exchange
type AmqpPublisher struct {
	conn   *amqp.Connection
	prefix string
}

// NewAmqpPublisher declares the catalog_changed topic on conn
func NewAmqpPublisher(conn *amqp.Connection, prefix string) (*AmqpPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := DefineTopic(ch, prefix, CatalogChanged); err != nil {
		return nil, err
	}
	return &AmqpPublisher{conn: conn, prefix: prefix}, nil
}

// Publish sends one change
func (p *AmqpPublisher) Publish(ctx context.Context, change Change) error {
	return SendChange(ctx, p.conn, p.prefix, CatalogChanged, change)
}

// Listen consumes catalog changes until ctx is done or the channel closes.
// A delivery that fn rejects is nacked without requeue.
func Listen(ctx context.Context, conn *amqp.Connection, prefix string, logger *zap.Logger, fn func(context.Context, Change) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	msgs, err := DeclareBindAndConsume(ch, prefix, CatalogChanged)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			change, err := DecodeChange(d.Body)
			if err == nil {
				err = fn(ctx, change)
			}
			if err != nil {
				logger.Warn("catalog change rejected", zap.Error(err))
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}
