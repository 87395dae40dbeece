package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type ChangeTopic string

// CatalogChanged is published after an import has written to the store
const CatalogChanged ChangeTopic = "catalog_changed"

// Change describes a finished import
type Change struct {
	ID       string    `json:"id"`
	Catalogs []string  `json:"catalogs"`
	Total    int       `json:"total"`
	New      int       `json:"new"`
	Updated  int       `json:"updated"`
	Removed  int       `json:"removed"`
	At       time.Time `json:"at"`
}

func getName(prefix string, topic ChangeTopic) string {
	return fmt.Sprintf("%s_%s", prefix, topic)
}

// DefineTopic declares the durable exchange for a topic. Consumers bind
// their own queues with DeclareBindAndConsume.
func DefineTopic(ch *amqp.Channel, prefix string, topic ChangeTopic) error {
	name := getName(prefix, topic)
	if err := ch.ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // noWait
		nil,     // arguments
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}

// SendChange publishes data as JSON on a topic
func SendChange[V any](ctx context.Context, c *amqp.Connection, prefix string, topic ChangeTopic, data V) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	ch, err := c.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	name := getName(prefix, topic)
	return ch.PublishWithContext(ctx,
		name,
		name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        bytes,
		},
	)
}

// DeclareBindAndConsume binds an exclusive queue to the topic exchange
func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// DecodeChange parses a delivery body
func DecodeChange(body []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(body, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	return c, nil
}
