package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONPublisher sends persistent JSON messages to a single queue.
type JSONPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewJSONPublisher(conn *amqp.Connection, queueName string) *JSONPublisher {
	return &JSONPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *JSONPublisher) Queue() string {
	return p.queueName
}

func (p *JSONPublisher) Publish(ctx context.Context, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s payload failed: %w", p.queueName, err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish to %s failed: %w", p.queueName, err)
	}
	return nil
}
