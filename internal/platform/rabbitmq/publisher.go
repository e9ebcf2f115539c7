// Package rabbitmq publishes transaction events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openbank/openbank-api/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is an events.EventEmitter that publishes transaction events to a
// RabbitMQ topic exchange. Routing keys follow "transaction.<operation>" so
// consumers can bind to patterns like "transaction.*" or a single operation.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// Ensure Publisher implements events.EventEmitter
var _ events.EventEmitter = (*Publisher)(nil)

// NewPublisher connects to RabbitMQ and declares the topic exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// EmitEvent implements events.EventEmitter.
func (p *Publisher) EmitEvent(ctx context.Context, event *events.TransactionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := "transaction." + event.Operation
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
