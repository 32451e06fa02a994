// Package notify forwards escalation alerts to clinical staff via the
// message broker. Delivery is fire-and-forget from the orchestration's point
// of view; this package owns the retrying.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"preop-callbot/internal/logger"
)

// Alert is the wire payload handed to the notification collaborator.
type Alert struct {
	SessionID string    `json:"session_id"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	RaisedAt  time.Time `json:"raised_at"`
}

// AMQPPublisher publishes alerts to a RabbitMQ exchange.
type AMQPPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	log        zerolog.Logger
}

// NewAMQPPublisher connects to the broker and declares the alert exchange.
func NewAMQPPublisher(url, exchange, routingKey string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		log:        logger.NewLogger("Alert publisher"),
	}, nil
}

// Publish delivers one alert, retrying with exponential backoff so a
// transient broker failure never surfaces to the conversational path.
func (p *AMQPPublisher) Publish(ctx context.Context, sessionID string, category, severity, message string) error {
	body, err := json.Marshal(Alert{
		SessionID: sessionID,
		Category:  category,
		Severity:  severity,
		Message:   message,
		RaisedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}

	operation := func() error {
		return p.channel.Publish(
			p.exchange,
			p.routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now(),
				Body:         body,
			})
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		p.log.Error().Err(err).Str("session_id", sessionID).Str("category", category).
			Msg("alert delivery exhausted retries")
		return err
	}
	return nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() {
	_ = p.conn.Close()
}

// LogPublisher records alerts to the log only. It stands in when no broker
// is configured, for local development.
type LogPublisher struct {
	Log zerolog.Logger
}

// Publish writes the alert at warn level.
func (p *LogPublisher) Publish(_ context.Context, sessionID string, category, severity, message string) error {
	p.Log.Warn().
		Str("session_id", sessionID).
		Str("category", category).
		Str("severity", severity).
		Str("message", message).
		Msg("escalation alert (no broker configured)")
	return nil
}
