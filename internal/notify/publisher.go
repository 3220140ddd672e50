package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Event announces a finished extraction.
type Event struct {
	JobID        string          `json:"job_id"`
	Filename     string          `json:"filename"`
	ContentHash  string          `json:"content_hash"`
	Format       string          `json:"format"`
	Method       string          `json:"method"`
	Status       string          `json:"status"`
	Preprocessed bool            `json:"preprocessed"`
	Reused       bool            `json:"reused"`
	Record       json.RawMessage `json:"record"`
	Timestamp    time.Time       `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Channel is the part of *amqp.Channel used for publishing.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as JSON to a durable topic exchange.
type AMQPPublisher struct {
	conn       *amqp.Connection
	ch         Channel
	exchange   string
	routingKey string
	logger     *slog.Logger

	mu sync.Mutex
}

// DialAMQP connects, opens a channel and declares the exchange.
func DialAMQP(url, exchange, routingKey string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, exchange, routingKey, logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewAMQPPublisher(ch Channel, exchange, routingKey string, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, routingKey: routingKey, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.JobID,
		Timestamp:    ev.Timestamp,
		Body:         body,
	})
	if err != nil {
		p.logger.Error("notify.publish.failed", "job_id", ev.JobID, "exchange", p.exchange, "error", err)
		return fmt.Errorf("publish event: %w", err)
	}
	p.logger.Debug("notify.publish.ok", "job_id", ev.JobID, "routing_key", p.routingKey)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
