// Package amqp streams run events to an AMQP broker so external
// consumers can observe pipeline progress on the same event stream the
// coordinator forwards to its caller.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/draftflow/draftflow-go/workflow"
)

// DefaultExchange is the topic exchange events are published to.
const DefaultExchange = "draftflow.events"

// publishChannel is the slice of amqp.Channel the sink uses, split out
// so tests can substitute a fake.
type publishChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Sink publishes workflow events as JSON messages.
type Sink struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	logger   *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithExchange overrides the exchange name.
func WithExchange(exchange string) SinkOption {
	return func(s *Sink) { s.exchange = exchange }
}

// WithSinkLogger sets the logger.
func WithSinkLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) { s.logger = logger }
}

// NewSink dials the broker and declares the event exchange.
func NewSink(url string, opts ...SinkOption) (*Sink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}

	sink := &Sink{
		conn:     conn,
		channel:  channel,
		exchange: DefaultExchange,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(sink)
	}

	if err := sink.channel.ExchangeDeclare(sink.exchange, "topic", true, false, false, false, nil); err != nil {
		sink.Close()
		return nil, fmt.Errorf("amqp: declare exchange: %w", err)
	}
	return sink, nil
}

// newSinkWithChannel wires a sink over an existing channel, for tests.
func newSinkWithChannel(channel publishChannel, opts ...SinkOption) *Sink {
	sink := &Sink{channel: channel, exchange: DefaultExchange, logger: slog.Default()}
	for _, opt := range opts {
		opt(sink)
	}
	return sink
}

// Publish sends one event. The routing key is the event author, so
// consumers can bind per unit.
func (s *Sink) Publish(ctx context.Context, event workflow.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("amqp: marshal event: %w", err)
	}

	key := event.Author
	if key == "" {
		key = "framework"
	}
	err = s.channel.PublishWithContext(ctx, s.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		MessageId:   event.ID,
		Timestamp:   event.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("amqp: publish event %s: %w", event.ID, err)
	}
	return nil
}

// Drain publishes every event from the stream, forwarding each to out as
// well when out is non-nil. Publish failures are logged and do not
// interrupt the run.
func (s *Sink) Drain(ctx context.Context, events <-chan workflow.Event, out chan<- workflow.Event) {
	for event := range events {
		if err := s.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish event", "eventId", event.ID, "error", err)
		}
		if out != nil {
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close releases the channel and connection.
func (s *Sink) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
