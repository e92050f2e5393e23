// Package service provides functions to publish post events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/post-service/internal/queue"
)

// EventPublisher is what handlers depend on to announce successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event q.PostEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.PostEvent) error { return nil }

// DefaultDialTimeout bounds the TCP connect and AMQP handshake of one
// Publish call.
const DefaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes events to a durable queue.  Each call dials the
// broker, so a broker outage only costs the events published during it.
type AMQPPublisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration // zero means DefaultDialTimeout
}

// NewAMQPPublisher returns a publisher for the given broker URL and queue.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: queue, DialTimeout: DefaultDialTimeout}
}

// dialTimeout is DialTimeout, shortened to whatever is left of ctx.
func (p *AMQPPublisher) dialTimeout(ctx context.Context) time.Duration {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return timeout
}

// Publish sends event as a persistent JSON message.  Dialing gives up after
// DialTimeout or at the ctx deadline, whichever is sooner, so a silent broker
// cannot hold the caller.  Errors are logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, event q.PostEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	timeout := p.dialTimeout(ctx)
	if err := ctx.Err(); err != nil || timeout <= 0 {
		if err == nil {
			err = context.DeadlineExceeded
		}
		log.Printf("rabbitmq: publish %s skipped: %v", event.Type, err)
		return err
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	}

	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
