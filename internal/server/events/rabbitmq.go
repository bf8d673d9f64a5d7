package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrPublisherClosed = errors.New("event publisher closed")
	errNoBroker        = errors.New("no broker to dial")
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a connection and a channel with the queue declared.
type dialFunc func() (channel, io.Closer, error)

// RabbitPublisher sends events as persistent JSON messages to a durable
// queue through the default exchange. A channel that the broker closed is
// dropped and dialled again on the next publish.
type RabbitPublisher struct {
	mu     sync.Mutex
	dial   dialFunc
	conn   io.Closer
	ch     channel
	queue  string
	closed bool
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	p := &RabbitPublisher{
		queue: queue,
		dial:  func() (channel, io.Closer, error) { return dialRabbit(url, queue) },
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func dialRabbit(url, queue string) (channel, io.Closer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	return ch, conn, nil
}

// connect must be called with mu held.
func (p *RabbitPublisher) connect() error {
	if p.dial == nil {
		return errNoBroker
	}
	ch, conn, err := p.dial()
	if err != nil {
		return err
	}
	p.ch, p.conn = ch, conn
	return nil
}

// drop must be called with mu held.
func (p *RabbitPublisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(e.Type),
		Body:         body,
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	err = p.publish(ctx, msg)
	if !errors.Is(err, amqp.ErrClosed) {
		return err
	}

	// broker closed the channel; one retry on a fresh one
	p.drop()
	return p.publish(ctx, msg)
}

func (p *RabbitPublisher) publish(ctx context.Context, msg amqp.Publishing) error {
	if p.ch == nil {
		if err := p.connect(); err != nil {
			return fmt.Errorf("amqp reconnect: %w", err)
		}
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		msg,
	)
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	var firstErr error
	if p.ch != nil {
		firstErr = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conn = nil
	}
	return firstErr
}
