package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the part of *amqp.Channel the mailer uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPMailer hands messages to a mail worker through a durable queue.
type AMQPMailer struct {
	pub   Publisher
	queue string

	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialAMQP connects to url and declares the durable queue.
func DialAMQP(url, queue string) (*AMQPMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mail: dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mail: open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mail: declare queue %q: %w", queue, err)
	}

	m := NewAMQPMailer(ch, queue)
	m.conn, m.ch = conn, ch
	return m, nil
}

// NewAMQPMailer publishes to queue through pub. The queue is assumed to exist.
func NewAMQPMailer(pub Publisher, queue string) *AMQPMailer {
	return &AMQPMailer{pub: pub, queue: queue}
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return m.pub.PublishWithContext(ctx,
		"",      // default exchange
		m.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close releases the channel and connection opened by DialAMQP.
func (m *AMQPMailer) Close() error {
	if m.ch != nil {
		if err := m.ch.Close(); err != nil {
			return err
		}
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
