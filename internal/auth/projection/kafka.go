package projection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer the sink uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes Events keyed by account id so every change to one
// account lands on the same partition in order.
type KafkaSink struct {
	writer Writer
	now    func() time.Time
}

// NewKafkaSink writes to topic on brokers. The writer is async: WriteMessages
// returns once the message is buffered and delivery errors only reach the
// completion callback.
func NewKafkaSink(brokers []string, topic string, onError func(error)) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(_ []kafka.Message, err error) {
			if err != nil && onError != nil {
				onError(err)
			}
		},
	}
	return NewKafkaSinkWithWriter(w)
}

// NewKafkaSinkWithWriter allows injecting a test writer.
func NewKafkaSinkWithWriter(w Writer) *KafkaSink {
	return &KafkaSink{writer: w, now: time.Now}
}

func (s *KafkaSink) Upsert(ctx context.Context, doc AccountDocument) error {
	return s.publish(ctx, Event{Type: EventUpserted, AccountID: doc.ID, Account: &doc})
}

func (s *KafkaSink) Delete(ctx context.Context, id string) error {
	return s.publish(ctx, Event{Type: EventDeleted, AccountID: id})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func (s *KafkaSink) publish(ctx context.Context, ev Event) error {
	ev.OccurredAt = s.now().UTC()

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.AccountID), Value: b})
}
