package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Logger *logger.Logger
}

// NewProducer builds a producer that routes each change event to its own
// topic, keyed by the changed record ID so updates of one record stay ordered.
func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Logger: log}
}

// Publish streams a change event to Kafka
func (p *Producer) Publish(ctx context.Context, event models.ChangeEvent) error {
	topic, ok := TopicFor(event.Type)
	if !ok {
		return fmt.Errorf("no topic for change type %q", event.Type)
	}

	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.Logger != nil {
		p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s %s", event.Type, event.ID))
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(event.ID),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Noop drops every event. It stands in for the producer when Kafka is disabled.
type Noop struct{}

func (Noop) Publish(context.Context, models.ChangeEvent) error { return nil }

func (Noop) Close() error { return nil }
