package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	Reader MessageReader
	Logger *logger.Logger
}

// NewConsumer reads the change topics as one consumer group
func NewConsumer(brokers []string, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{Reader: reader, Logger: log}
}

// Start hands every decoded change event to handler until ctx is done.
// Messages that do not decode are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.ChangeEvent)) error {
	c.Logger.Info("KAFKA", "Change event consumer started")

	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var event models.ChangeEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.Logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message on %s: %v", msg.Topic, err))
			continue
		}

		c.Logger.LogKafka("RECEIVE", msg.Topic, fmt.Sprintf("%s %s", event.Type, event.ID))
		handler(event)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.Reader.Close()
}
