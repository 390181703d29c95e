package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

const (
	TopicBookingCreated   = "seating.booking.created"
	TopicBookingUpdated   = "seating.booking.updated"
	TopicBookingDeleted   = "seating.booking.deleted"
	TopicMemberSaved      = "seating.member.saved"
	TopicMemberDeleted    = "seating.member.deleted"
	TopicSettingsUpdated  = "seating.settings.updated"
	TopicSnapshotRestored = "seating.snapshot.restored"
)

var topicByType = map[models.ChangeType]string{
	models.BookingCreated:  TopicBookingCreated,
	models.BookingUpdated:  TopicBookingUpdated,
	models.BookingDeleted:  TopicBookingDeleted,
	models.MemberSaved:     TopicMemberSaved,
	models.MemberDeleted:   TopicMemberDeleted,
	models.SettingsUpdated: TopicSettingsUpdated,
	models.SnapshotRestore: TopicSnapshotRestored,
}

// TopicFor maps a change type onto its topic.
func TopicFor(t models.ChangeType) (string, bool) {
	topic, ok := topicByType[t]
	return topic, ok
}

// Topics lists every topic the service publishes to.
func Topics() []string {
	return []string{
		TopicBookingCreated,
		TopicBookingUpdated,
		TopicBookingDeleted,
		TopicMemberSaved,
		TopicMemberDeleted,
		TopicSettingsUpdated,
		TopicSnapshotRestored,
	}
}

// EnsureTopicsExist creates Kafka topics if they don't already exist
func EnsureTopicsExist(ctx context.Context, brokers []string, topics []string, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	// Connect to the first broker to find the controller
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err = controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		switch {
		case errors.Is(err, kafka.TopicAlreadyExists):
			log.Debug("KAFKA", fmt.Sprintf("Topic %s already exists", topic))
		case err != nil:
			// Keep trying the remaining topics
			log.Error("KAFKA", fmt.Sprintf("Error creating topic %s: %v", topic, err))
		default:
			log.Info("KAFKA", fmt.Sprintf("Created topic: %s", topic))
		}
	}
	return nil
}
