package models

import "time"

type ChangeType string

const (
	BookingCreated  ChangeType = "booking.created"
	BookingUpdated  ChangeType = "booking.updated"
	BookingDeleted  ChangeType = "booking.deleted"
	MemberSaved     ChangeType = "member.saved"
	MemberDeleted   ChangeType = "member.deleted"
	SettingsUpdated ChangeType = "settings.updated"
	SnapshotRestore ChangeType = "snapshot.restored"
)

// ChangeEvent is published to Kafka and the SSE stream after every write
// so that views can recompute from a fresh snapshot.
type ChangeEvent struct {
	Type       ChangeType `json:"type"`
	ID         string     `json:"id"`
	Booking    *Booking   `json:"booking,omitempty"`
	Member     *Member    `json:"member,omitempty"`
	Settings   *Settings  `json:"settings,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func NewChangeEvent(t ChangeType, id string) ChangeEvent {
	return ChangeEvent{Type: t, ID: id, OccurredAt: time.Now().UTC()}
}
