// Package events publishes appointment lifecycle events to Kafka so that
// downstream consumers, such as the route notifier, can react without
// polling the ledger.
package events

import (
	"context"

	"recolhe/pkg/kafka"
	"recolhe/pkg/model"
)

const EventTypeAppointmentConfirmed = "appointment.confirmed"

// AppointmentConfirmedEvent is the payload published after a booking is
// durably persisted. Date keys the message so all appointments for one
// collection day land on the same partition.
type AppointmentConfirmedEvent struct {
	Date        string            `json:"date"`
	Appointment model.Appointment `json:"appointment"`
}

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) AppointmentConfirmed(ctx context.Context, conversationID string, date string, appointment model.Appointment) error {
	msg := kafka.NewMessage().
		WithKey(date).
		WithValue(AppointmentConfirmedEvent{Date: date, Appointment: appointment}).
		WithEventType(EventTypeAppointmentConfirmed).
		WithConversationID(conversationID).
		WithSource(p.source).
		Build()

	return p.producer.Publish(ctx, msg)
}
