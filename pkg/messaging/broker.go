package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Channels carrying lifecycle and alert traffic.
const (
	ChannelTransitions = "appointments.transitions"
	ChannelAlerts      = "appointments.alerts"
)

// TransitionEvent is published on every successful lifecycle transition.
type TransitionEvent struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	Transition    string `json:"transition"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
