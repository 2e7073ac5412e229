package model

import "time"

// AlertTier is the derived urgency classification of an appointment
// against a reference time. It is never stored.
type AlertTier string

const (
	AlertTierNone    AlertTier = "none"
	AlertTierWarning AlertTier = "warning"
	AlertTierUrgent  AlertTier = "urgent"
	AlertTierOverdue AlertTier = "overdue"
	// AlertTierInvalid marks an appointment whose date/time could not
	// be parsed. It is reported, never silently collapsed into none.
	AlertTierInvalid AlertTier = "invalid"
)

// AppointmentAlert pairs an appointment with its classification.
type AppointmentAlert struct {
	Appointment *Appointment `json:"appointment"`
	Tier        AlertTier    `json:"tier"`
	StartsAt    time.Time    `json:"starts_at"`
	Remaining   string       `json:"remaining"`
}

// AlertFeed is the aggregated view of a doctor's alerting appointments.
// Invalid holds appointments that could not be classified so callers
// can surface the malformed data instead of hiding it.
type AlertFeed struct {
	DoctorID string              `json:"doctor_id"`
	AsOf     time.Time           `json:"as_of"`
	Alerts   []*AppointmentAlert `json:"alerts"`
	Invalid  []*Appointment      `json:"invalid,omitempty"`
}
