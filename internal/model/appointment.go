package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Appointment date and time are stored as naive local strings, exactly
// as entered at booking. They are combined into an instant only at
// classification time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	Base
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description,omitempty"`
	AppointmentDate string            `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `db:"status" json:"status"`
	NoShowReason    *string           `db:"no_show_reason" json:"no_show_reason,omitempty"`
}

// DateTime combines the stored date and time into a naive local instant.
func (a *Appointment) DateTime() (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.AppointmentDate+" "+a.AppointmentTime, time.Local)
}

// Terminal reports whether the status rejects further transitions.
// no_show is a final status for display purposes but does not lock the
// record: a no-show can still be attended or rescheduled later.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// Alertable reports whether the status participates in temporal alert
// classification.
func (s AppointmentStatus) Alertable() bool {
	return s == AppointmentStatusScheduled || s == AppointmentStatusConfirmed
}

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	Title           string    `json:"title" binding:"required,max=200"`
	Description     string    `json:"description" binding:"max=2000"`
	AppointmentDate string    `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string    `json:"appointment_time" binding:"required,datetime=15:04"`
}

type RescheduleRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" binding:"required,datetime=15:04"`
}

type NoShowRequest struct {
	// Canonical reasons exist at the UI layer (no_contact,
	// cancelled_by_patient, forgot, emergency, transport, other) but
	// any string is accepted here.
	Reason string `json:"reason" binding:"required,max=500"`
}

// AppointmentPatch carries a partial update. Nil fields are left
// untouched.
type AppointmentPatch struct {
	AppointmentDate *string
	AppointmentTime *string
	Status          *AppointmentStatus
	NoShowReason    *string
}
