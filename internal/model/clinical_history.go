package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ClinicalHistory is a single consultation record. Rows are append-only:
// created once when an attended appointment's notes are captured and
// never mutated.
type ClinicalHistory struct {
	Base
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	AppointmentID   *uuid.UUID      `db:"appointment_id" json:"appointment_id,omitempty"`
	ChiefComplaint  string          `db:"chief_complaint" json:"chief_complaint"`
	CurrentIllness  string          `db:"current_illness" json:"current_illness,omitempty"`
	PersonalHistory string          `db:"personal_history" json:"personal_history,omitempty"`
	FamilyHistory   string          `db:"family_history" json:"family_history,omitempty"`
	PhysicalExam    string          `db:"physical_exam" json:"physical_exam,omitempty"`
	Diagnosis       string          `db:"diagnosis" json:"diagnosis"`
	Treatment       string          `db:"treatment" json:"treatment,omitempty"`
	Recommendations string          `db:"recommendations" json:"recommendations,omitempty"`
	FollowUp        string          `db:"follow_up" json:"follow_up,omitempty"`
	VitalsJSON      json.RawMessage `db:"vitals" json:"-"`
	Vitals          VitalSigns      `json:"vitals,omitempty"`
}

// VitalSigns is a structured measurement map (e.g. "heart_rate" -> "72").
type VitalSigns map[string]string

// ClinicalHistoryInput is the payload captured during the second phase
// of the attend transition.
type ClinicalHistoryInput struct {
	ChiefComplaint  string     `json:"chief_complaint" binding:"required,max=1000" validate:"required,max=1000"`
	CurrentIllness  string     `json:"current_illness" binding:"max=5000"`
	PersonalHistory string     `json:"personal_history" binding:"max=5000"`
	FamilyHistory   string     `json:"family_history" binding:"max=5000"`
	PhysicalExam    string     `json:"physical_exam" binding:"max=5000"`
	Diagnosis       string     `json:"diagnosis" binding:"required,max=2000" validate:"required,max=2000"`
	Treatment       string     `json:"treatment" binding:"max=5000"`
	Recommendations string     `json:"recommendations" binding:"max=5000"`
	FollowUp        string     `json:"follow_up" binding:"max=1000"`
	Vitals          VitalSigns `json:"vitals"`
}
