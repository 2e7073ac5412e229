package model

import (
	"time"
)

type Patient struct {
	Base
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email,omitempty"`
	Phone          string     `db:"phone" json:"phone,omitempty"`
	Address        string     `db:"address" json:"address,omitempty"`
	DocumentType   *string    `db:"document_type" json:"document_type,omitempty"`
	DocumentNumber *string    `db:"document_number" json:"document_number,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	EPS            string     `db:"eps" json:"eps,omitempty"`
	MaritalStatus  string     `db:"marital_status" json:"marital_status,omitempty"`
	Occupation     string     `db:"occupation" json:"occupation,omitempty"`
	EmergencyName  string     `db:"emergency_name" json:"emergency_name,omitempty"`
	EmergencyPhone string     `db:"emergency_phone" json:"emergency_phone,omitempty"`
}

// Complete reports whether the demographic fields that gate the attend
// transition are all present: document type, document number, date of
// birth and gender.
func (p *Patient) Complete() bool {
	return p.DocumentType != nil && *p.DocumentType != "" &&
		p.DocumentNumber != nil && *p.DocumentNumber != "" &&
		p.DateOfBirth != nil && !p.DateOfBirth.IsZero() &&
		p.Gender != nil && *p.Gender != ""
}

// PatientCompletion supplies the demographic fields missing from an
// incomplete patient record during the attend transition.
type PatientCompletion struct {
	DocumentType   string    `json:"document_type" binding:"required,max=10" validate:"required,max=10"`
	DocumentNumber string    `json:"document_number" binding:"required,max=30" validate:"required,max=30"`
	DateOfBirth    time.Time `json:"date_of_birth" binding:"required" validate:"required"`
	Gender         string    `json:"gender" binding:"required,max=20" validate:"required,max=20"`
}

type CreatePatientRequest struct {
	FirstName      string     `json:"first_name" binding:"required,max=100"`
	LastName       string     `json:"last_name" binding:"required,max=100"`
	Email          string     `json:"email" binding:"omitempty,email"`
	Phone          string     `json:"phone" binding:"max=30"`
	Address        string     `json:"address" binding:"max=300"`
	DocumentType   *string    `json:"document_type"`
	DocumentNumber *string    `json:"document_number"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         *string    `json:"gender"`
	EPS            string     `json:"eps"`
	MaritalStatus  string     `json:"marital_status"`
	Occupation     string     `json:"occupation"`
	EmergencyName  string     `json:"emergency_name"`
	EmergencyPhone string     `json:"emergency_phone"`
}

// PatientPatch carries a partial update. Nil fields are left untouched.
type PatientPatch struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Address        *string
	DocumentType   *string
	DocumentNumber *string
	DateOfBirth    *time.Time
	Gender         *string
	EPS            *string
	MaritalStatus  *string
	Occupation     *string
	EmergencyName  *string
	EmergencyPhone *string
}
