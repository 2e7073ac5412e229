package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository is the appointment store.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error)
	}

	// PatientRepository is the identity registry. FindByDocument
	// returns (nil, nil) when no patient holds the document pair.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		FindByDocument(ctx context.Context, documentType, documentNumber string) (*model.Patient, error)
		Update(ctx context.Context, id uuid.UUID, patch *model.PatientPatch) (*model.Patient, error)
	}

	// ClinicalHistoryRepository records consultations. Append-only:
	// there is deliberately no update or delete.
	ClinicalHistoryRepository interface {
		Create(ctx context.Context, history *model.ClinicalHistory) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalHistory, error)
		CountByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		ListActive(ctx context.Context) ([]*model.Doctor, error)
	}
)
