package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/medicitas/clinic-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type patientRepository struct {
	db *sqlx.DB
}

type clinicalHistoryRepository struct {
	db *sqlx.DB
}

type doctorRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func NewClinicalHistoryRepository(db *sqlx.DB) repository.ClinicalHistoryRepository {
	return &clinicalHistoryRepository{db: db}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}
