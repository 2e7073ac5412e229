package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
)

const patientColumns = `
	id, first_name, last_name, email, phone, address,
	document_type, document_number, date_of_birth, gender,
	eps, marital_status, occupation, emergency_name, emergency_phone,
	created_at, updated_at
`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.Address,
		patient.DocumentType,
		patient.DocumentNumber,
		patient.DateOfBirth,
		patient.Gender,
		patient.EPS,
		patient.MaritalStatus,
		patient.Occupation,
		patient.EmergencyName,
		patient.EmergencyPhone,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) FindByDocument(ctx context.Context, documentType, documentNumber string) (*model.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE document_type = $1 AND document_number = $2
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, documentType, documentNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find patient by document: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, id uuid.UUID, patch *model.PatientPatch) (*model.Patient, error) {
	query := `UPDATE patients SET updated_at = $1`
	args := []interface{}{time.Now()}
	argCount := 2

	set := func(column string, value interface{}) {
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
		argCount++
	}

	if patch.FirstName != nil {
		set("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.DocumentType != nil {
		set("document_type", *patch.DocumentType)
	}
	if patch.DocumentNumber != nil {
		set("document_number", *patch.DocumentNumber)
	}
	if patch.DateOfBirth != nil {
		set("date_of_birth", *patch.DateOfBirth)
	}
	if patch.Gender != nil {
		set("gender", *patch.Gender)
	}
	if patch.EPS != nil {
		set("eps", *patch.EPS)
	}
	if patch.MaritalStatus != nil {
		set("marital_status", *patch.MaritalStatus)
	}
	if patch.Occupation != nil {
		set("occupation", *patch.Occupation)
	}
	if patch.EmergencyName != nil {
		set("emergency_name", *patch.EmergencyName)
	}
	if patch.EmergencyPhone != nil {
		set("emergency_phone", *patch.EmergencyPhone)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.NewNotFound("patient", nil)
	}

	return r.Get(ctx, id)
}
