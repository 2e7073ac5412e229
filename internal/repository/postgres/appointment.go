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

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, title, description,
			appointment_date, appointment_time, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.Title,
		appointment.Description,
		appointment.AppointmentDate,
		appointment.AppointmentTime,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, title, description,
			   appointment_date, appointment_time, status, no_show_reason,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, title, description,
			   appointment_date, appointment_time, status, no_show_reason,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY appointment_date ASC, appointment_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	query := `UPDATE appointments SET updated_at = $1`
	args := []interface{}{time.Now()}
	argCount := 2

	if patch.AppointmentDate != nil {
		query += fmt.Sprintf(", appointment_date = $%d", argCount)
		args = append(args, *patch.AppointmentDate)
		argCount++
	}
	if patch.AppointmentTime != nil {
		query += fmt.Sprintf(", appointment_time = $%d", argCount)
		args = append(args, *patch.AppointmentTime)
		argCount++
	}
	if patch.Status != nil {
		query += fmt.Sprintf(", status = $%d", argCount)
		args = append(args, *patch.Status)
		argCount++
	}
	if patch.NoShowReason != nil {
		query += fmt.Sprintf(", no_show_reason = $%d", argCount)
		args = append(args, *patch.NoShowReason)
		argCount++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.NewNotFound("appointment", nil)
	}

	return r.Get(ctx, id)
}
