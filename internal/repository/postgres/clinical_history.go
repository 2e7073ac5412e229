package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
)

func (r *clinicalHistoryRepository) Create(ctx context.Context, history *model.ClinicalHistory) error {
	query := `
		INSERT INTO clinical_histories (
			id, patient_id, doctor_id, appointment_id,
			chief_complaint, current_illness, personal_history, family_history,
			physical_exam, diagnosis, treatment, recommendations, follow_up,
			vitals, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	history.ID = uuid.New()
	history.CreatedAt = time.Now()
	history.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		history.ID,
		history.PatientID,
		history.DoctorID,
		history.AppointmentID,
		history.ChiefComplaint,
		history.CurrentIllness,
		history.PersonalHistory,
		history.FamilyHistory,
		history.PhysicalExam,
		history.Diagnosis,
		history.Treatment,
		history.Recommendations,
		history.FollowUp,
		history.VitalsJSON,
		history.CreatedAt,
		history.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical history: %w", err)
	}
	return nil
}

func (r *clinicalHistoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalHistory, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_id,
			   chief_complaint, current_illness, personal_history, family_history,
			   physical_exam, diagnosis, treatment, recommendations, follow_up,
			   vitals, created_at, updated_at
		FROM clinical_histories
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var histories []*model.ClinicalHistory
	err := r.db.SelectContext(ctx, &histories, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical histories: %w", err)
	}
	return histories, nil
}

func (r *clinicalHistoryRepository) CountByAppointment(ctx context.Context, appointmentID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM clinical_histories WHERE appointment_id = $1`
	var count int
	err := r.db.GetContext(ctx, &count, query, appointmentID)
	if err != nil {
		return 0, fmt.Errorf("failed to count clinical histories: %w", err)
	}
	return count, nil
}
