package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/repository"
	"github.com/medicitas/clinic-api/internal/service/audit"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
	"github.com/medicitas/clinic-api/pkg/messaging"
	"github.com/medicitas/clinic-api/pkg/metrics"
	"github.com/medicitas/clinic-api/pkg/validator"
)

// DuplicateIdentityError aborts the attend transition when the supplied
// document pair already belongs to another patient. Conflict carries
// that patient so the caller can show whose record collided.
type DuplicateIdentityError struct {
	Conflict *model.Patient
	err      *apperrors.AppError
}

func NewDuplicateIdentityError(conflict *model.Patient) *DuplicateIdentityError {
	return &DuplicateIdentityError{
		Conflict: conflict,
		err: apperrors.NewDuplicateIdentity(fmt.Sprintf(
			"document %s %s already belongs to patient %s %s",
			deref(conflict.DocumentType), deref(conflict.DocumentNumber),
			conflict.FirstName, conflict.LastName,
		)),
	}
}

func (e *DuplicateIdentityError) Error() string { return e.err.Error() }
func (e *DuplicateIdentityError) Unwrap() error { return e.err }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Service owns the appointment state machine. Transitions on the same
// appointment id are serialized through a per-id mutex; different ids
// proceed in parallel.
type Service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	histories    repository.ClinicalHistoryRepository
	broker       messaging.Broker
	auditor      *audit.Service
	metrics      *metrics.Metrics
	validate     *validator.Validator
	locks        sync.Map
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	histories repository.ClinicalHistoryRepository,
	broker messaging.Broker,
	auditor *audit.Service,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		patients:     patients,
		histories:    histories,
		broker:       broker,
		auditor:      auditor,
		metrics:      m,
		validate:     validator.New(),
	}
}

func (s *Service) lock(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// guard rejects transitions out of a terminal status before any write.
func guard(apt *model.Appointment) error {
	if apt.Status.Terminal() {
		return apperrors.NewInvalidState(fmt.Sprintf(
			"appointment %s is %s and cannot transition", apt.ID, apt.Status))
	}
	return nil
}

// Book creates a new appointment in the scheduled status. No slot
// uniqueness is enforced: two bookings may share (doctor, patient,
// date, time). Known gap, preserved deliberately.
func (s *Service) Book(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	apt := &model.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Title:           req.Title,
		Description:     req.Description,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          model.AppointmentStatusScheduled,
	}

	if _, err := apt.DateTime(); err != nil {
		return nil, apperrors.NewBadRequest("invalid appointment date or time", err)
	}

	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, apperrors.NewPersistence("failed to book appointment", err)
	}

	s.audit(ctx, "book", apt.ID, nil)
	s.publish(ctx, apt, "book")
	s.countTransition("book")
	return apt, nil
}

// Get loads a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

// ListByDoctor returns all appointments of a doctor.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID)
}

// Attend marks an appointment completed. When the patient record lacks
// any of the gating demographic fields, the caller must supply them in
// completion; the identity registry is consulted first and a document
// pair held by a different patient aborts the whole transition with no
// writes. Clinical history capture is phase two (SubmitHistory) and is
// deliberately not part of this call: the attendance fact is never lost
// to a later notes failure.
func (s *Service) Attend(ctx context.Context, id uuid.UUID, completion *model.PatientCompletion) (*model.Appointment, error) {
	defer s.observe("attend", time.Now())
	unlock := s.lock(id)
	defer unlock()

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(apt); err != nil {
		s.countRejection("attend", "invalid_state")
		return nil, err
	}

	patient, err := s.patients.Get(ctx, apt.PatientID)
	if err != nil {
		return nil, err
	}

	if !patient.Complete() {
		if completion == nil {
			return nil, apperrors.NewBadRequest(
				"patient record is incomplete; document type, document number, date of birth and gender are required", nil)
		}
		if err := s.validate.Validate(completion); err != nil {
			return nil, apperrors.NewBadRequest("invalid completion fields", err)
		}

		existing, err := s.patients.FindByDocument(ctx, completion.DocumentType, completion.DocumentNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to check document pair: %w", err)
		}
		if existing != nil && existing.ID != patient.ID {
			s.countRejection("attend", "duplicate_identity")
			return nil, NewDuplicateIdentityError(existing)
		}

		patch := &model.PatientPatch{
			DocumentType:   &completion.DocumentType,
			DocumentNumber: &completion.DocumentNumber,
			DateOfBirth:    &completion.DateOfBirth,
			Gender:         &completion.Gender,
		}
		if _, err := s.patients.Update(ctx, patient.ID, patch); err != nil {
			return nil, apperrors.NewPersistence("failed to complete patient record", err)
		}
		if s.auditor != nil {
			s.auditor.Log(ctx, "complete_patient", "patient", patient.ID, map[string]interface{}{
				"appointment_id": apt.ID.String(),
			})
		}
	}

	status := model.AppointmentStatusCompleted
	updated, err := s.appointments.Update(ctx, id, &model.AppointmentPatch{Status: &status})
	if err != nil {
		return nil, apperrors.NewPersistence("failed to mark appointment completed", err)
	}

	s.audit(ctx, "attend", id, nil)
	s.publish(ctx, updated, "attend")
	s.countTransition("attend")
	return updated, nil
}

// SubmitHistory is the second phase of attend: it records the
// consultation for an already-completed appointment and is invokable
// independently so an interrupted capture can be retried. A failure
// here never rolls back the completed status.
func (s *Service) SubmitHistory(ctx context.Context, appointmentID uuid.UUID, input *model.ClinicalHistoryInput) (uuid.UUID, error) {
	defer s.observe("submit_history", time.Now())
	unlock := s.lock(appointmentID)
	defer unlock()

	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return uuid.Nil, err
	}
	if apt.Status != model.AppointmentStatusCompleted {
		s.countRejection("submit_history", "invalid_state")
		return uuid.Nil, apperrors.NewInvalidState(fmt.Sprintf(
			"appointment %s is %s; clinical history requires a completed appointment", apt.ID, apt.Status))
	}

	if err := s.validate.Validate(input); err != nil {
		return uuid.Nil, apperrors.NewBadRequest("invalid clinical history payload", err)
	}

	vitals, err := json.Marshal(input.Vitals)
	if err != nil {
		return uuid.Nil, apperrors.NewBadRequest("invalid vital signs", err)
	}

	history := &model.ClinicalHistory{
		PatientID:       apt.PatientID,
		DoctorID:        apt.DoctorID,
		AppointmentID:   &apt.ID,
		ChiefComplaint:  input.ChiefComplaint,
		CurrentIllness:  input.CurrentIllness,
		PersonalHistory: input.PersonalHistory,
		FamilyHistory:   input.FamilyHistory,
		PhysicalExam:    input.PhysicalExam,
		Diagnosis:       input.Diagnosis,
		Treatment:       input.Treatment,
		Recommendations: input.Recommendations,
		FollowUp:        input.FollowUp,
		VitalsJSON:      vitals,
		Vitals:          input.Vitals,
	}

	if err := s.histories.Create(ctx, history); err != nil {
		return uuid.Nil, apperrors.NewPersistence("failed to record clinical history", err)
	}

	s.audit(ctx, "submit_history", appointmentID, map[string]interface{}{
		"history_id": history.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.HistoriesRecorded.Inc()
	}
	return history.ID, nil
}

// NeedsHistory reports whether an appointment sits in the observable
// intermediate state "completed, no history yet", so callers can
// re-offer history capture after an interruption.
func (s *Service) NeedsHistory(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	apt, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return false, err
	}
	if apt.Status != model.AppointmentStatusCompleted {
		return false, nil
	}
	count, err := s.histories.CountByAppointment(ctx, appointmentID)
	if err != nil {
		return false, fmt.Errorf("failed to count histories: %w", err)
	}
	return count == 0, nil
}

// Reschedule moves an appointment to a new date and time and confirms
// it. Pure field update: no slot availability or future-date validation
// beyond parseability. Idempotent.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date, timeOfDay string) (*model.Appointment, error) {
	defer s.observe("reschedule", time.Now())
	unlock := s.lock(id)
	defer unlock()

	if _, err := time.ParseInLocation(model.DateLayout+" "+model.TimeLayout, date+" "+timeOfDay, time.Local); err != nil {
		return nil, apperrors.NewBadRequest("invalid appointment date or time", err)
	}

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(apt); err != nil {
		s.countRejection("reschedule", "invalid_state")
		return nil, err
	}

	status := model.AppointmentStatusConfirmed
	updated, err := s.appointments.Update(ctx, id, &model.AppointmentPatch{
		AppointmentDate: &date,
		AppointmentTime: &timeOfDay,
		Status:          &status,
	})
	if err != nil {
		return nil, apperrors.NewPersistence("failed to reschedule appointment", err)
	}

	s.audit(ctx, "reschedule", id, map[string]interface{}{
		"appointment_date": date,
		"appointment_time": timeOfDay,
	})
	s.publish(ctx, updated, "reschedule")
	s.countTransition("reschedule")
	return updated, nil
}

// MarkNoShow records that the patient did not arrive. The reason is
// free-form. Idempotent.
func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	defer s.observe("no_show", time.Now())
	unlock := s.lock(id)
	defer unlock()

	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(apt); err != nil {
		s.countRejection("no_show", "invalid_state")
		return nil, err
	}

	status := model.AppointmentStatusNoShow
	updated, err := s.appointments.Update(ctx, id, &model.AppointmentPatch{
		Status:       &status,
		NoShowReason: &reason,
	})
	if err != nil {
		return nil, apperrors.NewPersistence("failed to mark no-show", err)
	}

	s.audit(ctx, "no_show", id, map[string]interface{}{"reason": reason})
	s.publish(ctx, updated, "no_show")
	s.countTransition("no_show")
	return updated, nil
}

func (s *Service) publish(ctx context.Context, apt *model.Appointment, transition string) {
	if s.broker == nil {
		return
	}
	event := &messaging.TransitionEvent{
		AppointmentID: apt.ID.String(),
		DoctorID:      apt.DoctorID.String(),
		PatientID:     apt.PatientID.String(),
		Transition:    transition,
		Status:        string(apt.Status),
		OccurredAt:    time.Now().Format(time.RFC3339),
	}
	if err := s.broker.Publish(ctx, messaging.ChannelTransitions, event); err != nil {
		// Event delivery is best-effort; the transition already
		// happened and must not be failed retroactively.
		if s.metrics != nil {
			s.metrics.EventsFailed.WithLabelValues(messaging.ChannelTransitions).Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(messaging.ChannelTransitions).Inc()
	}
}

func (s *Service) audit(ctx context.Context, action string, id uuid.UUID, metadata map[string]interface{}) {
	if s.auditor != nil {
		s.auditor.Log(ctx, action, "appointment", id, metadata)
	}
}

func (s *Service) countTransition(transition string) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(transition).Inc()
	}
}

func (s *Service) countRejection(transition, reason string) {
	if s.metrics != nil {
		s.metrics.TransitionsFailed.WithLabelValues(transition, reason).Inc()
	}
}

func (s *Service) observe(transition string, start time.Time) {
	if s.metrics != nil {
		s.metrics.TransitionLatency.WithLabelValues(transition).Observe(time.Since(start).Seconds())
	}
}
