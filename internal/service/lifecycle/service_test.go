package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicitas/clinic-api/internal/model"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
)

type memAppointmentRepo struct {
	byID    map[uuid.UUID]*model.Appointment
	updates int
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{byID: make(map[uuid.UUID]*model.Appointment)}
}

func (r *memAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	r.byID[apt.ID] = apt
	return nil
}

func (r *memAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *memAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.byID {
		if apt.DoctorID == doctorID {
			copied := *apt
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) Update(_ context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	apt, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	r.updates++
	if patch.AppointmentDate != nil {
		apt.AppointmentDate = *patch.AppointmentDate
	}
	if patch.AppointmentTime != nil {
		apt.AppointmentTime = *patch.AppointmentTime
	}
	if patch.Status != nil {
		apt.Status = *patch.Status
	}
	if patch.NoShowReason != nil {
		apt.NoShowReason = patch.NoShowReason
	}
	apt.UpdatedAt = time.Now()
	copied := *apt
	return &copied, nil
}

type memPatientRepo struct {
	byID    map[uuid.UUID]*model.Patient
	updates int
}

func newMemPatientRepo() *memPatientRepo {
	return &memPatientRepo{byID: make(map[uuid.UUID]*model.Patient)}
}

func (r *memPatientRepo) Create(_ context.Context, p *model.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.byID[p.ID] = p
	return nil
}

func (r *memPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	copied := *p
	return &copied, nil
}

func (r *memPatientRepo) FindByDocument(_ context.Context, documentType, documentNumber string) (*model.Patient, error) {
	for _, p := range r.byID {
		if p.DocumentType != nil && *p.DocumentType == documentType &&
			p.DocumentNumber != nil && *p.DocumentNumber == documentNumber {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memPatientRepo) Update(_ context.Context, id uuid.UUID, patch *model.PatientPatch) (*model.Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	r.updates++
	if patch.DocumentType != nil {
		p.DocumentType = patch.DocumentType
	}
	if patch.DocumentNumber != nil {
		p.DocumentNumber = patch.DocumentNumber
	}
	if patch.DateOfBirth != nil {
		p.DateOfBirth = patch.DateOfBirth
	}
	if patch.Gender != nil {
		p.Gender = patch.Gender
	}
	copied := *p
	return &copied, nil
}

type memHistoryRepo struct {
	rows      []*model.ClinicalHistory
	createErr error
}

func (r *memHistoryRepo) Create(_ context.Context, h *model.ClinicalHistory) error {
	if r.createErr != nil {
		return r.createErr
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.rows = append(r.rows, h)
	return nil
}

func (r *memHistoryRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.ClinicalHistory, error) {
	var out []*model.ClinicalHistory
	for _, h := range r.rows {
		if h.PatientID == patientID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *memHistoryRepo) CountByAppointment(_ context.Context, appointmentID uuid.UUID) (int, error) {
	count := 0
	for _, h := range r.rows {
		if h.AppointmentID != nil && *h.AppointmentID == appointmentID {
			count++
		}
	}
	return count, nil
}

type fixture struct {
	svc          *Service
	appointments *memAppointmentRepo
	patients     *memPatientRepo
	histories    *memHistoryRepo
}

func newFixture() *fixture {
	appointments := newMemAppointmentRepo()
	patients := newMemPatientRepo()
	histories := &memHistoryRepo{}
	return &fixture{
		svc:          NewService(appointments, patients, histories, nil, nil, nil),
		appointments: appointments,
		patients:     patients,
		histories:    histories,
	}
}

func strptr(s string) *string { return &s }

func (f *fixture) addPatient(t *testing.T, complete bool) *model.Patient {
	t.Helper()
	p := &model.Patient{FirstName: "Ana", LastName: "Gomez", Email: "ana@example.com"}
	if complete {
		dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
		p.DocumentType = strptr("CC")
		p.DocumentNumber = strptr("1012345678")
		p.DateOfBirth = &dob
		p.Gender = strptr("female")
	}
	require.NoError(t, f.patients.Create(context.Background(), p))
	return p
}

func (f *fixture) book(t *testing.T, patientID uuid.UUID, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Book(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        uuid.New(),
		PatientID:       patientID,
		Title:           "Consulta general",
		AppointmentDate: "2025-03-10",
		AppointmentTime: "09:00",
	})
	require.NoError(t, err)
	if status != model.AppointmentStatusScheduled {
		updated, err := f.appointments.Update(context.Background(), apt.ID, &model.AppointmentPatch{Status: &status})
		require.NoError(t, err)
		f.appointments.updates = 0
		return updated
	}
	return apt
}

func completion() *model.PatientCompletion {
	return &model.PatientCompletion{
		DocumentType:   "CC",
		DocumentNumber: "900111222",
		DateOfBirth:    time.Date(1985, 2, 14, 0, 0, 0, 0, time.UTC),
		Gender:         "male",
	}
}

func TestBook(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)

	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.NotEqual(t, uuid.Nil, apt.ID)
}

func TestBookRejectsUnparseableDateTime(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)

	_, err := f.svc.Book(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:        uuid.New(),
		PatientID:       p.ID,
		Title:           "Consulta",
		AppointmentDate: "2025-02-30",
		AppointmentTime: "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestAttendCompletePatientNeedsNoCompletion(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	updated, err := f.svc.Attend(context.Background(), apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
	assert.Zero(t, f.patients.updates, "a complete patient record must not be touched")
}

func TestAttendCompletePatientIgnoresSuppliedCompletion(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	updated, err := f.svc.Attend(context.Background(), apt.ID, completion())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	stored, err := f.patients.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1012345678", *stored.DocumentNumber, "existing identity must win over the supplied one")
	assert.Zero(t, f.patients.updates)
}

func TestAttendIncompletePatientRequiresCompletion(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, false)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	_, err := f.svc.Attend(context.Background(), apt.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))

	stored, err := f.appointments.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, stored.Status)
}

func TestAttendCompletesPatientAndAppointment(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, false)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	updated, err := f.svc.Attend(context.Background(), apt.ID, completion())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)

	stored, err := f.patients.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Complete())
	assert.Equal(t, "900111222", *stored.DocumentNumber)
}

func TestAttendDuplicateIdentityAbortsBeforeAnyWrite(t *testing.T) {
	f := newFixture()
	holder := f.addPatient(t, true)
	p := f.addPatient(t, false)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	c := completion()
	c.DocumentType = *holder.DocumentType
	c.DocumentNumber = *holder.DocumentNumber

	_, err := f.svc.Attend(context.Background(), apt.ID, c)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateIdentity(err))

	var dup *DuplicateIdentityError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, holder.ID, dup.Conflict.ID)

	stored, err := f.appointments.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, stored.Status, "aborted transition must leave status untouched")
	assert.Zero(t, f.patients.updates)
	assert.Zero(t, f.appointments.updates)
}

func TestAttendSameDocumentPairOnSamePatientIsNotAConflict(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, false)
	p.DocumentType = strptr("CC")
	p.DocumentNumber = strptr("900111222")
	f.patients.byID[p.ID] = p
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	updated, err := f.svc.Attend(context.Background(), apt.ID, completion())
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
}

func TestAttendRejectsTerminalStatuses(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	} {
		apt := f.book(t, p.ID, status)
		_, err := f.svc.Attend(context.Background(), apt.ID, nil)
		require.Error(t, err, "status %s", status)
		assert.True(t, apperrors.IsInvalidState(err))
	}
}

func TestAttendAfterNoShowIsAllowed(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusNoShow)

	updated, err := f.svc.Attend(context.Background(), apt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, updated.Status)
}

func TestSubmitHistoryRequiresCompletedAppointment(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	_, err := f.svc.SubmitHistory(context.Background(), apt.ID, &model.ClinicalHistoryInput{
		ChiefComplaint: "headache",
		Diagnosis:      "migraine",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
	assert.Empty(t, f.histories.rows)
}

func TestAttendThenSubmitHistory(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	_, err := f.svc.Attend(context.Background(), apt.ID, nil)
	require.NoError(t, err)

	needs, err := f.svc.NeedsHistory(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.True(t, needs, "completed appointment without notes must report pending capture")

	historyID, err := f.svc.SubmitHistory(context.Background(), apt.ID, &model.ClinicalHistoryInput{
		ChiefComplaint: "headache",
		Diagnosis:      "migraine",
		Vitals:         model.VitalSigns{"heart_rate": "72"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, historyID)

	require.Len(t, f.histories.rows, 1)
	row := f.histories.rows[0]
	assert.Equal(t, p.ID, row.PatientID)
	assert.Equal(t, apt.DoctorID, row.DoctorID)
	require.NotNil(t, row.AppointmentID)
	assert.Equal(t, apt.ID, *row.AppointmentID)

	needs, err = f.svc.NeedsHistory(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.False(t, needs)
}

func TestSubmitHistoryFailureKeepsAppointmentCompleted(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	_, err := f.svc.Attend(context.Background(), apt.ID, nil)
	require.NoError(t, err)

	f.histories.createErr = errors.New("connection reset")
	_, err = f.svc.SubmitHistory(context.Background(), apt.ID, &model.ClinicalHistoryInput{
		ChiefComplaint: "headache",
		Diagnosis:      "migraine",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrPersistence, apperrors.Code(err))

	stored, err := f.appointments.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status, "notes failure must not roll back attendance")

	// The capture is retriable once the store recovers.
	f.histories.createErr = nil
	_, err = f.svc.SubmitHistory(context.Background(), apt.ID, &model.ClinicalHistoryInput{
		ChiefComplaint: "headache",
		Diagnosis:      "migraine",
	})
	require.NoError(t, err)
	assert.Len(t, f.histories.rows, 1)
}

func TestSubmitHistoryValidatesPayload(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusCompleted)

	_, err := f.svc.SubmitHistory(context.Background(), apt.ID, &model.ClinicalHistoryInput{
		CurrentIllness: "no complaint or diagnosis",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestReschedule(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	updated, err := f.svc.Reschedule(context.Background(), apt.ID, "2025-03-12", "14:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-12", updated.AppointmentDate)
	assert.Equal(t, "14:30", updated.AppointmentTime)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
}

func TestRescheduleIsIdempotent(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	first, err := f.svc.Reschedule(context.Background(), apt.ID, "2025-03-12", "14:30")
	require.NoError(t, err)
	second, err := f.svc.Reschedule(context.Background(), apt.ID, "2025-03-12", "14:30")
	require.NoError(t, err)

	assert.Equal(t, first.AppointmentDate, second.AppointmentDate)
	assert.Equal(t, first.AppointmentTime, second.AppointmentTime)
	assert.Equal(t, first.Status, second.Status)
}

func TestRescheduleRejectsUnparseableDateTime(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusScheduled)

	_, err := f.svc.Reschedule(context.Background(), apt.ID, "2025-13-01", "14:30")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))

	stored, err := f.appointments.Get(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", stored.AppointmentDate)
}

func TestRescheduleRejectsTerminalStatuses(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusCancelled)

	_, err := f.svc.Reschedule(context.Background(), apt.ID, "2025-03-12", "14:30")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestMarkNoShow(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusConfirmed)

	updated, err := f.svc.MarkNoShow(context.Background(), apt.ID, "no_contact")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusNoShow, updated.Status)
	require.NotNil(t, updated.NoShowReason)
	assert.Equal(t, "no_contact", *updated.NoShowReason)
}

func TestMarkNoShowIsIdempotent(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusConfirmed)

	first, err := f.svc.MarkNoShow(context.Background(), apt.ID, "forgot")
	require.NoError(t, err)
	second, err := f.svc.MarkNoShow(context.Background(), apt.ID, "forgot")
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.NoShowReason, *second.NoShowReason)
}

func TestMarkNoShowRejectsTerminalStatuses(t *testing.T) {
	f := newFixture()
	p := f.addPatient(t, true)
	apt := f.book(t, p.ID, model.AppointmentStatusCompleted)

	_, err := f.svc.MarkNoShow(context.Background(), apt.ID, "forgot")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestGetUnknownAppointment(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
