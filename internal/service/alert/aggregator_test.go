package alert

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medicitas/clinic-api/internal/model"
)

type fakeAppointmentRepo struct {
	appointments []*model.Appointment
}

func (r *fakeAppointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.appointments = append(r.appointments, apt)
	return nil
}

func (r *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	for _, apt := range r.appointments {
		if apt.ID == id {
			return apt, nil
		}
	}
	return nil, assert.AnError
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.DoctorID == doctorID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, id uuid.UUID, patch *model.AppointmentPatch) (*model.Appointment, error) {
	apt, err := r.Get(context.Background(), id)
	if err != nil {
		return nil, err
	}
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
	return apt, nil
}

func newTestAppointment(doctorID uuid.UUID, date, timeOfDay string, status model.AppointmentStatus) *model.Appointment {
	apt := &model.Appointment{
		DoctorID:        doctorID,
		PatientID:       uuid.New(),
		Title:           "Consulta",
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
		Status:          status,
	}
	apt.ID = uuid.New()
	return apt
}

func TestActiveAlertsSortedSoonestFirst(t *testing.T) {
	doctorID := uuid.New()
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		newTestAppointment(doctorID, "2025-01-10", "09:30", model.AppointmentStatusScheduled),
		newTestAppointment(doctorID, "2025-01-10", "08:30", model.AppointmentStatusConfirmed),
		newTestAppointment(doctorID, "2025-01-10", "09:05", model.AppointmentStatusScheduled),
	}}
	agg := NewAggregator(repo, 0)

	feed, err := agg.ActiveAlerts(context.Background(), doctorID, localTime(t, "2025-01-10 08:55:00"))
	require.NoError(t, err)
	require.Len(t, feed.Alerts, 3)

	// Overdue first, then by proximity.
	assert.Equal(t, "08:30", feed.Alerts[0].Appointment.AppointmentTime)
	assert.Equal(t, model.AlertTierOverdue, feed.Alerts[0].Tier)
	assert.Equal(t, "09:05", feed.Alerts[1].Appointment.AppointmentTime)
	assert.Equal(t, model.AlertTierUrgent, feed.Alerts[1].Tier)
	assert.Equal(t, "09:30", feed.Alerts[2].Appointment.AppointmentTime)
	assert.Equal(t, model.AlertTierWarning, feed.Alerts[2].Tier)
}

func TestActiveAlertsDropsQuietAndTerminal(t *testing.T) {
	doctorID := uuid.New()
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		newTestAppointment(doctorID, "2025-06-01", "09:00", model.AppointmentStatusScheduled),
		newTestAppointment(doctorID, "2025-01-10", "09:05", model.AppointmentStatusCompleted),
		newTestAppointment(doctorID, "2025-01-10", "09:05", model.AppointmentStatusCancelled),
	}}
	agg := NewAggregator(repo, 0)

	feed, err := agg.ActiveAlerts(context.Background(), doctorID, localTime(t, "2025-01-10 08:55:00"))
	require.NoError(t, err)
	assert.Empty(t, feed.Alerts)
	assert.Empty(t, feed.Invalid)
}

func TestActiveAlertsReportsInvalidSeparately(t *testing.T) {
	doctorID := uuid.New()
	broken := newTestAppointment(doctorID, "garbage", "09:00", model.AppointmentStatusScheduled)
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		broken,
		newTestAppointment(doctorID, "2025-01-10", "09:05", model.AppointmentStatusScheduled),
	}}
	agg := NewAggregator(repo, 0)

	feed, err := agg.ActiveAlerts(context.Background(), doctorID, localTime(t, "2025-01-10 08:55:00"))
	require.NoError(t, err)
	require.Len(t, feed.Invalid, 1)
	assert.Equal(t, broken.ID, feed.Invalid[0].ID)
	require.Len(t, feed.Alerts, 1)
	assert.Equal(t, model.AlertTierUrgent, feed.Alerts[0].Tier)
}

func TestActiveAlertsIgnoresOtherDoctors(t *testing.T) {
	doctorID := uuid.New()
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		newTestAppointment(doctorID, "2025-01-10", "09:05", model.AppointmentStatusScheduled),
		newTestAppointment(uuid.New(), "2025-01-10", "09:05", model.AppointmentStatusScheduled),
	}}
	agg := NewAggregator(repo, 0)

	feed, err := agg.ActiveAlerts(context.Background(), doctorID, localTime(t, "2025-01-10 08:55:00"))
	require.NoError(t, err)
	assert.Len(t, feed.Alerts, 1)
}

func TestCalendarBuckets(t *testing.T) {
	doctorID := uuid.New()
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		newTestAppointment(doctorID, "2025-01-10", "14:00", model.AppointmentStatusScheduled),
		newTestAppointment(doctorID, "2025-01-10", "09:00", model.AppointmentStatusConfirmed),
		newTestAppointment(doctorID, "2025-01-11", "10:00", model.AppointmentStatusScheduled),
		newTestAppointment(doctorID, "2025-01-12", "10:00", model.AppointmentStatusCancelled),
		newTestAppointment(doctorID, "2025-02-01", "10:00", model.AppointmentStatusScheduled),
	}}
	agg := NewAggregator(repo, 0)

	buckets, err := agg.CalendarBuckets(context.Background(), doctorID, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	require.Len(t, buckets, 2)

	day := buckets["2025-01-10"]
	require.Len(t, day, 2)
	assert.Equal(t, "09:00", day[0].AppointmentTime)
	assert.Equal(t, "14:00", day[1].AppointmentTime)

	assert.Len(t, buckets["2025-01-11"], 1)
	assert.NotContains(t, buckets, "2025-01-12")
	assert.NotContains(t, buckets, "2025-02-01")
}

func TestCalendarBucketsOpenEndedRange(t *testing.T) {
	doctorID := uuid.New()
	repo := &fakeAppointmentRepo{appointments: []*model.Appointment{
		newTestAppointment(doctorID, "2025-01-10", "09:00", model.AppointmentStatusScheduled),
		newTestAppointment(doctorID, "2025-02-01", "10:00", model.AppointmentStatusScheduled),
	}}
	agg := NewAggregator(repo, 0)

	buckets, err := agg.CalendarBuckets(context.Background(), doctorID, "", "")
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}
