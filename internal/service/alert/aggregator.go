package alert

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/repository"
)

// Aggregator builds the derived alert views over a doctor's
// appointments. It holds no state beyond a short-lived snapshot cache;
// classification itself is a pure function of the appointment set and
// the reference time.
type Aggregator struct {
	appointments repository.AppointmentRepository
	snapshots    *cache.Cache
	snapshotTTL  time.Duration
}

// NewAggregator creates an aggregator. A non-positive snapshotTTL
// disables the cache, which callers with their own reference times
// (the poller, tests) rely on.
func NewAggregator(appointments repository.AppointmentRepository, snapshotTTL time.Duration) *Aggregator {
	a := &Aggregator{
		appointments: appointments,
		snapshotTTL:  snapshotTTL,
	}
	if snapshotTTL > 0 {
		a.snapshots = cache.New(snapshotTTL, 2*snapshotTTL)
	}
	return a
}

// ActiveAlerts classifies every appointment of the doctor against now,
// drops the quiet ones, and returns the remainder sorted soonest-first
// (overdue items, being in the past, sort before everything else).
// Appointments that cannot be classified are reported in the feed's
// Invalid list rather than dropped silently.
func (a *Aggregator) ActiveAlerts(ctx context.Context, doctorID uuid.UUID, now time.Time) (*model.AlertFeed, error) {
	if a.snapshots != nil {
		if cached, ok := a.snapshots.Get(doctorID.String()); ok {
			return cached.(*model.AlertFeed), nil
		}
	}

	appointments, err := a.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	feed := &model.AlertFeed{
		DoctorID: doctorID.String(),
		AsOf:     now,
		Alerts:   []*model.AppointmentAlert{},
	}

	for _, apt := range appointments {
		tier, _ := Classify(apt, now)
		if tier == model.AlertTierInvalid {
			feed.Invalid = append(feed.Invalid, apt)
			continue
		}
		if tier == model.AlertTierNone {
			continue
		}

		at, _ := apt.DateTime()
		feed.Alerts = append(feed.Alerts, &model.AppointmentAlert{
			Appointment: apt,
			Tier:        tier,
			StartsAt:    at,
			Remaining:   Humanize(at.Sub(now)),
		})
	}

	sort.Slice(feed.Alerts, func(i, j int) bool {
		return feed.Alerts[i].StartsAt.Before(feed.Alerts[j].StartsAt)
	})

	if a.snapshots != nil {
		a.snapshots.Set(doctorID.String(), feed, cache.DefaultExpiration)
	}
	return feed, nil
}

// CalendarBuckets groups a doctor's scheduled and confirmed
// appointments by calendar date within [from, to], each day sorted by
// time-of-day. It answers "what is on day X", not "what is urgent".
func (a *Aggregator) CalendarBuckets(ctx context.Context, doctorID uuid.UUID, from, to string) (map[string][]*model.Appointment, error) {
	appointments, err := a.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	buckets := make(map[string][]*model.Appointment)
	for _, apt := range appointments {
		if !apt.Status.Alertable() {
			continue
		}
		// ISO dates compare correctly as strings.
		if (from != "" && apt.AppointmentDate < from) || (to != "" && apt.AppointmentDate > to) {
			continue
		}
		buckets[apt.AppointmentDate] = append(buckets[apt.AppointmentDate], apt)
	}

	for _, day := range buckets {
		sort.Slice(day, func(i, j int) bool {
			return day[i].AppointmentTime < day[j].AppointmentTime
		})
	}
	return buckets, nil
}
