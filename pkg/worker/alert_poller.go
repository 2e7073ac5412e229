package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/medicitas/clinic-api/internal/email"
	"github.com/medicitas/clinic-api/internal/model"
	"github.com/medicitas/clinic-api/internal/repository"
	"github.com/medicitas/clinic-api/internal/service/alert"
	"github.com/medicitas/clinic-api/pkg/logger"
	"github.com/medicitas/clinic-api/pkg/messaging"
	"github.com/medicitas/clinic-api/pkg/metrics"
)

type AlertPollerConfig struct {
	PollInterval time.Duration
	// ReminderTTL bounds how often the same appointment may trigger a
	// reminder email.
	ReminderTTL time.Duration
}

// AlertPoller re-runs temporal classification for every active doctor
// on a fixed cadence. Nothing event-driven triggers it: alert tiers
// change purely because time advances.
type AlertPoller struct {
	aggregator *alert.Aggregator
	doctors    repository.DoctorRepository
	patients   repository.PatientRepository
	broker     messaging.Broker
	emailSvc   email.Service
	config     AlertPollerConfig
	logger     *logger.Logger
	metrics    *metrics.Metrics
	reminded   *cache.Cache
}

func NewAlertPoller(
	aggregator *alert.Aggregator,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	broker messaging.Broker,
	emailSvc email.Service,
	config AlertPollerConfig,
	logger *logger.Logger,
	m *metrics.Metrics,
) *AlertPoller {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if config.ReminderTTL <= 0 {
		config.ReminderTTL = time.Hour
	}

	return &AlertPoller{
		aggregator: aggregator,
		doctors:    doctors,
		patients:   patients,
		broker:     broker,
		emailSvc:   emailSvc,
		config:     config,
		logger:     logger,
		metrics:    m,
		reminded:   cache.New(config.ReminderTTL, 2*config.ReminderTTL),
	}
}

func (p *AlertPoller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting alert poller", "interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down alert poller")
			return
		case <-ticker.C:
			if err := p.Poll(ctx, time.Now()); err != nil {
				p.logger.Error(err, "alert poll cycle failed")
			}
		}
	}
}

// Poll runs a single classification cycle against the given reference
// time. Exposed for tests and for forcing a cycle at startup.
func (p *AlertPoller) Poll(ctx context.Context, now time.Time) error {
	doctors, err := p.doctors.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list doctors: %w", err)
	}

	tierCounts := map[model.AlertTier]int{}
	invalid := 0

	for _, doctor := range doctors {
		feed, err := p.aggregator.ActiveAlerts(ctx, doctor.ID, now)
		if err != nil {
			p.logger.Error(err, "failed to aggregate alerts", "doctor_id", doctor.ID.String())
			continue
		}

		for _, a := range feed.Alerts {
			tierCounts[a.Tier]++
		}
		invalid += len(feed.Invalid)

		if len(feed.Alerts) > 0 || len(feed.Invalid) > 0 {
			p.publishFeed(ctx, feed)
		}
		p.sendReminders(ctx, feed)
	}

	if p.metrics != nil {
		for _, tier := range []model.AlertTier{model.AlertTierWarning, model.AlertTierUrgent, model.AlertTierOverdue} {
			p.metrics.AlertsByTier.WithLabelValues(string(tier)).Set(float64(tierCounts[tier]))
		}
		p.metrics.InvalidAppointments.Set(float64(invalid))
		p.metrics.PollCycles.Inc()
	}
	return nil
}

func (p *AlertPoller) publishFeed(ctx context.Context, feed *model.AlertFeed) {
	if p.broker == nil {
		return
	}
	if err := p.broker.Publish(ctx, messaging.ChannelAlerts, feed); err != nil {
		p.logger.Error(err, "failed to publish alert feed", "doctor_id", feed.DoctorID)
		if p.metrics != nil {
			p.metrics.EventsFailed.WithLabelValues(messaging.ChannelAlerts).Inc()
		}
		return
	}
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(messaging.ChannelAlerts).Inc()
	}
}

func (p *AlertPoller) sendReminders(ctx context.Context, feed *model.AlertFeed) {
	if p.emailSvc == nil {
		return
	}

	for _, a := range feed.Alerts {
		if a.Tier != model.AlertTierUrgent {
			continue
		}
		key := a.Appointment.ID.String()
		if _, already := p.reminded.Get(key); already {
			continue
		}

		patient, err := p.patients.Get(ctx, a.Appointment.PatientID)
		if err != nil {
			p.logger.Error(err, "failed to load patient for reminder", "appointment_id", key)
			continue
		}
		if patient.Email == "" {
			continue
		}

		if err := p.emailSvc.SendReminder(ctx, patient.Email, a.Appointment, a.Tier); err != nil {
			p.logger.Error(err, "failed to send reminder", "appointment_id", key)
			continue
		}

		p.reminded.Set(key, struct{}{}, cache.DefaultExpiration)
		if p.metrics != nil {
			p.metrics.RemindersSent.Inc()
		}
	}
}
