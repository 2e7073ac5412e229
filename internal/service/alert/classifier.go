package alert

import (
	"fmt"
	"time"

	"github.com/medicitas/clinic-api/internal/model"
	apperrors "github.com/medicitas/clinic-api/pkg/errors"
)

// Classification windows, measured from the reference time to the
// appointment instant.
const (
	UrgentWindow  = 15 * time.Minute
	WarningWindow = 60 * time.Minute
)

// Classify derives the alert tier of an appointment against a reference
// time. Only scheduled and confirmed appointments alert; every other
// status is unconditionally none. An unparseable date/time yields the
// distinct invalid tier together with an InvalidDateTime error so
// malformed data is surfaced, never collapsed into "not urgent".
func Classify(apt *model.Appointment, now time.Time) (model.AlertTier, error) {
	if !apt.Status.Alertable() {
		return model.AlertTierNone, nil
	}

	at, err := apt.DateTime()
	if err != nil {
		return model.AlertTierInvalid, apperrors.NewInvalidDateTime(
			fmt.Sprintf("appointment %s has unparseable date/time %q %q",
				apt.ID, apt.AppointmentDate, apt.AppointmentTime),
			err,
		)
	}

	return classifyDelta(at.Sub(now)), nil
}

func classifyDelta(delta time.Duration) model.AlertTier {
	switch {
	case delta < 0:
		return model.AlertTierOverdue
	case delta <= UrgentWindow:
		return model.AlertTierUrgent
	case delta <= WarningWindow:
		return model.AlertTierWarning
	default:
		return model.AlertTierNone
	}
}

// Humanize renders a delta as a coarse human-readable string using the
// single largest nonzero unit: days over hours over minutes. Past and
// future deltas get separate wording.
func Humanize(delta time.Duration) string {
	past := delta < 0
	if past {
		delta = -delta
	}

	var amount int
	var unit string
	switch {
	case delta >= 24*time.Hour:
		amount = int(delta / (24 * time.Hour))
		unit = "day"
	case delta >= time.Hour:
		amount = int(delta / time.Hour)
		unit = "hour"
	case delta >= time.Minute:
		amount = int(delta / time.Minute)
		unit = "minute"
	default:
		if past {
			return "moments ago"
		}
		return "now"
	}

	if amount != 1 {
		unit += "s"
	}
	if past {
		return fmt.Sprintf("%d %s ago", amount, unit)
	}
	return fmt.Sprintf("in %d %s", amount, unit)
}
