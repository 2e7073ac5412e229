package email

import (
	"context"

	"github.com/medicitas/clinic-api/internal/model"
)

// Service delivers outbound clinic mail. Delivery is a collaborator of
// the core, not part of it; implementations must be safe for concurrent
// use by the alert poller.
type Service interface {
	SendReminder(ctx context.Context, to string, apt *model.Appointment, tier model.AlertTier) error
	SendCustom(ctx context.Context, to, subject, body string) error
}
