package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medicitas/clinic-api/internal/model"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendReminder(ctx context.Context, to string, apt *model.Appointment, tier model.AlertTier) error {
	subject := fmt.Sprintf("Appointment reminder: %s", apt.Title)
	body := fmt.Sprintf(
		"Your appointment %q is coming up on %s at %s.\r\n\r\nPlease arrive a few minutes early.",
		apt.Title, apt.AppointmentDate, apt.AppointmentTime,
	)
	if tier == model.AlertTierOverdue {
		subject = fmt.Sprintf("Missed appointment: %s", apt.Title)
		body = fmt.Sprintf(
			"Your appointment %q scheduled for %s at %s has passed. Please contact the clinic to reschedule.",
			apt.Title, apt.AppointmentDate, apt.AppointmentTime,
		)
	}
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
