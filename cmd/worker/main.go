package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/medicitas/clinic-api/internal/email"
	"github.com/medicitas/clinic-api/internal/repository/postgres"
	alertService "github.com/medicitas/clinic-api/internal/service/alert"
	"github.com/medicitas/clinic-api/pkg/logger"
	"github.com/medicitas/clinic-api/pkg/messaging/redis"
	"github.com/medicitas/clinic-api/pkg/metrics"
	"github.com/medicitas/clinic-api/pkg/worker"
)

// WorkerConfig is read from the environment. The poller runs headless,
// so it skips the API's yaml config file entirely.
type WorkerConfig struct {
	DatabaseURL  string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL     string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1m"`
	ReminderTTL  time.Duration `envconfig:"REMINDER_TTL" default:"1h"`
	HealthPort   int           `envconfig:"HEALTH_PORT" default:"8081"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`
}

func setupHealthCheck(port int, l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			l.Fatal(err, "health check server failed")
		}
	}()
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("clinic", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker config")
	}

	l := logger.NewLogger(nil)

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, l.Zerolog())
	if err != nil {
		l.Fatal(err, "failed to create Redis broker")
	}
	defer broker.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)

	// Snapshot caching is pointless here: each cycle has a fresh `now`.
	aggregator := alertService.NewAggregator(appointmentRepo, 0)

	var emailSvc email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		l.Warn("SMTP not configured, reminders disabled")
	}

	poller := worker.NewAlertPoller(
		aggregator,
		doctorRepo,
		patientRepo,
		broker,
		emailSvc,
		worker.AlertPollerConfig{
			PollInterval: cfg.PollInterval,
			ReminderTTL:  cfg.ReminderTTL,
		},
		l,
		metrics.NewMetrics("clinic", "worker"),
	)

	setupHealthCheck(cfg.HealthPort, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		l.Info("shutting down...")
		cancel()
	}()

	poller.Start(ctx)
}
