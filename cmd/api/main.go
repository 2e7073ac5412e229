package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medicitas/clinic-api/internal/config"
	"github.com/medicitas/clinic-api/internal/handler"
	alertHandler "github.com/medicitas/clinic-api/internal/handler/alert"
	appointmentHandler "github.com/medicitas/clinic-api/internal/handler/appointment"
	patientHandler "github.com/medicitas/clinic-api/internal/handler/patient"
	"github.com/medicitas/clinic-api/internal/middleware"
	"github.com/medicitas/clinic-api/internal/repository/postgres"
	"github.com/medicitas/clinic-api/internal/router"
	alertService "github.com/medicitas/clinic-api/internal/service/alert"
	auditService "github.com/medicitas/clinic-api/internal/service/audit"
	lifecycleService "github.com/medicitas/clinic-api/internal/service/lifecycle"
	patientService "github.com/medicitas/clinic-api/internal/service/patient"
	"github.com/medicitas/clinic-api/pkg/auth"
	"github.com/medicitas/clinic-api/pkg/messaging/redis"
	"github.com/medicitas/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	historyRepo := postgres.NewClinicalHistoryRepository(db)

	m := metrics.NewMetrics("clinic", "api")
	auditor := auditService.NewService(&log.Logger)

	lifecycleSvc := lifecycleService.NewService(
		appointmentRepo, patientRepo, historyRepo, broker, auditor, m,
	)
	patientSvc := patientService.NewService(patientRepo, historyRepo, auditor)
	aggregator := alertService.NewAggregator(appointmentRepo, cfg.Alerts.SnapshotTTL)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		appointmentHandler.NewHandler(lifecycleSvc),
		patientHandler.NewHandler(patientSvc),
		alertHandler.NewHandler(aggregator),
		handler.NewHealthHandler(db),
		router.RouterConfig{
			RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst: cfg.RateLimit.Burst,
			CORSConfig: middleware.CORSConfig{
				AllowedOrigins: cfg.Security.AllowedOrigins,
				AllowedMethods: cfg.Security.AllowedMethods,
				AllowedHeaders: cfg.Security.AllowedHeaders,
			},
			MetricsPrefix: "clinic_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
