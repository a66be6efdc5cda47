package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/IANDYI/pregnancy-service/internal/adapters/handler"
	"github.com/IANDYI/pregnancy-service/internal/adapters/middleware"
	"github.com/IANDYI/pregnancy-service/internal/adapters/repository"
	"github.com/IANDYI/pregnancy-service/internal/config"
	"github.com/IANDYI/pregnancy-service/internal/core/domain"
	"github.com/IANDYI/pregnancy-service/internal/core/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pregnancy-service",
		Short: "Pregnancy timeline and journal API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the profile request consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg, config.NewLogger(cfg.Env, cfg.LogLevel))
		},
	}
}

func migrateCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and seed template symptoms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger(cfg.Env, cfg.LogLevel)

			db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := config.InitDatabase(cmd.Context(), db, reset, logger); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Drop existing tables before creating them")
	return cmd
}

// routes bundles the handlers mounted on the API mux
type routes struct {
	auth     *middleware.AuthMiddleware
	health   *handler.HealthHandler
	profile  *handler.ProfileHandler
	journal  *handler.JournalHandler
	symptom  *handler.SymptomHandler
	insights *handler.InsightHandler
}

func newRouter(rt routes) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible, no auth required)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", rt.health.Health)
	mux.HandleFunc("GET /health/ready", rt.health.Ready)
	mux.HandleFunc("GET /health/live", rt.health.Live)

	// Profiles: USER creates and edits their own, ADMIN reads all
	mux.HandleFunc("POST /profiles", rt.auth.RequireAuth(rt.profile.CreateProfile))
	mux.HandleFunc("GET /profiles", rt.auth.RequireAuth(rt.profile.ListProfiles))
	mux.HandleFunc("GET /profiles/{profile_id}", rt.auth.RequireAuth(rt.profile.GetProfile))
	mux.HandleFunc("PATCH /profiles/{profile_id}", rt.auth.RequireAuth(rt.profile.UpdateProfile))
	mux.HandleFunc("GET /profiles/{profile_id}/status", rt.auth.RequireAuth(rt.profile.GetStatus))

	// Journal: one entry per week, owner writes
	mux.HandleFunc("POST /profiles/{profile_id}/journal", rt.auth.RequireAuth(rt.journal.CreateEntry))
	mux.HandleFunc("GET /profiles/{profile_id}/journal", rt.auth.RequireAuth(rt.journal.ListEntries))
	mux.HandleFunc("GET /profiles/{profile_id}/journal/undocumented", rt.auth.RequireAuth(rt.journal.UndocumentedWeeks))
	mux.HandleFunc("GET /journal/{entry_id}", rt.auth.RequireAuth(rt.journal.GetEntry))
	mux.HandleFunc("PUT /journal/{entry_id}", rt.auth.RequireAuth(rt.journal.UpdateEntry))
	mux.HandleFunc("DELETE /journal/{entry_id}", rt.auth.RequireAuth(rt.journal.DeleteEntry))

	mux.HandleFunc("GET /symptoms", rt.auth.RequireAuth(rt.symptom.ListSymptoms))
	mux.HandleFunc("POST /symptoms", rt.auth.RequireAuth(rt.symptom.CreateSymptom))

	mux.HandleFunc("POST /insights/classify", rt.auth.RequireAuth(rt.insights.Classify))
	mux.HandleFunc("GET /insights/development/{week}", rt.auth.RequireAuth(rt.insights.Development))
	mux.HandleFunc("GET /insights/timeline", rt.auth.RequireAuth(rt.insights.Timeline))
	mux.HandleFunc("GET /insights/gestation", rt.auth.RequireAuth(rt.insights.Gestation))

	return middleware.MetricsMiddleware(mux)
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	publicKey, err := config.LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return err
	}

	db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := config.InitDatabase(context.Background(), db, cfg.DropTablesOnStartup, logger); err != nil {
		return err
	}

	alertPublisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.AlertsQueueName, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ publisher: %w", err)
	}
	defer alertPublisher.Close()

	sqlRepo := repository.NewSQLRepository(db, repository.BreakerConfig{
		MaxRequests: cfg.CircuitBreakerMaxRequests,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
	}, logger)

	clock := domain.SystemClock{}
	profileService := services.NewProfileService(sqlRepo, clock, logger)
	journalService := services.NewJournalService(sqlRepo, sqlRepo, sqlRepo, alertPublisher, clock, logger)
	symptomService := services.NewSymptomService(sqlRepo)
	insightService := services.NewInsightService(clock)

	// Profile requests from the identity service are consumed in-process.
	// With several replicas RabbitMQ round-robins messages between them.
	profileConsumer, err := repository.NewProfileConsumer(cfg.RabbitMQURL, cfg.ProfileQueueName, profileService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize profile consumer: %w", err)
	}
	defer profileConsumer.Close()

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if err := profileConsumer.StartConsuming(consumerCtx); err != nil {
		logger.Error().Err(err).Msg("profile consumer failed to start")
	}

	authMiddleware := middleware.NewAuthMiddleware(publicKey, logger)
	defer authMiddleware.Stop()

	router := newRouter(routes{
		auth:     authMiddleware,
		health:   handler.NewHealthHandler(db),
		profile:  handler.NewProfileHandler(profileService, logger),
		journal:  handler.NewJournalHandler(journalService, logger),
		symptom:  handler.NewSymptomHandler(symptomService, logger),
		insights: handler.NewInsightHandler(insightService, logger),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting pregnancy service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info().Msg("shutting down server")

	// Stop consuming before the HTTP server drains
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server exited")
	return nil
}
