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

	"github.com/IANDYI/pregnancy-service/internal/adapters/handler"
	"github.com/IANDYI/pregnancy-service/internal/adapters/middleware"
	"github.com/IANDYI/pregnancy-service/internal/adapters/repository"
	"github.com/IANDYI/pregnancy-service/internal/adapters/websocket"
	"github.com/IANDYI/pregnancy-service/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "alert-consumer",
		Short: "Push pregnancy finding alerts to connected clinicians",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAlertConsumerConfig()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Env, cfg.LogLevel)

	publicKey, err := config.LoadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return err
	}

	handler.RegisterAlertConsumerMetrics(prometheus.DefaultRegisterer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(logger, handler.ObserveBroadcast)
	go hub.Run(ctx)

	consumer, err := repository.NewAlertConsumer(cfg.RabbitMQURL, cfg.QueueName, hub, handler.ObserveAlertConsumed, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize alert consumer: %w", err)
	}
	defer consumer.Close()

	if err := consumer.StartConsuming(ctx); err != nil {
		return fmt.Errorf("failed to start alert consumer: %w", err)
	}

	authMiddleware := middleware.NewAuthMiddleware(publicKey, logger)
	defer authMiddleware.Stop()

	wsHandler := handler.NewWebSocketHandler(hub, authMiddleware, logger)
	healthHandler := handler.NewHealthHandler(nil)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.HandleFunc("GET /health/live", healthHandler.Live)
	mux.HandleFunc("GET /ws", wsHandler.HandleWebSocket)

	server := &http.Server{
		Addr:    ":" + cfg.WebSocketPort,
		Handler: mux,
		// no write timeout: websocket connections are long-lived
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.WebSocketPort).Msg("starting alert consumer websocket server")
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

	logger.Info().Msg("shutting down alert consumer")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
