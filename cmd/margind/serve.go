package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpHandler "github.com/OrtalNisim/PX-OMS/internal/handler/http"
	"github.com/OrtalNisim/PX-OMS/internal/messaging"
	"github.com/OrtalNisim/PX-OMS/internal/platform"
	"github.com/OrtalNisim/PX-OMS/internal/service"
	"github.com/OrtalNisim/PX-OMS/internal/store"
	"github.com/OrtalNisim/PX-OMS/pkg/optimizer"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the margin optimizer service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting margin optimizer service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local state file is always the source of truth; Redis mirrors it
	localStore := store.NewFileStore(cfg.Optimizer.StatePath, logger)

	var stateStore optimizer.StateStore = localStore
	var redisStore *store.RedisStore
	if cfg.Redis.Enabled {
		redisStore = store.NewRedisStore(
			store.RedisStoreConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.KeyPrefix,
				RunTTL:   cfg.Redis.RunTTL,
			},
			logger,
		)
		defer redisStore.Close()

		// Test Redis connection
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

		stateStore = store.NewLayeredStore(localStore, redisStore, logger)
	}

	// Create optimizer and restore any persisted hill-climb position
	opt := optimizer.NewOptimizer(cfg.Optimizer.ToOptimizerParams(), stateStore, logger)
	if opt.LoadState(ctx) {
		logger.Info().Float64("current_margin", opt.State().CurrentMargin).Msg("optimizer state restored")
	} else {
		logger.Info().Float64("baseline_margin", cfg.Optimizer.BaselineMargin).Msg("optimizer starting from baseline")
	}

	// Create platform client
	platformClient := platform.NewClient(
		platform.ClientConfig{
			MetricsURL: cfg.Platform.MetricsURL,
			UpdateURL:  cfg.Platform.UpdateURL,
			APIKey:     cfg.Platform.APIKey,
			Timeout:    cfg.Platform.Timeout,
		},
		logger,
	)

	var recorder service.RunRecorder
	if redisStore != nil {
		recorder = redisStore
	}

	// Create the runner service layer
	runner := service.NewRunner(opt, platformClient, recorder, logger)
	logger.Info().Msg("runner initialized")

	// Start Kafka consumer in goroutine when the reporting pipeline feeds us
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			},
			runner,
			logger,
		)
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Poll the platform reporting API on a fixed interval
	go func() {
		ticker := time.NewTicker(cfg.Optimizer.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := runner.RunOnce(ctx); err != nil {
					logger.Error().Err(err).Msg("margin cycle failed")
				}
			}
		}
	}()

	// Initialize HTTP handler
	marginHandler := httpHandler.NewMarginHandler(runner, logger)
	logger.Info().Msg("HTTP handler initialized")

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, redisStore)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	marginHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer and poll loop
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, redisStore *store.RedisStore) {
	// Redis is the only remote dependency; without it the service is
	// always ready
	if redisStore != nil {
		if err := redisStore.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Redis unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
