// Package main is the entry point for the API server.
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

	"go.uber.org/zap"

	"github.com/capitalize-ai/mock-thread-api/internal/analytics"
	"github.com/capitalize-ai/mock-thread-api/internal/config"
	"github.com/capitalize-ai/mock-thread-api/internal/handler"
	natsclient "github.com/capitalize-ai/mock-thread-api/internal/nats"
	"github.com/capitalize-ai/mock-thread-api/internal/persistence"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
	"github.com/capitalize-ai/mock-thread-api/internal/service"
	"github.com/capitalize-ai/mock-thread-api/internal/store"
	"github.com/capitalize-ai/mock-thread-api/pkg/logger"
	"github.com/capitalize-ai/mock-thread-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.IsDevelopment() {
		log, err = logger.NewDevelopment(cfg.LogLevel)
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting mock thread API",
		zap.String("env", cfg.Env),
		zap.String("mode", string(cfg.MockResponseMode)),
	)

	ctx := context.Background()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "mock-thread-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when thread events are enabled
	var (
		natsClient *natsclient.Client
		publisher  service.EventPublisher
	)
	if cfg.NATSEnabled {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Fatal("failed to ensure stream", zap.Error(err))
		}
		publisher = streamManager
	}

	// Persistence
	persist, err := persistence.New(ctx, cfg, persistence.Deps{NATS: natsClient, Logger: log})
	if err != nil {
		log.Fatal("failed to initialize persistence", zap.Error(err))
	}
	defer persist.Close()

	st := store.New()
	if err := persistence.Restore(ctx, persist, st, log); err != nil {
		log.Warn("failed to restore persisted data", zap.Error(err))
	}

	// Response generation
	catalog := responder.DefaultCatalog()
	generator := responder.NewGenerator(catalog, cfg.Responder(), responder.NewRand())
	tracker := analytics.NewTracker()

	// Initialize services
	threadOpts := []service.ThreadOption{}
	if publisher != nil {
		threadOpts = append(threadOpts, service.WithPublisher(publisher))
	}
	threadSvc := service.NewThreadService(st, generator, tracker, persist, log, threadOpts...)
	feedbackSvc := service.NewFeedbackService(st, persist, publisher, log)
	userSvc := service.NewUserService(st, log)

	deps := handler.Deps{
		Config:   cfg,
		Logger:   log,
		Threads:  threadSvc,
		Feedback: feedbackSvc,
		Users:    userSvc,
		Catalog:  catalog,
		Tracker:  tracker,
	}
	if natsClient != nil {
		deps.NATS = natsClient
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening",
			zap.String("port", cfg.ServerPort),
			zap.String("persistence", persist.Name()),
			zap.Bool("nats", natsClient != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
