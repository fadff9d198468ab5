package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/decoykit/scamtrap/internal/agent"
	"github.com/decoykit/scamtrap/internal/config"
	"github.com/decoykit/scamtrap/internal/detect"
	"github.com/decoykit/scamtrap/internal/extract"
	"github.com/decoykit/scamtrap/internal/report"
	"github.com/decoykit/scamtrap/internal/server"
	"github.com/decoykit/scamtrap/internal/session"
	"github.com/decoykit/scamtrap/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("scamtrap", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load(os.Getenv("HONEYPOT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	extractor := extract.New(cfg.Detection.ExtractKeywords)
	detector := detect.New(detect.Config{
		Keywords:        cfg.Detection.Keywords,
		AllowedDomains:  cfg.Detection.AllowedDomains,
		Weights:         cfg.Detection.Weights,
		Threshold:       cfg.Detection.Threshold,
		EscalationBonus: cfg.Detection.EscalationBonus,
	})

	var dispatcher report.Dispatcher
	if cfg.Callback.URL != "" {
		dispatcher = report.NewHTTP(cfg.Callback.URL, logger, report.Options{
			AuthToken:   cfg.Callback.AuthToken,
			MaxAttempts: cfg.Callback.MaxAttempts,
			Backoff:     cfg.Callback.Backoff,
			Timeout:     cfg.Callback.Timeout,
		})
	} else {
		dispatcher = &report.LogDispatcher{Logger: logger}
	}

	store := session.New(session.Config{
		MaxTurns:        cfg.Session.MaxTurns,
		AdvancedCutoff:  cfg.Session.AdvancedCutoff,
		IdleTimeout:     cfg.Session.IdleTimeout,
		SweepInterval:   cfg.Session.SweepInterval,
		DispatchTimeout: 30 * time.Second,
	}, extractor, detector, dispatcher, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go store.RunSweeper(ctx)

	srv := server.New(cfg.Server.Port, cfg.Auth.APIKey, server.NewHandler(store, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("honeypot started",
		slog.Int("port", cfg.Server.Port),
		slog.Int("personas", len(agent.Personas)),
		slog.Bool("auth_enabled", cfg.Auth.APIKey != ""),
		slog.Bool("callback_enabled", cfg.Callback.URL != ""),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigChan:
		logger.Info("Shutdown signal received, stopping honeypot...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Honeypot shutdown complete")
}
