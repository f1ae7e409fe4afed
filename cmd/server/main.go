package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dattuog/audio-analysis-service/internal/analysis"
	"github.com/Dattuog/audio-analysis-service/internal/config"
	"github.com/Dattuog/audio-analysis-service/internal/metrics"
	"github.com/Dattuog/audio-analysis-service/internal/server"
	"github.com/Dattuog/audio-analysis-service/internal/session"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "audio-analysis-service"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("bind_address", cfg.HTTP.Address),
		slog.Int("http_port", cfg.HTTP.Port),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Int("buffer_window_ms", cfg.Audio.BufferWindowMS),
		slog.Float64("silence_threshold", cfg.Analysis.SilenceThreshold),
		slog.Int("idle_timeout_s", cfg.Session.IdleTimeout),
		slog.Bool("recording_enabled", cfg.Recording.Enabled),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Build the analysis pipeline from configuration
	pipeline, err := analysis.NewPipeline(analysis.Config{
		SampleRate:         cfg.Audio.SampleRate,
		SilenceThreshold:   cfg.Analysis.SilenceThreshold,
		MinPitchWindow:     cfg.Analysis.MinPitchWindow,
		PitchMinHz:         cfg.Analysis.PitchMinHz,
		PitchMaxHz:         cfg.Analysis.PitchMaxHz,
		VoicingThreshold:   cfg.Analysis.VoicingThreshold,
		PeakTolerance:      cfg.Analysis.PeakTolerance,
		HistoryLength:      cfg.Analysis.HistoryLength,
		MinRateFrames:      cfg.Analysis.MinRateFrames,
		PitchVarianceScale: cfg.Analysis.PitchVarianceScale,
		Emotion: analysis.EmotionThresholds{
			ExcitedVolume:   cfg.Analysis.ExcitedVolume,
			CalmVolume:      cfg.Analysis.CalmVolume,
			ExcitedPitchDev: cfg.Analysis.ExcitedPitchDev,
			CalmPitchDev:    cfg.Analysis.CalmPitchDev,
		},
	})
	if err != nil {
		logger.Error("Failed to create analysis pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize session registry
	registryCfg := session.RegistryConfig{
		IdleTimeout:   cfg.Session.GetIdleTimeoutDuration(),
		SweepInterval: cfg.Session.GetSweepIntervalDuration(),
		BufferSamples: cfg.Audio.BufferWindowSamples(),
		SampleRate:    cfg.Audio.SampleRate,
	}
	if cfg.Recording.Enabled {
		registryCfg.RecordingDir = cfg.Recording.Directory
	}
	registry := session.NewRegistry(logger, pipeline, appMetrics, registryCfg)
	logger.Info("Session registry initialized",
		slog.Duration("idle_timeout", registryCfg.IdleTimeout),
		slog.Int("buffer_samples", registryCfg.BufferSamples),
	)

	// Initialize and start the HTTP/WebSocket server
	httpServer := server.NewHTTPServer(cfg, logger, registry, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	// Stop HTTP server first (stop accepting new requests)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.GetShutdownTimeoutDuration())
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Drain remaining sessions and stop background routines
	registry.Close()

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
