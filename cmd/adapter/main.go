package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/adapterinfo"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/binding"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/config"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/engine"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/server"
	"github.com/nupi-ai/plugin-stt-whisper-wav/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Loader{}.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting adapter",
		"adapter", adapterinfo.Info.Slug,
		"version", adapterinfo.Version(),
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"model_path", cfg.ModelPath,
	)

	shutdownMetrics, err := telemetry.InitProvider(ctx, telemetry.ProviderConfig{
		ServiceName:    adapterinfo.Info.BinaryName,
		ServiceVersion: adapterinfo.Version(),
	})
	if err != nil {
		logger.Error("failed to initialise metrics provider", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			logger.Warn("failed to shut down metrics provider", "error", err)
		}
	}()

	recorder := telemetry.NewRecorder(logger)

	backend, engineErr := engine.New(cfg, logger)
	if engineErr != nil {
		logger.Warn("engine initialised with warnings", "error", engineErr)
	}

	boundary := binding.New(backend,
		binding.WithLogger(logger),
		binding.WithRecorder(recorder),
		binding.WithThreads(cfg.Threads),
		binding.WithAudioCtx(cfg.AudioCtx),
	)
	defer boundary.Close()

	if cfg.ModelPath != "" {
		probeModel(logger, boundary, cfg.ModelPath)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = startMetricsServer(logger, cfg.MetricsAddr)
	}

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Error("failed to bind listener", "error", err)
		os.Exit(1)
	}
	defer lis.Close()

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthgrpc.RegisterHealthServer(grpcServer, healthServer)

	serviceName := server.WhisperChannel_ServiceDesc.ServiceName
	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(serviceName, healthgrpc.HealthCheckResponse_NOT_SERVING)

	server.RegisterWhisperChannelServer(grpcServer, server.New(boundary, logger))

	healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthgrpc.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		logger.Info("shutdown requested, stopping gRPC server")
		healthServer.SetServingStatus(serviceName, healthgrpc.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus("", healthgrpc.HealthCheckResponse_NOT_SERVING)

		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
			cancel()
		}

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			logger.Warn("graceful stop timed out, forcing stop")
			grpcServer.Stop()
		}
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		logger.Error("gRPC server terminated with error", "error", err)
		os.Exit(1)
	}

	if snapshot := recorder.Snapshot(); snapshot.TotalTranscriptions > 0 || snapshot.SessionsCreated > 0 {
		logger.Info("telemetry totals",
			"sessions_created", snapshot.SessionsCreated,
			"session_init_failures", snapshot.SessionInitFailures,
			"sessions_freed", snapshot.SessionsFreed,
			"total_transcriptions", snapshot.TotalTranscriptions,
			"failed_transcriptions", snapshot.FailedTranscriptions,
			"total_samples", snapshot.TotalSamples,
			"total_segments", snapshot.TotalSegments,
		)
	}

	logger.Info("adapter stopped")
}

// probeModel loads and releases the configured model once so a broken path
// shows up at startup instead of on the first host call.
func probeModel(logger *slog.Logger, boundary *binding.Boundary, modelPath string) {
	handle := boundary.CreateSession(modelPath)
	if handle == 0 {
		logger.Warn("configured model could not be loaded", "model_path", modelPath)
		return
	}
	boundary.FreeSession(handle)
	logger.Info("configured model verified", "model_path", modelPath)
}

func startMetricsServer(logger *slog.Logger, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func newLogger(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(value string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
