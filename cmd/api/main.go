package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidleathers/cnp-fraud-console/internal/api/rest"
	"github.com/davidleathers/cnp-fraud-console/internal/domain/transaction"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/config"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/model"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/repository"
	"github.com/davidleathers/cnp-fraud-console/internal/infrastructure/telemetry"
	"github.com/davidleathers/cnp-fraud-console/internal/metrics"
	"github.com/davidleathers/cnp-fraud-console/internal/service/features"
	"github.com/davidleathers/cnp-fraud-console/internal/service/fraud"
	"github.com/davidleathers/cnp-fraud-console/internal/service/usage"
)

const serviceName = "cnp-fraud-console"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default "+config.DefaultPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shutdown telemetry", "error", err)
		}
	}()

	// The model is loaded once and shared read-only by every request.
	ensemble, err := model.LoadFile(cfg.Model.ArtifactPath)
	if err != nil {
		return fmt.Errorf("loading model %s: %w", cfg.Model.ArtifactPath, err)
	}
	explainer, err := model.NewTreeExplainer(ensemble, features.Columns())
	if err != nil {
		return fmt.Errorf("preparing explainer: %w", err)
	}
	logger.Info("model loaded",
		"path", cfg.Model.ArtifactPath,
		"version", ensemble.Version(),
		"trees", ensemble.NumTrees(),
		"codebook", transaction.CodebookVersion,
	)

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)
	reg.SetModelInfo(ensemble.Version(), transaction.CodebookVersion, ensemble.NumTrees())

	usageRepo := repository.NewUsageLogRepository(cfg.Usage.LogPath)
	services := rest.Services{
		Fraud: fraud.NewService(ensemble, explainer,
			fraud.WithMetrics(reg),
			fraud.WithLogger(logger),
			fraud.WithModelVersion(ensemble.Version()),
		),
		Usage: usage.NewService(usageRepo, reg, logger),
	}

	handler, err := rest.NewHandler(services, "v1", cfg.Server.MaxUploadBytes,
		cfg.Environment == "development", logger)
	if err != nil {
		return err
	}

	healthCfg := rest.DefaultHealthConfig()
	healthCfg.ServiceName = serviceName
	healthCfg.ServiceVersion = cfg.Version
	healthCfg.Environment = cfg.Environment
	health := rest.NewHealthService(healthCfg)
	health.RegisterChecker(rest.NewModelHealthChecker(ensemble))
	health.RegisterChecker(rest.NewUsageLogHealthChecker(usageRepo))

	routerCfg := rest.DefaultRouterConfig()
	routerCfg.RateLimit = rest.RateLimitConfig{
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
		TrustProxy:        cfg.Security.RateLimit.TrustProxy,
		MaxClients:        cfg.Security.RateLimit.MaxClients,
		IdleTTL:           cfg.Security.RateLimit.IdleTTL,
	}
	routerCfg.Metrics = reg
	routerCfg.Gatherer = prometheus.DefaultGatherer
	routerCfg.Logger = logger

	router, err := rest.NewRouter(routerCfg, handler, health)
	if err != nil {
		return err
	}

	return rest.NewServer(cfg, router, logger).Start(ctx)
}
