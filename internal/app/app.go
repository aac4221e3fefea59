package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"raisetl/internal/config"
	"raisetl/internal/errors"
	"raisetl/internal/infrastructure"
	"raisetl/internal/operations"
	"raisetl/internal/validation"
)

const AppName = "raisetl"

// Version is set at build time with -ldflags "-X raisetl/internal/app.Version=...".
var Version = "dev"

// shutdownTimeout bounds the final telemetry flush.
const shutdownTimeout = 10 * time.Second

// Application is everything one pipeline run needs, wired from a Config.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Manager   *operations.Manager
}

// NewApplication validates cfg and builds the logger, telemetry and stage manager.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize logger", err)
	}

	telemetry, err := infrastructure.InitializeTelemetry(ctx, cfg.Metrics, cfg.Tracing, logger)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize telemetry", err)
	}

	registry, err := operations.NewPipelineRegistry(cfg.Pipeline, logger)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		Manager:   operations.NewManager(registry, telemetry, logger),
	}, nil
}

// Run executes the configured stages. SIGINT and SIGTERM cancel the run.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	a.Logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.String("data_dir", a.Config.Pipeline.DataDir),
		slog.Any("stages", a.Config.Pipeline.Stages))

	if err := a.Config.Paths().EnsureDirectories(); err != nil {
		return errors.NewStorageError("failed to prepare data directory", err)
	}

	resp, err := a.Manager.Execute(ctx, operations.OperationRequest{Stages: a.Config.Pipeline.Stages})
	if resp != nil {
		for _, id := range operations.StageOrder {
			step, ok := resp.Steps[id]
			if !ok {
				continue
			}
			a.Logger.DebugContext(ctx, "Stage summary",
				slog.String("stage", id),
				slog.String("status", string(step.Status)))
		}
	}
	return err
}

// Stop flushes telemetry and closes the log file.
func (a *Application) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var err error
	if a.Telemetry != nil {
		err = a.Telemetry.Shutdown(ctx)
	}
	if cerr := infrastructure.CloseLogFile(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Main runs cfg to completion and returns the process exit status.
func Main(cfg *config.Config) int {
	ctx := context.Background()

	application, err := NewApplication(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		return errors.ExitCode(err)
	}

	runErr := application.Run(ctx)
	if err := application.Stop(ctx); err != nil {
		application.Logger.Warn("Shutdown incomplete", slog.String("error", err.Error()))
	}
	if runErr != nil {
		code := errors.ExitCode(runErr)
		application.Logger.Error("Run failed",
			slog.String("error", runErr.Error()),
			slog.Int("exit_code", code))
		return code
	}
	return errors.ExitOK
}
