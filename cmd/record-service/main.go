// main is the entry point of the Record Service.
//
// STARTUP SEQUENCE:
//  1. Parse flags and load configuration (defaults, YAML, environment)
//  2. Initialise the logger
//  3. Create the record store and load the seed records
//  4. Build the metrics registry and both HTTP servers
//  5. Serve until an OS signal (Ctrl+C / kill) arrives
//  6. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/record-service
//	go run ./cmd/record-service --config=config/local.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/aanand-mishra/record-service/internal/config"
	"github.com/aanand-mishra/record-service/internal/metrics"
	"github.com/aanand-mishra/record-service/internal/server"
	"github.com/aanand-mishra/record-service/internal/storage"
	"github.com/aanand-mishra/record-service/internal/storage/memory"
	"github.com/aanand-mishra/record-service/internal/storage/sqlite"
)

type cli struct {
	Config string `help:"Path to the configuration YAML file." type:"path" env:"CONFIG_PATH" optional:""`
}

func main() {
	var args cli
	kong.Parse(&args,
		kong.Name("record-service"),
		kong.Description("HTTP CRUD service over a list of records, with Prometheus metrics."),
	)

	cfg := config.MustLoad(args.Config)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting record-service",
		slog.String("env", cfg.Env),
		slog.String("version", cfg.Version),
	)

	store, closeStore, err := newStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	if err := storage.Seed(store, storage.SeedRecords()); err != nil {
		log.Error("failed to seed storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	n, err := store.Len()
	if err != nil {
		log.Error("failed to count records", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("storage initialised",
		slog.String("backend", cfg.Storage.Backend),
		slog.Int("records", n))

	srv, err := server.New(cfg, store, metrics.New(cfg.Version), log)
	if err != nil {
		log.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error("server encountered an error", slog.String("error", err.Error()))
		closeStore()
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// newStorage opens the configured backend. The returned func releases it.
func newStorage(cfg *config.Config) (storage.Storage, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
