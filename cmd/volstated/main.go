// Command volstated serves the volume state transition API.
//
// Configuration comes from the environment (and a .env file if present):
//
//	APP_ENV                      development | staging | production
//	LOG_LEVEL                    overrides the environment default level
//	STATE_BACKEND                memory | bolt | postgres | redis | mongo | s3
//	TRANSITIONS_OVERRIDES_FILE   YAML file with per-domain edge overrides
//	STRICT_RECOVERY              drop the error -> available recovery edges
//	QUOTA_CAPACITY_GB            capacity for POST /volumes, 0 for unlimited
//	HTTP_ADDR                    listen address, ":8080" by default
//
// Each backend reads its own BOLT_*, PG_*, REDIS_*, MONGODB_* or S3_* variables.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/volumekit/pkg/api"
	"github.com/dmitrymomot/volumekit/pkg/config"
	"github.com/dmitrymomot/volumekit/pkg/createflow"
	"github.com/dmitrymomot/volumekit/pkg/lifecycle"
	"github.com/dmitrymomot/volumekit/pkg/logger"
	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	Service        string `env:"SERVICE_NAME" envDefault:"volstated"`
	LogLevel       string `env:"LOG_LEVEL"`
	Backend        string `env:"STATE_BACKEND" envDefault:"memory"`
	OverridesFile  string `env:"TRANSITIONS_OVERRIDES_FILE"`
	StrictRecovery bool   `env:"STRICT_RECOVERY" envDefault:"false"`
	QuotaGB        int    `env:"QUOTA_CAPACITY_GB" envDefault:"0"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad[appConfig]()
	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "volstated stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	registry, err := buildRegistry(cfg, log)
	if err != nil {
		return err
	}

	backend, err := openBackend(ctx, cfg.Backend, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			log.ErrorContext(ctx, "failed to close state backend", logger.Error(err))
		}
	}()
	log.InfoContext(ctx, "state backend ready", slog.String("backend", cfg.Backend))

	states := lifecycle.NewManager(backend.store,
		lifecycle.WithRegistry(registry),
		lifecycle.WithLogger(log),
	)
	flow := createflow.New(states,
		createflow.NewCapacityQuotas(cfg.QuotaGB),
		createflow.NewLogScheduler(log),
		createflow.WithLogger(log),
	)
	handler := api.NewHandler(states,
		api.WithLogger(log),
		api.WithChecks(backend.checks...),
		api.WithCreateFlow(flow),
	)

	srvCfg, err := config.Load[api.ServerConfig]()
	if err != nil {
		return err
	}
	return api.NewServer(srvCfg, log).Run(ctx, handler.Routes())
}

func buildRegistry(cfg appConfig, log *slog.Logger) (*volstate.Registry, error) {
	opts := []volstate.Option{volstate.WithLogger(log)}
	if cfg.StrictRecovery {
		opts = append(opts, volstate.WithoutRecoveryTransitions())
	}
	if cfg.OverridesFile != "" {
		o, err := volstate.LoadOverridesFile(cfg.OverridesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, volstate.WithOverrides(o))
	}
	return volstate.NewRegistry(opts...)
}
