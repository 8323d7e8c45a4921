// Command publishd serves the multi-tenant publishing API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/publishkit/internal/app"
	"github.com/dmitrymomot/publishkit/pkg/config"
	"github.com/dmitrymomot/publishkit/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := app.LoadConfig(config.WithEnvFiles(".env"), config.WithOptionalEnvFiles())
	if err != nil {
		logger.New().Error("failed to load configuration", logger.Error(err))
		return err
	}
	log := app.NewLogger(cfg)

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to start", logger.Error(err))
		return err
	}
	defer a.Close()

	if cfg.MigrateOnStart {
		if err := a.Migrate(ctx); err != nil {
			log.ErrorContext(ctx, "migration failed", logger.Error(err))
			return err
		}
	}

	if err := a.Serve(ctx); err != nil {
		log.ErrorContext(ctx, "server stopped with error", logger.Error(err))
		return err
	}
	return nil
}
