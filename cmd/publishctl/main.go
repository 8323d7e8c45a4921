// Command publishctl administers tenants and modules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/publishkit/internal/app"
	"github.com/dmitrymomot/publishkit/internal/cli"
	"github.com/dmitrymomot/publishkit/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func open(ctx context.Context) (*cli.Deps, func(), error) {
	cfg, err := app.LoadConfig(config.WithEnvFiles(".env"), config.WithOptionalEnvFiles())
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Open(ctx, cfg, app.NewLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return &cli.Deps{
		Tenants:     a.Tenants,
		Memberships: a.Memberships,
		Modules:     a.Modules,
		Gate:        a.Gate,
		Migrate:     a.Migrate,
	}, a.Close, nil
}
