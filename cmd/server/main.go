package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpapi "payrecon/internal/http"
	"payrecon/internal/platform/config"
	"payrecon/internal/platform/httpserver"
	"payrecon/internal/platform/logger"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	configPath := flag.String("config", os.Getenv("PAYRECON_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	router := httpapi.NewRouter(app.routerDeps(log))
	srv := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadHeaderTimeout)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	if app.consumer != nil {
		g.Go(func() error {
			if err := app.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("decision materializer: %w", err)
			}
			return nil
		})
	}

	log.Info("payrecon started",
		"addr", cfg.Server.Addr,
		"postgres", app.pg != nil,
		"redis", app.redis != nil,
		"kafka", app.producer != nil,
	)
	return g.Wait()
}
