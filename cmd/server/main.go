package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/pursuepayments/invoicechase/app"
	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/infra"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	bootLogger := config.NewLogger(config.LogConfig{Level: "info", Format: "text"})
	cfg, err := config.Load(bootLogger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Log)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a := app.New(cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		if err := a.Scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer a.Scheduler.Stop()
	} else {
		logger.Warn("Scheduler disabled, automated reminders will not run")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server", "env", cfg.Env, "address", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		return a.Fiber.Shutdown()
	}
}
