// Package app wires storage, reports and the REST server together.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/storage"
	"github.com/chrissnell/printview/pkg/config"
)

// Controller is anything started alongside the service, such as the REST
// server.
type Controller interface {
	StartController() error
}

// ControllerFactory builds the controllers once the service exists.
type ControllerFactory func(ctx context.Context, wg *sync.WaitGroup, svc *Service, store storage.Source) ([]Controller, error)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Open loads and validates configuration and opens the configured store.
func Open(ctx context.Context, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*Service, storage.Source, error) {
	cfg, err := configProvider.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, logger.Named("storage"))
	if err != nil {
		return nil, nil, err
	}

	svc, err := NewService(store, cfg, logger.Named("reports"))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}

// Run starts the controllers and blocks until shutdown
func (a *App) Run(ctx context.Context, factory ControllerFactory) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, store, err := Open(ctx, a.configProvider, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	controllers, err := factory(ctx, &wg, svc, store)
	if err != nil {
		return err
	}
	for _, c := range controllers {
		if err := c.StartController(); err != nil {
			return err
		}
	}

	a.logger.Info("application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
