// Path: cmd/pokedex/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"pokedex/internal/catalog"
	"pokedex/internal/config"
	"pokedex/internal/events"
	"pokedex/internal/favorites"
	"pokedex/internal/logging"
	"pokedex/internal/prefs"
	"pokedex/internal/service"
	"pokedex/internal/storage"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	broker   *events.Broker
	store    *favorites.Store
	theme    *prefs.Theme
	service  *service.Service

	closeKV func(context.Context) error
}

// newApp loads configuration and wires the application. The caller must
// call close when done.
func newApp(ctx context.Context, configPath string) (*app, error) {
	// 1. Load Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	// 2. Open the key-value slot backend
	logger.Debug("Opening storage", zap.String("driver", cfg.Storage.Driver))
	kv, closeKV, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	// 3. Initialize Components
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	broker := events.NewBroker()
	client := catalog.NewClient(cfg.Catalog, catalog.NewMetrics(registry), logger)
	store := favorites.NewStore(kv, broker, logger, favorites.WithGauge(favorites.NewGauge(registry)))
	theme := prefs.NewTheme(kv, broker, logger)

	// Persisted state is read once at startup; a failing read leaves the defaults.
	if err := store.Load(ctx); err != nil {
		logger.Warn("Could not load favorites, starting empty", zap.Error(err))
	}
	if err := theme.Load(ctx); err != nil {
		logger.Warn("Could not load theme preference", zap.Error(err))
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		registry: registry,
		broker:   broker,
		store:    store,
		theme:    theme,
		service:  service.NewService(cfg.Catalog, client, store, broker, logger),
		closeKV:  closeKV,
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.closeKV(ctx); err != nil {
		a.log.Warn("Error closing storage", zap.Error(err))
	}
	_ = a.log.Sync()
}
