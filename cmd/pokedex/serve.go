// Path: cmd/pokedex/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pokedex/internal/delivery/rest"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup Context for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start the refresh loop in the background
	refreshDone := make(chan struct{})
	go func() {
		defer close(refreshDone)
		a.service.Start(ctx)
	}()

	// Initialize and Start The API Server
	apiServer := rest.NewServer(rest.Options{
		Port:     a.cfg.Server.Port,
		PageSize: a.cfg.Search.PageSize,
		Debounce: time.Duration(a.cfg.Search.DebounceMS) * time.Millisecond,
	}, a.service, a.theme, a.broker, a.registry, a.log)

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or a server failure
	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutdown signal received. Shutting down gracefully...")
	case err, ok := <-serverErr:
		if ok {
			a.log.Error("API server failed", zap.Error(err))
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop the API server
	if err := apiServer.Stop(shutdownCtx); err != nil {
		a.log.Warn("Error during API server shutdown", zap.Error(err))
	}

	// The refresh loop stops via Stop and the cancelled context.
	a.service.Stop()
	cancel()
	<-refreshDone

	a.log.Info("Server shut down successfully.")
	return runErr
}
