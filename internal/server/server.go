// Package server runs the long-lived EliteTable process: the HTTP API, the
// gRPC health side-car and the websocket hub, with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elitetable/elitetable/config"
	"github.com/elitetable/elitetable/internal/kernel"
	"github.com/elitetable/elitetable/pkg/cache"
	"github.com/elitetable/elitetable/pkg/database"
	grpcserver "github.com/elitetable/elitetable/pkg/grpc"
	"github.com/elitetable/elitetable/pkg/logger"
	"github.com/elitetable/elitetable/pkg/storage"
	"github.com/elitetable/elitetable/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// Start boots every component and blocks until ctx is cancelled (SIGINT or
// SIGTERM from the caller) or the HTTP listener fails.
func Start(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return err
	}
	logger.Setup()
	defer logger.Close()

	if err := database.Connect(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	defer database.Close(database.DB)

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("cache: falling back to memory", "error", err)
	}
	logger.Info("cache ready", "driver", cache.Driver())

	disk, err := storage.FromConfig(ctx)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := ws.NewHub(config.CORSOrigins())
	go hub.Run(hubCtx)

	k, err := kernel.New(kernel.FromConfig(database.DB, disk, hub))
	if err != nil {
		return err
	}
	defer k.Close()

	grpcSrv := grpcserver.NewServer(func(ctx context.Context) error {
		return database.Ping(ctx, database.DB)
	})
	if _, err := grpcserver.Start(grpcSrv, config.GRPCPort()); err != nil {
		return err
	}
	defer grpcserver.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("EliteTable HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
