package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/router"
	"golang.org/x/sync/errgroup"
)

type healthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

// health pings postgres and redis. Either failing reports 503 so a load
// balancer stops routing logins to this instance.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Database: "ok", Cache: "ok"}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.dbConn.Ping(gctx); err != nil {
			resp.Database = "down"
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := a.cacheConn.Ping(gctx).Err(); err != nil {
			resp.Cache = "down"
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "health check failed", "database", resp.Database, "cache", resp.Cache, "error", err)
		return nil, goerror.NewBusinessErr(err, "service unavailable", goerror.CodeServiceUnavailable)
	}

	return resp, nil
}

// Start launches the HTTP server and returns a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigint)

		sig := <-sigint

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("shutdown signal received", "signal", sig.String())
	}()

	return terminateChan
}

// Stop drains HTTP traffic, waits for background archive uploads, then
// closes resources in the order registered by initClosers.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for background tasks", "running", a.goroutine.Running())
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "background tasks finished with errors", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application stopped")
}
