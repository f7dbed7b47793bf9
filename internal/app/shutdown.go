package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application: it stops new auction
// rounds, waits for the current one up to a bounded deadline, then
// closes every collaborator.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.shutdownHTTPServer(shutdownCtx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	a.wg.Wait()

	if err := a.shutdownStore(); err != nil {
		a.logger.Error("persistence-store-close-error", zap.Error(err))
	}

	a.shutdownTransport()

	a.logger.Info("application-shutdown-complete")

	return nil
}

func (a *App) shutdownHTTPServer(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

func (a *App) shutdownStore() error {
	return a.store.Close()
}

func (a *App) shutdownTransport() {
	a.transport.Close()
}
