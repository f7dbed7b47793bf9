package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/batchauction/engine/internal/auction"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Int64("chain-id", a.cfg.ChainID),
		zap.Duration("auction-interval", a.cfg.AuctionInterval),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	a.healthChecker.SetReady(true)
	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Int("solvers", len(a.cfg.Solvers)))

	return a.waitForShutdown()
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	a.wg.Add(1)
	go a.runAuctionLoop()
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

// runAuctionLoop drives one dispatcher round per AuctionInterval tick,
// stopping as soon as the app's context is cancelled.
func (a *App) runAuctionLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.AuctionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.runRound()
		}
	}
}

func (a *App) runRound() {
	round := auction.Auction{
		ID:       uuid.New().String(),
		Deadline: a.cfg.SolverDeadline,
	}

	outcome, err := a.dispatcher.RunRound(a.ctx, round)
	if err != nil {
		a.logger.Error("auction-round-failed", zap.String("auction-id", round.ID), zap.Error(err))
		return
	}

	if outcome.Winner == nil {
		a.logger.Debug("auction-round-winnerless",
			zap.String("auction-id", round.ID),
			zap.Int("dropped", len(outcome.Dropped)))
		return
	}

	a.logger.Info("auction-round-settled",
		zap.String("auction-id", round.ID),
		zap.String("winner", outcome.Winner.Solver.Hex()),
		zap.Int("dropped", len(outcome.Dropped)))
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
