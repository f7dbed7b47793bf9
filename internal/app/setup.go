package app

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/batchauction/engine/internal/auction"
	"github.com/batchauction/engine/internal/domain/settlement"
	"github.com/batchauction/engine/internal/ethrpc"
	"github.com/batchauction/engine/internal/guard"
	"github.com/batchauction/engine/internal/persistence"
	"github.com/batchauction/engine/pkg/config"
	"github.com/batchauction/engine/pkg/fixedpoint"
	"github.com/batchauction/engine/pkg/healthprobe"
	"github.com/batchauction/engine/pkg/httpserver"
)

// New creates a new application instance, dialing the RPC node,
// connecting to the competitions store and replaying its recent
// history into the guard before the first round ever runs.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker()

	transport, err := setupTransport(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup rpc transport: %w", err)
	}

	store, err := setupStore(cfg, logger)
	if err != nil {
		cancel()
		transport.Close()
		return nil, fmt.Errorf("setup persistence store: %w", err)
	}

	competitionsGuard, err := setupGuard(ctx, cfg, store)
	if err != nil {
		cancel()
		transport.Close()
		return nil, fmt.Errorf("setup guard: %w", err)
	}

	dispatcher, err := setupDispatcher(cfg, logger, transport, competitionsGuard)
	if err != nil {
		cancel()
		transport.Close()
		return nil, fmt.Errorf("setup dispatcher: %w", err)
	}

	httpServer := setupHTTPServer(cfg, logger, healthChecker, competitionsGuard)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		transport:     transport,
		store:         store,
		guard:         competitionsGuard,
		dispatcher:    dispatcher,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupTransport(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ethrpc.Transport, error) {
	client, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return ethrpc.NewTransport(ethrpc.Configuration{
		MaxConcurrentRequests: cfg.RPC.MaxConcurrent,
		MaxBatchLen:           cfg.RPC.MaxBatchLen,
		BatchDelay:            cfg.RPC.BatchDelay,
	}, client, logger), nil
}

func setupStore(cfg *config.Config, logger *zap.Logger) (*persistence.Store, error) {
	return persistence.New(persistence.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
}

func setupGuard(ctx context.Context, cfg *config.Config, store *persistence.Store) (*guard.Guard, error) {
	g := guard.New(guard.Config{
		TrackerConfig: guard.TrackerConfig{
			WindowSize:           cfg.Guard.WindowSizeLow,
			HighFailureThreshold: cfg.Guard.HighFailureThreshold,
			MinWinsForEvaluation: uint64(cfg.Guard.MinWinsForEvaluation),
			NonSettlingThreshold: cfg.Guard.NonSettlingThreshold,
		},
		BanLength:          cfg.Guard.BanLength,
		MinActiveSolvers:   cfg.Guard.MinActiveSolversThreshold,
		LowSettlingEnabled: cfg.Guard.LowSettlingEnabled,
		NonSettlingEnabled: cfg.Guard.NonSettlingEnabled,
	})

	replayWindow := cfg.Guard.WindowSizeLow
	if cfg.Guard.WindowSizeNonSettling > replayWindow {
		replayWindow = cfg.Guard.WindowSizeNonSettling
	}
	entries, err := store.FetchLastCompetitionsMetadata(ctx, replayWindow)
	if err != nil {
		return nil, fmt.Errorf("fetch competition history: %w", err)
	}
	g.Replay(entries)

	return g, nil
}

func setupDispatcher(cfg *config.Config, logger *zap.Logger, transport *ethrpc.Transport, g *guard.Guard) (*auction.Dispatcher, error) {
	scoreCap, err := fixedpoint.NewFromString(cfg.Scoring.ScoreCap)
	if err != nil {
		return nil, fmt.Errorf("parse scoring.score_cap: %w", err)
	}

	maxGasPrice, err := fixedpoint.NewFromString(cfg.MaxGasPrice)
	if err != nil {
		return nil, fmt.Errorf("parse gas.max_gas_price: %w", err)
	}

	trustedTokens := mapsetFromSlice(cfg.TrustedTokens)

	encoder := settlement.NewEncoder(settlement.EncoderConfig{
		TrustedTokens: trustedTokens,
		TxEncoder:     noopTxEncoder{},
		Merger:        noopMerger{},
		Simulator:     noopSimulator{},
		GasPricer:     &gasPricer{transport: transport},
		Balances:      &balanceChecker{transport: transport},
		Contracts:     &contractChecker{transport: transport},
		BlockGasLimit: cfg.BlockGasLimit,
		MaxGasPrice:   maxGasPrice,
		Logger:        logger,
	})

	scorer := settlement.NewScorer(settlement.ScorerConfig{
		ScoreCap:                scoreCap,
		RevertProtectionEnabled: cfg.Scoring.RevertProtectionEnabled,
		ScoringFunc:             riskAdjustedScore,
	})

	return auction.New(auction.Config{
		Solvers:         cfg.Solvers,
		Driver:          &noopSolverDriver{logger: logger},
		Submitter:       &loggingTxSubmitter{logger: logger},
		Quality:         ceilingQuality{ceiling: scoreCap},
		Encoder:         encoder,
		Scorer:          scorer,
		Guard:           g,
		RedispatchLimit: rate.Every(cfg.SolverDeadline),
		Logger:          logger,
	}), nil
}

func setupHTTPServer(cfg *config.Config, logger *zap.Logger, healthChecker *healthprobe.HealthChecker, g *guard.Guard) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Guard:         g,
		Solvers:       cfg.Solvers,
	})
}
