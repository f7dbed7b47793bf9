package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/batchauction/engine/internal/auction"
	"github.com/batchauction/engine/internal/ethrpc"
	"github.com/batchauction/engine/internal/guard"
	"github.com/batchauction/engine/internal/persistence"
	"github.com/batchauction/engine/pkg/config"
	"github.com/batchauction/engine/pkg/healthprobe"
	"github.com/batchauction/engine/pkg/httpserver"
)

// App is the main application orchestrator: it wires the batching RPC
// transport, the competition-replaying guard, the settlement pipeline
// and the auction dispatcher into a periodic round loop.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	transport     *ethrpc.Transport
	store         *persistence.Store
	guard         *guard.Guard
	dispatcher    *auction.Dispatcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}
