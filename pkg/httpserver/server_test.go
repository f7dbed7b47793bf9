package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/batchauction/engine/pkg/healthprobe"
)

type fakeGuard struct {
	allowed map[common.Address]bool
}

func (f fakeGuard) IsAllowed(solver common.Address) (bool, func(bool)) {
	return f.allowed[solver], func(bool) {}
}

func (f fakeGuard) StatsFor(common.Address) (uint64, uint64) { return 3, 1 }

func TestNew_MinimalConfig(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New()

	srv := New(&Config{Port: "0", Logger: logger, HealthChecker: healthChecker})
	if srv == nil {
		t.Fatal("expected non-nil server")
	}
}

func TestServer_HealthAndReadyEndpoints(t *testing.T) {
	logger := zap.NewNop()
	healthChecker := healthprobe.New()
	solver := common.HexToAddress("0x1")

	srv := New(&Config{
		Port:          "0",
		Logger:        logger,
		HealthChecker: healthChecker,
		Guard:         fakeGuard{allowed: map[common.Address]bool{solver: true}},
		Solvers:       []common.Address{solver},
	})

	ts := httptest.NewServer(srv.server.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/ready status before SetReady = %d, want 503", resp.StatusCode)
	}

	healthChecker.SetReady(true)
	resp, err = http.Get(ts.URL + "/ready")
	if err != nil {
		t.Fatalf("GET /ready: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/ready status after SetReady = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/solvers")
	if err != nil {
		t.Fatalf("GET /api/solvers: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/api/solvers status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	logger := zap.NewNop()
	srv := New(&Config{Port: "0", Logger: logger, HealthChecker: healthprobe.New()})

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	<-done
}
