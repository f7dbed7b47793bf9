package config

import (
	"os"
	"testing"
	"time"
)

func withEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range kv {
			os.Unsetenv(k)
		}
	})
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Guard.HighFailureThreshold != 0.3 {
		t.Errorf("default high failure threshold = %v, want 0.3", cfg.Guard.HighFailureThreshold)
	}
	if cfg.MaxHops != 2 {
		t.Errorf("default max hops = %d, want 2", cfg.MaxHops)
	}
	if cfg.SolverDeadline != 15*time.Second {
		t.Errorf("default solver deadline = %s, want 15s", cfg.SolverDeadline)
	}
}

func TestLoadFromEnv_OverridesFromEnvironment(t *testing.T) {
	withEnv(t, map[string]string{
		"GUARD_HIGH_FAILURE_THRESHOLD": "0.5",
		"MAX_HOPS":                     "3",
		"TRUSTED_TOKENS":               "0x000000000000000000000000000000000000000a,0x000000000000000000000000000000000000000b",
	})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Guard.HighFailureThreshold != 0.5 {
		t.Errorf("high failure threshold = %v, want 0.5", cfg.Guard.HighFailureThreshold)
	}
	if cfg.MaxHops != 3 {
		t.Errorf("max hops = %d, want 3", cfg.MaxHops)
	}
	if len(cfg.TrustedTokens) != 2 {
		t.Fatalf("trusted tokens = %v, want 2 entries", cfg.TrustedTokens)
	}
}

func TestLoadFromEnv_InvalidNumberFallsBackToDefault(t *testing.T) {
	withEnv(t, map[string]string{"MAX_HOPS": "not-a-number"})

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.MaxHops != 2 {
		t.Errorf("max hops with invalid env = %d, want default 2", cfg.MaxHops)
	}
}

func TestValidate_RejectsOutOfRangeHighFailureThreshold(t *testing.T) {
	cfg := &Config{
		HTTPPort:        "8080",
		RPCURL:          "http://localhost:8545",
		Guard:           GuardConfig{HighFailureThreshold: 1.5, WindowSizeLow: 1, WindowSizeNonSettling: 1},
		SolverDeadline:  time.Second,
		AuctionInterval: time.Second,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for threshold >= 1.0")
	}
}

func TestValidate_RejectsEmptyRPCURL(t *testing.T) {
	cfg := &Config{
		HTTPPort:        "8080",
		RPCURL:          "",
		Guard:           GuardConfig{HighFailureThreshold: 0.3, WindowSizeLow: 1, WindowSizeNonSettling: 1},
		SolverDeadline:  time.Second,
		AuctionInterval: time.Second,
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty RPC URL")
	}
}
