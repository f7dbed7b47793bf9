package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// GuardConfig holds the solver-flagging and banning tunables.
type GuardConfig struct {
	WindowSizeLow             int
	WindowSizeNonSettling     int
	HighFailureThreshold      float64
	MinWinsForEvaluation      int
	NonSettlingThreshold      int
	BanLength                 int
	MinActiveSolversThreshold int
	LowSettlingEnabled        bool
	NonSettlingEnabled        bool
}

// RPCBatchConfig holds the batched-transport tunables.
type RPCBatchConfig struct {
	MaxConcurrent int
	MaxBatchLen   int
	BatchDelay    time.Duration
}

// ScoringConfig holds the scorer's fixed parameters.
type ScoringConfig struct {
	ScoreCap                string // decimal string, parsed into fixedpoint.Amount at wiring time
	RevertProtectionEnabled bool
}

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Ethereum RPC
	RPCURL  string
	ChainID int64

	// Database (solver-competition persistence)
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Baseline liquidity
	TrustedTokens []common.Address
	BaseTokens    []common.Address
	MaxHops       int

	// Solvers is the fixed roster dispatched to each round.
	Solvers []common.Address

	Guard   GuardConfig
	RPC     RPCBatchConfig
	Scoring ScoringConfig

	BlockGasLimit   uint64
	MaxGasPrice     string
	SolverDeadline  time.Duration
	AuctionInterval time.Duration
}

// LoadFromEnv loads configuration from environment variables with
// defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		RPCURL:  getEnvOrDefault("RPC_URL", "http://localhost:8545"),
		ChainID: getInt64OrDefault("CHAIN_ID", 1),

		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "engine"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "engine"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "engine"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		TrustedTokens: getAddressListOrDefault("TRUSTED_TOKENS", nil),
		BaseTokens:    getAddressListOrDefault("BASE_TOKENS", nil),
		MaxHops:       getIntOrDefault("MAX_HOPS", 2),

		Solvers: getAddressListOrDefault("SOLVERS", nil),

		Guard: GuardConfig{
			WindowSizeLow:             getIntOrDefault("GUARD_WINDOW_SIZE_LOW", 100),
			WindowSizeNonSettling:     getIntOrDefault("GUARD_WINDOW_SIZE_NON_SETTLING", 20),
			HighFailureThreshold:      getFloat64OrDefault("GUARD_HIGH_FAILURE_THRESHOLD", 0.3),
			MinWinsForEvaluation:      getIntOrDefault("GUARD_MIN_WINS_FOR_EVALUATION", 3),
			NonSettlingThreshold:      getIntOrDefault("GUARD_NON_SETTLING_THRESHOLD", 2),
			BanLength:                 getIntOrDefault("GUARD_BAN_LENGTH", 10),
			MinActiveSolversThreshold: getIntOrDefault("GUARD_MIN_ACTIVE_SOLVERS_THRESHOLD", 1),
			LowSettlingEnabled:        getBoolOrDefault("GUARD_LOW_SETTLING_ENABLED", true),
			NonSettlingEnabled:        getBoolOrDefault("GUARD_NON_SETTLING_ENABLED", true),
		},

		RPC: RPCBatchConfig{
			MaxConcurrent: getIntOrDefault("RPC_MAX_CONCURRENT", 10),
			MaxBatchLen:   getIntOrDefault("RPC_MAX_BATCH_LEN", 20),
			BatchDelay:    getDurationOrDefault("RPC_BATCH_DELAY", 10*time.Millisecond),
		},

		Scoring: ScoringConfig{
			ScoreCap:                getEnvOrDefault("SCORING_SCORE_CAP", "1000000000000000000000"),
			RevertProtectionEnabled: getBoolOrDefault("SCORING_REVERT_PROTECTION_ENABLED", true),
		},

		BlockGasLimit:   uint64(getInt64OrDefault("GAS_BLOCK_GAS_LIMIT", 30_000_000)),
		MaxGasPrice:     getEnvOrDefault("GAS_MAX_GAS_PRICE", "200000000000"),
		SolverDeadline:  getDurationOrDefault("SOLVER_DEADLINE", 15*time.Second),
		AuctionInterval: getDurationOrDefault("AUCTION_INTERVAL", 1*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}
	if c.RPCURL == "" {
		return errors.New("RPC_URL cannot be empty")
	}

	if c.Guard.HighFailureThreshold <= 0 || c.Guard.HighFailureThreshold >= 1.0 {
		return fmt.Errorf("GUARD_HIGH_FAILURE_THRESHOLD must be between 0 and 1.0, got %f", c.Guard.HighFailureThreshold)
	}
	if c.Guard.WindowSizeLow < 1 {
		return fmt.Errorf("GUARD_WINDOW_SIZE_LOW must be at least 1, got %d", c.Guard.WindowSizeLow)
	}
	if c.Guard.WindowSizeNonSettling < 1 {
		return fmt.Errorf("GUARD_WINDOW_SIZE_NON_SETTLING must be at least 1, got %d", c.Guard.WindowSizeNonSettling)
	}
	if c.Guard.MinActiveSolversThreshold < 0 {
		return fmt.Errorf("GUARD_MIN_ACTIVE_SOLVERS_THRESHOLD must be non-negative, got %d", c.Guard.MinActiveSolversThreshold)
	}

	if c.MaxHops < 0 {
		return fmt.Errorf("MAX_HOPS must be non-negative, got %d", c.MaxHops)
	}

	if c.RPC.MaxBatchLen < 0 {
		return fmt.Errorf("RPC_MAX_BATCH_LEN must be non-negative (0 = unbounded), got %d", c.RPC.MaxBatchLen)
	}
	if c.RPC.BatchDelay < 0 {
		return fmt.Errorf("RPC_BATCH_DELAY must be non-negative, got %s", c.RPC.BatchDelay)
	}

	if c.SolverDeadline <= 0 {
		return fmt.Errorf("SOLVER_DEADLINE must be positive, got %s", c.SolverDeadline)
	}
	if c.AuctionInterval <= 0 {
		return fmt.Errorf("AUCTION_INTERVAL must be positive, got %s", c.AuctionInterval)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getAddressListOrDefault parses a comma-separated list of hex
// addresses, e.g. "0xabc...,0xdef...".
func getAddressListOrDefault(key string, defaultValue []common.Address) []common.Address {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	addrs := make([]common.Address, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || !common.IsHexAddress(p) {
			continue
		}
		addrs = append(addrs, common.HexToAddress(p))
	}
	return addrs
}
