// Package persistence is the external collaborator that replays
// recent competition outcomes into the guard at startup.
package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/batchauction/engine/internal/guard"
)

// Config holds the Postgres connection parameters.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// Store is the Postgres-backed competitions store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens a connection to Postgres and verifies it with a ping.
func New(cfg Config) (*Store, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("persistence-connected", zap.String("host", cfg.Host), zap.String("database", cfg.Database))

	return &Store{db: db, logger: logger}, nil
}

// NewFromDB wraps an already-open *sql.DB, for tests against a
// sqlmock connection.
func NewFromDB(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// FetchLastCompetitionsMetadata returns the most recent limit
// competition entries, newest first in storage but returned in the
// chronological order the guard's replay path expects (oldest first).
func (s *Store) FetchLastCompetitionsMetadata(ctx context.Context, limit int) ([]guard.CompetitionEntry, error) {
	const query = `
		SELECT auction_id, solver, settled
		FROM solver_competitions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query competitions: %w", err)
	}
	defer rows.Close()

	var entries []guard.CompetitionEntry
	for rows.Next() {
		var auctionID, solverHex string
		var settled bool
		if err := rows.Scan(&auctionID, &solverHex, &settled); err != nil {
			return nil, fmt.Errorf("scan competition row: %w", err)
		}
		entries = append(entries, guard.CompetitionEntry{
			AuctionID: auctionID,
			Solver:    common.HexToAddress(solverHex),
			Settled:   settled,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competition rows: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	s.logger.Debug("competitions-fetched", zap.Int("count", len(entries)), zap.Int("limit", limit))
	return entries, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	s.logger.Info("closing-persistence")
	return s.db.Close()
}
