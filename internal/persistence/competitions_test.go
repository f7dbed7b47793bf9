package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLastCompetitionsMetadata_ReturnsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"auction_id", "solver", "settled"}).
		AddRow("3", "0x0000000000000000000000000000000000000b", true).
		AddRow("2", "0x0000000000000000000000000000000000000a", false).
		AddRow("1", "0x0000000000000000000000000000000000000a", true)

	mock.ExpectQuery("SELECT auction_id, solver, settled").
		WithArgs(3).
		WillReturnRows(rows)

	store := NewFromDB(db, nil)
	entries, err := store.FetchLastCompetitionsMetadata(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "1", entries[0].AuctionID)
	assert.Equal(t, "2", entries[1].AuctionID)
	assert.Equal(t, "3", entries[2].AuctionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchLastCompetitionsMetadata_PropagatesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT auction_id, solver, settled").
		WithArgs(5).
		WillReturnError(assert.AnError)

	store := NewFromDB(db, nil)
	_, err = store.FetchLastCompetitionsMetadata(context.Background(), 5)
	assert.Error(t, err)
}
