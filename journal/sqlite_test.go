package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantbot/broker"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)

	return s, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLitePersistAndRead(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = s.Close() })

	rec := TradeRecord{
		ID:        "01HQZX",
		OrderID:   "ord-1",
		Symbol:    "AAPL",
		Side:      broker.Buy,
		Quantity:  10,
		Price:     180.10,
		Fees:      1.0,
		OrderType: broker.Market,
		Status:    broker.Filled,
		Time:      time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.Persist(rec))

	got, err := s.Trades(10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, rec.OrderID, got[0].OrderID)
	assert.Equal(t, rec.Symbol, got[0].Symbol)
	assert.Equal(t, rec.Side, got[0].Side)
	assert.Equal(t, rec.Quantity, got[0].Quantity)
	assert.InDelta(t, rec.Price, got[0].Price, 1e-9)
	assert.InDelta(t, rec.Fees, got[0].Fees, 1e-9)
	assert.Equal(t, rec.OrderType, got[0].OrderType)
	assert.Equal(t, rec.Status, got[0].Status)
	assert.True(t, got[0].Time.Equal(rec.Time))
}

func TestSQLiteTradesNewestFirst(t *testing.T) {
	t.Parallel()

	s, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = s.Close() })

	// IDs are ULIDs in production, so they sort by creation time.
	for _, id := range []string{"01A", "01B", "01C"} {
		rec := record(0)
		rec.ID = id
		require.NoError(t, s.Persist(rec))
	}

	got, err := s.Trades(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "01C", got[0].ID)
	assert.Equal(t, "01B", got[1].ID)
}
