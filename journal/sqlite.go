package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/quantbot/broker"
)

const schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price REAL NOT NULL,
	fees REAL NOT NULL DEFAULT 0.0,
	order_type TEXT NOT NULL,
	status TEXT NOT NULL,
	order_id TEXT
);

CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(ts);
`

// SQLite persists trade records to a local database file.
type SQLite struct {
	db *sql.DB
}

var _ Sink = (*SQLite)(nil)

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Persist(t TradeRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO trades
		(id, ts, symbol, side, qty, price, fees, order_type, status, order_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time, t.Symbol, string(t.Side), t.Quantity, t.Price,
		t.Fees, string(t.OrderType), string(t.Status), t.OrderID,
	)
	return err
}

// Trades returns up to limit persisted records, newest first. Used by the
// CLI; the engine itself only ever writes.
func (s *SQLite) Trades(limit int) ([]TradeRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, ts, symbol, side, qty, price, fees, order_type, status, order_id
		FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var side, orderType, status string
		if err := rows.Scan(&t.ID, &t.Time, &t.Symbol, &side, &t.Quantity,
			&t.Price, &t.Fees, &orderType, &status, &t.OrderID); err != nil {
			return nil, err
		}
		t.Side = broker.Side(side)
		t.OrderType = broker.OrderType(orderType)
		t.Status = broker.Status(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
