// Package journal keeps the append-only record of attempted and executed
// trades: an in-session ledger plus optional persistence sinks.
package journal

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/quantbot/broker"
)

// TradeRecord is written once per order result and never mutated.
type TradeRecord struct {
	ID        string
	OrderID   string
	Symbol    string
	Side      broker.Side
	Quantity  int64
	Price     float64
	Fees      float64
	OrderType broker.OrderType
	Status    broker.Status
	Time      time.Time
}

// Sink receives records for out-of-session persistence. Persist must be
// safe for concurrent use: parallel symbol cycles append through one ledger.
type Sink interface {
	Persist(TradeRecord) error
	Close() error
}

// Ledger is the session trade log. Append never fails: a sink error is
// logged and the in-session record is kept regardless.
type Ledger struct {
	mu      sync.Mutex
	records []TradeRecord
	sink    Sink
	log     zerolog.Logger
}

// NewLedger creates a ledger forwarding to sink; sink may be nil.
func NewLedger(sink Sink, log zerolog.Logger) *Ledger {
	return &Ledger{sink: sink, log: log}
}

// Append records the trade in-session and forwards it to the sink,
// fire-and-forget.
func (l *Ledger) Append(rec TradeRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()

	if l.sink == nil {
		return
	}
	if err := l.sink.Persist(rec); err != nil {
		l.log.Warn().Err(err).Str("trade_id", rec.ID).Msg("trade persistence failed")
	}
}

// Recent returns up to n records, newest first.
func (l *Ledger) Recent(n int) []TradeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]TradeRecord, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Len reports how many records the session holds.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
