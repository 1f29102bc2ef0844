// Package sim implements an in-process paper broker with immediate fills.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/quantbot/broker"
	"github.com/rustyeddy/quantbot/pkg/id"
)

type position struct {
	qty     int64
	avgCost float64
}

// Engine holds virtual cash and per-symbol positions and fills every order
// instantly at the marked price. Rejections (no price, not enough cash, no
// shares to sell) are business outcomes, never errors.
type Engine struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]position
	marks     map[string]float64
}

var _ broker.Broker = (*Engine)(nil)

func New(initialCash float64) *Engine {
	return &Engine{
		cash:      initialCash,
		positions: make(map[string]position),
		marks:     make(map[string]float64),
	}
}

// SetMark updates the last known price used to value positions and fill
// market orders. The engine calls this once per cycle before trading.
func (e *Engine) SetMark(symbol string, price float64) {
	e.mu.Lock()
	e.marks[symbol] = price
	e.mu.Unlock()
}

// GetEquity returns cash plus positions valued at their marks. Symbols
// without a mark contribute nothing, matching a conservative valuation.
func (e *Engine) GetEquity(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, broker.Connectivity("get equity", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	equity := e.cash
	for sym, pos := range e.positions {
		equity += float64(pos.qty) * e.marks[sym]
	}
	return equity, nil
}

func (e *Engine) GetPosition(ctx context.Context, symbol string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, broker.Connectivity("get position", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positions[symbol].qty, nil
}

// Cash returns the free cash balance.
func (e *Engine) Cash() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cash
}

func (e *Engine) SubmitOrder(ctx context.Context, intent broker.Intent) (broker.Result, error) {
	if err := ctx.Err(); err != nil {
		return broker.Result{}, broker.Connectivity("submit order", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now().UTC()
	reject := func() (broker.Result, error) {
		return broker.Result{
			OrderID: id.New(),
			Status:  broker.Rejected,
			Time:    now,
		}, nil
	}

	if intent.Quantity < 1 {
		return reject()
	}

	// Limit orders fill at the limit, market orders at the mark.
	price := e.marks[intent.Symbol]
	if intent.Type == broker.Limit && intent.LimitPrice != nil {
		price = *intent.LimitPrice
	}
	if price <= 0 {
		return reject()
	}

	pos := e.positions[intent.Symbol]
	notional := float64(intent.Quantity) * price

	switch intent.Side {
	case broker.Buy:
		if notional > e.cash {
			return reject()
		}
		newQty := pos.qty + intent.Quantity
		pos.avgCost = (pos.avgCost*float64(pos.qty) + notional) / float64(newQty)
		pos.qty = newQty
		e.positions[intent.Symbol] = pos
		e.cash -= notional

	case broker.Sell:
		if pos.qty < intent.Quantity {
			return reject()
		}
		pos.qty -= intent.Quantity
		if pos.qty == 0 {
			delete(e.positions, intent.Symbol)
		} else {
			e.positions[intent.Symbol] = pos
		}
		e.cash += notional

	default:
		return reject()
	}

	return broker.Result{
		OrderID:        id.New(),
		Status:         broker.Filled,
		FilledQuantity: intent.Quantity,
		AvgFillPrice:   price,
		Time:           now,
	}, nil
}
