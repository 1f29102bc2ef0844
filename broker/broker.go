// Package broker defines the gateway contract between the execution engine
// and a trading venue, paper or live.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// Status is the business outcome of a submitted order. Rejected is a valid
// outcome, not an error: implementations return it with a nil error.
type Status string

const (
	Filled   Status = "FILLED"
	Partial  Status = "PARTIAL"
	Rejected Status = "REJECTED"
	Pending  Status = "PENDING"
)

// Intent is an order the engine wants placed. Quantity is a whole share
// count of at least 1; LimitPrice is set only for Limit orders.
type Intent struct {
	Symbol     string
	Side       Side
	Quantity   int64
	Type       OrderType
	LimitPrice *float64
}

// Result is the venue's answer to an Intent. It is terminal for the
// engine's per-cycle responsibility; fills that complete later are picked
// up by future cycles through GetPosition.
type Result struct {
	OrderID        string
	Status         Status
	FilledQuantity int64
	AvgFillPrice   float64
	Time           time.Time
}

// Broker is the venue gateway. Implementations must distinguish transport
// failure (a *ConnectivityError) from business rejection (a Result with
// Status Rejected and a nil error). All calls honor ctx deadlines.
type Broker interface {
	GetEquity(ctx context.Context) (float64, error)
	GetPosition(ctx context.Context, symbol string) (int64, error)
	SubmitOrder(ctx context.Context, intent Intent) (Result, error)
}

// ConnectivityError wraps a transport-level failure talking to the venue.
// The engine treats it as the FAILED terminal state for the cycle and never
// retries within the cycle.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("broker connectivity: %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Connectivity wraps err as a ConnectivityError for the named operation.
func Connectivity(op string, err error) error {
	return &ConnectivityError{Op: op, Err: err}
}

// IsConnectivity reports whether err is (or wraps) a ConnectivityError.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
