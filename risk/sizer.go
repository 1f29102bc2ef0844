// Package risk converts account equity into order quantities.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAllocation indicates a caller configuration error: the fraction
// must be in (0,1] and the price positive. Not retried, surfaced immediately.
var ErrInvalidAllocation = errors.New("risk: invalid allocation")

// AllocationRequest describes one sizing decision. Commission and
// SlippagePct are optional frictions; zero values reduce the computation to
// floor(equity * fraction / price).
type AllocationRequest struct {
	Symbol           string
	FractionOfEquity float64
	LastPrice        float64
	AvailableEquity  float64

	Commission  float64 // flat fee subtracted from the budget
	SlippagePct float64 // e.g. 0.0005 inflates the assumed fill price
}

// Size returns the whole number of shares the allocation affords.
//
// A result of 0 means "do not trade" and is not an error; callers
// short-circuit the cycle on it.
func Size(req AllocationRequest) (int64, error) {
	if req.FractionOfEquity <= 0 || req.FractionOfEquity > 1 {
		return 0, fmt.Errorf("%w: fraction %v not in (0,1]", ErrInvalidAllocation, req.FractionOfEquity)
	}
	if req.LastPrice <= 0 {
		return 0, fmt.Errorf("%w: price %v", ErrInvalidAllocation, req.LastPrice)
	}

	budget := req.AvailableEquity*req.FractionOfEquity - req.Commission
	price := req.LastPrice * (1 + req.SlippagePct)

	qty := math.Floor(budget / price)
	if qty < 1 || math.IsNaN(qty) {
		return 0, nil
	}
	return int64(qty), nil
}
