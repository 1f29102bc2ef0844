// Package signal turns an indicator series into crossover trade signals.
package signal

import (
	"time"

	"github.com/rustyeddy/quantbot/indicators"
)

// Kind classifies a crossover signal.
type Kind int

const (
	None Kind = iota
	Buy
	Sell
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Transition is a single crossing event. Transitions are emitted exactly
// once per crossing and are ordered by timestamp. None is never stored as
// a transition; it only exists as the answer to "latest state" queries.
type Transition struct {
	Time time.Time
	Kind Kind
}

// above reports whether SMA is strictly above EMA at p.
func above(p indicators.Point) bool { return p.SMA-p.EMA > 0 }

func classify(prev, cur indicators.Point) Kind {
	switch {
	case !above(prev) && above(cur):
		return Buy
	case above(prev) && !above(cur):
		return Sell
	default:
		return None
	}
}

// Transitions scans adjacent pairs of fully-defined indicator points and
// returns every sign change of (SMA - EMA): up through zero is a Buy, down
// to or through zero is a Sell. With fewer than two defined points the
// result is empty.
func Transitions(ind indicators.Series) []Transition {
	var out []Transition
	first := ind.FirstValid()
	if first < 0 {
		return out
	}
	for i := first + 1; i < len(ind.Points); i++ {
		if !ind.Points[i].Valid() {
			continue
		}
		if k := classify(ind.Points[i-1], ind.Points[i]); k != None {
			out = append(out, Transition{Time: ind.Points[i].Time, Kind: k})
		}
	}
	return out
}

// Latest reports the signal at the newest point, derived solely from the
// two most recent defined points. None means no crossing happened there.
func Latest(ind indicators.Series) Kind {
	n := len(ind.Points)
	if n < 2 || !ind.Points[n-1].Valid() || !ind.Points[n-2].Valid() {
		return None
	}
	return classify(ind.Points[n-2], ind.Points[n-1])
}
