// Package market defines the price data types shared by the feed,
// indicator, and execution layers.
package market

import (
	"errors"
	"fmt"
)

// ErrOutOfOrder is returned when a candle does not advance the series clock.
var ErrOutOfOrder = errors.New("market: candle time not after previous candle")

// Series is an ordered sequence of candles for one instrument symbol.
// Timestamps are strictly increasing with no duplicates; consumers only
// read it, the supplier of historical data owns it.
type Series struct {
	Symbol  string
	Candles []Candle
}

func NewSeries(symbol string) *Series {
	return &Series{Symbol: symbol}
}

// Append adds a candle, enforcing strictly increasing timestamps.
func (s *Series) Append(c Candle) error {
	if n := len(s.Candles); n > 0 && !c.Time.After(s.Candles[n-1].Time) {
		return fmt.Errorf("%w: %s <= %s", ErrOutOfOrder,
			c.Time.Format("2006-01-02T15:04:05Z07:00"),
			s.Candles[n-1].Time.Format("2006-01-02T15:04:05Z07:00"))
	}
	s.Candles = append(s.Candles, c)
	return nil
}

func (s *Series) Len() int { return len(s.Candles) }

// Last returns the most recent candle, if any.
func (s *Series) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Closes returns the close prices in series order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Trim drops the oldest candles so at most n remain.
func (s *Series) Trim(n int) {
	if n >= 0 && len(s.Candles) > n {
		s.Candles = append(s.Candles[:0:0], s.Candles[len(s.Candles)-n:]...)
	}
}
