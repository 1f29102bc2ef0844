// Package indicators computes trend indicators over a candle series.
// It is pure computation: no I/O, no side effects.
package indicators

import (
	"errors"
	"fmt"
	"time"

	talib "github.com/markcheno/go-talib"

	"github.com/rustyeddy/quantbot/market"
)

var (
	// ErrInvalidParameter indicates a window below the minimum of 2.
	ErrInvalidParameter = errors.New("indicators: window must be at least 2")

	// ErrInsufficientData indicates the series is shorter than the largest
	// requested window. Recoverable: wait for more history.
	ErrInsufficientData = errors.New("indicators: not enough candles")
)

// Point is one indicator observation, aligned index-for-index with its
// source candle. SMAValid/EMAValid are false during each average's warm-up;
// the zero values carried alongside are meaningless and must not be read.
type Point struct {
	Time     time.Time
	SMA      float64
	EMA      float64
	SMAValid bool
	EMAValid bool
}

// Valid reports whether both averages are defined at this point.
func (p Point) Valid() bool { return p.SMAValid && p.EMAValid }

// Series holds the computed indicator points for one candle series.
type Series struct {
	Points    []Point
	SMAWindow int
	EMAWindow int
}

// FirstValid returns the index of the first point where both averages are
// defined, or -1 if there is none.
func (s Series) FirstValid() int {
	for i, p := range s.Points {
		if p.Valid() {
			return i
		}
	}
	return -1
}

// Compute returns the SMA and EMA series for the given windows.
//
// SMA(i) is the arithmetic mean of the last smaWindow closes and is defined
// from index smaWindow-1. EMA uses alpha = 2/(emaWindow+1) seeded with the
// SMA of the first emaWindow closes, defined from index emaWindow-1. The
// talib implementations follow exactly these conventions; this package adds
// the validity masking on top.
func Compute(series *market.Series, smaWindow, emaWindow int) (Series, error) {
	if smaWindow < 2 || emaWindow < 2 {
		return Series{}, fmt.Errorf("%w: sma=%d ema=%d", ErrInvalidParameter, smaWindow, emaWindow)
	}
	need := smaWindow
	if emaWindow > need {
		need = emaWindow
	}
	if series.Len() < need {
		return Series{}, fmt.Errorf("%w: need %d, got %d", ErrInsufficientData, need, series.Len())
	}

	closes := series.Closes()
	sma := talib.Sma(closes, smaWindow)
	ema := talib.Ema(closes, emaWindow)

	out := Series{
		Points:    make([]Point, len(closes)),
		SMAWindow: smaWindow,
		EMAWindow: emaWindow,
	}
	for i := range closes {
		out.Points[i] = Point{
			Time:     series.Candles[i].Time,
			SMA:      sma[i],
			EMA:      ema[i],
			SMAValid: i >= smaWindow-1,
			EMAValid: i >= emaWindow-1,
		}
	}
	return out, nil
}
