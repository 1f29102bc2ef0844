package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantbot/market"
)

func seriesFromCloses(t *testing.T, closes []float64) *market.Series {
	t.Helper()

	s := market.NewSeries("AAPL")
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		require.NoError(t, s.Append(market.Candle{Time: start.AddDate(0, 0, i), Close: c}))
	}
	return s
}

func TestComputeAlignment(t *testing.T) {
	closes := []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}
	s := seriesFromCloses(t, closes)

	ind, err := Compute(s, 5, 3)
	require.NoError(t, err)

	// One indicator point per candle, timestamps aligned.
	require.Len(t, ind.Points, len(closes))
	for i, p := range ind.Points {
		assert.Equal(t, s.Candles[i].Time, p.Time)
	}

	// Warm-up markers: SMA undefined before index 4, EMA before index 2.
	for i, p := range ind.Points {
		assert.Equal(t, i >= 4, p.SMAValid, "sma index %d", i)
		assert.Equal(t, i >= 2, p.EMAValid, "ema index %d", i)
	}
	assert.Equal(t, 4, ind.FirstValid())

	// Last 5 closes: 111+113+114+116+118 = 572 => 114.4
	last := ind.Points[len(ind.Points)-1]
	assert.InDelta(t, 114.4, last.SMA, 1e-9)
}

func TestComputeEMASeedIsSMA(t *testing.T) {
	closes := []float64{10, 20, 30, 40}
	s := seriesFromCloses(t, closes)

	ind, err := Compute(s, 2, 3)
	require.NoError(t, err)

	// EMA seed at index 2 = mean(10,20,30) = 20, then alpha = 0.5:
	// EMA(3) = 0.5*40 + 0.5*20 = 30.
	assert.InDelta(t, 20.0, ind.Points[2].EMA, 1e-9)
	assert.InDelta(t, 30.0, ind.Points[3].EMA, 1e-9)
}

func TestComputeConstantSeriesConverges(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 42.5
	}
	ind, err := Compute(seriesFromCloses(t, closes), 5, 5)
	require.NoError(t, err)

	prevDiff := math.Inf(1)
	for _, p := range ind.Points {
		if !p.Valid() {
			continue
		}
		diff := math.Abs(p.EMA - 42.5)
		assert.LessOrEqual(t, diff, prevDiff)
		prevDiff = diff
	}
	assert.InDelta(t, 42.5, ind.Points[len(ind.Points)-1].EMA, 1e-9)
	assert.InDelta(t, 42.5, ind.Points[len(ind.Points)-1].SMA, 1e-9)
}

func TestComputeErrors(t *testing.T) {
	s := seriesFromCloses(t, []float64{1, 2, 3})

	t.Run("window too small", func(t *testing.T) {
		_, err := Compute(s, 1, 3)
		assert.ErrorIs(t, err, ErrInvalidParameter)

		_, err = Compute(s, 3, 0)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	})

	t.Run("not enough candles", func(t *testing.T) {
		_, err := Compute(s, 2, 5)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}
