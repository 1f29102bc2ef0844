package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		equity   float64
		fraction float64
		price    float64
		want     int64
	}{
		{"full allocation", 10000, 1.0, 100, 100},
		{"single share", 150, 1.0, 100, 1},
		{"below one share", 99, 1.0, 100, 0},
		{"tenth of equity", 5000, 0.1, 50, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Size(AllocationRequest{
				Symbol:           "AAPL",
				FractionOfEquity: tc.fraction,
				LastPrice:        tc.price,
				AvailableEquity:  tc.equity,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSizeInvalidAllocation(t *testing.T) {
	for _, fraction := range []float64{0, -0.1, 1.5} {
		_, err := Size(AllocationRequest{FractionOfEquity: fraction, LastPrice: 100, AvailableEquity: 1000})
		assert.ErrorIs(t, err, ErrInvalidAllocation, "fraction %v", fraction)
	}

	_, err := Size(AllocationRequest{FractionOfEquity: 0.5, LastPrice: 0, AvailableEquity: 1000})
	assert.ErrorIs(t, err, ErrInvalidAllocation)

	_, err = Size(AllocationRequest{FractionOfEquity: 0.5, LastPrice: -10, AvailableEquity: 1000})
	assert.ErrorIs(t, err, ErrInvalidAllocation)
}

func TestSizeFrictions(t *testing.T) {
	// budget = 1000*0.5 - 1 = 499; price = 100*1.001 = 100.1 => floor 4
	got, err := Size(AllocationRequest{
		FractionOfEquity: 0.5,
		LastPrice:        100,
		AvailableEquity:  1000,
		Commission:       1,
		SlippagePct:      0.001,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestSizeCommissionEatsBudget(t *testing.T) {
	got, err := Size(AllocationRequest{
		FractionOfEquity: 0.1,
		LastPrice:        100,
		AvailableEquity:  1000,
		Commission:       500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}
