package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantbot/market"
)

type stubProvider struct {
	name   string
	series *market.Series
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) History(ctx context.Context, symbol string, days int) (*market.Series, error) {
	p.calls++
	return p.series, p.err
}

func oneCandleSeries(t *testing.T) *market.Series {
	t.Helper()
	s := market.NewSeries("AAPL")
	require.NoError(t, s.Append(market.Candle{
		Time:  time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Close: 180,
	}))
	return s
}

func TestChainPrefersPrimary(t *testing.T) {
	primary := &stubProvider{name: "primary", series: oneCandleSeries(t)}
	fallback := &stubProvider{name: "fallback"}

	chain := NewChain(zerolog.Nop(), primary, fallback)
	series, err := chain.History(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, 1, primary.calls)
	assert.Zero(t, fallback.calls)
}

func TestChainFallsBack(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("401 unauthorized")}
	fallback := &stubProvider{name: "fallback", series: oneCandleSeries(t)}

	chain := NewChain(zerolog.Nop(), primary, fallback)
	series, err := chain.History(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestChainAllFail(t *testing.T) {
	boom := errors.New("boom")
	chain := NewChain(zerolog.Nop(),
		&stubProvider{name: "a", err: errors.New("first")},
		&stubProvider{name: "b", err: boom},
	)

	_, err := chain.History(context.Background(), "AAPL", 30)
	assert.ErrorIs(t, err, boom)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain(zerolog.Nop())
	_, err := chain.History(context.Background(), "AAPL", 30)
	assert.ErrorIs(t, err, ErrNoData)
}
