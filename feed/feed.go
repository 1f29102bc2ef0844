// Package feed supplies historical daily candles from ranked providers.
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/quantbot/market"
)

// ErrNoData is returned when a provider answered but had no usable candles.
var ErrNoData = errors.New("feed: no data")

// Provider fetches up to days of daily history for one symbol. The returned
// series has strictly increasing timestamps.
type Provider interface {
	Name() string
	History(ctx context.Context, symbol string, days int) (*market.Series, error)
}

// Chain tries providers in rank order and returns the first success, so a
// primary outage degrades to the fallback without the caller noticing.
type Chain struct {
	providers []Provider
	log       zerolog.Logger
}

var _ Provider = (*Chain)(nil)

func NewChain(log zerolog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) History(ctx context.Context, symbol string, days int) (*market.Series, error) {
	var lastErr error
	for _, p := range c.providers {
		series, err := p.History(ctx, symbol, days)
		if err == nil {
			return series, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Str("provider", p.Name()).Str("symbol", symbol).
			Msg("history provider failed, trying next")
	}
	if lastErr == nil {
		return nil, fmt.Errorf("%w: no providers configured", ErrNoData)
	}
	return nil, fmt.Errorf("feed: all providers failed for %s: %w", symbol, lastErr)
}
