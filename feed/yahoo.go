package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rustyeddy/quantbot/market"
)

const yahooURL = "https://query1.finance.yahoo.com"

// Yahoo pulls daily candles from the unauthenticated Yahoo Finance chart
// API. It is the fallback provider: no credentials, best-effort data.
type Yahoo struct {
	baseURL    string
	httpClient *http.Client
}

var _ Provider = (*Yahoo)(nil)

func NewYahoo() *Yahoo {
	return &Yahoo{
		baseURL:    yahooURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) History(ctx context.Context, symbol string, days int) (*market.Series, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d", y.baseURL, symbol, days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo blocks the default Go user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; quantbot)")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo chart http %d: %s", resp.StatusCode,
			strings.TrimSpace(string(body[:min(len(body), 200)])))
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNoData,
			gjson.GetBytes(body, "chart.error.description").String())
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	series := market.NewSeries(symbol)
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			// Holiday / halted rows come back as nulls.
			continue
		}
		c := market.Candle{
			Time:  time.Unix(ts.Int(), 0).UTC(),
			Close: closes[i].Float(),
		}
		if i < len(opens) {
			c.Open = opens[i].Float()
		}
		if i < len(highs) {
			c.High = highs[i].Float()
		}
		if i < len(lows) {
			c.Low = lows[i].Float()
		}
		if i < len(volumes) {
			c.Volume = volumes[i].Float()
		}
		if err := series.Append(c); err != nil {
			return nil, fmt.Errorf("yahoo chart for %s: %w", symbol, err)
		}
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty chart for %s", ErrNoData, symbol)
	}
	return series, nil
}
