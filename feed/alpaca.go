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

const alpacaDataURL = "https://data.alpaca.markets"

// Alpaca is the primary provider: the market-data API that pairs with the
// paper brokerage, keyed with the same credentials.
type Alpaca struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
}

var _ Provider = (*Alpaca)(nil)

func NewAlpaca(key, secret string) *Alpaca {
	return &Alpaca{
		baseURL:    alpacaDataURL,
		key:        key,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *Alpaca) Name() string { return "alpaca" }

func (a *Alpaca) History(ctx context.Context, symbol string, days int) (*market.Series, error) {
	start := time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
	url := fmt.Sprintf("%s/v2/stocks/%s/bars?timeframe=1Day&start=%s&limit=%d&adjustment=split",
		a.baseURL, symbol, start, days)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("APCA-API-KEY-ID", a.key)
	req.Header.Set("APCA-API-SECRET-KEY", a.secret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alpaca bars request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpaca bars http %d: %s", resp.StatusCode,
			strings.TrimSpace(string(body[:min(len(body), 200)])))
	}

	bars := gjson.GetBytes(body, "bars")
	if !bars.Exists() || len(bars.Array()) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", ErrNoData, symbol)
	}

	series := market.NewSeries(symbol)
	for _, bar := range bars.Array() {
		ts, err := time.Parse(time.RFC3339, bar.Get("t").String())
		if err != nil {
			return nil, fmt.Errorf("alpaca bar time for %s: %w", symbol, err)
		}
		err = series.Append(market.Candle{
			Time:   ts,
			Open:   bar.Get("o").Float(),
			High:   bar.Get("h").Float(),
			Low:    bar.Get("l").Float(),
			Close:  bar.Get("c").Float(),
			Volume: bar.Get("v").Float(),
		})
		if err != nil {
			return nil, fmt.Errorf("alpaca bars for %s: %w", symbol, err)
		}
	}
	return series, nil
}
