// Package alpaca implements the broker gateway against the Alpaca REST API.
// Only the paper endpoint is enabled; live trading stays behind a config
// switch that this build refuses.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/rustyeddy/quantbot/broker"
)

const (
	PaperURL = "https://paper-api.alpaca.markets"

	keyHeader    = "APCA-API-KEY-ID"
	secretHeader = "APCA-API-SECRET-KEY"
)

type Client struct {
	baseURL    string
	key        string
	secret     string
	httpClient *http.Client
}

var _ broker.Broker = (*Client)(nil)

func NewClient(key, secret string) *Client {
	return &Client{
		baseURL: PaperURL,
		key:     key,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type orderRequest struct {
	Symbol      string `json:"symbol"`
	Qty         string `json:"qty"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	TimeInForce string `json:"time_in_force"`
	LimitPrice  string `json:"limit_price,omitempty"`
}

// quantize formats a price to whole cents. Alpaca rejects sub-penny limit
// prices on most equities; decimal avoids float formatting artifacts.
func quantize(price float64) string {
	return decimal.NewFromFloat(price).Round(2).StringFixed(2)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(keyHeader, c.key)
	req.Header.Set(secretHeader, c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, broker.Connectivity(method+" "+path, err)
	}
	return resp, nil
}

func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return b
}

// GetEquity returns the account's current equity.
func (c *Client) GetEquity(ctx context.Context) (float64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v2/account", nil)
	if err != nil {
		return 0, err
	}
	b := readBody(resp)
	if resp.StatusCode != http.StatusOK {
		return 0, broker.Connectivity("get account",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	equity := gjson.GetBytes(b, "equity")
	if !equity.Exists() {
		return 0, fmt.Errorf("alpaca: account response missing equity: %s", b)
	}
	return equity.Float(), nil
}

// GetPosition returns the open share count for symbol, 0 when flat.
func (c *Client) GetPosition(ctx context.Context, symbol string) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v2/positions/"+symbol, nil)
	if err != nil {
		return 0, err
	}
	b := readBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return gjson.GetBytes(b, "qty").Int(), nil
	case http.StatusNotFound:
		// No open position for this symbol.
		return 0, nil
	default:
		return 0, broker.Connectivity("get position",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
}

// SubmitOrder places a day order. Business rejections (422 unprocessable,
// 403 insufficient buying power) come back as a Rejected result with a nil
// error; anything transport-shaped is a ConnectivityError.
func (c *Client) SubmitOrder(ctx context.Context, intent broker.Intent) (broker.Result, error) {
	if intent.Quantity < 1 {
		return broker.Result{Status: broker.Rejected, Time: time.Now().UTC()}, nil
	}

	reqBody := orderRequest{
		Symbol:      intent.Symbol,
		Qty:         strconv.FormatInt(intent.Quantity, 10),
		Side:        strings.ToLower(string(intent.Side)),
		Type:        "market",
		TimeInForce: "day",
	}
	if intent.Type == broker.Limit && intent.LimitPrice != nil {
		reqBody.Type = "limit"
		reqBody.LimitPrice = quantize(*intent.LimitPrice)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return broker.Result{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/v2/orders", bytes.NewReader(payload))
	if err != nil {
		return broker.Result{}, err
	}
	b := readBody(resp)

	switch {
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusCreated:
		return parseOrder(b), nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnprocessableEntity:
		return broker.Result{
			OrderID: gjson.GetBytes(b, "id").String(),
			Status:  broker.Rejected,
			Time:    time.Now().UTC(),
		}, nil
	default:
		return broker.Result{}, broker.Connectivity("submit order",
			fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
}

func parseOrder(b []byte) broker.Result {
	res := broker.Result{
		OrderID:        gjson.GetBytes(b, "id").String(),
		Status:         mapStatus(gjson.GetBytes(b, "status").String()),
		FilledQuantity: gjson.GetBytes(b, "filled_qty").Int(),
		AvgFillPrice:   gjson.GetBytes(b, "filled_avg_price").Float(),
		Time:           time.Now().UTC(),
	}
	if ts := gjson.GetBytes(b, "submitted_at").String(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			res.Time = parsed
		}
	}
	return res
}

func mapStatus(s string) broker.Status {
	switch s {
	case "filled":
		return broker.Filled
	case "partially_filled":
		return broker.Partial
	case "rejected", "canceled", "expired":
		return broker.Rejected
	default:
		// new, accepted, pending_new, ...
		return broker.Pending
	}
}
