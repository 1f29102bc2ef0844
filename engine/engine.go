// Package engine drives one trading decision cycle per instrument: signal
// evaluation, position sizing, order submission and trade recording.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/quantbot/broker"
	"github.com/rustyeddy/quantbot/indicators"
	"github.com/rustyeddy/quantbot/journal"
	"github.com/rustyeddy/quantbot/market"
	"github.com/rustyeddy/quantbot/pkg/id"
	"github.com/rustyeddy/quantbot/risk"
	"github.com/rustyeddy/quantbot/signal"
)

// State names the controller's position in the per-cycle state machine.
type State string

const (
	StateIdle            State = "IDLE"
	StateSignalEvaluated State = "SIGNAL_EVALUATED"
	StateSized           State = "SIZED"
	StateSubmitted       State = "SUBMITTED"

	// Terminal states. NoOp covers the implicit terminal when there is no
	// signal or nothing to trade; Failed is reserved for broker transport
	// failures after sizing.
	StateNoOp     State = "NO_OP"
	StateRecorded State = "RECORDED"
	StateFailed   State = "FAILED"
)

// Options are the per-engine strategy and execution parameters.
type Options struct {
	SMAWindow     int
	EMAWindow     int
	AllocationPct float64
	OrderType     broker.OrderType
	Commission    float64
	SlippagePct   float64

	// BrokerTimeout bounds each broker call; a timeout is a connectivity
	// failure, never a rejection.
	BrokerTimeout time.Duration

	// Parallelism caps concurrent symbol cycles in RunAll. Zero means
	// sequential.
	Parallelism int
}

// CycleResult reports how one symbol's cycle terminated. Err is set when
// the cycle could not reach a terminal decision (bad parameters, not
// enough history) or when it terminated Failed.
type CycleResult struct {
	Symbol   string
	State    State
	Signal   signal.Kind
	Quantity int64
	Record   *journal.TradeRecord
	Err      error
}

// Engine owns the OrderIntent -> OrderResult -> TradeRecord lifecycle for
// single decision cycles. It keeps no per-symbol state between cycles; the
// ledger accumulates history.
type Engine struct {
	broker broker.Broker
	ledger *journal.Ledger
	opts   Options
	log    zerolog.Logger

	// markFn, when set, publishes the latest close before trading so the
	// sim broker can value fills. Nil against a real venue.
	markFn func(symbol string, price float64)
}

func New(b broker.Broker, ledger *journal.Ledger, opts Options, log zerolog.Logger) *Engine {
	return &Engine{broker: b, ledger: ledger, opts: opts, log: log}
}

// SetMarkFunc installs the pre-cycle price publication hook.
func (e *Engine) SetMarkFunc(fn func(symbol string, price float64)) { e.markFn = fn }

// Ledger exposes the session trade ledger.
func (e *Engine) Ledger() *journal.Ledger { return e.ledger }

func (e *Engine) brokerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.BrokerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.BrokerTimeout)
}

// RunCycle evaluates one instrument once and submits at most one order.
func (e *Engine) RunCycle(ctx context.Context, series *market.Series) CycleResult {
	res := CycleResult{Symbol: series.Symbol, State: StateIdle, Signal: signal.None}
	log := e.log.With().Str("symbol", series.Symbol).Logger()

	last, ok := series.Last()
	if !ok {
		res.Err = fmt.Errorf("%w: empty series for %s", indicators.ErrInsufficientData, series.Symbol)
		return res
	}
	if e.markFn != nil {
		e.markFn(series.Symbol, last.Close)
	}

	ind, err := indicators.Compute(series, e.opts.SMAWindow, e.opts.EMAWindow)
	if err != nil {
		res.Err = err
		return res
	}

	res.Signal = signal.Latest(ind)
	res.State = StateSignalEvaluated
	log.Debug().Stringer("signal", res.Signal).Float64("close", last.Close).Msg("signal evaluated")

	if res.Signal == signal.None {
		res.State = StateNoOp
		return res
	}

	qty, err := e.size(ctx, series.Symbol, res.Signal, last.Close, &log)
	if err != nil {
		res.Err = err
		if broker.IsConnectivity(err) {
			res.State = StateFailed
		}
		return res
	}
	res.Quantity = qty
	res.State = StateSized

	if qty == 0 {
		log.Info().Stringer("signal", res.Signal).Msg("sized to zero, skipping order")
		res.State = StateNoOp
		return res
	}

	intent := broker.Intent{
		Symbol:   series.Symbol,
		Quantity: qty,
		Type:     e.opts.OrderType,
	}
	if res.Signal == signal.Buy {
		intent.Side = broker.Buy
	} else {
		intent.Side = broker.Sell
	}
	if intent.Type == broker.Limit {
		price := last.Close
		intent.LimitPrice = &price
	}

	bctx, cancel := e.brokerCtx(ctx)
	result, err := e.broker.SubmitOrder(bctx, intent)
	cancel()
	res.State = StateSubmitted
	if err != nil {
		// Transport failure: no trade record, retried only by a future cycle.
		res.State = StateFailed
		res.Err = err
		log.Error().Err(err).Stringer("signal", res.Signal).Int64("qty", qty).Msg("order submission failed")
		return res
	}

	rec := e.record(intent, result, last.Close)
	e.ledger.Append(rec)
	res.Record = &rec
	res.State = StateRecorded

	log.Info().
		Str("side", string(intent.Side)).
		Int64("qty", qty).
		Str("status", string(result.Status)).
		Float64("price", rec.Price).
		Str("order_id", result.OrderID).
		Msg("trade recorded")
	return res
}

// size queries equity (and the open position for sells) and converts the
// allocation into a share count.
func (e *Engine) size(ctx context.Context, symbol string, sig signal.Kind, lastClose float64, log *zerolog.Logger) (int64, error) {
	bctx, cancel := e.brokerCtx(ctx)
	defer cancel()

	equity, err := e.broker.GetEquity(bctx)
	if err != nil {
		return 0, err
	}

	qty, err := risk.Size(risk.AllocationRequest{
		Symbol:           symbol,
		FractionOfEquity: e.opts.AllocationPct,
		LastPrice:        lastClose,
		AvailableEquity:  equity,
		Commission:       e.opts.Commission,
		SlippagePct:      e.opts.SlippagePct,
	})
	if err != nil {
		return 0, err
	}

	// Never sell more than the point-in-time position; flat means no-op.
	if sig == signal.Sell {
		held, err := e.broker.GetPosition(bctx, symbol)
		if err != nil {
			return 0, err
		}
		if held < qty {
			qty = held
		}
	}

	log.Debug().Float64("equity", equity).Int64("qty", qty).Msg("position sized")
	return qty, nil
}

func (e *Engine) record(intent broker.Intent, result broker.Result, lastClose float64) journal.TradeRecord {
	price := result.AvgFillPrice
	if price == 0 {
		price = lastClose
	}
	qty := result.FilledQuantity
	if qty == 0 {
		qty = intent.Quantity
	}
	ts := result.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return journal.TradeRecord{
		ID:        id.New(),
		OrderID:   result.OrderID,
		Symbol:    intent.Symbol,
		Side:      intent.Side,
		Quantity:  qty,
		Price:     price,
		Fees:      e.opts.Commission,
		OrderType: intent.Type,
		Status:    result.Status,
		Time:      ts,
	}
}

// RunAll runs one cycle per series. Symbols are independent, so they may
// run in parallel; ledger ordering across symbols is insertion order only.
func (e *Engine) RunAll(ctx context.Context, series []*market.Series) []CycleResult {
	results := make([]CycleResult, len(series))

	g, gctx := errgroup.WithContext(ctx)
	if e.opts.Parallelism > 0 {
		g.SetLimit(e.opts.Parallelism)
	} else {
		g.SetLimit(1)
	}

	for i, s := range series {
		i, s := i, s
		g.Go(func() error {
			results[i] = e.RunCycle(gctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
