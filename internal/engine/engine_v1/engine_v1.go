// Package engine implements version 1 of the event-driven engine: a
// single-threaded outer loop that advances market data one bar at a time and
// an inner loop that drains the event queue after every advance.
package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/data"
	"github.com/halcyonlab/halcyon/internal/engine"
	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/execution"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/portfolio"
	"github.com/halcyonlab/halcyon/internal/sink"
	"github.com/halcyonlab/halcyon/internal/strategy"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// EngineV1 wires the data handler, strategy, portfolio, and execution
// handler around one shared event queue. Exactly one goroutine runs the
// loop; components never see events out of order.
type EngineV1 struct {
	config    EngineV1Config
	queue     *events.Queue
	handler   data.Handler
	strategy  strategy.Strategy
	execution execution.Handler
	results   sink.Sink
	portfolio *portfolio.Portfolio
	log       *logger.Logger

	onBar optional.Option[engine.OnBarCallback]
	stats optional.Option[types.SummaryStats]

	signals int
	orders  int
	fills   int
}

// NewEngineV1 creates an engine over the given queue. The same queue must be
// handed to the data handler, strategy, and execution handler.
func NewEngineV1(queue *events.Queue, log *logger.Logger) *EngineV1 {
	return &EngineV1{
		config:    EmptyConfig(),
		queue:     queue,
		handler:   nil,
		strategy:  nil,
		execution: nil,
		results:   nil,
		portfolio: nil,
		log:       log,
		onBar:     optional.None[engine.OnBarCallback](),
		stats:     optional.None[types.SummaryStats](),
		signals:   0,
		orders:    0,
		fills:     0,
	}
}

// Initialize implements engine.Engine.
func (e *EngineV1) Initialize(config string) error {
	parsed, err := ParseConfig(config)
	if err != nil {
		return err
	}

	e.config = parsed

	e.log.Debug("engine initialized",
		zap.Strings("symbols", parsed.Symbols),
		zap.String("interval", string(parsed.Interval)),
		zap.String("mode", string(parsed.Mode)),
	)

	return nil
}

// SetDataHandler implements engine.Engine.
func (e *EngineV1) SetDataHandler(handler data.Handler) error {
	e.handler = handler

	return nil
}

// SetStrategy implements engine.Engine.
func (e *EngineV1) SetStrategy(s strategy.Strategy) error {
	e.strategy = s

	return nil
}

// SetExecutionHandler implements engine.Engine.
func (e *EngineV1) SetExecutionHandler(handler execution.Handler) error {
	e.execution = handler

	return nil
}

// SetSink implements engine.Engine.
func (e *EngineV1) SetSink(s sink.Sink) error {
	e.results = s

	return nil
}

// SetOnBarCallback registers a progress callback invoked after every bar.
func (e *EngineV1) SetOnBarCallback(callback engine.OnBarCallback) {
	e.onBar = optional.Some(callback)
}

// Stats returns the summary statistics of the completed run.
func (e *EngineV1) Stats() (types.SummaryStats, error) {
	return e.stats.Take()
}

// Portfolio returns the engine's portfolio. Nil before Run.
func (e *EngineV1) Portfolio() *portfolio.Portfolio {
	return e.portfolio
}

func (e *EngineV1) preRunCheck() error {
	if e.handler == nil {
		return errors.New(errors.ErrCodeEngineNoHandler, "no data handler set")
	}

	if e.strategy == nil {
		return errors.New(errors.ErrCodeEngineNoStrategy, "no strategy set")
	}

	if e.execution == nil {
		return errors.New(errors.ErrCodeEngineNoExecution, "no execution handler set")
	}

	if e.results == nil {
		return errors.New(errors.ErrCodeEngineNoSink, "no results sink set")
	}

	if err := e.config.Validate(); err != nil {
		return err
	}

	return nil
}

// Run implements engine.Engine. Backtests run until the data handler is
// exhausted; live runs tick on the heartbeat until the context is cancelled.
// Results are written to the sink when the loop ends.
func (e *EngineV1) Run(ctx context.Context) error {
	if err := e.preRunCheck(); err != nil {
		return errors.Wrap(errors.ErrCodeEngineInitFailed, "engine is not ready to run", err)
	}

	startDate := e.config.StartTime.TakeOr(time.Now())

	riskFraction := e.config.RiskFraction
	if riskFraction == 0 {
		riskFraction = portfolio.DefaultRiskFraction
	}

	e.portfolio = portfolio.NewPortfolio(e.queue, e.handler, startDate, e.config.InitialCapital, riskFraction, e.log)

	if e.config.Mode == engine.RunModeLive {
		e.portfolio.SetSnapshotPublisher(e.results)
	}

	heartbeat := time.Duration(e.config.HeartbeatSeconds) * time.Second

	e.log.Info("engine run started",
		zap.Strings("symbols", e.config.Symbols),
		zap.String("mode", string(e.config.Mode)),
		zap.Float64("initial_capital", e.config.InitialCapital),
	)

	bars := 0

	for e.handler.Continue() {
		if err := ctx.Err(); err != nil {
			e.log.Info("engine run cancelled")

			break
		}

		if err := e.handler.UpdateBars(); err != nil {
			if e.config.Mode == engine.RunModeLive {
				// A failed live tick is retried on the next heartbeat.
				e.log.Warn("bar update failed", zap.Error(err))

				if sleepErr := e.sleep(ctx, heartbeat); sleepErr != nil {
					break
				}

				continue
			}

			return err
		}

		if err := e.drainQueue(); err != nil {
			return err
		}

		bars++

		if e.onBar.IsSome() {
			e.onBar.Unwrap()(bars)
		}

		if e.pastEndTime() {
			break
		}

		if e.config.Mode == engine.RunModeLive {
			if err := e.sleep(ctx, heartbeat); err != nil {
				break
			}
		}
	}

	return e.report(bars)
}

// drainQueue processes queued events until the queue is empty. An empty pop
// is the loop's exit condition, not an error.
func (e *EngineV1) drainQueue() error {
	for {
		event, ok := e.queue.Pop()
		if !ok {
			return nil
		}

		if err := e.processEvent(event); err != nil {
			return err
		}
	}
}

func (e *EngineV1) processEvent(event types.Event) error {
	switch v := event.(type) {
	case types.MarketEvent:
		// The portfolio marks to market first so the strategy reads state
		// that reflects the new bar.
		if err := e.portfolio.UpdateAllPositionsHoldings(); err != nil {
			return err
		}

		return e.strategy.CalculateSignals()

	case types.SignalEvent:
		e.signals++

		return e.portfolio.SendOrder(v)

	case types.OrderEvent:
		e.orders++

		return e.execution.ExecuteOrder(v)

	case types.FillEvent:
		e.fills++

		return e.portfolio.UpdateFromFill(v)

	default:
		return errors.Newf(errors.ErrCodeUnknown, "unknown event type %q", event.Type())
	}
}

// pastEndTime reports whether the latest bar has passed the configured end
// time.
func (e *EngineV1) pastEndTime() bool {
	if e.config.EndTime.IsNone() {
		return false
	}

	barTime, err := e.handler.LatestBarTime(e.config.Symbols[0])
	if err != nil {
		return false
	}

	return barTime.After(e.config.EndTime.Unwrap())
}

func (e *EngineV1) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// report computes the summary statistics and writes all results to the sink.
func (e *EngineV1) report(bars int) error {
	stats, err := e.portfolio.SummaryStats(e.config.Interval, e.signals, e.orders, e.fills)
	if err != nil {
		return err
	}

	e.stats = optional.Some(stats)

	e.log.Info("engine run finished",
		zap.Int("bars", bars),
		zap.Int("signals", e.signals),
		zap.Int("orders", e.orders),
		zap.Int("fills", e.fills),
		zap.Float64("total_return_pct", stats.TotalReturnPct),
		zap.Float64("total_fees", stats.TotalFees),
	)

	curve, err := e.portfolio.EquityCurve()
	if err != nil {
		return err
	}

	if err := e.results.WriteEquityCurve(curve); err != nil {
		return err
	}

	return e.results.WriteTrades(e.portfolio.Trades().Closed())
}

// Verify EngineV1 implements the Engine interface.
var _ engine.Engine = (*EngineV1)(nil)
