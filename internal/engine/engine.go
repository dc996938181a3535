// Package engine defines the contract of the event-driven trading engine.
// Concrete engines live in versioned subpackages so that the loop semantics
// can evolve without breaking callers.
package engine

import (
	"context"

	"github.com/halcyonlab/halcyon/internal/data"
	"github.com/halcyonlab/halcyon/internal/execution"
	"github.com/halcyonlab/halcyon/internal/sink"
	"github.com/halcyonlab/halcyon/internal/strategy"
)

// RunMode selects between replaying historical data and trading live.
type RunMode string

const (
	RunModeBacktest RunMode = "backtest"
	RunModeLive     RunMode = "live"
)

// OnBarCallback is invoked after each completed bar with the number of bars
// processed so far. Used for progress reporting.
type OnBarCallback func(processed int)

type Engine interface {
	// Initialize parses the YAML configuration content and prepares the
	// engine's internal state.
	Initialize(config string) error
	// SetDataHandler sets the bar source. Required before Run.
	SetDataHandler(handler data.Handler) error
	// SetStrategy sets the signal generator. Required before Run.
	SetStrategy(s strategy.Strategy) error
	// SetExecutionHandler sets the order router. Required before Run.
	SetExecutionHandler(handler execution.Handler) error
	// SetSink sets the results destination. Required before Run.
	SetSink(s sink.Sink) error
	// Run executes the event loop until the data is exhausted (backtest) or
	// the context is cancelled (live).
	Run(ctx context.Context) error
}
