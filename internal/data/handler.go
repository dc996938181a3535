// Package data defines the DataHandler boundary between market data sources
// and the rest of the engine. Historical and live handlers satisfy the same
// interface so the engine, portfolio, and strategies never know which one
// feeds them.
package data

import (
	"time"

	"github.com/halcyonlab/halcyon/internal/types"
)

// Handler produces Market events and answers bar queries. UpdateBars advances
// every symbol's latest-bar cursor by one bar and enqueues exactly one
// MarketEvent per call; once a historical source is exhausted Continue
// reports false and the engine's outer loop terminates.
type Handler interface {
	// UpdateBars advances one bar and enqueues a MarketEvent.
	UpdateBars() error
	// Continue reports whether more data is available. Live handlers always
	// report true.
	Continue() bool
	// Symbols returns the symbol list this handler feeds.
	Symbols() []string
	// LatestBar returns the most recent bar for the symbol.
	LatestBar(symbol string) (types.Bar, error)
	// LatestBars returns up to n most recent bars for the symbol, oldest
	// first.
	LatestBars(symbol string, n int) ([]types.Bar, error)
	// LatestBarTime returns the timestamp of the most recent bar.
	LatestBarTime(symbol string) (time.Time, error)
	// LatestBarValue returns one field of the most recent bar.
	LatestBarValue(symbol string, field types.BarField) (float64, error)
	// LatestBarsValues returns one field of up to the n most recent bars,
	// oldest first.
	LatestBarsValues(symbol string, field types.BarField, n int) ([]float64, error)
	// CurrentPrice returns the tradable price for the symbol right now: the
	// latest close for historical handlers, a real-time quote for live ones.
	// Callers must not assume which. A price-unavailable error means "skip
	// this decision", never "price is zero".
	CurrentPrice(symbol string) (float64, error)
}
