// Package strategy defines the signal-generation boundary of the engine.
// Concrete strategies live outside the core: they read bar data and
// portfolio state, and their only write path is enqueueing SignalEvents.
package strategy

// Strategy is invoked once per MarketEvent, after the portfolio has marked
// its positions and holdings against the new bar.
type Strategy interface {
	// Name identifies the strategy in signals and reports.
	Name() string
	// CalculateSignals inspects the latest bars and portfolio state and
	// enqueues zero or more SignalEvents.
	CalculateSignals() error
}
