package sink

import "github.com/halcyonlab/halcyon/internal/types"

// Sink receives the run's results. The engine writes the equity curve and
// trade ledger at end of run; live runs additionally stream holdings
// snapshots through it every bar.
type Sink interface {
	WriteEquityCurve(curve []types.EquityPoint) error
	WriteTrades(trades []types.Trade) error
	PublishSnapshot(snapshot types.HoldingsSnapshot) error
	// Export materializes the stored results under dir.
	Export(dir string) error
	Close() error
}

// Verify DuckDBSink implements the Sink interface.
var _ Sink = (*DuckDBSink)(nil)
