package types

import "time"

// PositionDirection is the per-symbol state of the portfolio state machine.
// Transitions are OUT -> LONG -> OUT and OUT -> SHORT -> OUT; a direct
// LONG <-> SHORT flip must pass through OUT.
type PositionDirection string

const (
	DirectionOut   PositionDirection = "OUT"
	DirectionLong  PositionDirection = "LONG"
	DirectionShort PositionDirection = "SHORT"
)

// Holding is the per-symbol monetary valuation of an open (or flat) position.
// Exposition is only meaningful while Direction is SHORT: it is the cash
// value locked in at short-sale entry, used to compute short P&L on cover.
type Holding struct {
	IsOpen       bool              `csv:"is_open"`
	OpenDate     time.Time         `csv:"open_date"`
	OpenPrice    float64           `csv:"open_price"`
	CurrentValue float64           `csv:"current_value"`
	Exposition   float64           `csv:"exposition"`
	Direction    PositionDirection `csv:"direction"`
}

// NewHolding returns a flat holding.
func NewHolding() Holding {
	return Holding{
		IsOpen:       false,
		OpenDate:     time.Time{},
		OpenPrice:    0,
		CurrentValue: 0,
		Exposition:   0,
		Direction:    DirectionOut,
	}
}

// PositionSnapshot is one entry of the append-only positions time series.
type PositionSnapshot struct {
	Time      time.Time
	Positions map[string]float64
}

// HoldingsSnapshot is one entry of the append-only holdings time series that
// forms the equity curve. Total is cash plus the sum of per-symbol market
// values, adjusted for short exposure.
type HoldingsSnapshot struct {
	Time    time.Time
	Cash    float64
	Total   float64
	Fees    float64
	Symbols map[string]Holding
}
