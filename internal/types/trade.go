package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the record of one round trip. It is created at fill-open time and
// completed at fill-close time; at most one trade per symbol is open at once.
type Trade struct {
	ID        string            `csv:"id"`
	Symbol    string            `csv:"symbol"`
	Direction PositionDirection `csv:"direction"`

	// OpenMarketPrice is the unit price of the opening fill; OpenPrice is the
	// total cost of the opening fill (the cost basis).
	OpenMarketPrice float64   `csv:"open_market_price"`
	OpenPrice       float64   `csv:"open_price"`
	OpenDate        time.Time `csv:"open_date"`
	OpenFees        float64   `csv:"open_fees"`

	CloseMarketPrice float64   `csv:"close_market_price"`
	ClosePrice       float64   `csv:"close_price"`
	CloseDate        time.Time `csv:"close_date"`
	CloseFees        float64   `csv:"close_fees"`

	IsOpen bool `csv:"is_open"`

	// Indicators holds the strategy's indicator readings at entry time.
	Indicators map[string]float64 `csv:"-"`
}

// Return computes the round-trip return of a closed trade. Long trades
// return close/open - 1, short trades open/close - 1.
func (t *Trade) Return() float64 {
	if t.IsOpen || t.OpenPrice == 0 || t.ClosePrice == 0 {
		return 0
	}

	open := decimal.NewFromFloat(t.OpenPrice)
	cl := decimal.NewFromFloat(t.ClosePrice)

	var r decimal.Decimal

	switch t.Direction {
	case DirectionShort:
		r = open.Div(cl).Sub(decimal.NewFromInt(1))
	default:
		r = cl.Div(open).Sub(decimal.NewFromInt(1))
	}

	result, _ := r.Float64()

	return result
}

// Duration returns the holding time of a closed trade.
func (t *Trade) Duration() time.Duration {
	if t.IsOpen {
		return 0
	}

	return t.CloseDate.Sub(t.OpenDate)
}

// IsWin reports whether the closed trade had a positive return.
func (t *Trade) IsWin() bool {
	return t.Return() > 0
}
