package portfolio

import (
	"time"

	"github.com/google/uuid"

	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// TradeBook is the portfolio-owned trade ledger. The open side is indexed by
// symbol; the single-position-per-symbol model means at most one open trade
// per symbol exists at any time.
type TradeBook struct {
	open   map[string]*types.Trade
	closed []types.Trade
}

func NewTradeBook() *TradeBook {
	return &TradeBook{
		open:   make(map[string]*types.Trade),
		closed: nil,
	}
}

// Open records a new trade at fill-open time. Opening a symbol that already
// has an open trade violates the single-position invariant and fails.
func (b *TradeBook) Open(symbol string, direction types.PositionDirection, openMarketPrice, openPrice float64, openDate time.Time, openFees float64, indicators map[string]float64) (types.Trade, error) {
	if _, exists := b.open[symbol]; exists {
		return types.Trade{}, errors.Newf(errors.ErrCodeTradeAlreadyOpen, "trade already open for symbol %s", symbol)
	}

	trade := &types.Trade{
		ID:               uuid.New().String(),
		Symbol:           symbol,
		Direction:        direction,
		OpenMarketPrice:  openMarketPrice,
		OpenPrice:        openPrice,
		OpenDate:         openDate,
		OpenFees:         openFees,
		CloseMarketPrice: 0,
		ClosePrice:       0,
		CloseDate:        time.Time{},
		CloseFees:        0,
		IsOpen:           true,
		Indicators:       indicators,
	}
	b.open[symbol] = trade

	return *trade, nil
}

// Close completes the open trade for the symbol. Closing a symbol with no
// open trade indicates a portfolio invariant violation and is fatal.
func (b *TradeBook) Close(symbol string, closeMarketPrice, closePrice float64, closeDate time.Time, closeFees float64) (types.Trade, error) {
	trade, exists := b.open[symbol]
	if !exists {
		return types.Trade{}, errors.Newf(errors.ErrCodeNoOpenTrade, "no open trade for symbol %s", symbol)
	}

	trade.IsOpen = false
	trade.CloseMarketPrice = closeMarketPrice
	trade.ClosePrice = closePrice
	trade.CloseDate = closeDate
	trade.CloseFees = closeFees

	delete(b.open, symbol)
	b.closed = append(b.closed, *trade)

	return *trade, nil
}

// OpenTrade returns the open trade for the symbol, if any.
func (b *TradeBook) OpenTrade(symbol string) (types.Trade, bool) {
	trade, exists := b.open[symbol]
	if !exists {
		return types.Trade{}, false
	}

	return *trade, true
}

// Closed returns the closed trades in close order.
func (b *TradeBook) Closed() []types.Trade {
	return b.closed
}

// OpenCount returns the number of currently open trades.
func (b *TradeBook) OpenCount() int {
	return len(b.open)
}
