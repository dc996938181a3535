package data

import (
	"time"

	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// HistoricHandler replays preloaded bar series one bar per UpdateBars call.
// The full series stays hidden from consumers: queries only ever see the bars
// already replayed, so a backtested strategy cannot peek ahead.
type HistoricHandler struct {
	queue   *events.Queue
	symbols []string

	series map[string][]types.Bar
	cursor map[string]int
	latest map[string][]types.Bar

	continueBacktest bool
}

// NewHistoricHandler creates a handler over preloaded series, one per
// symbol. Every requested symbol must be present.
func NewHistoricHandler(queue *events.Queue, symbols []string, series map[string][]types.Bar) (*HistoricHandler, error) {
	for _, symbol := range symbols {
		if _, exists := series[symbol]; !exists {
			return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no bar series loaded for symbol %s", symbol)
		}
	}

	cursor := make(map[string]int, len(symbols))
	latest := make(map[string][]types.Bar, len(symbols))

	for _, symbol := range symbols {
		cursor[symbol] = 0
		latest[symbol] = nil
	}

	return &HistoricHandler{
		queue:            queue,
		symbols:          symbols,
		series:           series,
		cursor:           cursor,
		latest:           latest,
		continueBacktest: true,
	}, nil
}

// UpdateBars advances each symbol by one bar and enqueues exactly one
// MarketEvent. When any symbol runs out of data the continuation flag drops,
// which cleanly ends the backtest's outer loop.
func (h *HistoricHandler) UpdateBars() error {
	for _, symbol := range h.symbols {
		i := h.cursor[symbol]
		if i >= len(h.series[symbol]) {
			h.continueBacktest = false

			continue
		}

		h.latest[symbol] = append(h.latest[symbol], h.series[symbol][i])
		h.cursor[symbol] = i + 1
	}

	h.queue.Push(types.NewMarketEvent())

	return nil
}

// Continue implements Handler.
func (h *HistoricHandler) Continue() bool {
	return h.continueBacktest
}

// Symbols implements Handler.
func (h *HistoricHandler) Symbols() []string {
	return h.symbols
}

// LatestBar implements Handler.
func (h *HistoricHandler) LatestBar(symbol string) (types.Bar, error) {
	bars, err := h.replayed(symbol)
	if err != nil {
		return types.Bar{}, err
	}

	return bars[len(bars)-1], nil
}

// LatestBars implements Handler. It returns up to n bars, oldest first.
func (h *HistoricHandler) LatestBars(symbol string, n int) ([]types.Bar, error) {
	bars, err := h.replayed(symbol)
	if err != nil {
		return nil, err
	}

	if n > len(bars) {
		n = len(bars)
	}

	return bars[len(bars)-n:], nil
}

// LatestBarTime implements Handler.
func (h *HistoricHandler) LatestBarTime(symbol string) (time.Time, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return time.Time{}, err
	}

	return bar.Time, nil
}

// LatestBarValue implements Handler.
func (h *HistoricHandler) LatestBarValue(symbol string, field types.BarField) (float64, error) {
	bar, err := h.LatestBar(symbol)
	if err != nil {
		return 0, err
	}

	return bar.Value(field)
}

// LatestBarsValues implements Handler.
func (h *HistoricHandler) LatestBarsValues(symbol string, field types.BarField, n int) ([]float64, error) {
	bars, err := h.LatestBars(symbol, n)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(bars))

	for _, bar := range bars {
		value, err := bar.Value(field)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

// CurrentPrice implements Handler. Historical replay prices at the latest
// close.
func (h *HistoricHandler) CurrentPrice(symbol string) (float64, error) {
	return h.LatestBarValue(symbol, types.BarFieldClose)
}

func (h *HistoricHandler) replayed(symbol string) ([]types.Bar, error) {
	bars, exists := h.latest[symbol]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "symbol %s is not in the data set", symbol)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoBarData, "no bars replayed yet for symbol %s", symbol)
	}

	return bars, nil
}

// Verify HistoricHandler implements the Handler interface.
var _ Handler = (*HistoricHandler)(nil)
