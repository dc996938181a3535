// Package portfolio implements the stateful core of the trading engine: the
// per-symbol position and holdings state machine, signal-to-order position
// sizing, fill accounting, the trade ledger, and end-of-run performance
// reporting.
package portfolio

import (
	"time"

	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/data"
	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// DefaultRiskFraction is the fraction of cash put at risk per full-strength
// signal.
const DefaultRiskFraction = 0.5

// SnapshotPublisher receives the holdings snapshot after every mark-to-market
// pass. Live runs use it to expose current balances; backtests leave it nil.
type SnapshotPublisher interface {
	PublishSnapshot(snapshot types.HoldingsSnapshot) error
}

// Portfolio owns all position, holdings, and trade state. Per symbol the
// state machine is OUT -> LONG -> OUT and OUT -> SHORT -> OUT; a position is
// nonzero exactly while its holding record is open.
type Portfolio struct {
	queue   *events.Queue
	handler data.Handler
	log     *logger.Logger

	symbols        []string
	startDate      time.Time
	initialCapital float64
	riskFraction   float64

	currentPositions map[string]float64
	allPositions     []types.PositionSnapshot

	currentHoldings map[string]types.Holding
	cash            float64
	total           float64
	fees            float64
	allHoldings     []types.HoldingsSnapshot

	trades *TradeBook

	// lastIndicators carries the indicator readings of the most recent
	// signal so they can be recorded on the trade opened by its fill.
	lastIndicators map[string]float64

	publisher SnapshotPublisher
}

// NewPortfolio creates a portfolio with all symbols flat and cash equal to
// the initial capital. The initial positions and holdings snapshots are
// tagged with the start date.
func NewPortfolio(queue *events.Queue, handler data.Handler, startDate time.Time, initialCapital float64, riskFraction float64, log *logger.Logger) *Portfolio {
	symbols := handler.Symbols()

	positions := make(map[string]float64, len(symbols))
	holdings := make(map[string]types.Holding, len(symbols))

	for _, symbol := range symbols {
		positions[symbol] = 0
		holdings[symbol] = types.NewHolding()
	}

	p := &Portfolio{
		queue:            queue,
		handler:          handler,
		log:              log,
		symbols:          symbols,
		startDate:        startDate,
		initialCapital:   initialCapital,
		riskFraction:     riskFraction,
		currentPositions: positions,
		allPositions:     nil,
		currentHoldings:  holdings,
		cash:             initialCapital,
		total:            initialCapital,
		fees:             0,
		allHoldings:      nil,
		trades:           NewTradeBook(),
		lastIndicators:   nil,
		publisher:        nil,
	}

	p.allPositions = append(p.allPositions, p.positionSnapshot(startDate))
	p.allHoldings = append(p.allHoldings, p.holdingsSnapshot(startDate, nil))

	return p
}

// SetSnapshotPublisher wires an optional snapshot publisher for live runs.
func (p *Portfolio) SetSnapshotPublisher(publisher SnapshotPublisher) {
	p.publisher = publisher
}

// UpdateAllPositionsHoldings appends a snapshot of current positions and a
// mark-to-market holdings snapshot, both tagged with the latest known bar
// timestamp. It is called once per MarketEvent, before any new orders are
// considered, so strategies read state that reflects the new bar. This step
// never touches cash.
func (p *Portfolio) UpdateAllPositionsHoldings() error {
	barTime, err := p.handler.LatestBarTime(p.symbols[0])
	if err != nil {
		return err
	}

	p.allPositions = append(p.allPositions, p.positionSnapshot(barTime))

	marketValues := make(map[string]float64, len(p.symbols))

	for _, symbol := range p.symbols {
		price, err := p.handler.CurrentPrice(symbol)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodePriceUnavailable) {
				// Temporarily unknown price: carry the last known value
				// forward rather than marking against a bogus quote.
				p.log.Warn("price unavailable, carrying last market value",
					zap.String("symbol", symbol),
				)

				marketValues[symbol] = p.currentHoldings[symbol].CurrentValue

				continue
			}

			return err
		}

		marketValues[symbol] = p.currentPositions[symbol] * price
	}

	snapshot := p.holdingsSnapshot(barTime, marketValues)
	p.allHoldings = append(p.allHoldings, snapshot)

	// Persist the marked values so a later price outage can carry them.
	for symbol, holding := range snapshot.Symbols {
		p.currentHoldings[symbol] = holding
	}

	if p.publisher != nil {
		if err := p.publisher.PublishSnapshot(snapshot); err != nil {
			p.log.Warn("failed to publish holdings snapshot", zap.Error(err))
		}
	}

	return nil
}

// SendOrder translates a SignalEvent into an OrderEvent with position sizing
// applied, and enqueues it. A signal that does not match the current
// position state is silently dropped: strategies may emit speculative
// signals without side effects.
func (p *Portfolio) SendOrder(signal types.SignalEvent) error {
	symbol := signal.Symbol

	currentQuantity, exists := p.currentPositions[symbol]
	if !exists {
		return errors.Newf(errors.ErrCodeSymbolNotFound, "symbol %s not tracked by portfolio", symbol)
	}

	price, err := p.handler.CurrentPrice(symbol)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodePriceUnavailable) {
			// No tradable price right now: skip the decision entirely.
			p.log.Warn("price unavailable, dropping signal",
				zap.String("symbol", symbol),
				zap.String("signal", string(signal.SignalType)),
			)

			return nil
		}

		return err
	}

	p.lastIndicators = signal.Indicators

	positionSize := p.cash * p.riskFraction * signal.Strength
	direction := p.currentHoldings[symbol].Direction

	var order *types.OrderEvent

	switch {
	case signal.SignalType == types.SignalTypeLong && currentQuantity == 0:
		order = &types.OrderEvent{
			Symbol:    symbol,
			OrderType: types.OrderTypeMarket,
			Quantity:  positionSize / price,
			Price:     price,
			Direction: types.DirectionBuy,
		}
	case signal.SignalType == types.SignalTypeExit && currentQuantity > 0 && direction == types.DirectionLong:
		order = &types.OrderEvent{
			Symbol:    symbol,
			OrderType: types.OrderTypeMarket,
			Quantity:  currentQuantity,
			Price:     price,
			Direction: types.DirectionSell,
		}
	case signal.SignalType == types.SignalTypeShort && currentQuantity == 0:
		order = &types.OrderEvent{
			Symbol:    symbol,
			OrderType: types.OrderTypeMarket,
			Quantity:  positionSize / price,
			Price:     price,
			Direction: types.DirectionShortSell,
		}
	case signal.SignalType == types.SignalTypeExitShort && currentQuantity > 0 && direction == types.DirectionShort:
		order = &types.OrderEvent{
			Symbol:    symbol,
			OrderType: types.OrderTypeMarket,
			Quantity:  currentQuantity,
			Price:     price,
			Direction: types.DirectionShortCover,
		}
	default:
		// Signal does not match the (state, type) table: intentional no-op.
		return nil
	}

	if err := order.Validate(); err != nil {
		return err
	}

	p.queue.Push(*order)

	return nil
}

// UpdateFromFill is the authoritative state transition: it applies a fill to
// positions first, then to holdings, cash, and the trade ledger.
func (p *Portfolio) UpdateFromFill(fill types.FillEvent) error {
	if _, exists := p.currentPositions[fill.Symbol]; !exists {
		return errors.Newf(errors.ErrCodeSymbolNotFound, "symbol %s not tracked by portfolio", fill.Symbol)
	}

	p.currentPositions[fill.Symbol] += fill.Direction.PositionSign() * fill.Quantity

	return p.updateHoldingsFromFill(fill)
}

func (p *Portfolio) updateHoldingsFromFill(fill types.FillEvent) error {
	cost := fill.Cost()
	holding := p.currentHoldings[fill.Symbol]

	barTime, err := p.handler.LatestBarTime(fill.Symbol)
	if err != nil {
		return err
	}

	switch fill.Direction {
	case types.DirectionBuy:
		holding.CurrentValue += cost
		holding.OpenDate = barTime
		holding.OpenPrice = cost
		holding.IsOpen = true
		holding.Direction = types.DirectionLong
		p.cash -= cost + fill.Fees
		p.total -= cost + fill.Fees

		if _, err := p.trades.Open(fill.Symbol, types.DirectionLong, fill.FillCost, cost, barTime, fill.Fees, p.lastIndicators); err != nil {
			return err
		}

	case types.DirectionSell:
		holding.CurrentValue -= cost
		holding.IsOpen = false
		holding.OpenPrice = 0
		holding.Direction = types.DirectionOut
		p.cash += cost - fill.Fees
		p.total += cost - fill.Fees

		if _, err := p.trades.Close(fill.Symbol, fill.FillCost, cost, barTime, fill.Fees); err != nil {
			return err
		}

	case types.DirectionShortSell:
		holding.CurrentValue += cost
		holding.OpenDate = barTime
		holding.OpenPrice = cost
		holding.IsOpen = true
		// The short's proceeds are locked in at entry and released on cover;
		// only the fee leaves cash now.
		holding.Exposition = cost
		holding.Direction = types.DirectionShort
		p.cash -= fill.Fees
		p.total -= fill.Fees

		if _, err := p.trades.Open(fill.Symbol, types.DirectionShort, fill.FillCost, cost, barTime, fill.Fees, p.lastIndicators); err != nil {
			return err
		}

	case types.DirectionShortCover:
		holding.CurrentValue -= cost
		holding.IsOpen = false
		p.cash += (holding.Exposition - cost) - fill.Fees
		p.total += (holding.Exposition - cost) - fill.Fees
		holding.OpenPrice = 0
		holding.Exposition = 0
		holding.Direction = types.DirectionOut

		if _, err := p.trades.Close(fill.Symbol, fill.FillCost, cost, barTime, fill.Fees); err != nil {
			return err
		}

	default:
		return errors.Newf(errors.ErrCodeInvalidFill, "unknown fill direction %q", fill.Direction)
	}

	p.fees += fill.Fees
	p.currentHoldings[fill.Symbol] = holding

	return nil
}

func (p *Portfolio) positionSnapshot(t time.Time) types.PositionSnapshot {
	positions := make(map[string]float64, len(p.currentPositions))
	for symbol, quantity := range p.currentPositions {
		positions[symbol] = quantity
	}

	return types.PositionSnapshot{
		Time:      t,
		Positions: positions,
	}
}

// holdingsSnapshot builds one equity-curve entry. marketValues maps symbol to
// the mark-to-market value of its position; nil means "value everything at
// zero exposure" (the initial snapshot). For shorts the unrealized P&L is the
// delta between locked-in proceeds and the current buy-back cost.
func (p *Portfolio) holdingsSnapshot(t time.Time, marketValues map[string]float64) types.HoldingsSnapshot {
	snapshot := types.HoldingsSnapshot{
		Time:    t,
		Cash:    p.cash,
		Total:   p.cash,
		Fees:    p.fees,
		Symbols: make(map[string]types.Holding, len(p.symbols)),
	}

	for _, symbol := range p.symbols {
		holding := p.currentHoldings[symbol]
		marketValue := marketValues[symbol]
		holding.CurrentValue = marketValue

		if holding.Direction == types.DirectionShort {
			snapshot.Total += holding.Exposition - marketValue
		} else {
			snapshot.Total += marketValue
		}

		snapshot.Symbols[symbol] = holding
	}

	return snapshot
}

// Position returns the current signed exposure magnitude for the symbol.
func (p *Portfolio) Position(symbol string) float64 {
	return p.currentPositions[symbol]
}

// Holding returns the current holding record for the symbol.
func (p *Portfolio) Holding(symbol string) (types.Holding, bool) {
	holding, exists := p.currentHoldings[symbol]

	return holding, exists
}

// Cash returns the current uninvested balance.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// Total returns cash plus fill-time position adjustments. The mark-to-market
// total for the latest bar lives in the newest holdings snapshot.
func (p *Portfolio) Total() float64 {
	return p.total
}

// Fees returns the cumulative fees paid.
func (p *Portfolio) Fees() float64 {
	return p.fees
}

// Trades returns the portfolio-owned trade ledger.
func (p *Portfolio) Trades() *TradeBook {
	return p.trades
}

// AllHoldings returns the append-only holdings time series.
func (p *Portfolio) AllHoldings() []types.HoldingsSnapshot {
	return p.allHoldings
}

// AllPositions returns the append-only positions time series.
func (p *Portfolio) AllPositions() []types.PositionSnapshot {
	return p.allPositions
}
