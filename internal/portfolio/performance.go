package portfolio

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// EquityCurve builds the time-indexed equity series from the holdings
// snapshots. Returns on the first bar are NaN; the curve is the cumulative
// product of (1 + returns) with base 1.0; drawdown is measured against the
// running high-water mark of the curve.
func (p *Portfolio) EquityCurve() ([]types.EquityPoint, error) {
	if len(p.allHoldings) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyEquityCurve, "no holdings snapshots recorded")
	}

	curve := make([]types.EquityPoint, 0, len(p.allHoldings))

	equity := 1.0
	highWaterMark := 1.0

	for i, snapshot := range p.allHoldings {
		point := types.EquityPoint{
			Time:        snapshot.Time,
			Cash:        snapshot.Cash,
			Total:       snapshot.Total,
			Returns:     math.NaN(),
			EquityCurve: equity,
			Drawdown:    0,
		}

		if i > 0 {
			prev := p.allHoldings[i-1].Total
			if prev != 0 {
				point.Returns = snapshot.Total/prev - 1
				equity *= 1 + point.Returns
			}

			point.EquityCurve = equity
		}

		if equity > highWaterMark {
			highWaterMark = equity
		}

		point.Drawdown = highWaterMark - equity
		curve = append(curve, point)
	}

	return curve, nil
}

// SummaryStats derives the end-of-run performance report from the equity
// curve and the closed-trade ledger. The counters are the engine's
// signal/order/fill totals.
func (p *Portfolio) SummaryStats(interval types.Interval, signals, orders, fills int) (types.SummaryStats, error) {
	curve, err := p.EquityCurve()
	if err != nil {
		return types.SummaryStats{}, err
	}

	periods, err := interval.PeriodsPerYear()
	if err != nil {
		return types.SummaryStats{}, err
	}

	returns := make([]float64, 0, len(curve))

	for _, point := range curve {
		if !math.IsNaN(point.Returns) {
			returns = append(returns, point.Returns)
		}
	}

	maxDrawdown, drawdownDuration := maxDrawdownAndDuration(curve)

	stats := types.SummaryStats{
		ID:               uuid.New().String(),
		Timestamp:        time.Now(),
		Symbols:          p.symbols,
		TotalReturnPct:   (curve[len(curve)-1].EquityCurve - 1) * 100,
		SharpeRatio:      sharpeRatio(returns, periods),
		MaxDrawdownPct:   maxDrawdown * 100,
		DrawdownDuration: drawdownDuration,
		TotalFees:        p.fees,
		Trades:           p.tradeSummary(),
		Signals:          signals,
		Orders:           orders,
		Fills:            fills,
	}

	return stats, nil
}

func (p *Portfolio) tradeSummary() types.TradeSummary {
	closed := p.trades.Closed()

	summary := types.TradeSummary{
		TotalTrades:        len(closed),
		WinningTrades:      0,
		LosingTrades:       0,
		WinLossRatio:       0,
		PctWins:            0,
		PctLosses:          0,
		AvgReturnPct:       0,
		AvgDurationMinutes: 0,
	}

	if len(closed) == 0 {
		return summary
	}

	returnSum := decimal.Zero

	var durationSum time.Duration

	for i := range closed {
		trade := &closed[i]
		if trade.IsWin() {
			summary.WinningTrades++
		} else {
			summary.LosingTrades++
		}

		returnSum = returnSum.Add(decimal.NewFromFloat(trade.Return()))
		durationSum += trade.Duration()
	}

	if summary.LosingTrades > 0 {
		summary.WinLossRatio = float64(summary.WinningTrades) / float64(summary.LosingTrades)
	}

	summary.PctWins = float64(summary.WinningTrades) / float64(len(closed)) * 100
	summary.PctLosses = float64(summary.LosingTrades) / float64(len(closed)) * 100

	avgReturn, _ := returnSum.Div(decimal.NewFromInt(int64(len(closed)))).Float64()
	summary.AvgReturnPct = avgReturn * 100
	summary.AvgDurationMinutes = int(durationSum.Minutes()) / len(closed)

	return summary
}

// sharpeRatio annualizes the mean/stddev of per-bar returns by the square
// root of the bar count per year. Returns 0 when the deviation is zero.
func sharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}

	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return math.Sqrt(periodsPerYear) * mean / std
}

// maxDrawdownAndDuration returns the deepest drawdown of the equity curve and
// the longest stretch of consecutive bars spent below the high-water mark.
func maxDrawdownAndDuration(curve []types.EquityPoint) (float64, int) {
	var maxDrawdown float64

	var longest, current int

	for _, point := range curve {
		if point.Drawdown > maxDrawdown {
			maxDrawdown = point.Drawdown
		}

		if point.Drawdown > 0 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}

	return maxDrawdown, longest
}
