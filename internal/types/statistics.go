package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EquityPoint is one row of the computed equity curve.
type EquityPoint struct {
	Time  time.Time `csv:"time"`
	Cash  float64   `csv:"cash"`
	Total float64   `csv:"total"`
	// Returns is the bar-over-bar percentage change of Total. NaN on the
	// first bar.
	Returns float64 `csv:"returns"`
	// EquityCurve is the cumulative product of (1 + Returns), base 1.0.
	EquityCurve float64 `csv:"equity_curve"`
	Drawdown    float64 `csv:"drawdown"`
}

type TradeSummary struct {
	// Count of all closed trades.
	TotalTrades int `yaml:"total_trades"`
	// Count of closed trades with positive return.
	WinningTrades int `yaml:"winning_trades"`
	// Count of closed trades with zero or negative return.
	LosingTrades int `yaml:"losing_trades"`
	// WinningTrades / LosingTrades. Zero when there are no losing trades.
	WinLossRatio float64 `yaml:"win_loss_ratio"`
	// Percentage of winning trades.
	PctWins float64 `yaml:"pct_wins"`
	// Percentage of losing trades.
	PctLosses float64 `yaml:"pct_losses"`
	// Average round-trip return across closed trades, in percent.
	AvgReturnPct float64 `yaml:"avg_return_pct"`
	// Average holding time across closed trades, in minutes.
	AvgDurationMinutes int `yaml:"avg_duration_minutes"`
}

type SummaryStats struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id"`
	// Timestamp is when the report was generated.
	Timestamp time.Time `yaml:"timestamp"`
	// Symbols traded during the run.
	Symbols []string `yaml:"symbols"`
	// TotalReturnPct is the final equity curve value minus one, in percent.
	TotalReturnPct float64 `yaml:"total_return_pct"`
	// SharpeRatio annualized with the bar interval's periods per year.
	SharpeRatio float64 `yaml:"sharpe_ratio"`
	// MaxDrawdownPct is the peak-to-trough decline of the equity curve, in percent.
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct"`
	// DrawdownDuration is the longest drawdown length in bars.
	DrawdownDuration int `yaml:"drawdown_duration"`
	// TotalFees accumulated over the run.
	TotalFees float64 `yaml:"total_fees"`
	// Trades summarizes the closed-trade ledger.
	Trades TradeSummary `yaml:"trades"`
	// Signals, Orders, Fills are the engine's event counters.
	Signals int `yaml:"signals"`
	Orders  int `yaml:"orders"`
	Fills   int `yaml:"fills"`
}

// WriteSummaryStats writes the report to a YAML file.
func WriteSummaryStats(path string, stats SummaryStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal summary stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary stats to file: %w", err)
	}

	return nil
}
