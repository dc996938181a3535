package execution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlab/halcyon/internal/data"
	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/fees"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
)

// stubHandler provides just enough of data.Handler to stamp fills.
type stubHandler struct {
	barTime time.Time
}

func (s *stubHandler) UpdateBars() error { return nil }
func (s *stubHandler) Continue() bool    { return true }
func (s *stubHandler) Symbols() []string { return []string{"BTCUSDT"} }

func (s *stubHandler) LatestBar(symbol string) (types.Bar, error) {
	return types.Bar{Time: s.barTime, Symbol: symbol}, nil
}

func (s *stubHandler) LatestBars(symbol string, n int) ([]types.Bar, error) {
	return nil, nil
}

func (s *stubHandler) LatestBarTime(symbol string) (time.Time, error) {
	return s.barTime, nil
}

func (s *stubHandler) LatestBarValue(symbol string, field types.BarField) (float64, error) {
	return 0, nil
}

func (s *stubHandler) LatestBarsValues(symbol string, field types.BarField, n int) ([]float64, error) {
	return nil, nil
}

func (s *stubHandler) CurrentPrice(symbol string) (float64, error) {
	return 0, nil
}

var _ data.Handler = (*stubHandler)(nil)

func TestSimulatedExecutionFillsAtOrderPrice(t *testing.T) {
	queue := events.NewQueue()
	barTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	handler := NewSimulatedExecutionHandler(queue, &stubHandler{barTime: barTime}, fees.NewRateFee(fees.DefaultFeeRate), logger.NewNopLogger())

	order := types.OrderEvent{
		Symbol:    "BTCUSDT",
		OrderType: types.OrderTypeMarket,
		Quantity:  10,
		Price:     50,
		Direction: types.DirectionBuy,
	}
	require.NoError(t, handler.ExecuteOrder(order))

	// Exactly one fill per order.
	require.Equal(t, 1, queue.Len())

	event, _ := queue.Pop()
	fill, ok := event.(types.FillEvent)
	require.True(t, ok)

	assert.NotEmpty(t, fill.FillID)
	assert.Equal(t, barTime, fill.Timestamp)
	assert.Equal(t, SimulatedVenue, fill.Venue)
	assert.Equal(t, types.DirectionBuy, fill.Direction)
	// No slippage: the fill price is the order price.
	assert.InDelta(t, 50, fill.FillCost, 1e-9)
	assert.InDelta(t, 10, fill.Quantity, 1e-9)
	assert.InDelta(t, 0.375, fill.Fees, 1e-9)
	assert.InDelta(t, 500, fill.Cost(), 1e-9)
}

func TestSimulatedExecutionZeroFeeModel(t *testing.T) {
	queue := events.NewQueue()
	handler := NewSimulatedExecutionHandler(queue, &stubHandler{barTime: time.Now()}, fees.NewZeroFee(), logger.NewNopLogger())

	order := types.OrderEvent{
		Symbol:    "BTCUSDT",
		OrderType: types.OrderTypeMarket,
		Quantity:  4,
		Price:     25,
		Direction: types.DirectionShortSell,
	}
	require.NoError(t, handler.ExecuteOrder(order))

	event, _ := queue.Pop()
	fill := event.(types.FillEvent)
	assert.Zero(t, fill.Fees)
	assert.Equal(t, types.DirectionShortSell, fill.Direction)
}
