package execution

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/data"
	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/fees"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
)

// SimulatedVenue tags fills produced by the simulated handler.
const SimulatedVenue = "SIMULATED"

// SimulatedExecutionHandler fills every order instantly at its requested
// price. It models fees but not slippage or latency, which keeps backtest
// results attributable to the strategy alone.
type SimulatedExecutionHandler struct {
	queue   *events.Queue
	handler data.Handler
	fees    fees.Model
	log     *logger.Logger
}

// NewSimulatedExecutionHandler creates a simulated venue charging fees per
// the given model.
func NewSimulatedExecutionHandler(queue *events.Queue, handler data.Handler, feeModel fees.Model, log *logger.Logger) *SimulatedExecutionHandler {
	return &SimulatedExecutionHandler{
		queue:   queue,
		handler: handler,
		fees:    feeModel,
		log:     log,
	}
}

// ExecuteOrder fills the order at its requested price and enqueues the
// FillEvent. The fill is stamped with the latest bar time so simulated fills
// line up with the replayed series.
func (h *SimulatedExecutionHandler) ExecuteOrder(order types.OrderEvent) error {
	barTime, err := h.handler.LatestBarTime(order.Symbol)
	if err != nil {
		return err
	}

	fill := types.FillEvent{
		FillID:    uuid.New().String(),
		Timestamp: barTime,
		Symbol:    order.Symbol,
		Venue:     SimulatedVenue,
		Quantity:  order.Quantity,
		Direction: order.Direction,
		FillCost:  order.Price,
		Fees:      h.fees.Calculate(order.Price, order.Quantity),
	}

	h.log.Debug("order filled",
		zap.String("symbol", fill.Symbol),
		zap.String("direction", string(fill.Direction)),
		zap.Float64("quantity", fill.Quantity),
		zap.Float64("price", fill.FillCost),
		zap.Float64("fees", fill.Fees),
	)

	h.queue.Push(fill)

	return nil
}

// Verify SimulatedExecutionHandler implements the Handler interface.
var _ Handler = (*SimulatedExecutionHandler)(nil)
