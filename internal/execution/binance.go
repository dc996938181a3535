package execution

import (
	"context"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/halcyonlab/halcyon/internal/events"
	"github.com/halcyonlab/halcyon/internal/logger"
	"github.com/halcyonlab/halcyon/internal/types"
	"github.com/halcyonlab/halcyon/pkg/errors"
)

// BinanceVenue tags fills produced by the Binance handler.
const BinanceVenue = "BINANCE"

// TradeAPI is the slice of an exchange's trading API the live handler needs.
// It exists so tests can substitute a fake exchange.
type TradeAPI interface {
	// CreateMarketOrder submits a market order and returns the executed
	// fills.
	CreateMarketOrder(ctx context.Context, symbol string, side binance.SideType, quantity float64) (*binance.CreateOrderResponse, error)
}

// BinanceExecutionHandler routes orders to Binance spot trading. Long and
// short lifecycles both collapse to plain buy and sell sides on the wire.
type BinanceExecutionHandler struct {
	ctx   context.Context
	queue *events.Queue
	api   TradeAPI
	log   *logger.Logger
}

// NewBinanceExecutionHandler creates a live execution handler. The context
// bounds every order call.
func NewBinanceExecutionHandler(ctx context.Context, queue *events.Queue, api TradeAPI, log *logger.Logger) *BinanceExecutionHandler {
	return &BinanceExecutionHandler{
		ctx:   ctx,
		queue: queue,
		api:   api,
		log:   log,
	}
}

// ExecuteOrder submits the order as a market order and enqueues a FillEvent
// built from the exchange's reported fills.
func (h *BinanceExecutionHandler) ExecuteOrder(order types.OrderEvent) error {
	side, err := orderSide(order.Direction)
	if err != nil {
		return err
	}

	response, err := h.api.CreateMarketOrder(h.ctx, order.Symbol, side, order.Quantity)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeOrderRejected, err, "failed to place %s order for %s", side, order.Symbol)
	}

	fill, err := fillFromResponse(order, response)
	if err != nil {
		return err
	}

	h.log.Info("order executed",
		zap.String("symbol", fill.Symbol),
		zap.String("direction", string(fill.Direction)),
		zap.Float64("quantity", fill.Quantity),
		zap.Float64("price", fill.FillCost),
		zap.Float64("fees", fill.Fees),
	)

	h.queue.Push(fill)

	return nil
}

func orderSide(direction types.TradeDirection) (binance.SideType, error) {
	switch direction {
	case types.DirectionBuy, types.DirectionShortCover:
		return binance.SideTypeBuy, nil
	case types.DirectionSell, types.DirectionShortSell:
		return binance.SideTypeSell, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidOrder, "unknown order direction %q", direction)
	}
}

// fillFromResponse condenses the exchange's partial fills into one FillEvent
// at the quantity-weighted average price, with commissions summed.
func fillFromResponse(order types.OrderEvent, response *binance.CreateOrderResponse) (types.FillEvent, error) {
	if len(response.Fills) == 0 {
		return types.FillEvent{}, errors.Newf(errors.ErrCodeOrderRejected, "order %d for %s reported no fills", response.OrderID, order.Symbol)
	}

	var totalQuantity, totalCost, totalFees float64

	for _, f := range response.Fills {
		quantity, err := strconv.ParseFloat(f.Quantity, 64)
		if err != nil {
			return types.FillEvent{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid fill quantity %q", f.Quantity)
		}

		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			return types.FillEvent{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid fill price %q", f.Price)
		}

		commission, err := strconv.ParseFloat(f.Commission, 64)
		if err != nil {
			return types.FillEvent{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid fill commission %q", f.Commission)
		}

		totalQuantity += quantity
		totalCost += quantity * price
		totalFees += commission
	}

	return types.FillEvent{
		FillID:    strconv.FormatInt(response.OrderID, 10),
		Timestamp: time.UnixMilli(response.TransactTime),
		Symbol:    order.Symbol,
		Venue:     BinanceVenue,
		Quantity:  totalQuantity,
		Direction: order.Direction,
		FillCost:  totalCost / totalQuantity,
		Fees:      totalFees,
	}, nil
}

// Verify BinanceExecutionHandler implements the Handler interface.
var _ Handler = (*BinanceExecutionHandler)(nil)

// BinanceTradeAPI implements TradeAPI against the Binance REST API.
type BinanceTradeAPI struct {
	client *binance.Client
}

// NewBinanceTradeAPI creates a trading API over a Binance client. Trading
// requires credentials.
func NewBinanceTradeAPI(apiKey, secretKey string) *BinanceTradeAPI {
	return &BinanceTradeAPI{
		client: binance.NewClient(apiKey, secretKey),
	}
}

// CreateMarketOrder implements TradeAPI.
func (b *BinanceTradeAPI) CreateMarketOrder(ctx context.Context, symbol string, side binance.SideType, quantity float64) (*binance.CreateOrderResponse, error) {
	return b.client.NewCreateOrderService().
		Symbol(symbol).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(quantity, 'f', -1, 64)).
		Do(ctx)
}

// Verify BinanceTradeAPI implements the TradeAPI interface.
var _ TradeAPI = (*BinanceTradeAPI)(nil)
