package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/halcyonlab/halcyon/pkg/errors"
)

type EventType string

const (
	EventTypeMarket EventType = "MARKET"
	EventTypeSignal EventType = "SIGNAL"
	EventTypeOrder  EventType = "ORDER"
	EventTypeFill   EventType = "FILL"
)

type SignalType string

const (
	// SignalTypeLong tells the portfolio to open a long position.
	SignalTypeLong SignalType = "LONG"
	// SignalTypeShort tells the portfolio to open a short position.
	SignalTypeShort SignalType = "SHORT"
	// SignalTypeExit tells the portfolio to close an open long position.
	SignalTypeExit SignalType = "EXIT"
	// SignalTypeExitShort tells the portfolio to close an open short position.
	SignalTypeExitShort SignalType = "EXITSHORT"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// TradeDirection is the side of an order or fill. BUY/SELL drive the long
// lifecycle, SHORTSELL/SHORTCOVER the short one.
type TradeDirection string

const (
	DirectionBuy        TradeDirection = "BUY"
	DirectionSell       TradeDirection = "SELL"
	DirectionShortSell  TradeDirection = "SHORTSELL"
	DirectionShortCover TradeDirection = "SHORTCOVER"
)

// PositionSign returns +1 for fills that increase the tracked exposure
// magnitude (BUY, SHORTSELL) and -1 for fills that reduce it (SELL,
// SHORTCOVER). Exposure is tracked as a magnitude plus a direction tag, so
// a short entry still counts positive here.
func (d TradeDirection) PositionSign() float64 {
	switch d {
	case DirectionBuy, DirectionShortSell:
		return 1
	case DirectionSell, DirectionShortCover:
		return -1
	default:
		return 0
	}
}

// Event is the message protocol shared by every engine component. Events are
// immutable once constructed and flow through a single FIFO queue.
type Event interface {
	Type() EventType
}

// MarketEvent signals that new bars are available. It carries no payload.
type MarketEvent struct{}

func NewMarketEvent() MarketEvent {
	return MarketEvent{}
}

func (MarketEvent) Type() EventType { return EventTypeMarket }

// SignalEvent is produced by a strategy and consumed by the portfolio, which
// decides whether the current position state permits an order.
type SignalEvent struct {
	StrategyID string
	Symbol     string
	Timestamp  time.Time
	SignalType SignalType
	// Strength scales the position size at the portfolio level.
	Strength float64
	// Indicators carries the strategy's indicator readings at signal time,
	// recorded on the trade for post-run analysis.
	Indicators map[string]float64
}

func (SignalEvent) Type() EventType { return EventTypeSignal }

// OrderEvent is produced by the portfolio after position sizing and consumed
// by an execution handler.
type OrderEvent struct {
	Symbol    string         `validate:"required"`
	OrderType OrderType      `validate:"required,oneof=MARKET LIMIT"`
	Quantity  float64        `validate:"required,gt=0"`
	Price     float64        `validate:"required,gt=0"`
	Direction TradeDirection `validate:"required,oneof=BUY SELL SHORTSELL SHORTCOVER"`
}

func (OrderEvent) Type() EventType { return EventTypeOrder }

// Validate validates the OrderEvent fields.
func (o *OrderEvent) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order event", err)
	}

	return nil
}

// FillEvent confirms an executed order. FillCost is the unit execution price;
// Fees is the total commission for the fill.
type FillEvent struct {
	FillID    string
	Timestamp time.Time
	Symbol    string
	Venue     string
	Quantity  float64
	Direction TradeDirection
	FillCost  float64
	Fees      float64
}

func (FillEvent) Type() EventType { return EventTypeFill }

// Cost returns the total monetary value of the fill excluding fees.
func (f *FillEvent) Cost() float64 {
	return f.FillCost * f.Quantity
}
