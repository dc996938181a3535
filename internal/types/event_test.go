package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/halcyonlab/halcyon/pkg/errors"
)

func TestPositionSign(t *testing.T) {
	tests := []struct {
		direction TradeDirection
		want      float64
	}{
		{direction: DirectionBuy, want: 1},
		{direction: DirectionShortSell, want: 1},
		{direction: DirectionSell, want: -1},
		{direction: DirectionShortCover, want: -1},
		{direction: TradeDirection("HOLD"), want: 0},
	}

	for _, tc := range tests {
		t.Run(string(tc.direction), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.direction.PositionSign())
		})
	}
}

func TestEventTypes(t *testing.T) {
	assert.Equal(t, EventTypeMarket, NewMarketEvent().Type())
	assert.Equal(t, EventTypeSignal, SignalEvent{}.Type())
	assert.Equal(t, EventTypeOrder, OrderEvent{}.Type())
	assert.Equal(t, EventTypeFill, FillEvent{}.Type())
}

func TestOrderEventValidate(t *testing.T) {
	valid := OrderEvent{
		Symbol:    "BTCUSDT",
		OrderType: OrderTypeMarket,
		Quantity:  10,
		Price:     50,
		Direction: DirectionBuy,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*OrderEvent)
	}{
		{name: "missing symbol", mutate: func(o *OrderEvent) { o.Symbol = "" }},
		{name: "zero quantity", mutate: func(o *OrderEvent) { o.Quantity = 0 }},
		{name: "negative quantity", mutate: func(o *OrderEvent) { o.Quantity = -1 }},
		{name: "zero price", mutate: func(o *OrderEvent) { o.Price = 0 }},
		{name: "unknown direction", mutate: func(o *OrderEvent) { o.Direction = "HOLD" }},
		{name: "unknown order type", mutate: func(o *OrderEvent) { o.OrderType = "STOP" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := valid
			tc.mutate(&order)

			err := order.Validate()
			assert.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidOrder))
		})
	}
}

func TestFillEventCost(t *testing.T) {
	fill := FillEvent{FillCost: 50, Quantity: 10}
	assert.InDelta(t, 500, fill.Cost(), 1e-9)
}
