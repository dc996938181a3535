package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTradeReturn(t *testing.T) {
	tests := []struct {
		name  string
		trade Trade
		want  float64
	}{
		{
			name:  "long gain",
			trade: Trade{Direction: DirectionLong, OpenPrice: 500, ClosePrice: 600},
			want:  0.2,
		},
		{
			name:  "long loss",
			trade: Trade{Direction: DirectionLong, OpenPrice: 500, ClosePrice: 450},
			want:  -0.1,
		},
		{
			name:  "short gain",
			trade: Trade{Direction: DirectionShort, OpenPrice: 500, ClosePrice: 400},
			want:  0.25,
		},
		{
			name:  "short loss",
			trade: Trade{Direction: DirectionShort, OpenPrice: 400, ClosePrice: 500},
			want:  -0.2,
		},
		{
			name:  "still open",
			trade: Trade{Direction: DirectionLong, OpenPrice: 500, ClosePrice: 600, IsOpen: true},
			want:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, tc.trade.Return(), 1e-9)
		})
	}
}

func TestTradeIsWin(t *testing.T) {
	win := Trade{Direction: DirectionLong, OpenPrice: 100, ClosePrice: 110}
	assert.True(t, win.IsWin())

	loss := Trade{Direction: DirectionShort, OpenPrice: 100, ClosePrice: 110}
	assert.False(t, loss.IsWin())
}

func TestTradeDuration(t *testing.T) {
	open := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	trade := Trade{OpenDate: open, CloseDate: open.Add(90 * time.Minute)}
	assert.Equal(t, 90*time.Minute, trade.Duration())

	stillOpen := Trade{OpenDate: open, IsOpen: true}
	assert.Zero(t, stillOpen.Duration())
}
