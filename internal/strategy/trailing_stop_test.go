package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongTrailingStopStartsBelowEntry(t *testing.T) {
	stop := NewLongTrailingStop(100, 0.02, 0.01)

	assert.InDelta(t, 98, stop.Stop(), 1e-9)
	assert.False(t, stop.Armed())
	assert.False(t, stop.ShouldExit(99))
	assert.True(t, stop.ShouldExit(98))
}

func TestLongTrailingStopArmsAtTakeProfit(t *testing.T) {
	stop := NewLongTrailingStop(100, 0.02, 0.01)

	// Below the take-profit threshold the floor stays put.
	stop.Update(100.5)
	assert.False(t, stop.Armed())
	assert.InDelta(t, 98, stop.Stop(), 1e-9)

	// At +1% the stop arms and trails the price.
	stop.Update(101)
	assert.True(t, stop.Armed())
	assert.InDelta(t, 101*0.98, stop.Stop(), 1e-9)
}

func TestLongTrailingStopIsMonotone(t *testing.T) {
	stop := NewLongTrailingStop(100, 0.02, 0.01)

	prices := []float64{101, 105, 103, 110, 104, 102}
	previous := stop.Stop()

	for _, price := range prices {
		floor := stop.Update(price)
		assert.GreaterOrEqual(t, floor, previous)
		previous = floor
	}

	// The highest price seen sets the floor; a pullback never lowers it.
	assert.InDelta(t, 110*0.98, stop.Stop(), 1e-9)
	assert.True(t, stop.ShouldExit(107))
}

func TestShortTrailingStopStartsAboveEntry(t *testing.T) {
	stop := NewShortTrailingStop(100, 0.02, 0.01)

	assert.InDelta(t, 102, stop.Stop(), 1e-9)
	assert.False(t, stop.ShouldExit(101))
	assert.True(t, stop.ShouldExit(102))
}

func TestShortTrailingStopIsMonotone(t *testing.T) {
	stop := NewShortTrailingStop(100, 0.02, 0.01)

	prices := []float64{99, 95, 97, 90, 96}
	previous := stop.Stop()

	for _, price := range prices {
		floor := stop.Update(price)
		assert.LessOrEqual(t, floor, previous)
		previous = floor
	}

	assert.InDelta(t, 90*1.02, stop.Stop(), 1e-9)
	assert.True(t, stop.ShouldExit(92))
	assert.False(t, stop.ShouldExit(91))
}
