package strategy

import "github.com/halcyonlab/halcyon/internal/types"

// TrailingStop is the explicit state of a ratcheting stop-loss. The floor
// only ever moves in the position's favor: it is monotonically non-decreasing
// for longs and non-increasing for shorts. The stop starts at the entry price
// offset by the stop-loss fraction and only begins trailing once the position
// is in profit by the take-profit fraction.
type TrailingStop struct {
	direction types.PositionDirection
	openPrice float64
	pctSL     float64
	pctTP     float64
	floor     float64
	armed     bool
}

// NewLongTrailingStop creates a trailing stop for a long entry at openPrice.
func NewLongTrailingStop(openPrice, pctSL, pctTP float64) *TrailingStop {
	return &TrailingStop{
		direction: types.DirectionLong,
		openPrice: openPrice,
		pctSL:     pctSL,
		pctTP:     pctTP,
		floor:     openPrice * (1 - pctSL),
		armed:     false,
	}
}

// NewShortTrailingStop creates a trailing stop for a short entry at openPrice.
func NewShortTrailingStop(openPrice, pctSL, pctTP float64) *TrailingStop {
	return &TrailingStop{
		direction: types.DirectionShort,
		openPrice: openPrice,
		pctSL:     pctSL,
		pctTP:     pctTP,
		floor:     openPrice * (1 + pctSL),
		armed:     false,
	}
}

// Update ratchets the stop for the current price and returns the new stop
// level.
func (t *TrailingStop) Update(currentPrice float64) float64 {
	switch t.direction {
	case types.DirectionLong:
		returns := currentPrice/t.openPrice - 1
		if returns >= t.pctTP {
			t.armed = true

			candidate := currentPrice * (1 - t.pctSL)
			if candidate > t.floor {
				t.floor = candidate
			}
		}
	case types.DirectionShort:
		returns := t.openPrice/currentPrice - 1
		if returns >= t.pctTP {
			t.armed = true

			candidate := currentPrice * (1 + t.pctSL)
			if candidate < t.floor {
				t.floor = candidate
			}
		}
	}

	return t.floor
}

// Stop returns the current stop level without updating it.
func (t *TrailingStop) Stop() float64 {
	return t.floor
}

// Armed reports whether the take-profit threshold has been reached and the
// stop has started trailing.
func (t *TrailingStop) Armed() bool {
	return t.armed
}

// ShouldExit reports whether the current price has crossed the stop: at or
// below it for longs, at or above it for shorts.
func (t *TrailingStop) ShouldExit(currentPrice float64) bool {
	switch t.direction {
	case types.DirectionLong:
		return currentPrice <= t.floor
	case types.DirectionShort:
		return currentPrice >= t.floor
	default:
		return false
	}
}
