package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/halcyonlab/halcyon/pkg/errors"
)

func TestBarValue(t *testing.T) {
	bar := Bar{Open: 1, High: 4, Low: 0.5, Close: 3, Volume: 100}

	tests := []struct {
		field BarField
		want  float64
	}{
		{field: BarFieldOpen, want: 1},
		{field: BarFieldHigh, want: 4},
		{field: BarFieldLow, want: 0.5},
		{field: BarFieldClose, want: 3},
		{field: BarFieldVolume, want: 100},
	}

	for _, tc := range tests {
		t.Run(string(tc.field), func(t *testing.T) {
			value, err := bar.Value(tc.field)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, value)
		})
	}

	_, err := bar.Value("vwap")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownBarField))
}

func TestIntervalDuration(t *testing.T) {
	tests := []struct {
		interval Interval
		want     time.Duration
	}{
		{interval: Interval1m, want: time.Minute},
		{interval: Interval5m, want: 5 * time.Minute},
		{interval: Interval15m, want: 15 * time.Minute},
		{interval: Interval30m, want: 30 * time.Minute},
		{interval: Interval1h, want: time.Hour},
		{interval: Interval4h, want: 4 * time.Hour},
		{interval: Interval1d, want: 24 * time.Hour},
	}

	for _, tc := range tests {
		t.Run(string(tc.interval), func(t *testing.T) {
			d, err := tc.interval.Duration()
			assert.NoError(t, err)
			assert.Equal(t, tc.want, d)
		})
	}

	_, err := Interval("2w").Duration()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInterval))
}

func TestIntervalPeriodsPerYear(t *testing.T) {
	daily, err := Interval1d.PeriodsPerYear()
	assert.NoError(t, err)
	assert.InDelta(t, 365, daily, 1e-9)

	hourly, err := Interval1h.PeriodsPerYear()
	assert.NoError(t, err)
	assert.InDelta(t, 365*24, hourly, 1e-9)
}
