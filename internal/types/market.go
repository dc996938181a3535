package types

import (
	"time"

	"github.com/halcyonlab/halcyon/pkg/errors"
)

// Bar is one OHLCV observation for a fixed time interval.
type Bar struct {
	Time   time.Time `csv:"time"`
	Symbol string    `csv:"symbol"`
	Open   float64   `csv:"open"`
	High   float64   `csv:"high"`
	Low    float64   `csv:"low"`
	Close  float64   `csv:"close"`
	Volume float64   `csv:"volume"`
}

// BarField names a single value within a bar.
type BarField string

const (
	BarFieldOpen   BarField = "open"
	BarFieldHigh   BarField = "high"
	BarFieldLow    BarField = "low"
	BarFieldClose  BarField = "close"
	BarFieldVolume BarField = "volume"
)

// Value returns the named field of the bar.
func (b Bar) Value(field BarField) (float64, error) {
	switch field {
	case BarFieldOpen:
		return b.Open, nil
	case BarFieldHigh:
		return b.High, nil
	case BarFieldLow:
		return b.Low, nil
	case BarFieldClose:
		return b.Close, nil
	case BarFieldVolume:
		return b.Volume, nil
	default:
		return 0, errors.Newf(errors.ErrCodeUnknownBarField, "unknown bar field %q", field)
	}
}

type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Duration returns the bar interval as a time.Duration.
func (i Interval) Duration() (time.Duration, error) {
	switch i {
	case Interval1m:
		return time.Minute, nil
	case Interval5m:
		return 5 * time.Minute, nil
	case Interval15m:
		return 15 * time.Minute, nil
	case Interval30m:
		return 30 * time.Minute, nil
	case Interval1h:
		return time.Hour, nil
	case Interval4h:
		return 4 * time.Hour, nil
	case Interval1d:
		return 24 * time.Hour, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidInterval, "unknown interval %q", i)
	}
}

// PeriodsPerYear returns the number of bars in a year for this interval,
// used to annualize the Sharpe ratio.
func (i Interval) PeriodsPerYear() (float64, error) {
	d, err := i.Duration()
	if err != nil {
		return 0, err
	}

	const yearHours = 365 * 24

	return yearHours * float64(time.Hour) / float64(d), nil
}
