package fees

// Model calculates the commission charged on a fill.
type Model interface {
	// Calculate returns the fee for a fill of the given unit price and
	// quantity.
	Calculate(fillCost float64, quantity float64) float64
}

type Schedule string

const (
	ScheduleRate Schedule = "rate"
	ScheduleZero Schedule = "zero"
)

var AllSchedules = []any{
	ScheduleRate,
	ScheduleZero,
}

// DefaultFeeRate is the taker fee fraction applied to the fill value.
const DefaultFeeRate = 0.00075

// GetFeeModel returns the fee model for the configured schedule.
func GetFeeModel(schedule Schedule) Model {
	switch schedule {
	case ScheduleRate:
		return NewRateFee(DefaultFeeRate)
	case ScheduleZero:
		return NewZeroFee()
	default:
		return NewRateFee(DefaultFeeRate)
	}
}
