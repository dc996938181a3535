package fees

// RateFee charges a fixed fraction of the fill value.
type RateFee struct {
	rate float64
}

// NewRateFee creates a rate-based fee model.
func NewRateFee(rate float64) Model {
	return &RateFee{rate: rate}
}

// Calculate returns rate * fillCost * quantity.
func (r *RateFee) Calculate(fillCost float64, quantity float64) float64 {
	return r.rate * fillCost * quantity
}
