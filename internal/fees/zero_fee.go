package fees

// ZeroFee implements the Model interface with zero commission.
type ZeroFee struct{}

// NewZeroFee creates a new zero fee model.
func NewZeroFee() Model {
	return &ZeroFee{}
}

// Calculate returns 0 for any fill.
func (z *ZeroFee) Calculate(fillCost float64, quantity float64) float64 {
	return 0.0
}
