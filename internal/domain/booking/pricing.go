package booking

import "fmt"

// ExtraOption is an optional add-on billed per rental day.
type ExtraOption string

const (
	ExtraChildSeat        ExtraOption = "child_seat"
	ExtraGPS              ExtraOption = "gps"
	ExtraAdditionalDriver ExtraOption = "additional_driver"
	ExtraFullInsurance    ExtraOption = "full_insurance"
)

// IsValid returns true if the extra option is recognized.
func (e ExtraOption) IsValid() bool {
	switch e {
	case ExtraChildSeat, ExtraGPS, ExtraAdditionalDriver, ExtraFullInsurance:
		return true
	}
	return false
}

// PricingStrategy defines the interface for calculating rental prices.
type PricingStrategy interface {
	// Calculate returns the total price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	DailyRateCents int64
	Days           int
	Extras         []ExtraOption
}

// StandardPricingStrategy implements the default rental pricing.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate computes the total price in cents: the vehicle's daily base rate
// times the number of rental days, plus per-day surcharges for each extra.
func (s *StandardPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.Days <= 0 {
		return 0, fmt.Errorf("rental days must be positive")
	}
	if params.DailyRateCents <= 0 {
		return 0, fmt.Errorf("daily rate must be positive")
	}

	total := params.DailyRateCents * int64(params.Days)
	for _, extra := range params.Extras {
		surcharge, err := extraSurcharge(extra)
		if err != nil {
			return 0, err
		}
		total += surcharge * int64(params.Days)
	}
	return total, nil
}

// extraSurcharge returns the per-day surcharge in cents for an extra.
func extraSurcharge(extra ExtraOption) (int64, error) {
	switch extra {
	case ExtraChildSeat:
		return 500, nil
	case ExtraGPS:
		return 700, nil
	case ExtraAdditionalDriver:
		return 1000, nil
	case ExtraFullInsurance:
		return 2500, nil
	default:
		return 0, fmt.Errorf("unknown extra option for pricing: %s", extra)
	}
}
