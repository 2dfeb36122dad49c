package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a vehicle for catalog and pricing purposes.
type Category string

const (
	CategoryEconomy Category = "economy"
	CategoryCompact Category = "compact"
	CategorySUV     Category = "suv"
	CategoryVan     Category = "van"
	CategoryLuxury  Category = "luxury"
)

// IsValid returns true if the category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEconomy, CategoryCompact, CategorySUV, CategoryVan, CategoryLuxury:
		return true
	}
	return false
}

// Vehicle is the engine's read model of a fleet vehicle. The catalog
// collaborator owns these records; the engine only reads them and applies
// maintenance/blocked flag changes arriving on the fleet event stream.
type Vehicle struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Plate          string    `json:"plate"`
	Category       Category  `json:"category"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	InMaintenance  bool      `json:"in_maintenance"`
	Blocked        bool      `json:"blocked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Operational returns true if the vehicle can be offered for rental at all.
// Date-range availability is a separate question answered by the booking
// repository.
func (v *Vehicle) Operational() bool {
	return !v.InMaintenance && !v.Blocked
}
