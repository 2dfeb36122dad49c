package draft

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
)

// Stage marks how far an in-progress booking construction has advanced.
// Later stages imply the earlier sections are filled in.
type Stage string

const (
	StageVehicleSelected Stage = "vehicle_selected"
	StageDatesSelected   Stage = "dates_selected"
	StageExtrasSelected  Stage = "extras_selected"
	StagePriced          Stage = "priced"
)

// IsValid returns true if the stage is recognized.
func (s Stage) IsValid() bool {
	switch s {
	case StageVehicleSelected, StageDatesSelected, StageExtrasSelected, StagePriced:
		return true
	}
	return false
}

// Payload captures the in-progress selections of a booking under
// construction. The engine stores it as an opaque document and redisplays
// it; it is validated against availability only when the draft is submitted,
// never on save, so a draft may legitimately hold a now-conflicting
// selection until the user tries to finalize it.
type Payload struct {
	Stage      Stage                 `json:"stage"`
	CustomerID *uuid.UUID            `json:"customer_id,omitempty"`
	Vehicle    *VehicleSelection     `json:"vehicle,omitempty"`
	Dates      *DateSelection        `json:"dates,omitempty"`
	Extras     []booking.ExtraOption `json:"extras,omitempty"`
	Pricing    *PricingSummary       `json:"pricing,omitempty"`
	Notes      string                `json:"notes,omitempty"`
}

// VehicleSelection records the vehicle chosen for the draft.
type VehicleSelection struct {
	VehicleID      uuid.UUID `json:"vehicle_id"`
	Name           string    `json:"name"`
	DailyRateCents int64     `json:"daily_rate_cents"`
}

// DateSelection records the requested rental period.
type DateSelection struct {
	Pickup  time.Time `json:"pickup"`
	Dropoff time.Time `json:"dropoff"`
}

// PricingSummary records the computed quote for a priced draft.
type PricingSummary struct {
	Days       int    `json:"days"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

// Validate checks the payload's internal consistency: the stage must be
// recognized and every section the stage implies must be present. Sections
// beyond the stage are allowed (a user may have backtracked).
func (p Payload) Validate() error {
	if !p.Stage.IsValid() {
		return fmt.Errorf("unknown draft stage: %s", p.Stage)
	}
	switch p.Stage {
	case StagePriced:
		if p.Pricing == nil {
			return fmt.Errorf("priced draft is missing pricing summary")
		}
		fallthrough
	case StageExtrasSelected, StageDatesSelected:
		if p.Dates == nil {
			return fmt.Errorf("draft at stage %s is missing date selection", p.Stage)
		}
		fallthrough
	case StageVehicleSelected:
		if p.Vehicle == nil {
			return fmt.Errorf("draft at stage %s is missing vehicle selection", p.Stage)
		}
	}
	return nil
}

// ReadyForSubmission reports whether the draft holds everything a booking
// creation needs: a vehicle, a customer, dates and a price.
func (p Payload) ReadyForSubmission() bool {
	return p.Stage == StagePriced &&
		p.Vehicle != nil && p.Dates != nil && p.Pricing != nil && p.CustomerID != nil
}
