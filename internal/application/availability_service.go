package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
)

// OccupiedIntervalDTO is one slot held against a vehicle inside a window.
type OccupiedIntervalDTO struct {
	BookingID uuid.UUID `json:"booking_id"`
	Pickup    time.Time `json:"pickup"`
	Dropoff   time.Time `json:"dropoff"`
	Status    string    `json:"status"`
}

// AvailabilityDTO answers a single can-this-vehicle-be-booked query. When the
// range is taken, Conflict describes the first booking holding it.
type AvailabilityDTO struct {
	VehicleID uuid.UUID            `json:"vehicle_id"`
	Pickup    time.Time            `json:"pickup"`
	Dropoff   time.Time            `json:"dropoff"`
	Available bool                 `json:"available"`
	Conflict  *OccupiedIntervalDTO `json:"conflict,omitempty"`
}

// FleetStatsDTO is the fleet snapshot for today: every vehicle in scope
// falls into exactly one bucket. Category narrows the scope when set.
type FleetStatsDTO struct {
	Date        time.Time              `json:"date"`
	Category    vehicleDomain.Category `json:"category,omitempty"`
	Total       int                    `json:"total"`
	Available   int                    `json:"available"`
	Reserved    int                    `json:"reserved"`
	Rented      int                    `json:"rented"`
	Maintenance int                    `json:"maintenance"`
	Blocked     int                    `json:"blocked"`
}

// AvailabilityService answers availability queries over the booking index
// merged with the vehicle catalog's operational flags.
type AvailabilityService struct {
	bookings bookingDomain.Repository
	catalog  vehicleDomain.Catalog
	logger   *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(bookings bookingDomain.Repository, catalog vehicleDomain.Catalog, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		bookings: bookings,
		catalog:  catalog,
		logger:   logger,
	}
}

// IsAvailable reports whether the vehicle is free over the given range. An
// optional excludeID ignores one booking, so a reschedule probe does not
// collide with the booking being moved. The answer is advisory; creation
// re-checks inside its critical section.
func (s *AvailabilityService) IsAvailable(ctx context.Context, vehicleID uuid.UUID, pickup, dropoff time.Time, excludeID *uuid.UUID) (*AvailabilityDTO, error) {
	period, err := daterange.New(pickup, dropoff)
	if err != nil {
		return nil, err
	}

	if _, err := s.catalog.GetVehicle(ctx, vehicleID); err != nil {
		return nil, asUnknownReference(err, "vehicle", vehicleID)
	}

	conflict, err := s.bookings.FindOverlapping(ctx, vehicleID, period, excludeID)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityDTO{
		VehicleID: vehicleID,
		Pickup:    period.Pickup,
		Dropoff:   period.Dropoff,
		Available: conflict == nil,
	}
	if conflict != nil {
		result.Conflict = &OccupiedIntervalDTO{
			BookingID: conflict.ID(),
			Pickup:    conflict.Period().Pickup,
			Dropoff:   conflict.Period().Dropoff,
			Status:    string(conflict.Status()),
		}
	}
	return result, nil
}

// ListOccupied returns the slots held against a vehicle during the given
// month, for rendering a booking calendar.
func (s *AvailabilityService) ListOccupied(ctx context.Context, vehicleID uuid.UUID, month time.Month, year int) ([]OccupiedIntervalDTO, error) {
	if _, err := s.catalog.GetVehicle(ctx, vehicleID); err != nil {
		return nil, asUnknownReference(err, "vehicle", vehicleID)
	}

	window := daterange.Month(month, year)
	bookings, err := s.bookings.ListOccupied(ctx, vehicleID, window)
	if err != nil {
		return nil, err
	}

	intervals := make([]OccupiedIntervalDTO, len(bookings))
	for i, bk := range bookings {
		intervals[i] = OccupiedIntervalDTO{
			BookingID: bk.ID(),
			Pickup:    bk.Period().Pickup,
			Dropoff:   bk.Period().Dropoff,
			Status:    string(bk.Status()),
		}
	}
	return intervals, nil
}

// QuickStats buckets every vehicle for today, optionally scoped to one
// category (the empty category means the whole fleet). Catalog flags win
// over bookings: a blocked or in-maintenance vehicle counts there even if a
// booking holds today's slot.
func (s *AvailabilityService) QuickStats(ctx context.Context, category vehicleDomain.Category) (*FleetStatsDTO, error) {
	if category != "" && !category.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown vehicle category: %s", category))
	}

	today := daterange.Truncate(time.Now().UTC())

	vehicles, err := s.catalog.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	holding, err := s.bookings.FindHoldingOn(ctx, today)
	if err != nil {
		return nil, err
	}

	stats := &FleetStatsDTO{Date: today, Category: category}
	for _, veh := range vehicles {
		if category != "" && veh.Category != category {
			continue
		}
		stats.Total++
		switch {
		case veh.Blocked:
			stats.Blocked++
		case veh.InMaintenance:
			stats.Maintenance++
		default:
			bk, held := holding[veh.ID]
			switch {
			case !held:
				stats.Available++
			case bk.Status() == bookingDomain.StatusPending:
				stats.Reserved++
			default:
				stats.Rented++
			}
		}
	}
	return stats, nil
}
