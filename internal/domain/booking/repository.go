package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
)

// Repository defines the persistence contract for booking aggregates.
//
// Reserve and Reschedule are the two entry points into the hazardous
// check-then-write region: implementations must serialize them per vehicle
// so that two concurrent attempts over overlapping ranges cannot both
// succeed.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByInvoiceNumber retrieves a booking by its invoice number.
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Booking, error)

	// FindByCustomerID retrieves bookings for a customer with pagination,
	// newest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// FindOverlapping returns the first slot-holding booking for the vehicle
	// whose range overlaps the given one, or nil if the range is free.
	// excludeID, when non-nil, skips that booking (re-checking an edit).
	FindOverlapping(ctx context.Context, vehicleID uuid.UUID, period daterange.Range, excludeID *uuid.UUID) (*Booking, error)

	// ListOccupied returns slot-holding bookings for the vehicle whose range
	// intersects the window, ordered by pickup date ascending.
	ListOccupied(ctx context.Context, vehicleID uuid.UUID, window daterange.Range) ([]*Booking, error)

	// FindHoldingOn returns all bookings holding a slot on the given day,
	// across the fleet, keyed by vehicle.
	FindHoldingOn(ctx context.Context, day time.Time) (map[uuid.UUID]*Booking, error)

	// Reserve persists a new booking after re-checking the no-overlap
	// invariant inside a per-vehicle critical section. Returns
	// domain.ConflictError if the range is taken.
	Reserve(ctx context.Context, bk *Booking) error

	// Reschedule persists a date change after re-checking availability,
	// excluding the booking itself, inside the same per-vehicle critical
	// section as Reserve.
	Reschedule(ctx context.Context, bk *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, bk *Booking) error
}
