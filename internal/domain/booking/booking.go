package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
)

// Booking is the aggregate root for the rental booking domain. It owns the
// canonical record of a vehicle's reservation over a date range and enforces
// the status lifecycle. Bookings are never deleted, only cancelled, so the
// table doubles as an audit trail for the reporting collaborator.
type Booking struct {
	id            uuid.UUID
	vehicleID     uuid.UUID
	customerID    uuid.UUID
	createdBy     uuid.UUID
	period        daterange.Range
	status        Status
	extras        []ExtraOption
	totalCents    int64
	currency      string
	invoiceNumber *string
	notes         string

	confirmedAt *time.Time
	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Booking in pending status for the given staff actor.
func New(
	createdBy uuid.UUID,
	vehicleID uuid.UUID,
	customerID uuid.UUID,
	period daterange.Range,
	extras []ExtraOption,
	totalCents int64,
	currency string,
	notes string,
) (*Booking, error) {
	if createdBy == uuid.Nil {
		return nil, domain.NewValidationError("actor ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if err := validateExtras(extras); err != nil {
		return nil, err
	}
	if totalCents <= 0 {
		return nil, domain.NewValidationError("total price must be positive")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:         uuid.New(),
		vehicleID:  vehicleID,
		customerID: customerID,
		createdBy:  createdBy,
		period:     period,
		status:     StatusPending,
		extras:     extras,
		totalCents: totalCents,
		currency:   currency,
		notes:      notes,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func validateExtras(extras []ExtraOption) error {
	for _, e := range extras {
		if !e.IsValid() {
			return domain.NewValidationError(fmt.Sprintf("unknown extra option: %s", e))
		}
	}
	return nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	vehicleID uuid.UUID,
	customerID uuid.UUID,
	createdBy uuid.UUID,
	period daterange.Range,
	status Status,
	extras []ExtraOption,
	totalCents int64,
	currency string,
	invoiceNumber *string,
	notes string,
	confirmedAt *time.Time,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		vehicleID:     vehicleID,
		customerID:    customerID,
		createdBy:     createdBy,
		period:        period,
		status:        status,
		extras:        extras,
		totalCents:    totalCents,
		currency:      currency,
		invoiceNumber: invoiceNumber,
		notes:         notes,
		confirmedAt:   confirmedAt,
		completedAt:   completedAt,
		cancelledAt:   cancelledAt,
		cancelNote:    cancelNote,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// VehicleID returns the reserved vehicle's identifier.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// CustomerID returns the renting customer's identifier.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// CreatedBy returns the staff actor who created the booking.
func (b *Booking) CreatedBy() uuid.UUID { return b.createdBy }

// Period returns the rental date range.
func (b *Booking) Period() daterange.Range { return b.period }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Extras returns the add-ons the booking was priced with.
func (b *Booking) Extras() []ExtraOption { return b.extras }

// TotalCents returns the total rental price in cents.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// InvoiceNumber returns the invoice number, or nil if not yet finalized.
func (b *Booking) InvoiceNumber() *string { return b.invoiceNumber }

// Notes returns any additional notes for the booking.
func (b *Booking) Notes() string { return b.notes }

// ConfirmedAt returns the time the booking was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CompletedAt returns the time the rental was completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// HoldsSlot returns true if this booking currently claims its vehicle's
// date range. A completed booking with a dropoff still in the future keeps
// its remaining window blocked; the range-based check in the repository
// mirrors this.
func (b *Booking) HoldsSlot() bool {
	if b.status.HoldsSlot() {
		return true
	}
	return b.status == StatusCompleted && b.period.Dropoff.After(time.Now().UTC())
}

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed, attaching the
// minted invoice number. The number is assigned exactly once; confirming a
// booking that somehow carries one already keeps the original.
func (b *Booking) Confirm(invoiceNumber string) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	if b.invoiceNumber == nil {
		b.invoiceNumber = &invoiceNumber
	}
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from confirmed to completed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled, releasing the vehicle's slot
// for its range immediately.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Reschedule changes the rental period, add-ons and total while the booking
// is still pending. Availability of the new range must be verified by the
// caller; the repository re-checks it under the per-vehicle lock on persist.
func (b *Booking) Reschedule(period daterange.Range, extras []ExtraOption, totalCents int64) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusPending))
	}
	if err := validateExtras(extras); err != nil {
		return err
	}
	if totalCents <= 0 {
		return domain.NewValidationError("total price must be positive")
	}
	b.period = period
	b.extras = extras
	b.totalCents = totalCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetNotes replaces the booking notes while pending.
func (b *Booking) SetNotes(notes string) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError(string(b.status), string(StatusPending))
	}
	b.notes = notes
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
