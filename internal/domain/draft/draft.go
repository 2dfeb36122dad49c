package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
)

// Draft is a recoverable, actor-owned booking construction. The denormalized
// display fields allow listing drafts without deserializing the payload.
// A draft is visible and mutable only by its owning actor.
type Draft struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	payload      Payload
	customerName string
	vehicleName  string
	totalCents   int64
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates a Draft owned by the given staff actor.
func New(ownerID uuid.UUID, payload Payload, customerName, vehicleName string, totalCents int64) (*Draft, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if err := payload.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := time.Now().UTC()
	return &Draft{
		id:           uuid.New(),
		ownerID:      ownerID,
		payload:      payload,
		customerName: customerName,
		vehicleName:  vehicleName,
		totalCents:   totalCents,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Draft from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	ownerID uuid.UUID,
	payload Payload,
	customerName string,
	vehicleName string,
	totalCents int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Draft {
	return &Draft{
		id:           id,
		ownerID:      ownerID,
		payload:      payload,
		customerName: customerName,
		vehicleName:  vehicleName,
		totalCents:   totalCents,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the draft's unique identifier.
func (d *Draft) ID() uuid.UUID { return d.id }

// OwnerID returns the staff actor who owns the draft.
func (d *Draft) OwnerID() uuid.UUID { return d.ownerID }

// Payload returns the in-progress selections.
func (d *Draft) Payload() Payload { return d.payload }

// CustomerName returns the denormalized customer display name.
func (d *Draft) CustomerName() string { return d.customerName }

// VehicleName returns the denormalized vehicle display name.
func (d *Draft) VehicleName() string { return d.vehicleName }

// TotalCents returns the denormalized quoted total, 0 if not yet priced.
func (d *Draft) TotalCents() int64 { return d.totalCents }

// CreatedAt returns the creation timestamp.
func (d *Draft) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-saved timestamp.
func (d *Draft) UpdatedAt() time.Time { return d.updatedAt }

// Replace overwrites the draft's content on an update-in-place save.
func (d *Draft) Replace(payload Payload, customerName, vehicleName string, totalCents int64) error {
	if err := payload.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	d.payload = payload
	d.customerName = customerName
	d.vehicleName = vehicleName
	d.totalCents = totalCents
	d.updatedAt = time.Now().UTC()
	return nil
}
