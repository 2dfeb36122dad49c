package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Catalog defines the read contract the engine consumes from the vehicle
// catalog collaborator.
type Catalog interface {
	// GetVehicle retrieves a vehicle by ID.
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// ListVehicles retrieves the whole fleet for stats aggregation.
	ListVehicles(ctx context.Context) ([]*Vehicle, error)

	// SetOperationalFlags applies maintenance/blocked flag changes pushed by
	// the fleet event stream.
	SetOperationalFlags(ctx context.Context, id uuid.UUID, inMaintenance, blocked bool) error
}
