package customer

import (
	"context"

	"github.com/google/uuid"
)

// Directory defines the read contract the engine consumes from the customer
// directory collaborator.
type Directory interface {
	// GetCustomer retrieves a customer by ID.
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
}
