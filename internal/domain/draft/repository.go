package draft

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for drafts. Every operation is
// scoped by the owning actor; implementations report ownership mismatches as
// not-found so existence never leaks to non-owners.
type Repository interface {
	// Create persists a new draft.
	Create(ctx context.Context, d *Draft) error

	// Update persists changes to an existing draft owned by the same actor.
	// Returns domain.NotFoundError when no owned row matched.
	Update(ctx context.Context, d *Draft) error

	// Get retrieves a draft by ID if owned by the actor.
	Get(ctx context.Context, ownerID, draftID uuid.UUID) (*Draft, error)

	// ListByOwner retrieves the actor's drafts ordered by updated_at descending.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Draft, error)

	// Delete removes a draft owned by the actor. Returns domain.NotFoundError
	// when no owned row matched.
	Delete(ctx context.Context, ownerID, draftID uuid.UUID) error
}
