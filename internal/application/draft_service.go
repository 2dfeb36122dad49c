package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	customerDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/customer"
	draftDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/draft"
)

// SaveDraftRequest creates a draft when ID is nil, otherwise replaces the
// named draft's payload wholesale.
type SaveDraftRequest struct {
	ID      *uuid.UUID          `json:"id"`
	Payload draftDomain.Payload `json:"payload" binding:"required"`
}

// DraftDTO is the full response representation of a draft.
type DraftDTO struct {
	ID           uuid.UUID           `json:"id"`
	Payload      draftDomain.Payload `json:"payload"`
	CustomerName string              `json:"customer_name,omitempty"`
	VehicleName  string              `json:"vehicle_name,omitempty"`
	TotalCents   int64               `json:"total_cents"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// DraftSummaryDTO is the list representation: enough to pick a draft to
// resume without shipping the whole payload.
type DraftSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	Stage        string    `json:"stage"`
	CustomerName string    `json:"customer_name,omitempty"`
	VehicleName  string    `json:"vehicle_name,omitempty"`
	TotalCents   int64     `json:"total_cents"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DraftService manages per-actor in-progress booking drafts.
type DraftService struct {
	drafts    draftDomain.Repository
	customers customerDomain.Directory
	logger    *zap.Logger
}

// NewDraftService creates a new DraftService.
func NewDraftService(drafts draftDomain.Repository, customers customerDomain.Directory, logger *zap.Logger) *DraftService {
	return &DraftService{
		drafts:    drafts,
		customers: customers,
		logger:    logger,
	}
}

// SaveDraft persists the actor's draft. The payload replaces whatever was
// stored before; stage consistency is validated but business rules like
// availability are deliberately not checked until submission.
func (s *DraftService) SaveDraft(ctx context.Context, actorID uuid.UUID, req SaveDraftRequest) (*DraftDTO, error) {
	customerName := s.resolveCustomerName(ctx, req.Payload.CustomerID)
	vehicleName := ""
	if req.Payload.Vehicle != nil {
		vehicleName = req.Payload.Vehicle.Name
	}
	var totalCents int64
	if req.Payload.Pricing != nil {
		totalCents = req.Payload.Pricing.TotalCents
	}

	if req.ID == nil {
		d, err := draftDomain.New(actorID, req.Payload, customerName, vehicleName, totalCents)
		if err != nil {
			return nil, err
		}
		if err := s.drafts.Create(ctx, d); err != nil {
			return nil, err
		}
		result := toDraftDTO(d)
		return &result, nil
	}

	d, err := s.drafts.Get(ctx, actorID, *req.ID)
	if err != nil {
		return nil, err
	}
	if err := d.Replace(req.Payload, customerName, vehicleName, totalCents); err != nil {
		return nil, err
	}
	if err := s.drafts.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toDraftDTO(d)
	return &result, nil
}

// GetDraft retrieves one of the actor's drafts. Drafts owned by other actors
// are indistinguishable from missing ones.
func (s *DraftService) GetDraft(ctx context.Context, actorID, draftID uuid.UUID) (*DraftDTO, error) {
	d, err := s.drafts.Get(ctx, actorID, draftID)
	if err != nil {
		return nil, err
	}
	result := toDraftDTO(d)
	return &result, nil
}

// ListDrafts returns the actor's drafts, most recently touched first.
func (s *DraftService) ListDrafts(ctx context.Context, actorID uuid.UUID) ([]DraftSummaryDTO, error) {
	drafts, err := s.drafts.ListByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}

	summaries := make([]DraftSummaryDTO, len(drafts))
	for i, d := range drafts {
		summaries[i] = DraftSummaryDTO{
			ID:           d.ID(),
			Stage:        string(d.Payload().Stage),
			CustomerName: d.CustomerName(),
			VehicleName:  d.VehicleName(),
			TotalCents:   d.TotalCents(),
			UpdatedAt:    d.UpdatedAt(),
		}
	}
	return summaries, nil
}

// DeleteDraft discards one of the actor's drafts.
func (s *DraftService) DeleteDraft(ctx context.Context, actorID, draftID uuid.UUID) error {
	return s.drafts.Delete(ctx, actorID, draftID)
}

// resolveCustomerName is best effort: the draft stores the name only for
// list redisplay, so a lookup failure degrades to an empty label.
func (s *DraftService) resolveCustomerName(ctx context.Context, customerID *uuid.UUID) string {
	if customerID == nil {
		return ""
	}
	cust, err := s.customers.GetCustomer(ctx, *customerID)
	if err != nil {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			s.logger.Warn("customer lookup for draft label failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err),
			)
		}
		return ""
	}
	return cust.FullName()
}

func toDraftDTO(d *draftDomain.Draft) DraftDTO {
	return DraftDTO{
		ID:           d.ID(),
		Payload:      d.Payload(),
		CustomerName: d.CustomerName(),
		VehicleName:  d.VehicleName(),
		TotalCents:   d.TotalCents(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}
}
