package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	draftDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/draft"
)

// DraftModel is the GORM model for the booking_drafts table.
type DraftModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID      `gorm:"type:uuid;index;not null"`
	Payload      datatypes.JSON `gorm:"not null"`
	CustomerName string         `gorm:"size:200"`
	VehicleName  string         `gorm:"size:200"`
	TotalCents   int64          `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"not null"`
	UpdatedAt    time.Time      `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (DraftModel) TableName() string {
	return "booking_drafts"
}

// GormDraftRepository is the GORM-based implementation of draft.Repository.
type GormDraftRepository struct {
	db *gorm.DB
}

// NewGormDraftRepository creates a new GormDraftRepository.
func NewGormDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// Create persists a new draft.
func (r *GormDraftRepository) Create(ctx context.Context, d *draftDomain.Draft) error {
	model, err := toDraftModel(d)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// Update persists changes to a draft, scoped by owner. Ownership mismatches
// are indistinguishable from missing rows.
func (r *GormDraftRepository) Update(ctx context.Context, d *draftDomain.Draft) error {
	model, err := toDraftModel(d)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&DraftModel{}).
		Where("id = ? AND owner_id = ?", model.ID, model.OwnerID).
		Updates(map[string]interface{}{
			"payload":       model.Payload,
			"customer_name": model.CustomerName,
			"vehicle_name":  model.VehicleName,
			"total_cents":   model.TotalCents,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Draft", model.ID.String())
	}
	return nil
}

// Get retrieves a draft by ID if owned by the actor.
func (r *GormDraftRepository) Get(ctx context.Context, ownerID, draftID uuid.UUID) (*draftDomain.Draft, error) {
	var model DraftModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", draftID, ownerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Draft", draftID.String())
		}
		return nil, fmt.Errorf("failed to find draft: %w", err)
	}
	return toDomainDraft(&model)
}

// ListByOwner retrieves the actor's drafts ordered by updated_at descending.
func (r *GormDraftRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*draftDomain.Draft, error) {
	var models []DraftModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	drafts := make([]*draftDomain.Draft, len(models))
	for i := range models {
		d, err := toDomainDraft(&models[i])
		if err != nil {
			return nil, err
		}
		drafts[i] = d
	}
	return drafts, nil
}

// Delete removes a draft owned by the actor.
func (r *GormDraftRepository) Delete(ctx context.Context, ownerID, draftID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", draftID, ownerID).
		Delete(&DraftModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Draft", draftID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toDraftModel(d *draftDomain.Draft) (*DraftModel, error) {
	payload, err := json.Marshal(d.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft payload: %w", err)
	}
	return &DraftModel{
		ID:           d.ID(),
		OwnerID:      d.OwnerID(),
		Payload:      payload,
		CustomerName: d.CustomerName(),
		VehicleName:  d.VehicleName(),
		TotalCents:   d.TotalCents(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}, nil
}

func toDomainDraft(m *DraftModel) (*draftDomain.Draft, error) {
	var payload draftDomain.Payload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft payload: %w", err)
	}
	return draftDomain.Reconstruct(
		m.ID,
		m.OwnerID,
		payload,
		m.CustomerName,
		m.VehicleName,
		m.TotalCents,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
