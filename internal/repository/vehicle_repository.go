package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
)

// VehicleModel is the GORM model for the vehicles read-model table. The
// catalog collaborator owns the source of truth; this table is kept current
// by the fleet event consumer.
type VehicleModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name           string    `gorm:"not null;size:200"`
	Plate          string    `gorm:"uniqueIndex;not null;size:20"`
	Category       string    `gorm:"not null;size:30;index"`
	DailyRateCents int64     `gorm:"not null"`
	InMaintenance  bool      `gorm:"not null;default:false"`
	Blocked        bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (VehicleModel) TableName() string {
	return "vehicles"
}

// GormVehicleCatalog is the GORM-based implementation of vehicle.Catalog.
type GormVehicleCatalog struct {
	db *gorm.DB
}

// NewGormVehicleCatalog creates a new GormVehicleCatalog.
func NewGormVehicleCatalog(db *gorm.DB) *GormVehicleCatalog {
	return &GormVehicleCatalog{db: db}
}

// GetVehicle retrieves a vehicle by ID.
func (r *GormVehicleCatalog) GetVehicle(ctx context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return toDomainVehicle(&model), nil
}

// ListVehicles retrieves the whole fleet.
func (r *GormVehicleCatalog) ListVehicles(ctx context.Context) ([]*vehicleDomain.Vehicle, error) {
	var models []VehicleModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*vehicleDomain.Vehicle, len(models))
	for i := range models {
		vehicles[i] = toDomainVehicle(&models[i])
	}
	return vehicles, nil
}

// SetOperationalFlags applies maintenance/blocked flag changes.
func (r *GormVehicleCatalog) SetOperationalFlags(ctx context.Context, id uuid.UUID, inMaintenance, blocked bool) error {
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"in_maintenance": inMaintenance,
			"blocked":        blocked,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle flags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Vehicle", id.String())
	}
	return nil
}

func toDomainVehicle(m *VehicleModel) *vehicleDomain.Vehicle {
	return &vehicleDomain.Vehicle{
		ID:             m.ID,
		Name:           m.Name,
		Plate:          m.Plate,
		Category:       vehicleDomain.Category(m.Category),
		DailyRateCents: m.DailyRateCents,
		InMaintenance:  m.InMaintenance,
		Blocked:        m.Blocked,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
