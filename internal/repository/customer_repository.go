package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	customerDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/customer"
)

// CustomerModel is the GORM model for the customers read-model table.
type CustomerModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName     string    `gorm:"not null;size:100"`
	LastName      string    `gorm:"not null;size:100"`
	Email         string    `gorm:"size:320"`
	Phone         string    `gorm:"size:30"`
	LicenseNumber string    `gorm:"size:50"`
	Blacklisted   bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerDirectory is the GORM-based implementation of customer.Directory.
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GormCustomerDirectory.
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// GetCustomer retrieves a customer by ID.
func (r *GormCustomerDirectory) GetCustomer(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", id.String())
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &customerDomain.Customer{
		ID:            model.ID,
		FirstName:     model.FirstName,
		LastName:      model.LastName,
		Email:         model.Email,
		Phone:         model.Phone,
		LicenseNumber: model.LicenseNumber,
		Blacklisted:   model.Blacklisted,
		CreatedAt:     model.CreatedAt,
	}, nil
}
