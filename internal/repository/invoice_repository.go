package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// InvoiceCounterModel is the GORM model for the invoice_counters table: one
// durable monotonic counter per year.
type InvoiceCounterModel struct {
	Year  int   `gorm:"primaryKey"`
	Value int64 `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InvoiceCounterModel) TableName() string {
	return "invoice_counters"
}

// GormInvoiceSequence implements booking.InvoiceSequence on a database
// counter row. The upsert increments atomically inside the database, so two
// concurrent callers can never observe the same value, and values are never
// handed back even when the surrounding confirmation later fails.
type GormInvoiceSequence struct {
	db *gorm.DB
}

// NewGormInvoiceSequence creates a new GormInvoiceSequence.
func NewGormInvoiceSequence(db *gorm.DB) *GormInvoiceSequence {
	return &GormInvoiceSequence{db: db}
}

// Next returns the next counter value for the given year.
func (s *GormInvoiceSequence) Next(ctx context.Context, year int) (int64, error) {
	var value int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO invoice_counters (year, value)
		VALUES (?, 1)
		ON CONFLICT (year) DO UPDATE SET value = invoice_counters.value + 1
		RETURNING value`, year).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice counter: %w", err)
	}
	return value, nil
}
