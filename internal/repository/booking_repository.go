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
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	VehicleID     uuid.UUID      `gorm:"type:uuid;index:idx_bookings_vehicle_dates;not null"`
	CustomerID    uuid.UUID      `gorm:"type:uuid;index;not null"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	PickupDate    time.Time      `gorm:"type:date;index:idx_bookings_vehicle_dates;not null"`
	DropoffDate   time.Time      `gorm:"type:date;not null"`
	Status        string         `gorm:"not null;size:20;index"`
	Extras        datatypes.JSON `gorm:"not null;default:'[]'"`
	TotalCents    int64          `gorm:"not null"`
	Currency      string         `gorm:"not null;size:3"`
	InvoiceNumber *string        `gorm:"uniqueIndex;size:20"`
	Notes         string         `gorm:"size:1000"`
	ConfirmedAt   *time.Time     `gorm:""`
	CompletedAt   *time.Time     `gorm:""`
	CancelledAt   *time.Time     `gorm:""`
	CancelNote    string         `gorm:"size:500"`
	Version       int64          `gorm:"not null;default:1"`
	CreatedAt     time.Time      `gorm:"not null"`
	UpdatedAt     time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// holdsSlotClause selects bookings that claim their vehicle's date range: all
// pending/confirmed rows, plus completed rows whose dropoff is still in the
// future (a rental marked completed early keeps its remaining window
// blocked). Takes one argument: today's date.
const holdsSlotClause = "(status IN ('pending','confirmed') OR (status = 'completed' AND dropoff_date > ?))"

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByInvoiceNumber retrieves a booking by its invoice number.
func (r *GormBookingRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("invoice_number = ?", invoiceNumber).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", invoiceNumber)
		}
		return nil, fmt.Errorf("failed to find booking by invoice number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// FindOverlapping returns the first slot-holding booking overlapping the range.
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, vehicleID uuid.UUID, period daterange.Range, excludeID *uuid.UUID) (*bookingDomain.Booking, error) {
	model, err := findOverlapping(r.db.WithContext(ctx), vehicleID, period, excludeID)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return nil, nil
	}
	return toDomainBooking(model)
}

// ListOccupied returns slot-holding bookings intersecting the window,
// ordered by pickup date ascending.
func (r *GormBookingRepository) ListOccupied(ctx context.Context, vehicleID uuid.UUID, window daterange.Range) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	today := daterange.Truncate(time.Now())
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Where(holdsSlotClause, today).
		Where("pickup_date < ? AND dropoff_date > ?", window.Dropoff, window.Pickup).
		Order("pickup_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list occupied ranges: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

// FindHoldingOn returns the bookings holding a slot on the given day, keyed
// by vehicle. The no-overlap invariant guarantees at most one per vehicle.
func (r *GormBookingRepository) FindHoldingOn(ctx context.Context, day time.Time) (map[uuid.UUID]*bookingDomain.Booking, error) {
	d := daterange.Truncate(day)
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where(holdsSlotClause, d).
		Where("pickup_date <= ? AND dropoff_date > ?", d, d).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find bookings holding on %s: %w", d.Format("2006-01-02"), err)
	}

	result := make(map[uuid.UUID]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		if _, exists := result[bk.VehicleID()]; !exists {
			result[bk.VehicleID()] = bk
		}
	}
	return result, nil
}

// Reserve persists a new booking inside a per-vehicle critical section. The
// advisory lock linearizes concurrent check-then-insert attempts for the
// same vehicle; the overlap re-check inside the transaction then sees any
// booking a concurrent request just committed.
func (r *GormBookingRepository) Reserve(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVehicle(tx, bk.VehicleID()); err != nil {
			return err
		}

		conflict, err := findOverlapping(tx, bk.VehicleID(), bk.Period(), nil)
		if err != nil {
			return err
		}
		if conflict != nil {
			return overlapConflict(bk.VehicleID(), conflict)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
}

// Reschedule persists a date change after re-checking availability with the
// booking itself excluded, under the same per-vehicle lock as Reserve.
func (r *GormBookingRepository) Reschedule(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVehicle(tx, bk.VehicleID()); err != nil {
			return err
		}

		selfID := bk.ID()
		conflict, err := findOverlapping(tx, bk.VehicleID(), bk.Period(), &selfID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return overlapConflict(bk.VehicleID(), conflict)
		}

		return updateModel(tx, bk)
	})
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return updateModel(r.db.WithContext(ctx), bk)
}

// lockVehicle takes a transaction-scoped advisory lock keyed by vehicle, so
// concurrent reservations for the same vehicle serialize while different
// vehicles never contend. Released automatically at commit or rollback.
func lockVehicle(tx *gorm.DB, vehicleID uuid.UUID) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", vehicleID.String()).Error; err != nil {
		return fmt.Errorf("failed to acquire vehicle lock: %w", err)
	}
	return nil
}

func findOverlapping(tx *gorm.DB, vehicleID uuid.UUID, period daterange.Range, excludeID *uuid.UUID) (*BookingModel, error) {
	today := daterange.Truncate(time.Now())
	q := tx.
		Where("vehicle_id = ?", vehicleID).
		Where(holdsSlotClause, today).
		Where("pickup_date < ? AND dropoff_date > ?", period.Dropoff, period.Pickup)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var model BookingModel
	if err := q.Order("pickup_date ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check for overlapping bookings: %w", err)
	}
	return &model, nil
}

func overlapConflict(vehicleID uuid.UUID, conflict *BookingModel) error {
	return domain.NewConflictError(
		vehicleID,
		conflict.ID,
		daterange.Truncate(conflict.PickupDate),
		daterange.Truncate(conflict.DropoffDate),
		conflict.Status,
	)
}

// updateModel writes every mutable column, guarded by the version column:
// IncrementVersion was called before persisting, so the row must still carry
// the previous version.
func updateModel(tx *gorm.DB, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return err
	}
	expectedVersion := bk.Version() - 1
	result := tx.
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"pickup_date":    model.PickupDate,
			"dropoff_date":   model.DropoffDate,
			"status":         model.Status,
			"extras":         model.Extras,
			"total_cents":    model.TotalCents,
			"currency":       model.Currency,
			"invoice_number": model.InvoiceNumber,
			"notes":          model.Notes,
			"confirmed_at":   model.ConfirmedAt,
			"completed_at":   model.CompletedAt,
			"cancelled_at":   model.CancelledAt,
			"cancel_note":    model.CancelNote,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the row is gone or another writer bumped the version first.
		var exists int64
		if err := tx.Model(&BookingModel{}).Where("id = ?", model.ID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		if exists == 0 {
			return domain.NewNotFoundError("Booking", model.ID.String())
		}
		return domain.NewInvalidStateError("stale", bk.Status().String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	extras := bk.Extras()
	if extras == nil {
		extras = []bookingDomain.ExtraOption{}
	}
	extrasJSON, err := json.Marshal(extras)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extras: %w", err)
	}

	return &BookingModel{
		ID:            bk.ID(),
		VehicleID:     bk.VehicleID(),
		CustomerID:    bk.CustomerID(),
		CreatedBy:     bk.CreatedBy(),
		PickupDate:    bk.Period().Pickup,
		DropoffDate:   bk.Period().Dropoff,
		Status:        string(bk.Status()),
		Extras:        datatypes.JSON(extrasJSON),
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		InvoiceNumber: bk.InvoiceNumber(),
		Notes:         bk.Notes(),
		ConfirmedAt:   bk.ConfirmedAt(),
		CompletedAt:   bk.CompletedAt(),
		CancelledAt:   bk.CancelledAt(),
		CancelNote:    bk.CancelNote(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	period := daterange.Range{
		Pickup:  daterange.Truncate(m.PickupDate),
		Dropoff: daterange.Truncate(m.DropoffDate),
	}

	var extras []bookingDomain.ExtraOption
	if len(m.Extras) > 0 {
		if err := json.Unmarshal(m.Extras, &extras); err != nil {
			return nil, fmt.Errorf("failed to unmarshal extras: %w", err)
		}
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.VehicleID,
		m.CustomerID,
		m.CreatedBy,
		period,
		status,
		extras,
		m.TotalCents,
		m.Currency,
		m.InvoiceNumber,
		m.Notes,
		m.ConfirmedAt,
		m.CompletedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
