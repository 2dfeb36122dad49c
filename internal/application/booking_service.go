package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	customerDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/customer"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
	draftDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/draft"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/events"
)

const defaultCurrency = "USD"

// invoiceMintAttempts bounds retries of the counter increment during
// confirmation, so a momentary contention blip does not fail a user-visible
// confirm action.
const invoiceMintAttempts = 3

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	VehicleID  uuid.UUID                   `json:"vehicle_id" binding:"required"`
	CustomerID uuid.UUID                   `json:"customer_id" binding:"required"`
	Pickup     time.Time                   `json:"pickup" binding:"required"`
	Dropoff    time.Time                   `json:"dropoff" binding:"required"`
	Extras     []bookingDomain.ExtraOption `json:"extras"`
	Notes      string                      `json:"notes"`
	DraftID    *uuid.UUID                  `json:"draft_id"`
	Confirm    bool                        `json:"confirm"`
}

// UpdateBookingRequest patches a pending booking. Nil fields are untouched.
type UpdateBookingRequest struct {
	Pickup  *time.Time                  `json:"pickup"`
	Dropoff *time.Time                  `json:"dropoff"`
	Extras  []bookingDomain.ExtraOption `json:"extras"`
	Notes   *string                     `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID                   `json:"id"`
	VehicleID     uuid.UUID                   `json:"vehicle_id"`
	CustomerID    uuid.UUID                   `json:"customer_id"`
	CreatedBy     uuid.UUID                   `json:"created_by"`
	Pickup        time.Time                   `json:"pickup"`
	Dropoff       time.Time                   `json:"dropoff"`
	Status        string                      `json:"status"`
	Extras        []bookingDomain.ExtraOption `json:"extras,omitempty"`
	TotalCents    int64                       `json:"total_cents"`
	Currency      string                      `json:"currency"`
	InvoiceNumber *string                     `json:"invoice_number,omitempty"`
	Notes         string                      `json:"notes,omitempty"`
	ConfirmedAt   *time.Time                  `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time                  `json:"completed_at,omitempty"`
	CancelledAt   *time.Time                  `json:"cancelled_at,omitempty"`
	CancelNote    string                      `json:"cancel_note,omitempty"`
	Version       int64                       `json:"version"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: availability-gated creation, status transitions, invoice
// minting and lifecycle event publication.
type BookingService struct {
	repo      bookingDomain.Repository
	drafts    draftDomain.Repository
	catalog   vehicleDomain.Catalog
	customers customerDomain.Directory
	invoices  bookingDomain.InvoiceSequence
	pricing   bookingDomain.PricingStrategy
	producer  *events.Producer
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	drafts draftDomain.Repository,
	catalog vehicleDomain.Catalog,
	customers customerDomain.Directory,
	invoices bookingDomain.InvoiceSequence,
	pricing bookingDomain.PricingStrategy,
	producer *events.Producer,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		drafts:    drafts,
		catalog:   catalog,
		customers: customers,
		invoices:  invoices,
		pricing:   pricing,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBooking validates and persists a new booking for the given staff
// actor. The availability re-check and insert run inside the repository's
// per-vehicle critical section, so two concurrent creates over overlapping
// ranges cannot both succeed. A source draft, when named, is discarded after
// the booking exists.
func (s *BookingService) CreateBooking(ctx context.Context, actorID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	period, err := daterange.New(req.Pickup, req.Dropoff)
	if err != nil {
		return nil, err
	}

	veh, err := s.catalog.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, asUnknownReference(err, "vehicle", req.VehicleID)
	}
	if !veh.Operational() {
		return nil, domain.NewValidationError(fmt.Sprintf("vehicle %s is not operational", veh.Name))
	}

	cust, err := s.customers.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, asUnknownReference(err, "customer", req.CustomerID)
	}
	if cust.Blacklisted {
		return nil, domain.NewBlacklistedCustomerError(cust.ID)
	}

	totalCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
		DailyRateCents: veh.DailyRateCents,
		Days:           period.Days(),
		Extras:         req.Extras,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.New(actorID, req.VehicleID, req.CustomerID, period, req.Extras, totalCents, defaultCurrency, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reserve(ctx, bk); err != nil {
		return nil, err
	}

	s.discardDraft(ctx, actorID, req.DraftID)
	s.publishReserved(ctx, bk)

	if req.Confirm {
		return s.confirm(ctx, bk)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// SubmitDraft finalizes a priced draft into a booking. The draft's
// selections feed the same validation and availability gate as a direct
// create; on success the draft is discarded.
func (s *BookingService) SubmitDraft(ctx context.Context, actorID, draftID uuid.UUID, confirm bool) (*BookingDTO, error) {
	d, err := s.drafts.Get(ctx, actorID, draftID)
	if err != nil {
		return nil, err
	}

	payload := d.Payload()
	if !payload.ReadyForSubmission() {
		return nil, domain.NewValidationError("draft is not complete: vehicle, customer, dates and pricing are required")
	}

	return s.CreateBooking(ctx, actorID, CreateBookingRequest{
		VehicleID:  payload.Vehicle.VehicleID,
		CustomerID: *payload.CustomerID,
		Pickup:     payload.Dates.Pickup,
		Dropoff:    payload.Dates.Dropoff,
		Extras:     payload.Extras,
		Notes:      payload.Notes,
		DraftID:    &draftID,
		Confirm:    confirm,
	})
}

// ConfirmBooking transitions a pending booking to confirmed, minting its
// invoice number.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, bk)
}

// CompleteBooking transitions a confirmed booking to completed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Complete(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	invoiceNumber := ""
	if bk.InvoiceNumber() != nil {
		invoiceNumber = *bk.InvoiceNumber()
	}
	evt := events.BookingCompletedEvent{
		BookingID:     bk.ID(),
		VehicleID:     bk.VehicleID(),
		CustomerID:    bk.CustomerID(),
		InvoiceNumber: invoiceNumber,
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCompleted, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state,
// releasing the vehicle's slot for its range immediately.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, cancelledBy uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:   bk.ID(),
		VehicleID:   bk.VehicleID(),
		CustomerID:  bk.CustomerID(),
		CancelledBy: cancelledBy,
		Reason:      reason,
		Pickup:      bk.Period().Pickup,
		Dropoff:     bk.Period().Dropoff,
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking patches a pending booking. A date or extras change recomputes
// the price from the booking's stored add-ons unless the patch replaces them;
// a date change additionally re-runs the availability check with the booking
// itself excluded, inside the per-vehicle critical section.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	datesChanged := req.Pickup != nil || req.Dropoff != nil
	if datesChanged || req.Extras != nil {
		pickup := bk.Period().Pickup
		dropoff := bk.Period().Dropoff
		if req.Pickup != nil {
			pickup = *req.Pickup
		}
		if req.Dropoff != nil {
			dropoff = *req.Dropoff
		}

		period, err := daterange.New(pickup, dropoff)
		if err != nil {
			return nil, err
		}

		extras := bk.Extras()
		if req.Extras != nil {
			extras = req.Extras
		}

		veh, err := s.catalog.GetVehicle(ctx, bk.VehicleID())
		if err != nil {
			return nil, asUnknownReference(err, "vehicle", bk.VehicleID())
		}

		totalCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
			DailyRateCents: veh.DailyRateCents,
			Days:           period.Days(),
			Extras:         extras,
		})
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}

		if err := bk.Reschedule(period, extras, totalCents); err != nil {
			return nil, err
		}
	}

	if req.Notes != nil {
		if err := bk.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	bk.IncrementVersion()
	if datesChanged {
		err = s.repo.Reschedule(ctx, bk)
	} else {
		err = s.repo.Update(ctx, bk)
	}
	if err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByInvoiceNumber retrieves a booking by its invoice number.
func (s *BookingService) GetBookingByInvoiceNumber(ctx context.Context, invoiceNumber string) (*BookingDTO, error) {
	bk, err := s.repo.FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings for a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) confirm(ctx context.Context, bk *bookingDomain.Booking) (*BookingDTO, error) {
	// Minting burns a counter value, so refuse impossible transitions before
	// touching the counter.
	if !bk.Status().CanTransitionTo(bookingDomain.StatusConfirmed) {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
	}

	invoiceNumber, err := s.mintInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	if err := bk.Confirm(invoiceNumber); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		// The minted number is burned, never reassigned.
		return nil, err
	}

	evt := events.BookingConfirmedEvent{
		BookingID:     bk.ID(),
		VehicleID:     bk.VehicleID(),
		CustomerID:    bk.CustomerID(),
		InvoiceNumber: *bk.InvoiceNumber(),
		TotalCents:    bk.TotalCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingConfirmed, bk.ID().String(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// mintInvoiceNumber advances the durable counter with a small bounded retry
// for transient storage failures.
func (s *BookingService) mintInvoiceNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()

	var lastErr error
	for attempt := 1; attempt <= invoiceMintAttempts; attempt++ {
		seq, err := s.invoices.Next(ctx, year)
		if err == nil {
			return bookingDomain.FormatInvoiceNumber(year, seq), nil
		}
		lastErr = err
		s.logger.Warn("invoice counter increment failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return "", domain.NewUnavailableError("invoice numbering unavailable", lastErr)
}

func (s *BookingService) discardDraft(ctx context.Context, actorID uuid.UUID, draftID *uuid.UUID) {
	if draftID == nil {
		return
	}
	if err := s.drafts.Delete(ctx, actorID, *draftID); err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return
		}
		// The booking exists; a stale draft is a cosmetic leftover.
		s.logger.Warn("failed to discard source draft",
			zap.String("draft_id", draftID.String()),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publishReserved(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingReservedEvent{
		BookingID:  bk.ID(),
		VehicleID:  bk.VehicleID(),
		CustomerID: bk.CustomerID(),
		CreatedBy:  bk.CreatedBy(),
		Pickup:     bk.Period().Pickup,
		Dropoff:    bk.Period().Dropoff,
		TotalCents: bk.TotalCents(),
		Currency:   bk.Currency(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingReserved, bk.ID().String(), evt)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.producer == nil {
		return
	}
	ce, err := events.NewCloudEvent("service-rental", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, ce); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

// asUnknownReference converts a directory/catalog not-found into the
// data-integrity error the caller expects; other failures pass through.
func asUnknownReference(err error, entity string, id uuid.UUID) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return domain.NewUnknownReferenceError(entity, id.String())
	}
	return err
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		VehicleID:     bk.VehicleID(),
		CustomerID:    bk.CustomerID(),
		CreatedBy:     bk.CreatedBy(),
		Pickup:        bk.Period().Pickup,
		Dropoff:       bk.Period().Dropoff,
		Status:        string(bk.Status()),
		Extras:        bk.Extras(),
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
	}
}
