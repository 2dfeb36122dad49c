package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	bookingDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/booking"
	customerDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/customer"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
	draftDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/draft"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
)

// fakeBookingRepo is an in-memory booking.Repository. Reserve and Reschedule
// serialize on the mutex, mirroring the per-vehicle critical section of the
// real implementation.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*bookingDomain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByInvoiceNumber(_ context.Context, invoiceNumber string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.InvoiceNumber() != nil && *bk.InvoiceNumber() == invoiceNumber {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", invoiceNumber)
}

func (r *fakeBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerID() == customerID {
			matched = append(matched, bk)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	return paginate(matched, page, limit), int64(len(matched)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*bookingDomain.Booking, 0, len(r.bookings))
	for _, bk := range r.bookings {
		all = append(all, bk)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, vehicleID uuid.UUID, period daterange.Range, excludeID *uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findOverlappingLocked(vehicleID, period, excludeID), nil
}

func (r *fakeBookingRepo) findOverlappingLocked(vehicleID uuid.UUID, period daterange.Range, excludeID *uuid.UUID) *bookingDomain.Booking {
	for _, bk := range r.bookings {
		if bk.VehicleID() != vehicleID {
			continue
		}
		if excludeID != nil && bk.ID() == *excludeID {
			continue
		}
		if bk.HoldsSlot() && bk.Period().Overlaps(period) {
			return bk
		}
	}
	return nil
}

func (r *fakeBookingRepo) ListOccupied(_ context.Context, vehicleID uuid.UUID, window daterange.Range) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.VehicleID() == vehicleID && bk.HoldsSlot() && bk.Period().Overlaps(window) {
			matched = append(matched, bk)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Period().Pickup.Before(matched[j].Period().Pickup)
	})
	return matched, nil
}

func (r *fakeBookingRepo) FindHoldingOn(_ context.Context, day time.Time) (map[uuid.UUID]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	holding := make(map[uuid.UUID]*bookingDomain.Booking)
	for _, bk := range r.bookings {
		if bk.HoldsSlot() && bk.Period().Contains(day) {
			holding[bk.VehicleID()] = bk
		}
	}
	return holding, nil
}

func (r *fakeBookingRepo) Reserve(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conflict := r.findOverlappingLocked(bk.VehicleID(), bk.Period(), nil); conflict != nil {
		return conflictError(conflict)
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Reschedule(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := bk.ID()
	if conflict := r.findOverlappingLocked(bk.VehicleID(), bk.Period(), &id); conflict != nil {
		return conflictError(conflict)
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func conflictError(conflict *bookingDomain.Booking) error {
	return domain.NewConflictError(
		conflict.VehicleID(),
		conflict.ID(),
		conflict.Period().Pickup,
		conflict.Period().Dropoff,
		string(conflict.Status()),
	)
}

func paginate(items []*bookingDomain.Booking, page, limit int) []*bookingDomain.Booking {
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// fakeDraftRepo is an in-memory draft.Repository with owner scoping.
type fakeDraftRepo struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*draftDomain.Draft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[uuid.UUID]*draftDomain.Draft)}
}

func (r *fakeDraftRepo) Create(_ context.Context, d *draftDomain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID()] = d
	return nil
}

func (r *fakeDraftRepo) Update(_ context.Context, d *draftDomain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.drafts[d.ID()]
	if !ok || existing.OwnerID() != d.OwnerID() {
		return domain.NewNotFoundError("draft", d.ID().String())
	}
	r.drafts[d.ID()] = d
	return nil
}

func (r *fakeDraftRepo) Get(_ context.Context, ownerID, draftID uuid.UUID) (*draftDomain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[draftID]
	if !ok || d.OwnerID() != ownerID {
		return nil, domain.NewNotFoundError("draft", draftID.String())
	}
	return d, nil
}

func (r *fakeDraftRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*draftDomain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []*draftDomain.Draft
	for _, d := range r.drafts {
		if d.OwnerID() == ownerID {
			owned = append(owned, d)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].UpdatedAt().After(owned[j].UpdatedAt())
	})
	return owned, nil
}

func (r *fakeDraftRepo) Delete(_ context.Context, ownerID, draftID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[draftID]
	if !ok || d.OwnerID() != ownerID {
		return domain.NewNotFoundError("draft", draftID.String())
	}
	delete(r.drafts, draftID)
	return nil
}

// fakeCatalog is an in-memory vehicle.Catalog.
type fakeCatalog struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*vehicleDomain.Vehicle
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{vehicles: make(map[uuid.UUID]*vehicleDomain.Vehicle)}
}

func (c *fakeCatalog) add(v *vehicleDomain.Vehicle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles[v.ID] = v
}

func (c *fakeCatalog) GetVehicle(_ context.Context, id uuid.UUID) (*vehicleDomain.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id.String())
	}
	return v, nil
}

func (c *fakeCatalog) ListVehicles(_ context.Context) ([]*vehicleDomain.Vehicle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]*vehicleDomain.Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		all = append(all, v)
	}
	return all, nil
}

func (c *fakeCatalog) SetOperationalFlags(_ context.Context, id uuid.UUID, inMaintenance, blocked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.vehicles[id]
	if !ok {
		return domain.NewNotFoundError("vehicle", id.String())
	}
	v.InMaintenance = inMaintenance
	v.Blocked = blocked
	return nil
}

// fakeDirectory is an in-memory customer.Directory.
type fakeDirectory struct {
	customers map[uuid.UUID]*customerDomain.Customer
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{customers: make(map[uuid.UUID]*customerDomain.Customer)}
}

func (d *fakeDirectory) add(c *customerDomain.Customer) {
	d.customers[c.ID] = c
}

func (d *fakeDirectory) GetCustomer(_ context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	c, ok := d.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("customer", id.String())
	}
	return c, nil
}

// fakeInvoiceSequence is an in-memory booking.InvoiceSequence. failUntil
// makes the first N calls error, to exercise the mint retry.
type fakeInvoiceSequence struct {
	mu        sync.Mutex
	counters  map[int]int64
	calls     int
	failUntil int
}

func newFakeInvoiceSequence() *fakeInvoiceSequence {
	return &fakeInvoiceSequence{counters: make(map[int]int64)}
}

func (s *fakeInvoiceSequence) Next(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failUntil {
		return 0, context.DeadlineExceeded
	}
	s.counters[year]++
	return s.counters[year], nil
}
