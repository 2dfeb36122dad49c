package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/daterange"
)

func testPeriod(t *testing.T) daterange.Range {
	t.Helper()
	r, err := daterange.New(
		time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := New(uuid.New(), uuid.New(), uuid.New(), testPeriod(t), nil, 50000, "USD", "")
	require.NoError(t, err)
	return bk
}

func TestNew(t *testing.T) {
	actor := uuid.New()
	vehicle := uuid.New()
	customer := uuid.New()

	bk, err := New(actor, vehicle, customer, testPeriod(t),
		[]ExtraOption{ExtraGPS}, 50000, "USD", "weekend trip")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, bk.ID())
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, actor, bk.CreatedBy())
	assert.Equal(t, []ExtraOption{ExtraGPS}, bk.Extras())
	assert.Equal(t, int64(50000), bk.TotalCents())
	assert.Nil(t, bk.InvoiceNumber())
	assert.Equal(t, int64(1), bk.Version())
	assert.Equal(t, "weekend trip", bk.Notes())
}

func TestNew_Validation(t *testing.T) {
	period := testPeriod(t)

	tests := []struct {
		name string
		fn   func() (*Booking, error)
	}{
		{"missing actor", func() (*Booking, error) {
			return New(uuid.Nil, uuid.New(), uuid.New(), period, nil, 50000, "USD", "")
		}},
		{"missing vehicle", func() (*Booking, error) {
			return New(uuid.New(), uuid.Nil, uuid.New(), period, nil, 50000, "USD", "")
		}},
		{"missing customer", func() (*Booking, error) {
			return New(uuid.New(), uuid.New(), uuid.Nil, period, nil, 50000, "USD", "")
		}},
		{"unknown extra", func() (*Booking, error) {
			return New(uuid.New(), uuid.New(), uuid.New(), period, []ExtraOption{"jet_ski"}, 50000, "USD", "")
		}},
		{"zero price", func() (*Booking, error) {
			return New(uuid.New(), uuid.New(), uuid.New(), period, nil, 0, "USD", "")
		}},
		{"missing currency", func() (*Booking, error) {
			return New(uuid.New(), uuid.New(), uuid.New(), period, nil, 50000, "", "")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			var vErr *domain.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestConfirm(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm("INV-2025-000042"))

	assert.Equal(t, StatusConfirmed, bk.Status())
	require.NotNil(t, bk.InvoiceNumber())
	assert.Equal(t, "INV-2025-000042", *bk.InvoiceNumber())
	assert.NotNil(t, bk.ConfirmedAt())
}

func TestConfirm_KeepsExistingInvoiceNumber(t *testing.T) {
	existing := "INV-2025-000001"
	bk := Reconstruct(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		testPeriod(t), StatusPending, nil, 50000, "USD", &existing, "",
		nil, nil, nil, "", 1, time.Now().UTC(), time.Now().UTC())

	require.NoError(t, bk.Confirm("INV-2025-000099"))
	assert.Equal(t, existing, *bk.InvoiceNumber())
}

func TestConfirm_InvalidFromTerminalState(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel("changed plans"))

	err := bk.Confirm("INV-2025-000042")
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	// A failed transition must leave the record unchanged.
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Nil(t, bk.InvoiceNumber())
	assert.Nil(t, bk.ConfirmedAt())
}

func TestComplete(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Complete()
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr, "pending cannot complete directly")

	require.NoError(t, bk.Confirm("INV-2025-000042"))
	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.NotNil(t, bk.CompletedAt())
	assert.True(t, bk.Status().IsTerminal())
}

func TestCancel(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("customer no-show"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "customer no-show", bk.CancelNote())
	assert.NotNil(t, bk.CancelledAt())
	assert.False(t, bk.HoldsSlot(), "cancelled booking releases its slot")

	err := bk.Cancel("again")
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestReschedule(t *testing.T) {
	bk := newTestBooking(t)

	newPeriod, err := daterange.New(
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	require.NoError(t, bk.Reschedule(newPeriod, []ExtraOption{ExtraChildSeat}, 70000))
	assert.Equal(t, newPeriod, bk.Period())
	assert.Equal(t, []ExtraOption{ExtraChildSeat}, bk.Extras())
	assert.Equal(t, int64(70000), bk.TotalCents())

	require.NoError(t, bk.Confirm("INV-2025-000042"))
	err = bk.Reschedule(testPeriod(t), nil, 50000)
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr, "only pending bookings can be rescheduled")
}

func TestHoldsSlot(t *testing.T) {
	now := time.Now().UTC()

	futureEnd, err := daterange.New(now.AddDate(0, 0, -2), now.AddDate(0, 0, 3))
	require.NoError(t, err)
	pastEnd, err := daterange.New(now.AddDate(0, 0, -10), now.AddDate(0, 0, -5))
	require.NoError(t, err)

	build := func(status Status, period daterange.Range) *Booking {
		return Reconstruct(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
			period, status, nil, 50000, "USD", nil, "",
			nil, nil, nil, "", 1, now, now)
	}

	assert.True(t, build(StatusPending, pastEnd).HoldsSlot())
	assert.True(t, build(StatusConfirmed, pastEnd).HoldsSlot())
	assert.False(t, build(StatusCancelled, futureEnd).HoldsSlot())
	assert.True(t, build(StatusCompleted, futureEnd).HoldsSlot(),
		"completed with dropoff still ahead keeps the remaining window blocked")
	assert.False(t, build(StatusCompleted, pastEnd).HoldsSlot())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("returned")
	assert.Error(t, err)
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2025-000001", FormatInvoiceNumber(2025, 1))
	assert.Equal(t, "INV-2026-004217", FormatInvoiceNumber(2026, 4217))
	assert.Equal(t, "INV-2025-1000000", FormatInvoiceNumber(2025, 1000000),
		"sequence wider than the pad keeps all digits")
}
