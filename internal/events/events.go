package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topics the rental engine produces to and consumes from.
const (
	TopicBookingEvents = "rental.booking.events"
	TopicFleetEvents   = "rental.fleet.events"
)

// Event types published on the booking topic for the reporting collaborator.
const (
	BookingReserved  = "booking.reserved"
	BookingConfirmed = "booking.confirmed"
	BookingCompleted = "booking.completed"
	BookingCancelled = "booking.cancelled"
)

// Event types consumed from the fleet topic.
const (
	VehicleStatusChanged = "vehicle.status_changed"
)

// CloudEvent is the message envelope used on every topic.
type CloudEvent struct {
	ID              string          `json:"id"`
	Source          string          `json:"source"`
	SpecVersion     string          `json:"specversion"`
	Type            string          `json:"type"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// NewCloudEvent wraps a payload in a CloudEvent envelope.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return CloudEvent{
		ID:              uuid.New().String(),
		Source:          source,
		SpecVersion:     "1.0",
		Type:            eventType,
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            raw,
	}, nil
}

// ParseCloudEvent decodes a CloudEvent from raw bytes.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to parse cloud event: %w", err)
	}
	return ce, nil
}

// ParseData decodes the event payload into the given value.
func (ce CloudEvent) ParseData(v interface{}) error {
	return json.Unmarshal(ce.Data, v)
}

// BookingReservedEvent is published when a pending booking claims a slot.
type BookingReservedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CreatedBy  uuid.UUID `json:"created_by"`
	Pickup     time.Time `json:"pickup"`
	Dropoff    time.Time `json:"dropoff"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a booking is confirmed and its
// invoice number minted.
type BookingConfirmedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when a rental is completed.
type BookingCompletedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	InvoiceNumber string    `json:"invoice_number"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// slot released.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	VehicleID   uuid.UUID `json:"vehicle_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
	Pickup      time.Time `json:"pickup"`
	Dropoff     time.Time `json:"dropoff"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// VehicleStatusChangedEvent arrives from the fleet service when a vehicle's
// operational flags change.
type VehicleStatusChangedEvent struct {
	VehicleID     uuid.UUID `json:"vehicle_id"`
	InMaintenance bool      `json:"in_maintenance"`
	Blocked       bool      `json:"blocked"`
	OccurredAt    time.Time `json:"occurred_at"`
}
