package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error codes used by the HTTP layer to classify failures for clients.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "BOOKING_CONFLICT"
	CodeInvalidState     = "INVALID_STATE"
	CodeBlacklisted      = "CUSTOMER_BLACKLISTED"
	CodeUnknownReference = "UNKNOWN_REFERENCE"
	CodeUnavailable      = "STORAGE_UNAVAILABLE"
)

// ValidationError indicates malformed or out-of-range user input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

// Code returns the machine-readable error code.
func (e *ValidationError) Code() string { return CodeValidation }

// NotFoundError indicates a missing record. Ownership violations are also
// reported as not-found so callers cannot probe for existence.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Code returns the machine-readable error code.
func (e *NotFoundError) Code() string { return CodeNotFound }

// ConflictError indicates the vehicle already holds a slot overlapping the
// requested range. It names the conflicting booking so callers can suggest
// alternative dates.
type ConflictError struct {
	VehicleID         uuid.UUID
	ConflictingID     uuid.UUID
	ConflictPickup    time.Time
	ConflictDropoff   time.Time
	ConflictingStatus string
}

// NewConflictError creates a ConflictError naming the overlapping booking.
func NewConflictError(vehicleID, conflictingID uuid.UUID, pickup, dropoff time.Time, status string) *ConflictError {
	return &ConflictError{
		VehicleID:         vehicleID,
		ConflictingID:     conflictingID,
		ConflictPickup:    pickup,
		ConflictDropoff:   dropoff,
		ConflictingStatus: status,
	}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %s is unavailable: booking %s holds %s to %s",
		e.VehicleID, e.ConflictingID,
		e.ConflictPickup.Format("2006-01-02"), e.ConflictDropoff.Format("2006-01-02"))
}

// Code returns the machine-readable error code.
func (e *ConflictError) Code() string { return CodeConflict }

// InvalidStateError indicates an illegal status transition.
type InvalidStateError struct {
	From string
	To   string
}

// NewInvalidStateError creates an InvalidStateError for the attempted transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// Code returns the machine-readable error code.
func (e *InvalidStateError) Code() string { return CodeInvalidState }

// BlacklistedCustomerError indicates a policy block on the customer. It is
// distinct from ConflictError so the UI can route to the override workflow.
type BlacklistedCustomerError struct {
	CustomerID uuid.UUID
}

// NewBlacklistedCustomerError creates a BlacklistedCustomerError.
func NewBlacklistedCustomerError(customerID uuid.UUID) *BlacklistedCustomerError {
	return &BlacklistedCustomerError{CustomerID: customerID}
}

func (e *BlacklistedCustomerError) Error() string {
	return fmt.Sprintf("customer %s is blacklisted", e.CustomerID)
}

// Code returns the machine-readable error code.
func (e *BlacklistedCustomerError) Code() string { return CodeBlacklisted }

// UnknownReferenceError indicates a dangling vehicle or customer reference,
// treated as a data-integrity fault rather than user error.
type UnknownReferenceError struct {
	Entity string
	ID     string
}

// NewUnknownReferenceError creates an UnknownReferenceError.
func NewUnknownReferenceError(entity, id string) *UnknownReferenceError {
	return &UnknownReferenceError{Entity: entity, ID: id}
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s reference: %s", e.Entity, e.ID)
}

// Code returns the machine-readable error code.
func (e *UnknownReferenceError) Code() string { return CodeUnknownReference }

// UnavailableError indicates a transient infrastructure failure. Callers may
// retry; business-rule rejections never use this type.
type UnavailableError struct {
	Message string
	Cause   error
}

// NewUnavailableError wraps a transient storage failure.
func NewUnavailableError(message string, cause error) *UnavailableError {
	return &UnavailableError{Message: message, Cause: cause}
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Code returns the machine-readable error code.
func (e *UnavailableError) Code() string { return CodeUnavailable }
