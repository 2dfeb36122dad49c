package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/domain"
)

// Envelope is the uniform response body shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a failure to the client.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PaginatedData wraps a page of items.
type PaginatedData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with a page envelope.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    PaginatedData{Items: items, Total: total, Page: page, Limit: limit},
	})
}

// BadRequest writes a 400 validation failure.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: domain.CodeValidation, Message: message},
	})
}

// Error maps a domain error to its HTTP status. Business-rule rejections
// (conflict, blacklist) surface with their own codes; anything unrecognized
// is reported as an internal error without leaking details.
func Error(c *gin.Context, err error) {
	var (
		validationErr  *domain.ValidationError
		notFoundErr    *domain.NotFoundError
		conflictErr    *domain.ConflictError
		stateErr       *domain.InvalidStateError
		blacklistErr   *domain.BlacklistedCustomerError
		refErr         *domain.UnknownReferenceError
		unavailableErr *domain.UnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, fail(validationErr.Code(), validationErr.Error(), nil))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, fail(notFoundErr.Code(), notFoundErr.Error(), nil))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, fail(conflictErr.Code(), conflictErr.Error(), gin.H{
			"conflicting_booking_id": conflictErr.ConflictingID,
			"conflict_pickup":        conflictErr.ConflictPickup,
			"conflict_dropoff":       conflictErr.ConflictDropoff,
		}))
	case errors.As(err, &stateErr):
		c.JSON(http.StatusUnprocessableEntity, fail(stateErr.Code(), stateErr.Error(), nil))
	case errors.As(err, &blacklistErr):
		c.JSON(http.StatusUnprocessableEntity, fail(blacklistErr.Code(), blacklistErr.Error(), nil))
	case errors.As(err, &refErr):
		c.JSON(http.StatusUnprocessableEntity, fail(refErr.Code(), refErr.Error(), nil))
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusServiceUnavailable, fail(unavailableErr.Code(), "storage temporarily unavailable", nil))
	default:
		c.JSON(http.StatusInternalServerError, fail("INTERNAL_ERROR", "internal server error", nil))
	}
}

func fail(code, message string, details interface{}) Envelope {
	return Envelope{Success: false, Error: &ErrorBody{Code: code, Message: message, Details: details}}
}
