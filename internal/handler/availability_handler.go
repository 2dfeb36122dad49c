package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/application"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/auth"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/middleware"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/response"
)

// AvailabilityHandler handles HTTP requests for availability queries.
type AvailabilityHandler struct {
	service *application.AvailabilityService
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(service *application.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// RegisterRoutes registers all availability routes on the given router group.
func (h *AvailabilityHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	availability := r.Group("/api/v1/availability")
	availability.Use(authMW)
	{
		availability.GET("/vehicles/:id", h.CheckAvailability)
		availability.GET("/vehicles/:id/occupied", h.ListOccupied)
		availability.GET("/stats", h.QuickStats)
	}
}

// CheckAvailability handles GET /api/v1/availability/vehicles/:id?pickup=...&dropoff=...
// An optional exclude_booking_id ignores one booking, for reschedule probes.
func (h *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	pickup, err := parseDate(c.Query("pickup"))
	if err != nil {
		response.BadRequest(c, "pickup must be an RFC 3339 date or timestamp")
		return
	}
	dropoff, err := parseDate(c.Query("dropoff"))
	if err != nil {
		response.BadRequest(c, "dropoff must be an RFC 3339 date or timestamp")
		return
	}

	var excludeID *uuid.UUID
	if raw := c.Query("exclude_booking_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid exclude_booking_id")
			return
		}
		excludeID = &id
	}

	result, err := h.service.IsAvailable(c.Request.Context(), vehicleID, pickup, dropoff, excludeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOccupied handles GET /api/v1/availability/vehicles/:id/occupied?month=6&year=2026.
// Month and year default to the current month.
func (h *AvailabilityHandler) ListOccupied(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	now := time.Now().UTC()
	month, year, err := parseMonthYear(c.DefaultQuery("month", ""), c.DefaultQuery("year", ""), now)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ListOccupied(c.Request.Context(), vehicleID, month, year)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// QuickStats handles GET /api/v1/availability/stats?category=suv. Without a
// category the snapshot covers the whole fleet.
func (h *AvailabilityHandler) QuickStats(c *gin.Context) {
	category := vehicleDomain.Category(c.Query("category"))
	result, err := h.service.QuickStats(c.Request.Context(), category)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseDate accepts either a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseMonthYear(rawMonth, rawYear string, now time.Time) (time.Month, int, error) {
	month := now.Month()
	year := now.Year()

	if rawMonth != "" {
		m, err := strconv.Atoi(rawMonth)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, errors.New("month must be between 1 and 12")
		}
		month = time.Month(m)
	}
	if rawYear != "" {
		y, err := strconv.Atoi(rawYear)
		if err != nil || y < 2000 || y > 2200 {
			return 0, 0, errors.New("year is out of range")
		}
		year = y
	}
	return month, year, nil
}
