package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/application"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/auth"
	vehicleDomain "github.com/Atlas-Fleet-Rentals/service-rental/internal/domain/vehicle"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/middleware"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/response"
)

// AdminBookingHandler handles admin HTTP requests for booking and fleet
// management.
type AdminBookingHandler struct {
	service *application.BookingService
	catalog vehicleDomain.Catalog
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService, catalog vehicleDomain.Catalog) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, catalog: catalog}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.PATCH("/vehicles/:id/flags", h.SetVehicleFlags)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// SetVehicleFlags handles PATCH /api/v1/admin/vehicles/:id/flags. Mirrors
// what the fleet-event consumer applies, for manual overrides.
func (h *AdminBookingHandler) SetVehicleFlags(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var body struct {
		InMaintenance bool `json:"in_maintenance"`
		Blocked       bool `json:"blocked"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.catalog.SetOperationalFlags(c.Request.Context(), vehicleID, body.InMaintenance, body.Blocked); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
