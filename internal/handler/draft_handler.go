package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Atlas-Fleet-Rentals/service-rental/internal/application"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/auth"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/middleware"
	"github.com/Atlas-Fleet-Rentals/service-rental/internal/response"
)

// DraftHandler handles HTTP requests for booking drafts.
type DraftHandler struct {
	drafts   *application.DraftService
	bookings *application.BookingService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(drafts *application.DraftService, bookings *application.BookingService) *DraftHandler {
	return &DraftHandler{drafts: drafts, bookings: bookings}
}

// RegisterRoutes registers all draft routes on the given router group.
func (h *DraftHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	drafts := r.Group("/api/v1/drafts")
	drafts.Use(authMW, middleware.RequireRole(auth.RoleStaff))
	{
		drafts.PUT("", h.SaveDraft)
		drafts.GET("", h.ListDrafts)
		drafts.GET("/:id", h.GetDraft)
		drafts.DELETE("/:id", h.DeleteDraft)
		drafts.POST("/:id/submit", h.SubmitDraft)
	}
}

// SaveDraft handles PUT /api/v1/drafts. Creates when no id is given,
// otherwise replaces the named draft.
func (h *DraftHandler) SaveDraft(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.drafts.SaveDraft(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if req.ID == nil {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// ListDrafts handles GET /api/v1/drafts.
func (h *DraftHandler) ListDrafts(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.drafts.ListDrafts(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetDraft handles GET /api/v1/drafts/:id.
func (h *DraftHandler) GetDraft(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	result, err := h.drafts.GetDraft(c.Request.Context(), userID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteDraft handles DELETE /api/v1/drafts/:id.
func (h *DraftHandler) DeleteDraft(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	if err := h.drafts.DeleteDraft(c.Request.Context(), userID, draftID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitDraft handles POST /api/v1/drafts/:id/submit. Turns a completed
// draft into a booking; `confirm=true` confirms it in the same request.
func (h *DraftHandler) SubmitDraft(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	draftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid draft ID")
		return
	}

	confirm := c.Query("confirm") == "true"

	result, err := h.bookings.SubmitDraft(c.Request.Context(), userID, draftID, confirm)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
