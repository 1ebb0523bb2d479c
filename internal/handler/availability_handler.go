package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseops/scheduling-api/internal/models"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
	"github.com/courseops/scheduling-api/pkg/response"
)

type availabilityService interface {
	MarkAvailable(ctx context.Context, instructorID, rawDate string) (*models.AvailabilityEntry, error)
	List(ctx context.Context, instructorID string) ([]models.AvailabilityEntry, error)
	Remove(ctx context.Context, instructorID, rawDate string) error
	Schedule(ctx context.Context, instructorID string) ([]models.ClassEntry, error)
}

// AvailabilityHandler exposes the instructor availability and schedule
// endpoints.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(svc availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

type markAvailableRequest struct {
	Date string `json:"date" binding:"required"`
}

// MarkAvailable godoc
// @Summary Open an instructor day for work
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body markAvailableRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/availability [put]
func (h *AvailabilityHandler) MarkAvailable(c *gin.Context) {
	var req markAvailableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.MarkAvailable(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// List godoc
// @Summary List an instructor's availability ledger
// @Tags Availability
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Remove godoc
// @Summary Remove an instructor's availability for a day
// @Tags Availability
// @Produce json
// @Param id path string true "Instructor ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204 {object} nil
// @Router /instructors/{id}/availability/{date} [delete]
func (h *AvailabilityHandler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("id"), c.Param("date")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedule godoc
// @Summary List an instructor's materialized schedule
// @Tags Availability
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Router /instructors/{id}/schedule [get]
func (h *AvailabilityHandler) Schedule(c *gin.Context) {
	entries, err := h.service.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
