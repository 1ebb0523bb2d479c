package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courseops/scheduling-api/internal/models"
	"github.com/courseops/scheduling-api/internal/service"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
	"github.com/courseops/scheduling-api/pkg/response"
)

type schedulingService interface {
	Submit(ctx context.Context, input service.SubmitRequestInput) (*models.CourseRequest, error)
	Get(ctx context.Context, requestID string) (*models.CourseRequest, error)
	List(ctx context.Context, filter models.CourseRequestFilter) ([]models.CourseRequest, *models.Pagination, error)
	AssignInstructor(ctx context.Context, requestID string, input service.AssignInstructorInput) (*models.CourseRequest, error)
	Reschedule(ctx context.Context, requestID string, input service.RescheduleInput) (*models.CourseRequest, error)
	Cancel(ctx context.Context, requestID string, input service.CancelInput) (*models.CourseRequest, error)
	Complete(ctx context.Context, requestID string, input service.CompleteInput) (*models.CourseRequest, error)
	Archive(ctx context.Context, requestID string) (*models.CourseRequest, error)
}

// SchedulingHandler exposes the course request lifecycle endpoints.
type SchedulingHandler struct {
	service schedulingService
}

// NewSchedulingHandler builds a new handler.
func NewSchedulingHandler(svc schedulingService) *SchedulingHandler {
	return &SchedulingHandler{service: svc}
}

// Submit godoc
// @Summary Submit a course request
// @Tags Course Requests
// @Accept json
// @Produce json
// @Param payload body service.SubmitRequestInput true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *SchedulingHandler) Submit(c *gin.Context) {
	var input service.SubmitRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.service.Submit(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// Get godoc
// @Summary Get a course request
// @Tags Course Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *SchedulingHandler) Get(c *gin.Context) {
	req, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// List godoc
// @Summary List course requests
// @Tags Course Requests
// @Produce json
// @Param organizationId query string false "Filter by organization"
// @Param instructorId query string false "Filter by instructor"
// @Param status query string false "Filter by status"
// @Param includeArchived query bool false "Include archived requests"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *SchedulingHandler) List(c *gin.Context) {
	var filter models.CourseRequestFilter
	filter.OrganizationID = c.Query("organizationId")
	filter.InstructorID = c.Query("instructorId")
	filter.Status = c.Query("status")
	filter.IncludeArchived = c.Query("includeArchived") == "true"
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Assign godoc
// @Summary Assign an instructor to a request
// @Tags Course Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.AssignInstructorInput true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/assign [post]
func (h *SchedulingHandler) Assign(c *gin.Context) {
	var input service.AssignInstructorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.service.AssignInstructor(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Reschedule godoc
// @Summary Reschedule a confirmed request
// @Tags Course Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.RescheduleInput true "Reschedule payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/reschedule [post]
func (h *SchedulingHandler) Reschedule(c *gin.Context) {
	var input service.RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.service.Reschedule(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Cancel godoc
// @Summary Cancel a request
// @Tags Course Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.CancelInput true "Cancellation payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/cancel [post]
func (h *SchedulingHandler) Cancel(c *gin.Context) {
	var input service.CancelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req, err := h.service.Cancel(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Complete godoc
// @Summary Complete a confirmed request
// @Tags Course Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.CompleteInput false "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/complete [post]
func (h *SchedulingHandler) Complete(c *gin.Context) {
	var input service.CompleteInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	req, err := h.service.Complete(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// Archive godoc
// @Summary Archive a completed, invoiced request
// @Tags Course Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/archive [post]
func (h *SchedulingHandler) Archive(c *gin.Context) {
	req, err := h.service.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}
