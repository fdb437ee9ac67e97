package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldpilot/dispatch-api/internal/models"
	"github.com/fieldpilot/dispatch-api/internal/service"
	appErrors "github.com/fieldpilot/dispatch-api/pkg/errors"
	"github.com/fieldpilot/dispatch-api/pkg/response"
)

// CronHandler exposes matching-configuration endpoints.
type CronHandler struct {
	service  *service.CronService
	dispatch *service.DispatchService
}

// NewCronHandler constructs a cron handler.
func NewCronHandler(svc *service.CronService, dispatch *service.DispatchService) *CronHandler {
	return &CronHandler{service: svc, dispatch: dispatch}
}

// List godoc
// @Summary List crons
// @Description List matching configurations with filters
// @Tags Crons
// @Produce json
// @Param providerId query string false "Filter by provider"
// @Param enabled query bool false "Filter by enabled flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /crons [get]
func (h *CronHandler) List(c *gin.Context) {
	var filter models.CronFilter
	filter.ProviderID = c.Query("providerId")
	if enabled := c.Query("enabled"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			filter.Enabled = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	crons, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, crons, pagination)
}

// Get godoc
// @Summary Get cron
// @Tags Crons
// @Produce json
// @Param id path string true "Cron ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /crons/{id} [get]
func (h *CronHandler) Get(c *gin.Context) {
	cron, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cron, nil)
}

// Create godoc
// @Summary Create cron
// @Tags Crons
// @Accept json
// @Produce json
// @Param payload body service.CreateCronRequest true "Cron payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /crons [post]
func (h *CronHandler) Create(c *gin.Context) {
	var req service.CreateCronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cron, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cron)
}

// Update godoc
// @Summary Update cron
// @Tags Crons
// @Accept json
// @Produce json
// @Param id path string true "Cron ID"
// @Param payload body service.UpdateCronRequest true "Cron payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /crons/{id} [put]
func (h *CronHandler) Update(c *gin.Context) {
	var req service.UpdateCronRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cron, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cron, nil)
}

// Delete godoc
// @Summary Delete cron
// @Tags Crons
// @Param id path string true "Cron ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /crons/{id} [delete]
func (h *CronHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Evaluate godoc
// @Summary Evaluate cron now
// @Description Run one synchronous evaluation cycle for the cron
// @Tags Crons
// @Produce json
// @Param id path string true "Cron ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /crons/{id}/evaluate [post]
func (h *CronHandler) Evaluate(c *gin.Context) {
	summary, err := h.dispatch.EvaluateCron(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
