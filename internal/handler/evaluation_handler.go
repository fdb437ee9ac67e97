package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fieldpilot/dispatch-api/internal/models"
	"github.com/fieldpilot/dispatch-api/internal/service"
	"github.com/fieldpilot/dispatch-api/pkg/response"
)

type evaluationLister interface {
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error)
}

// EvaluationHandler exposes the evaluation audit trail.
type EvaluationHandler struct {
	repo    evaluationLister
	export  *service.ExportService
	metrics *service.MetricsService
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(repo evaluationLister, export *service.ExportService, metrics *service.MetricsService) *EvaluationHandler {
	return &EvaluationHandler{repo: repo, export: export, metrics: metrics}
}

// List godoc
// @Summary List evaluations
// @Tags Evaluations
// @Produce json
// @Param cronId query string false "Filter by cron"
// @Param workOrderId query string false "Filter by work order"
// @Param action query string false "Filter by action"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
	filter := evaluationFilterFromQuery(c)

	evaluations, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	response.JSON(c, http.StatusOK, evaluations, pagination)
}

// Export godoc
// @Summary Export evaluations
// @Description Download the filtered evaluation history as CSV or PDF
// @Tags Evaluations
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param cronId query string false "Filter by cron"
// @Param action query string false "Filter by action"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /evaluations/export [get]
func (h *EvaluationHandler) Export(c *gin.Context) {
	filter := evaluationFilterFromQuery(c)
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.export.Evaluations(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

// Metrics godoc
// @Summary Dispatch metrics snapshot
// @Tags Evaluations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /evaluations/metrics [get]
func (h *EvaluationHandler) Metrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

func evaluationFilterFromQuery(c *gin.Context) models.EvaluationFilter {
	var filter models.EvaluationFilter
	filter.CronID = c.Query("cronId")
	filter.WorkOrderID = c.Query("workOrderId")
	filter.Action = c.Query("action")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}
	filter.SortOrder = c.Query("order")
	return filter
}
