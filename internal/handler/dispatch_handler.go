package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fieldpilot/dispatch-api/internal/service"
	"github.com/fieldpilot/dispatch-api/pkg/response"
)

// DispatchHandler exposes manual triggers for the evaluation cycle.
type DispatchHandler struct {
	dispatch *service.DispatchService
}

// NewDispatchHandler constructs a dispatch handler.
func NewDispatchHandler(dispatch *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatch: dispatch}
}

// Run godoc
// @Summary Run evaluation cycle
// @Description Queue an evaluation run for every enabled cron
// @Tags Dispatch
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /dispatch/run [post]
func (h *DispatchHandler) Run(c *gin.Context) {
	queued, err := h.dispatch.EvaluateAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"queued": queued}, nil)
}
