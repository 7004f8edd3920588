package api

import (
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HistoryHandler records completed days and serves plan exports.
type HistoryHandler struct {
	historyService service.HistoryService
	exportService  service.ExportService
	log            *logger.Logger
}

func NewHistoryHandler(historyService service.HistoryService, exportService service.ExportService, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, exportService: exportService, log: log}
}

type CompleteDayRequest struct {
	Notes string `json:"notes"`
}

// CompleteDay godoc
// @Summary Record a completed routine day
// @Tags History
// @Security BearerAuth
// @Failure 409 {object} ErrorResponse "Day already completed"
// @Router /plans/{planId}/days/{day}/complete [post]
func (h *HistoryHandler) CompleteDay(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	var req CompleteDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	session, err := h.historyService.CompleteDay(c.Request.Context(), userID, planID, day, req.Notes)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *HistoryHandler) ListHistory(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessions, err := h.historyService.ListHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// ExportPlan godoc
// @Summary Export the resolved plan schedule
// @Description Uploads a JSON document with every day view and returns a presigned download URL.
// @Tags Exports
// @Security BearerAuth
// @Success 201 {object} service.ExportLink
// @Router /plans/{planId}/exports [post]
func (h *HistoryHandler) ExportPlan(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	link, err := h.exportService.ExportPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *HistoryHandler) ListExports(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	links, err := h.exportService.ListExports(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, links)
}
