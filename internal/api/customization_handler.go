package api

import (
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CustomizationHandler serves merged day views and per-day set overrides.
type CustomizationHandler struct {
	customizationService service.CustomizationService
	log                  *logger.Logger
}

func NewCustomizationHandler(customizationService service.CustomizationService, log *logger.Logger) *CustomizationHandler {
	return &CustomizationHandler{customizationService: customizationService, log: log}
}

// ApplyCustomizationsRequest carries only the sets the client touched.
type ApplyCustomizationsRequest struct {
	Entries []service.CustomizationEntry `json:"entries"`
}

type ResetResponse struct {
	Deleted int64 `json:"deleted"`
}

// GetDayView godoc
// @Summary Resolve one absolute plan day with effective set values
// @Tags Customizations
// @Security BearerAuth
// @Success 200 {object} service.DayView
// @Failure 400 {object} ErrorResponse "Day must be greater than 0"
// @Failure 422 {object} ErrorResponse "Day outside the plan"
// @Router /plans/{planId}/days/{day} [get]
func (h *CustomizationHandler) GetDayView(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	view, err := h.customizationService.GetDayView(c.Request.Context(), userID, planID, day)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomizationHandler) GetTodayView(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	view, err := h.customizationService.GetTodayView(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomizationHandler) GetMicrocycleOverview(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	n, ok := intParam(c, "microcycle")
	if !ok {
		return
	}
	overview, err := h.customizationService.GetMicrocycleOverview(c.Request.Context(), userID, planID, n)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *CustomizationHandler) ListCustomizedDays(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	days, err := h.customizationService.ListCustomizedDays(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// ApplyCustomizations godoc
// @Summary Merge set overrides into one plan day
// @Description Entries are applied independently; entries whose set cannot be found are reported in failures.
// @Tags Customizations
// @Security BearerAuth
// @Param body body ApplyCustomizationsRequest true "Touched sets only"
// @Success 200 {object} service.BatchResult
// @Failure 422 {object} ErrorResponse "Rest or unassigned day"
// @Router /plans/{planId}/days/{day}/customizations [put]
func (h *CustomizationHandler) ApplyCustomizations(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	var req ApplyCustomizationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	result, err := h.customizationService.ApplyCustomizations(c.Request.Context(), userID, planID, day, req.Entries)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CustomizationHandler) ResetDay(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	n, err := h.customizationService.ResetDay(c.Request.Context(), userID, planID, day)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Deleted: n})
}

func (h *CustomizationHandler) ResetSet(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	day, ok := intParam(c, "day")
	if !ok {
		return
	}
	setID, ok := uuidParam(c, "setId")
	if !ok {
		return
	}
	n, err := h.customizationService.ResetSet(c.Request.Context(), userID, planID, day, setID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Deleted: n})
}

func (h *CustomizationHandler) ResetAll(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	n, err := h.customizationService.ResetAll(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Deleted: n})
}
