package api

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PlanHandler exposes plan CRUD, the microcycle pattern and lifecycle transitions.
type PlanHandler struct {
	planService service.PlanService
	log         *logger.Logger
}

func NewPlanHandler(planService service.PlanService, log *logger.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, log: log}
}

// --- DTOs ---

type SlotRequest struct {
	DayNumber int        `json:"dayNumber" binding:"required"`
	IsRestDay bool       `json:"isRestDay"`
	RoutineID *uuid.UUID `json:"routineId"`
}

func (r SlotRequest) toInput() service.SlotInput {
	return service.SlotInput{DayNumber: r.DayNumber, IsRestDay: r.IsRestDay, RoutineID: r.RoutineID}
}

type CreatePlanRequest struct {
	Name                 string        `json:"name" binding:"required"`
	Description          string        `json:"description"`
	StartDate            string        `json:"startDate" binding:"required"` // YYYY-MM-DD
	MicrocycleLengthDays int           `json:"microcycleLengthDays" binding:"required"`
	TotalMicrocycles     int           `json:"totalMicrocycles" binding:"required"`
	Slots                []SlotRequest `json:"slots"`
}

type UpdatePlanRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type ResetStartRequest struct {
	StartDate string `json:"startDate" binding:"required"` // YYYY-MM-DD
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date", field+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// --- Handler Methods ---

// CreatePlan godoc
// @Summary Create a training plan with its microcycle pattern
// @Tags Plans
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan definition"
// @Success 201 {object} service.PlanDetails
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 409 {object} ErrorResponse "Plan ceiling reached or duplicate name"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	in := service.CreatePlanInput{
		Name:                 req.Name,
		Description:          req.Description,
		StartDate:            start,
		MicrocycleLengthDays: req.MicrocycleLengthDays,
		TotalMicrocycles:     req.TotalMicrocycles,
	}
	for _, slot := range req.Slots {
		in.Slots = append(in.Slots, slot.toInput())
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary List the user's plans
// @Tags Plans
// @Security BearerAuth
// @Param includeArchived query bool false "Include archived plans"
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	includeArchived, _ := strconv.ParseBool(c.Query("includeArchived"))
	plans, err := h.planService.ListPlans(c.Request.Context(), userID, includeArchived)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, service.UpdatePlanInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// SetDaySlot godoc
// @Summary Configure one day of the microcycle pattern
// @Tags Plans
// @Security BearerAuth
// @Param slot body SlotRequest true "Rest day, routine or neither"
// @Router /plans/{planId}/slots [put]
func (h *PlanHandler) SetDaySlot(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	var req SlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slot, err := h.planService.SetDaySlot(c.Request.Context(), userID, planID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

func (h *PlanHandler) ClearDaySlot(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	dayNumber, ok := intParam(c, "dayNumber")
	if !ok {
		return
	}
	if err := h.planService.ClearDaySlot(c.Request.Context(), userID, planID, dayNumber); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Lifecycle ---

// transition adapts a lifecycle call into a handler.
func (h *PlanHandler) transition(call func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, planID, ok := userAndPlan(c)
		if !ok {
			return
		}
		result, err := call(c, userID, planID)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *PlanHandler) Activate() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error) {
		return h.planService.Activate(c.Request.Context(), userID, planID)
	})
}

func (h *PlanHandler) Deactivate() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error) {
		return h.planService.Deactivate(c.Request.Context(), userID, planID)
	})
}

func (h *PlanHandler) Archive() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error) {
		return h.planService.Archive(c.Request.Context(), userID, planID)
	})
}

func (h *PlanHandler) Unarchive() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error) {
		return h.planService.Unarchive(c.Request.Context(), userID, planID)
	})
}

func (h *PlanHandler) Delete() gin.HandlerFunc {
	return h.transition(func(c *gin.Context, userID, planID uuid.UUID) (*service.LifecycleResult, error) {
		return h.planService.Delete(c.Request.Context(), userID, planID)
	})
}

// ResetStart godoc
// @Summary Restart the plan calendar from a new start date
// @Description Wipes every customization of the plan and dissociates its workout history.
// @Tags Plans
// @Security BearerAuth
// @Param body body ResetStartRequest true "New start date"
// @Router /plans/{planId}/reset-start [post]
func (h *PlanHandler) ResetStart(c *gin.Context) {
	userID, planID, ok := userAndPlan(c)
	if !ok {
		return
	}
	var req ResetStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	result, err := h.planService.ResetStart(c.Request.Context(), userID, planID, start)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func userAndPlan(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	planID, ok := uuidParam(c, "planId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, planID, true
}
