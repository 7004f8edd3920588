package api

import (
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoutineHandler exposes routine management.
type RoutineHandler struct {
	routineService service.RoutineService
	log            *logger.Logger
}

func NewRoutineHandler(routineService service.RoutineService, log *logger.Logger) *RoutineHandler {
	return &RoutineHandler{routineService: routineService, log: log}
}

type RenameRoutineRequest struct {
	Name string `json:"name" binding:"required"`
}

type DuplicateRoutineRequest struct {
	Name string `json:"name"` // defaults to "<name> (copy)"
}

// CreateRoutine godoc
// @Summary Create a routine with ordered exercises and sets
// @Tags Routines
// @Security BearerAuth
// @Param routine body service.CreateRoutineInput true "Routine definition"
// @Success 201 {object} service.RoutineDetails
// @Router /routines [post]
func (h *RoutineHandler) CreateRoutine(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateRoutineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	routine, err := h.routineService.CreateRoutine(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

func (h *RoutineHandler) ListRoutines(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	routines, err := h.routineService.ListRoutines(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, routines)
}

func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	userID, routineID, ok := userAndRoutine(c)
	if !ok {
		return
	}
	routine, err := h.routineService.GetRoutine(c.Request.Context(), userID, routineID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

func (h *RoutineHandler) RenameRoutine(c *gin.Context) {
	userID, routineID, ok := userAndRoutine(c)
	if !ok {
		return
	}
	var req RenameRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	routine, err := h.routineService.RenameRoutine(c.Request.Context(), userID, routineID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

// UpdateSet godoc
// @Summary Replace the targets of one set
// @Tags Routines
// @Security BearerAuth
// @Failure 409 {object} ErrorResponse "Routine is used by an active or draft plan"
// @Router /routines/{routineId}/sets/{setId} [put]
func (h *RoutineHandler) UpdateSet(c *gin.Context) {
	userID, routineID, ok := userAndRoutine(c)
	if !ok {
		return
	}
	setID, ok := uuidParam(c, "setId")
	if !ok {
		return
	}
	var req service.SetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	set, err := h.routineService.UpdateSet(c.Request.Context(), userID, routineID, setID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func (h *RoutineHandler) DuplicateRoutine(c *gin.Context) {
	userID, routineID, ok := userAndRoutine(c)
	if !ok {
		return
	}
	var req DuplicateRoutineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	routine, err := h.routineService.DuplicateRoutine(c.Request.Context(), userID, routineID, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

func (h *RoutineHandler) DeleteRoutine(c *gin.Context) {
	userID, routineID, ok := userAndRoutine(c)
	if !ok {
		return
	}
	removed, err := h.routineService.DeleteRoutine(c.Request.Context(), userID, routineID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customizationsDeleted": removed})
}

func userAndRoutine(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	routineID, ok := uuidParam(c, "routineId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, routineID, true
}
