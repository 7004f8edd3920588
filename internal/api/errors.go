package api

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Details    any      `json:"details,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:      http.StatusBadRequest,
	apperr.KindOutOfRange:      http.StatusUnprocessableEntity,
	apperr.KindNotFound:        http.StatusNotFound,
	apperr.KindConflict:        http.StatusConflict,
	apperr.KindCannotCustomize: http.StatusUnprocessableEntity,
	apperr.KindInternal:        http.StatusInternalServerError,
}

// StatusForKind returns the HTTP status used for an error kind.
func StatusForKind(kind apperr.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError renders a service error. Internal causes are logged, never returned.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if errors.Is(err, service.ErrAuthenticationFailed) {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		log.Error("request failed", "path", c.FullPath(), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Code:    string(apperr.KindInternal),
			Message: "An unexpected error occurred",
		})
		return
	}

	c.AbortWithStatusJSON(StatusForKind(appErr.Kind), ErrorResponse{
		Code:       string(appErr.Kind),
		Message:    appErr.Message,
		Details:    appErr.Details,
		Violations: appErr.Violations,
	})
}

func bindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Code:    string(apperr.KindValidation),
		Message: "Validation error: " + err.Error(),
	})
}

// uuidParam parses a path parameter; it writes the 400 itself and reports false on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    string(apperr.KindValidation),
			Message: "Invalid " + name + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    string(apperr.KindValidation),
			Message: name + " must be an integer",
		})
		return 0, false
	}
	return n, true
}

// currentUser reads the authenticated user id; it writes the 401 itself on failure.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return uuid.Nil, false
	}
	return id, true
}
