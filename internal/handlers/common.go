package handlers

import (
	"errors"
	"net/http"

	"github.com/coursekit/quiz-authoring-service/internal/draft"
	apperrors "github.com/coursekit/quiz-authoring-service/internal/errors"
	"github.com/coursekit/quiz-authoring-service/internal/services"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/coursekit/quiz-authoring-service/internal/validator"
	"github.com/gin-gonic/gin"
	playgroundvalidator "github.com/go-playground/validator/v10"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error translation for handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// handleServiceError maps service errors to HTTP responses. Draft validation
// and pipeline failures both surface as a single summarized message; the
// session stays open either way.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var draftErr *validator.DraftError
	var pipelineErr *services.PipelineError
	var fieldErrs playgroundvalidator.ValidationErrors

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSessionSaving),
		errors.Is(err, services.ErrSessionClosed),
		errors.Is(err, services.ErrNotInSettings),
		errors.Is(err, services.ErrNotInQuestions),
		errors.Is(err, services.ErrSettingsIncomplete),
		errors.Is(err, draft.ErrStoreFrozen):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.As(err, &draftErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Quiz is not ready to save",
			Details: draftErr.Reason,
		})
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: apperrors.ToValidationErrors(fieldErrs),
		})
	case errors.As(err, &pipelineErr):
		h.LogError(c, err, "Persistence pipeline failed", "phase", pipelineErr.Phase)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Saving quiz failed, your draft is unchanged",
			Details: pipelineErr.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
