package handlers

import (
	"net/http"
	"strings"

	"github.com/coursekit/quiz-authoring-service/internal/models"
	"github.com/coursekit/quiz-authoring-service/internal/services"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type EditorHandler struct {
	BaseHandler
	editorService services.EditorService
}

func NewEditorHandler(editorService services.EditorService, logger utils.Logger) *EditorHandler {
	return &EditorHandler{
		BaseHandler:   NewBaseHandler(logger),
		editorService: editorService,
	}
}

// OpenSession opens a new editor session, blank or hydrated from an existing quiz
func (h *EditorHandler) OpenSession(c *gin.Context) {
	var req services.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	snapshot, err := h.editorService.OpenSession(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, snapshot)
}

// GetSession returns the session's draft and workflow state
func (h *EditorHandler) GetSession(c *gin.Context) {
	snapshot, err := h.editorService.GetSession(h.sessionID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// CloseSession cancels the session and discards the draft
func (h *EditorHandler) CloseSession(c *gin.Context) {
	if err := h.editorService.CloseSession(h.sessionID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session closed"})
}

// UpdateSettings updates quiz-level fields while in the settings step
func (h *EditorHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	snapshot, err := h.editorService.UpdateSettings(h.sessionID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Advance moves the session from settings to the question list
func (h *EditorHandler) Advance(c *gin.Context) {
	snapshot, err := h.editorService.AdvanceToQuestions(h.sessionID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Back moves the session from the question list back to settings
func (h *EditorHandler) Back(c *gin.Context) {
	snapshot, err := h.editorService.BackToSettings(h.sessionID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// AddQuestion adds a question of the given variant, optionally at a position
func (h *EditorHandler) AddQuestion(c *gin.Context) {
	var req services.AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	localID, err := h.editorService.AddQuestion(h.sessionID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Question added",
		Data:    gin.H{"local_id": localID},
	})
}

// UpdateQuestion updates question-level fields (text, points, can_skip)
func (h *EditorHandler) UpdateQuestion(c *gin.Context) {
	var req services.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.editorService.UpdateQuestion(h.sessionID(c), h.questionID(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question updated"})
}

// DeleteQuestion removes a question; confirmation is the UI's concern
func (h *EditorHandler) DeleteQuestion(c *gin.Context) {
	if err := h.editorService.DeleteQuestion(h.sessionID(c), h.questionID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

type changeTypeRequest struct {
	Type models.QuestionType `json:"question_type" binding:"required"`
}

// ChangeQuestionType switches the variant, resetting the content payload
func (h *EditorHandler) ChangeQuestionType(c *gin.Context) {
	var req changeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.editorService.ChangeQuestionType(h.sessionID(c), h.questionID(c), req.Type); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question type changed"})
}

type moveQuestionRequest struct {
	ToIndex int `json:"to_index"`
}

// MoveQuestion reorders the question list
func (h *EditorHandler) MoveQuestion(c *gin.Context) {
	var req moveQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.editorService.MoveQuestion(h.sessionID(c), h.questionID(c), req.ToIndex); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question moved"})
}

// ApplyContentOperation applies one variant-specific payload edit
func (h *EditorHandler) ApplyContentOperation(c *gin.Context) {
	var op services.ContentOperation
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.editorService.ApplyContentOperation(h.sessionID(c), h.questionID(c), &op); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Content updated"})
}

// Save validates the draft and runs the persistence pipeline
func (h *EditorHandler) Save(c *gin.Context) {
	result, err := h.editorService.Save(c.Request.Context(), h.sessionID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz saved",
		Data:    result,
	})
}

// ExportDraft downloads the draft as an authoring worksheet
func (h *EditorHandler) ExportDraft(c *gin.Context) {
	data, err := h.editorService.ExportDraft(h.sessionID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quiz-draft.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *EditorHandler) sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

func (h *EditorHandler) questionID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("question_id"))
}
