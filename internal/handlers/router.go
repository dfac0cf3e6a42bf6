package handlers

import (
	"github.com/coursekit/quiz-authoring-service/internal/services"
	"github.com/coursekit/quiz-authoring-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HandlerManager struct {
	editorHandler *EditorHandler
}

func NewHandlerManager(editorService services.EditorService, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		editorHandler: NewEditorHandler(editorService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, registry *prometheus.Registry) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "quiz-authoring-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		sessions := v1.Group("/editor/sessions")
		{
			sessions.POST("", hm.editorHandler.OpenSession)
			sessions.GET("/:id", hm.editorHandler.GetSession)
			sessions.DELETE("/:id", hm.editorHandler.CloseSession)

			// Workflow
			sessions.PUT("/:id/settings", hm.editorHandler.UpdateSettings)
			sessions.POST("/:id/advance", hm.editorHandler.Advance)
			sessions.POST("/:id/back", hm.editorHandler.Back)

			// Question list
			sessions.POST("/:id/questions", hm.editorHandler.AddQuestion)
			sessions.PUT("/:id/questions/:question_id", hm.editorHandler.UpdateQuestion)
			sessions.DELETE("/:id/questions/:question_id", hm.editorHandler.DeleteQuestion)
			sessions.PUT("/:id/questions/:question_id/type", hm.editorHandler.ChangeQuestionType)
			sessions.PUT("/:id/questions/:question_id/position", hm.editorHandler.MoveQuestion)
			sessions.POST("/:id/questions/:question_id/content", hm.editorHandler.ApplyContentOperation)

			// Persistence
			sessions.POST("/:id/save", hm.editorHandler.Save)
			sessions.GET("/:id/export", hm.editorHandler.ExportDraft)
		}
	}
}
