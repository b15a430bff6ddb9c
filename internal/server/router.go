package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tutordesk/tutordesk-backend/internal/handlers"
)

type RouterConfig struct {
	AllowOrigins         []string
	UserHandler          *handlers.UserHandler
	ProjectHandler       *handlers.ProjectHandler
	ThreadHandler        *handlers.ThreadHandler
	MessageHandler       *handlers.MessageHandler
	ChatHandler          *handlers.ChatHandler
	HomeworkHandler      *handlers.HomeworkHandler
	TestSetHandler       *handlers.TestSetHandler
	LessonRecordHandler  *handlers.LessonRecordHandler
	AttachmentHandler    *handlers.AttachmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// User
		api.GET("/user", cfg.UserHandler.GetMe)
		// Projects
		api.GET("/projects", cfg.ProjectHandler.ListProjects)
		api.POST("/projects", cfg.ProjectHandler.CreateProject)
		api.GET("/projects/:id/threads", cfg.ThreadHandler.ListThreadsForProject)
		// Threads
		api.POST("/threads", cfg.ThreadHandler.CreateThread)
		api.PATCH("/threads/:id", cfg.ThreadHandler.UpdateThread)
		api.DELETE("/threads/:id", cfg.ThreadHandler.DeleteThread)
		api.GET("/threads/:id/messages", cfg.MessageHandler.ListMessagesForThread)
		api.POST("/threads/:id/chat", cfg.ChatHandler.SendChatTurn)
		// Messages
		api.POST("/messages", cfg.MessageHandler.CreateMessage)
		api.DELETE("/messages/:id", cfg.MessageHandler.DeleteMessage)
		api.GET("/messages/search", cfg.MessageHandler.SearchMessages)
		// Homework
		api.GET("/homework", cfg.HomeworkHandler.ListHomework)
		api.POST("/homework", cfg.HomeworkHandler.CreateHomework)
		api.PATCH("/homework/:id", cfg.HomeworkHandler.UpdateHomework)
		api.POST("/homework/:id/toggle", cfg.HomeworkHandler.ToggleStatus)
		api.DELETE("/homework/:id", cfg.HomeworkHandler.DeleteHomework)
		// Test sets
		api.GET("/testsets", cfg.TestSetHandler.ListTestSets)
		api.GET("/testsets/:id", cfg.TestSetHandler.GetTestSet)
		api.POST("/testsets", cfg.TestSetHandler.CreateTestSet)
		api.PUT("/testsets/:id", cfg.TestSetHandler.UpdateTestSet)
		api.DELETE("/testsets/:id", cfg.TestSetHandler.DeleteTestSet)
		// Lesson records
		api.GET("/lessons", cfg.LessonRecordHandler.ListLessonRecords)
		api.POST("/lessons", cfg.LessonRecordHandler.CreateLessonRecord)
		api.PATCH("/lessons/:id", cfg.LessonRecordHandler.UpdateLessonRecord)
		api.DELETE("/lessons/:id", cfg.LessonRecordHandler.DeleteLessonRecord)
		api.GET("/lessons/report/:month", cfg.LessonRecordHandler.MonthlyReport)
		// Attachments
		api.POST("/attachments", cfg.AttachmentHandler.Upload)
		api.GET("/attachments/url", cfg.AttachmentHandler.SignedURL)
		api.DELETE("/attachments", cfg.AttachmentHandler.Remove)
	}

	return router
}
