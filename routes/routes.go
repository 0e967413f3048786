package routes

import (
	"github.com/gin-gonic/gin"

	"HavenGo/controllers"
	"HavenGo/middleware"
	"HavenGo/services"
	"HavenGo/store"
	"HavenGo/utils"
)

// RegisterRoutes wires every endpoint. The chat controller is built by the
// caller so its post-stream persistence goroutines can be drained at
// shutdown.
func RegisterRoutes(r *gin.Engine, jwtManager *utils.JWTManager, chatController *controllers.ChatController, syncService *services.SyncService, local *store.LocalStore) {
	authController := controllers.NewAuthController(jwtManager)
	journalController := controllers.NewJournalController(syncService, local)
	moodController := controllers.NewMoodController(syncService, local)
	syncController := controllers.NewSyncController(syncService)
	resourceController := controllers.NewResourceController()

	// Public routes (no device token required)
	public := r.Group("/api/v1")
	{
		public.POST("/auth/device", authController.PairDevice)
	}

	// Authenticated routes
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(jwtManager))
	{
		private.POST("/chat", chatController.SendMessage)
		private.GET("/conversations", chatController.GetConversations)
		private.GET("/conversations/:id/messages", chatController.GetMessages)
		private.DELETE("/conversations/:id", chatController.DeleteConversation)

		private.POST("/journal", journalController.SaveEntry)
		private.GET("/journal", journalController.ListEntries)
		private.DELETE("/journal/:id", journalController.DeleteEntry)

		private.POST("/moods", moodController.CreateEntry)
		private.GET("/moods", moodController.ListEntries)
		private.GET("/moods/stats", moodController.GetStats)
		private.POST("/moods/analyze-day", moodController.AnalyzeDay)
		private.DELETE("/moods/:id", moodController.DeleteEntry)

		private.GET("/sync/status", syncController.GetStatus)
		private.POST("/sync/run", syncController.RunSweep)
		private.POST("/sync/retry-failed", syncController.RetryFailed)

		private.GET("/resources/crisis", resourceController.GetCrisisResources)
	}

	// Health check
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}
