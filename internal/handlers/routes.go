package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/middleware"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Auth       *AuthHandler
	Boards     *BoardHandler
	Tasks      *TaskHandler
	Timers     *TimerHandler
	Sharing    *SharingHandler
	Connection *ConnectionHandler
}

// RegisterRoutes mounts the API on r. Session middleware must already be
// installed.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Tracker API is running",
		})
	})

	id := middleware.RequireIDParams("id")

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), h.Auth.GetCurrentUser)
		}

		// Board routes (protected)
		boards := api.Group("/boards")
		boards.Use(middleware.RequireAuth())
		{
			boards.GET("", h.Boards.ListBoards)
			boards.POST("", h.Boards.CreateBoard)
			boards.GET("/shared", h.Boards.ListSharedBoards)
			boards.PUT("/reorder", h.Boards.ReorderBoards)
			boards.POST("/singleton/:kind", h.Boards.EnsureSingletonBoard)
			boards.GET("/:id", id, h.Boards.GetBoard)
			boards.PATCH("/:id", id, h.Boards.UpdateBoard)
			boards.DELETE("/:id", id, h.Boards.DeleteBoard)
			boards.POST("/:id/sections", id, h.Boards.CreateSection)
			boards.PUT("/:id/sections/reorder", id, h.Boards.ReorderSections)
			boards.GET("/:id/members", id, h.Sharing.ListMembers)
			boards.POST("/:id/members", id, h.Sharing.ShareBoard)
			boards.DELETE("/:id/members/:user_id", middleware.RequireIDParams("id", "user_id"), h.Sharing.UnshareBoard)
			boards.POST("/:id/suggestions", id, h.Tasks.SuggestTasks)
		}

		sections := api.Group("/sections")
		sections.Use(middleware.RequireAuth())
		{
			sections.PATCH("/:id", id, h.Boards.UpdateSection)
			sections.DELETE("/:id", id, h.Boards.DeleteSection)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", h.Tasks.ListTasks)
			tasks.GET("/grouped", h.Tasks.GroupTasks)
			tasks.POST("", h.Tasks.CreateTask)
			tasks.PUT("/reorder", h.Tasks.ReorderTasks)
			tasks.GET("/:id", id, h.Tasks.GetTask)
			tasks.PATCH("/:id", id, h.Tasks.UpdateTask)
			tasks.DELETE("/:id", id, h.Tasks.DeleteTask)
			tasks.POST("/:id/toggle", id, h.Tasks.ToggleTask)
			tasks.POST("/:id/complete-repeat", id, h.Tasks.CompleteRepeat)
			tasks.POST("/:id/move", id, h.Tasks.MoveTask)
			tasks.POST("/:id/timer/start", id, h.Timers.StartTimer)
			tasks.POST("/:id/timer/complete", id, h.Timers.CompleteTimer)
			tasks.POST("/:id/timer/reset", id, h.Timers.ResetTimer)
		}

		timers := api.Group("/timers")
		timers.Use(middleware.RequireAuth())
		{
			timers.GET("/active", h.Timers.ListActiveTimers)
			timers.GET("/alerts", h.Timers.Alerts)
		}

		connections := api.Group("/connections")
		connections.Use(middleware.RequireAuth())
		{
			connections.GET("", h.Connection.ListConnections)
			connections.POST("", h.Connection.RequestConnection)
			connections.POST("/:user_id/accept", middleware.RequireIDParams("user_id"), h.Connection.AcceptConnection)
			connections.DELETE("/:user_id", middleware.RequireIDParams("user_id"), h.Connection.RemoveConnection)
		}
	}
}
