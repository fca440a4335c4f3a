package api

import (
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"screen_ai_server/internal/auth"
	"screen_ai_server/internal/ratelimit"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *APIHandler, authClient *fbauth.Client, limiter *ratelimit.Limiter) {
	// Simple health endpoint to check if the service is running.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := router.Group("/", auth.Middleware(authClient))

	projects := authed.Group("/projects")
	{
		projects.POST("", h.CreateProject)
		projects.GET("", h.ListProjects)
		projects.GET("/:id", h.GetProject)
		projects.DELETE("/:id", h.DeleteProject)
		projects.GET("/:id/history", h.ListPromptHistory)
		// Generation is the only model-backed endpoint; it alone is rate limited.
		projects.POST("/:id/generate", RateLimitMiddleware(limiter), h.GenerateScreen)
	}

	screens := authed.Group("/screens")
	{
		screens.PATCH("/:id", h.MoveScreen)
		screens.DELETE("/:id", h.DeleteScreen)
	}
}

// RateLimitMiddleware rejects callers that exceed their generation budget.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := auth.UserID(c)
		if uid != "" && !limiter.Allow(uid) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
