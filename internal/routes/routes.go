package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tutormatch_backend/internal/handlers"
	"tutormatch_backend/internal/logger"
)

// StaticMount serves locally stored uploads; nil when objects live in S3.
type StaticMount struct {
	URLPrefix string
	Dir       string
}

// RegisterRoutes mounts the v1 API, the health check and local uploads.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers, static *StaticMount) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.UserHandler.RegisterRoutes(api)
		appHandlers.TutorHandler.RegisterRoutes(api)
		appHandlers.FavoriteHandler.RegisterRoutes(api)
		appHandlers.BookingHandler.RegisterRoutes(api)
		appHandlers.ProjectHandler.RegisterRoutes(api)
		appHandlers.MatchingHandler.RegisterRoutes(api)
	}

	if static != nil && static.URLPrefix != "" {
		ginRouter.Static(static.URLPrefix, static.Dir)
		logger.Info("serving local uploads", "prefix", static.URLPrefix, "dir", static.Dir)
	}
}
