package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupAllRoutes mounts middleware, probes, the API and the 404 handler.
func SetupAllRoutes(router *gin.Engine, c Controllers) {
	setupMiddleware(router)
	SetupHealthRoutes(router, c)
	SetupAPIRoutes(router, c)

	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(404, gin.H{
			"error":  "route not found",
			"path":   ctx.Request.URL.Path,
			"method": ctx.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
