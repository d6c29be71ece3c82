package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/petition-qc/app/controllers"
)

// Controllers bundles the handlers the router mounts.
type Controllers struct {
	Search    *controllers.SearchController
	Session   *controllers.SessionController
	Signature *controllers.SignatureController
	Admin     *controllers.AdminController
	Health    *controllers.HealthController
}

// SetupAPIRoutes mounts the versioned API.
func SetupAPIRoutes(router *gin.Engine, c Controllers) {
	v1 := router.Group("/v1")
	{
		voters := v1.Group("/voters")
		{
			voters.POST("/search", c.Search.Search)
			voters.POST("/search-by-name", c.Search.SearchByName)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("/start", c.Session.StartSession)
			sessions.POST("/end", c.Session.EndSession)
			sessions.GET("/active", c.Session.ActiveSession)
		}

		v1.POST("/signatures/record", c.Signature.Record)
		v1.GET("/books/check", c.Session.CheckBook)

		collectors := v1.Group("/collectors")
		{
			collectors.GET("", c.Session.ListCollectors)
			collectors.POST("", c.Session.CreateCollector)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/stats", c.Admin.GetStats)
			admin.POST("/reconcile", c.Admin.Reconcile)
			admin.POST("/indexes/build", c.Admin.BuildIndexes)
			admin.POST("/cache/invalidate", c.Admin.InvalidateCache)
			admin.POST("/import", c.Admin.StartImport)
			admin.GET("/import/:jobID", c.Admin.GetImportStatus)
		}
	}
}

// SetupHealthRoutes mounts the probe endpoints at the root.
func SetupHealthRoutes(router *gin.Engine, c Controllers) {
	router.GET("/health", c.Health.Ready)
	router.GET("/ready", c.Health.Ready)
	router.GET("/live", c.Health.Live)
}
