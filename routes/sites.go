package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ivanmitkovski/chisto-mk/handlers/sites"
	"github.com/ivanmitkovski/chisto-mk/middleware"
)

func SitesRoutes(r *gin.Engine) {
	// Public routes
	r.GET("/sites", sites.GetAllSites)
	r.GET("/sites/:id", sites.GetSiteByID)

	// Moderation routes
	sitesRoutes := r.Group("/sites")
	sitesRoutes.Use(middleware.AdminAuth())
	{
		sitesRoutes.POST("", sites.CreateSite)
		sitesRoutes.PATCH("/:id/status", sites.UpdateSiteStatus)
	}
}
