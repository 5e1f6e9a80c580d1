package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ivanmitkovski/chisto-mk/handlers/admin"
	"github.com/ivanmitkovski/chisto-mk/middleware"
)

func AdminRoutes(r *gin.Engine) {
	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AdminAuth())
	{
		adminRoutes.GET("/overview", admin.GetOverview)
	}
}
