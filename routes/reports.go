package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ivanmitkovski/chisto-mk/handlers/reports"
	"github.com/ivanmitkovski/chisto-mk/handlers/reports/duplicates"
	"github.com/ivanmitkovski/chisto-mk/middleware"
)

func ReportsRoutes(r *gin.Engine) {
	// Public submission; the duplicate detector runs on every create
	r.POST("/reports", reports.CreateReport)

	// Authenticated user routes
	userRoutes := r.Group("/reports")
	userRoutes.Use(middleware.JWTAuth())
	{
		userRoutes.GET("/me", reports.GetMyReports)
	}

	// Moderation routes
	adminRoutes := r.Group("/reports")
	adminRoutes.Use(middleware.AdminAuth())
	{
		adminRoutes.GET("", reports.GetAllReports)
		adminRoutes.GET("/duplicates", duplicates.GetDuplicateGroups)
		adminRoutes.GET("/:id/duplicates", duplicates.GetDuplicateGroupByReport)
		adminRoutes.GET("/:id", reports.GetReportByID)
		adminRoutes.PATCH("/:id/status", reports.UpdateReportStatus)
		adminRoutes.POST("/:id/merge", duplicates.MergeDuplicateReports)
	}
}
