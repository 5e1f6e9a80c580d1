package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanmitkovski/chisto-mk/db"
	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type overviewResponse struct {
	ReportsByStatus map[string]int64 `json:"reportsByStatus"`
	SitesByStatus   map[string]int64 `json:"sitesByStatus"`
	CleanupEvents   struct {
		Upcoming  int64 `json:"upcoming"`
		Completed int64 `json:"completed"`
	} `json:"cleanupEvents"`
}

// @Summary Dashboard overview counters
// @Description Reports and sites grouped by status plus upcoming/completed cleanup event counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /admin/overview [get]
func GetOverview(c *gin.Context) {
	var reportCounts []statusCount
	err := db.DB.Model(&models.Report{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&reportCounts).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting reports: "+err.Error())
		return
	}

	var siteCounts []statusCount
	err = db.DB.Model(&models.Site{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&siteCounts).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting sites: "+err.Error())
		return
	}

	var upcoming, completed int64
	if err := db.DB.Model(&models.CleanupEvent{}).Where("completed_at IS NULL").Count(&upcoming).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting cleanup events: "+err.Error())
		return
	}
	if err := db.DB.Model(&models.CleanupEvent{}).Where("completed_at IS NOT NULL").Count(&completed).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting cleanup events: "+err.Error())
		return
	}

	overview := overviewResponse{
		ReportsByStatus: make(map[string]int64, len(reportCounts)),
		SitesByStatus:   make(map[string]int64, len(siteCounts)),
	}
	for _, row := range reportCounts {
		overview.ReportsByStatus[row.Status] = row.Count
	}
	for _, row := range siteCounts {
		overview.SitesByStatus[row.Status] = row.Count
	}
	overview.CleanupEvents.Upcoming = upcoming
	overview.CleanupEvents.Completed = completed

	c.JSON(http.StatusOK, overview)
}
