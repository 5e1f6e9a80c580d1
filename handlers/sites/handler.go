package sites

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ivanmitkovski/chisto-mk/db"
	"github.com/ivanmitkovski/chisto-mk/handlers/reports"
	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

// @Summary Create a pollution site
// @Tags sites
// @Accept json
// @Produce json
// @Param site body models.SiteCreate true "Site information"
// @Security BearerAuth
// @Success 201 {object} models.Site
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /sites [post]
func CreateSite(c *gin.Context) {
	var dto models.SiteCreate
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	site := models.Site{
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		Status:    models.SiteReported,
	}
	if dto.Description != "" {
		site.Description = &dto.Description
	}

	if err := db.DB.Create(&site).Error; err != nil {
		utils.LogError(err, "Error creating site in CreateSite")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error creating site: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, site)
}

// @Summary List sites
// @Tags sites
// @Produce json
// @Param status query string false "Filter by site status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponse
// @Router /sites [get]
func GetAllSites(c *gin.Context) {
	page, limit := reports.ParsePagination(c)

	query := db.DB.Model(&models.Site{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting sites: "+err.Error())
		return
	}

	var sites []models.Site
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sites).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving sites: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": sites,
		"meta": models.PaginationMeta{Page: page, Limit: limit, Total: total},
	})
}

// @Summary Get a site with its reports
// @Tags sites
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} models.Site
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /sites/{id} [get]
func GetSiteByID(c *gin.Context) {
	siteID := c.Param("id")

	var site models.Site
	err := db.DB.
		Preload("Reports", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&site, "id = ?", siteID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeSiteNotFound,
				fmt.Sprintf("Site with id '%s' was not found", siteID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving site: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, site)
}

// @Summary Update site lifecycle status
// @Description Apply a status transition validated against the site lifecycle table
// @Tags sites
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param status body models.SiteStatusUpdate true "Target status and optional reason"
// @Security BearerAuth
// @Success 200 {object} models.Site
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /sites/{id}/status [patch]
func UpdateSiteStatus(c *gin.Context) {
	moderatorID, _ := c.Get("user_id")

	var dto models.SiteStatusUpdate
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	siteID := c.Param("id")

	var site models.Site
	if err := db.DB.First(&site, "id = ?", siteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeSiteNotFound,
				fmt.Sprintf("Site with id '%s' was not found", siteID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving site: "+err.Error())
		return
	}

	// Same-status request is a no-op
	if site.Status == dto.Status {
		c.JSON(http.StatusOK, site)
		return
	}

	if !models.IsSiteTransitionAllowed(site.Status, dto.Status) {
		utils.SendErrorDetails(c, http.StatusBadRequest, utils.CodeInvalidSiteTransition,
			fmt.Sprintf("Cannot transition site status from '%s' to '%s'", site.Status, dto.Status),
			gin.H{
				"from":      site.Status,
				"to":        dto.Status,
				"allowedTo": models.AllowedSiteTransitions(site.Status),
			})
		return
	}

	if err := db.DB.Model(&site).Update("status", dto.Status).Error; err != nil {
		utils.LogErrorWithUser(moderatorID, err, "Error updating site status in UpdateSiteStatus")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error updating site status: "+err.Error())
		return
	}

	site.Status = dto.Status
	utils.LogSuccessWithUser(moderatorID, fmt.Sprintf("Site %s transitioned to %s", siteID, dto.Status))
	c.JSON(http.StatusOK, site)
}
