package reports

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ivanmitkovski/chisto-mk/db"
	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

// DuplicateRadiusMeters is the proximity threshold under which two
// reported sites are considered the same incident.
const DuplicateRadiusMeters = 30

const metersPerDegreeLat = 111_320

// LocationLabel renders the human-readable location shown in queue tables:
// the site description when present, otherwise rounded coordinates.
func LocationLabel(site *models.Site) string {
	if site == nil {
		return "Unknown location"
	}
	if site.Description != nil && strings.TrimSpace(*site.Description) != "" {
		return *site.Description
	}
	return fmt.Sprintf("%.4f, %.4f", site.Latitude, site.Longitude)
}

func siteTitle(site *models.Site) string {
	if site != nil && site.Description != nil {
		return *site.Description
	}
	return "Reported site"
}

// ParsePagination reads page/limit query params with the queue defaults
// (page >= 1, limit between 1 and 100, default 20).
func ParsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// findNearbyPrimary picks the merge primary for a new report at the given
// coordinates: a bounding-box prefilter over the joined sites table, an
// exact haversine refinement, then the earliest-created survivor.
func findNearbyPrimary(latitude, longitude float64) (*models.Report, error) {
	deltaLat := float64(DuplicateRadiusMeters) / metersPerDegreeLat
	metersPerDegreeLng := math.Cos(latitude*math.Pi/180) * metersPerDegreeLat
	if metersPerDegreeLng == 0 {
		metersPerDegreeLng = metersPerDegreeLat
	}
	deltaLng := float64(DuplicateRadiusMeters) / metersPerDegreeLng

	var candidates []models.Report
	err := db.DB.
		Joins("JOIN sites ON sites.id = reports.site_id").
		Where("sites.latitude BETWEEN ? AND ?", latitude-deltaLat, latitude+deltaLat).
		Where("sites.longitude BETWEEN ? AND ?", longitude-deltaLng, longitude+deltaLng).
		Preload("Site").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	var primary *models.Report
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.Site == nil {
			continue
		}
		distance := utils.DistanceInMeters(latitude, longitude, candidate.Site.Latitude, candidate.Site.Longitude)
		if distance > DuplicateRadiusMeters {
			continue
		}
		if primary == nil || candidate.CreatedAt.Before(primary.CreatedAt) {
			primary = candidate
		}
	}

	return primary, nil
}

// @Summary Create a report for a site
// @Description Create a citizen report; nearby existing reports make the new one a duplicate child of the earliest primary
// @Tags reports
// @Accept json
// @Produce json
// @Param report body models.ReportCreate true "Report information"
// @Success 201 {object} models.Report
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports [post]
func CreateReport(c *gin.Context) {
	var dto models.ReportCreate
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	reporterID := dto.ReporterID
	// A valid bearer token takes precedence over the body field
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		token := strings.TrimPrefix(strings.Trim(authHeader, "\"' "), "Bearer ")
		if claims, err := utils.DecodeJWT(strings.TrimSpace(token)); err == nil {
			if id, ok := claims["user_id"].(string); ok && id != "" {
				reporterID = id
			}
		}
	}

	var site models.Site
	if err := db.DB.First(&site, "id = ?", dto.SiteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeSiteNotFound,
				fmt.Sprintf("Cannot create report. Site with id '%s' was not found", dto.SiteID))
			return
		}
		utils.LogError(err, "Error loading site in CreateReport")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error loading site: "+err.Error())
		return
	}

	// Two simultaneous submissions for the same spot can both land here
	// with no primary and create two roots; moderators resolve that with
	// a manual merge.
	primary, err := findNearbyPrimary(site.Latitude, site.Longitude)
	if err != nil {
		utils.LogError(err, "Error scanning for nearby reports in CreateReport")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error scanning for nearby reports: "+err.Error())
		return
	}

	report := models.Report{
		SiteID:    dto.SiteID,
		Status:    models.ReportNew,
		MediaUrls: pq.StringArray(dto.MediaUrls),
	}
	if report.MediaUrls == nil {
		report.MediaUrls = pq.StringArray{}
	}
	if dto.Description != "" {
		report.Description = &dto.Description
	}
	if reporterID != "" {
		report.ReporterID = &reporterID
	}
	if primary != nil {
		report.PotentialDuplicateOfID = &primary.ID
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		if primary != nil && reporterID != "" && primary.ReporterID != nil && reporterID != *primary.ReporterID {
			coReporter := models.ReportCoReporter{
				ReportID: primary.ID,
				UserID:   reporterID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&coReporter).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		utils.LogError(err, "Error creating report in CreateReport")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error creating report: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, report)
}

// @Summary List reports for the moderation queue
// @Description Retrieve reports with optional status, site and duplicates-only filters
// @Tags reports
// @Produce json
// @Param status query string false "Filter by report status"
// @Param siteId query string false "Filter by site ID"
// @Param duplicatesOnly query boolean false "Only reports in a duplicate relationship"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} models.AdminReportList
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports [get]
func GetAllReports(c *gin.Context) {
	page, limit := ParsePagination(c)

	query := db.DB.Model(&models.Report{})
	if status := c.Query("status"); status != "" {
		query = query.Where("reports.status = ?", status)
	}
	if siteID := c.Query("siteId"); siteID != "" {
		query = query.Where("reports.site_id = ?", siteID)
	}
	if c.Query("duplicatesOnly") == "true" {
		query = query.Where("(reports.potential_duplicate_of_id IS NOT NULL OR EXISTS (SELECT 1 FROM reports AS children WHERE children.potential_duplicate_of_id = reports.id))")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting reports: "+err.Error())
		return
	}

	var reports []models.Report
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Site").
		Preload("CoReporters").
		Preload("PotentialDuplicates").
		Find(&reports).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving reports: "+err.Error())
		return
	}

	items := make([]models.AdminReportListItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, models.AdminReportListItem{
			ID:                   report.ID,
			ReportNumber:         models.BuildReportNumber(report.ID, report.CreatedAt),
			Name:                 siteTitle(report.Site),
			Location:             LocationLabel(report.Site),
			DateReportedAt:       report.CreatedAt.UTC().Format(time.RFC3339),
			Status:               report.Status,
			IsPotentialDuplicate: report.PotentialDuplicateOfID != nil || len(report.PotentialDuplicates) > 0,
			CoReporterCount:      len(report.CoReporters),
		})
	}

	c.JSON(http.StatusOK, models.AdminReportList{
		Data: items,
		Meta: models.PaginationMeta{Page: page, Limit: limit, Total: total},
	})
}

// @Summary List reports created by the authenticated user
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserReportListItem
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/me [get]
func GetMyReports(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "User not found in token")
		return
	}

	var reports []models.Report
	err := db.DB.
		Where("reporter_id = ?", userID).
		Order("created_at DESC").
		Preload("Site").
		Preload("CoReporters").
		Preload("PotentialDuplicates").
		Find(&reports).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving reports: "+err.Error())
		return
	}

	items := make([]models.UserReportListItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, models.UserReportListItem{
			ID:           report.ID,
			ReportNumber: models.BuildReportNumber(report.ID, report.CreatedAt),
			Title:        siteTitle(report.Site),
			Location:     LocationLabel(report.Site),
			SubmittedAt:  report.CreatedAt.UTC().Format(time.RFC3339),
			Status:       report.Status,
			IsPotentialDuplicate: report.PotentialDuplicateOfID != nil ||
				len(report.PotentialDuplicates) > 0 ||
				len(report.CoReporters) > 0,
			CoReporterCount: len(report.CoReporters),
		})
	}

	c.JSON(http.StatusOK, items)
}

func derivePriority(status models.ReportStatus) string {
	switch status {
	case models.ReportNew:
		return "HIGH"
	case models.ReportInReview:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func userAlias(user *models.User) string {
	if user == nil {
		return ""
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

// @Summary Get detailed report view for moderation
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Security BearerAuth
// @Success 200 {object} models.AdminReportDetail
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/{id} [get]
func GetReportByID(c *gin.Context) {
	reportID := c.Param("id")

	var report models.Report
	err := db.DB.
		Preload("Site").
		Preload("Reporter").
		Preload("ModeratedBy").
		Preload("CoReporters.User").
		Preload("PotentialDuplicateOf").
		Preload("PotentialDuplicates").
		First(&report, "id = ?", reportID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving report: "+err.Error())
		return
	}

	reportNumber := models.BuildReportNumber(report.ID, report.CreatedAt)
	locationLabel := LocationLabel(report.Site)

	reporterAlias := userAlias(report.Reporter)
	if reporterAlias == "" {
		reporterAlias = "Anonymous reporter"
	}

	evidence := make([]models.ReportEvidence, 0, len(report.MediaUrls))
	for i, url := range report.MediaUrls {
		evidence = append(evidence, models.ReportEvidence{
			ID:         fmt.Sprintf("ev-%d", i+1),
			Label:      fmt.Sprintf("Evidence %d", i+1),
			Kind:       "image",
			UploadedAt: report.CreatedAt.UTC().Format(time.RFC3339),
			PreviewURL: url,
			PreviewAlt: fmt.Sprintf("Evidence %d for report %s", i+1, reportNumber),
		})
	}

	timeline := []models.ReportTimelineEntry{
		{
			ID:         "tl-submitted",
			Title:      "Report submitted",
			Detail:     "Initial report created with location and optional media evidence.",
			Actor:      reporterAlias,
			OccurredAt: report.CreatedAt.UTC().Format(time.RFC3339),
			Tone:       "info",
		},
	}
	if report.ModeratedAt != nil {
		title := "Report updated"
		tone := "neutral"
		detail := "Report was updated during moderation review."
		switch report.Status {
		case models.ReportApproved:
			title = "Report approved"
			tone = "success"
			detail = "Report was approved after moderation review."
		case models.ReportDeleted:
			title = "Report rejected"
			tone = "warning"
		}
		if report.ModerationReason != nil {
			detail = *report.ModerationReason
		}
		actor := userAlias(report.ModeratedBy)
		if actor == "" {
			actor = "Moderator"
		}
		timeline = append(timeline, models.ReportTimelineEntry{
			ID:         "tl-moderated",
			Title:      title,
			Detail:     detail,
			Actor:      actor,
			OccurredAt: report.ModeratedAt.UTC().Format(time.RFC3339),
			Tone:       tone,
		})
	}

	coReporters := make([]string, 0, len(report.CoReporters))
	for _, coReporter := range report.CoReporters {
		if alias := userAlias(coReporter.User); alias != "" {
			coReporters = append(coReporters, alias)
		}
	}

	var duplicateOfNumber *string
	if report.PotentialDuplicateOf != nil {
		number := models.BuildReportNumber(report.PotentialDuplicateOf.ID, report.PotentialDuplicateOf.CreatedAt)
		duplicateOfNumber = &number
	}

	description := "No description was provided for this report."
	if report.Description != nil {
		description = *report.Description
	}

	detail := models.AdminReportDetail{
		ID:            report.ID,
		ReportNumber:  reportNumber,
		Status:        report.Status,
		Priority:      derivePriority(report.Status),
		Title:         siteTitle(report.Site),
		Description:   description,
		Location:      locationLabel,
		SubmittedAt:   report.CreatedAt.UTC().Format(time.RFC3339),
		ReporterAlias: reporterAlias,
		Evidence:      evidence,
		Timeline:      timeline,
		IsPotentialDuplicate: report.PotentialDuplicateOfID != nil ||
			len(report.PotentialDuplicates) > 0 ||
			len(coReporters) > 0,
		CoReporters:                      coReporters,
		PotentialDuplicateOfReportNumber: duplicateOfNumber,
	}
	if report.Site != nil {
		detail.MapPin = models.ReportMapPin{
			Latitude:  report.Site.Latitude,
			Longitude: report.Site.Longitude,
			Label:     locationLabel,
		}
	}

	c.JSON(http.StatusOK, detail)
}

// @Summary Update report moderation status
// @Description Apply a status transition validated against the report lifecycle table
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param status body models.ReportStatusUpdate true "Target status and optional reason"
// @Security BearerAuth
// @Success 200 {object} models.Report
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/{id}/status [patch]
func UpdateReportStatus(c *gin.Context) {
	moderatorID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "User not found in token")
		return
	}

	var dto models.ReportStatusUpdate
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	reportID := c.Param("id")

	var report models.Report
	if err := db.DB.First(&report, "id = ?", reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving report: "+err.Error())
		return
	}

	// Same-status request is a no-op, moderation metadata stays untouched
	if report.Status == dto.Status {
		c.JSON(http.StatusOK, report)
		return
	}

	if !models.IsReportTransitionAllowed(report.Status, dto.Status) {
		utils.SendErrorDetails(c, http.StatusBadRequest, utils.CodeInvalidReportTransition,
			fmt.Sprintf("Cannot transition report status from '%s' to '%s'", report.Status, dto.Status),
			gin.H{
				"from":      report.Status,
				"to":        dto.Status,
				"allowedTo": models.AllowedReportTransitions(report.Status),
			})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            dto.Status,
		"moderated_at":      now,
		"moderated_by_id":   moderatorID,
		"moderation_reason": nil,
	}
	if dto.Reason != "" {
		updates["moderation_reason"] = dto.Reason
	}

	if err := db.DB.Model(&report).Updates(updates).Error; err != nil {
		utils.LogErrorWithUser(moderatorID, err, "Error updating report status in UpdateReportStatus")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error updating report status: "+err.Error())
		return
	}

	report.Status = dto.Status
	report.ModeratedAt = &now
	if id, ok := moderatorID.(string); ok {
		report.ModeratedByID = &id
	}
	report.ModerationReason = nil
	if dto.Reason != "" {
		report.ModerationReason = &dto.Reason
	}

	utils.LogSuccessWithUser(moderatorID, fmt.Sprintf("Report %s transitioned to %s", reportID, dto.Status))
	c.JSON(http.StatusOK, report)
}
