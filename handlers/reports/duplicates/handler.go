package duplicates

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ivanmitkovski/chisto-mk/db"
	"github.com/ivanmitkovski/chisto-mk/handlers/reports"
	"github.com/ivanmitkovski/chisto-mk/models"
	"github.com/ivanmitkovski/chisto-mk/utils"
)

const defaultMergeReason = "Merged duplicate"

func buildDuplicateItem(report models.Report) models.DuplicateReportItem {
	title := "Reported site"
	if report.Site != nil && report.Site.Description != nil {
		title = *report.Site.Description
	} else if report.Description != nil {
		title = *report.Description
	}

	return models.DuplicateReportItem{
		ID:              report.ID,
		ReportNumber:    models.BuildReportNumber(report.ID, report.CreatedAt),
		Title:           title,
		Location:        reports.LocationLabel(report.Site),
		SubmittedAt:     report.CreatedAt.UTC().Format(time.RFC3339),
		Status:          report.Status,
		CoReporterCount: len(report.CoReporters),
		MediaCount:      len(report.MediaUrls),
	}
}

func buildGroup(primary models.Report) models.DuplicateReportGroup {
	children := make([]models.DuplicateReportItem, 0, len(primary.PotentialDuplicates))
	for _, child := range primary.PotentialDuplicates {
		children = append(children, buildDuplicateItem(child))
	}

	return models.DuplicateReportGroup{
		PrimaryReport:    buildDuplicateItem(primary),
		DuplicateReports: children,
		TotalReports:     len(primary.PotentialDuplicates) + 1,
	}
}

func withGroupPreloads(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Site").
		Preload("CoReporters").
		Preload("PotentialDuplicates", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("PotentialDuplicates.Site").
		Preload("PotentialDuplicates.CoReporters")
}

// resolvePrimaryReportID maps any member of a duplicate group to its
// primary. Resolution is a single pointer hop, never a recursive walk
// up a chain.
func resolvePrimaryReportID(reportID string) (string, error) {
	var report models.Report
	if err := db.DB.Select("id", "potential_duplicate_of_id").First(&report, "id = ?", reportID).Error; err != nil {
		return "", err
	}

	if report.PotentialDuplicateOfID != nil {
		return *report.PotentialDuplicateOfID, nil
	}
	return report.ID, nil
}

// mergeMediaURLs unions the primary's media with the selected children's,
// keeping the primary's order first and dropping URLs already seen.
func mergeMediaURLs(primaryMedia pq.StringArray, children []models.Report) []string {
	merged := make([]string, 0, len(primaryMedia))
	seen := make(map[string]bool, len(primaryMedia))

	for _, url := range primaryMedia {
		if seen[url] {
			continue
		}
		seen[url] = true
		merged = append(merged, url)
	}
	for _, child := range children {
		for _, url := range child.MediaUrls {
			if seen[url] {
				continue
			}
			seen[url] = true
			merged = append(merged, url)
		}
	}

	return merged
}

// collectNewCoReporterIDs gathers the selected children's reporters and
// co-reporters, excluding the primary's own reporter and anyone already
// linked to the primary. Re-running the same merge yields an empty slice.
func collectNewCoReporterIDs(primary models.Report, children []models.Report) []string {
	existing := make(map[string]bool, len(primary.CoReporters))
	for _, coReporter := range primary.CoReporters {
		existing[coReporter.UserID] = true
	}

	primaryReporter := ""
	if primary.ReporterID != nil {
		primaryReporter = *primary.ReporterID
	}

	var newIDs []string
	seen := make(map[string]bool)
	for _, child := range children {
		if child.ReporterID != nil && *child.ReporterID != primaryReporter {
			if id := *child.ReporterID; !existing[id] && !seen[id] {
				seen[id] = true
				newIDs = append(newIDs, id)
			}
		}
		for _, coReporter := range child.CoReporters {
			if coReporter.UserID == primaryReporter {
				continue
			}
			if id := coReporter.UserID; !existing[id] && !seen[id] {
				seen[id] = true
				newIDs = append(newIDs, id)
			}
		}
	}

	return newIDs
}

// @Summary List duplicate report groups for moderation
// @Description Paginated primary+children clusters; a group root is a report with no parent and at least one child
// @Tags reports
// @Produce json
// @Param status query string false "Filter groups containing a report with this status"
// @Param siteId query string false "Filter groups containing a report for this site"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Security BearerAuth
// @Success 200 {object} models.DuplicateReportGroupList
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/duplicates [get]
func GetDuplicateGroups(c *gin.Context) {
	page, limit := reports.ParsePagination(c)

	query := db.DB.Model(&models.Report{}).
		Where("reports.potential_duplicate_of_id IS NULL").
		Where("EXISTS (SELECT 1 FROM reports AS children WHERE children.potential_duplicate_of_id = reports.id)")

	if status := c.Query("status"); status != "" {
		query = query.Where(
			"(reports.status = ? OR EXISTS (SELECT 1 FROM reports AS children WHERE children.potential_duplicate_of_id = reports.id AND children.status = ?))",
			status, status)
	}
	if siteID := c.Query("siteId"); siteID != "" {
		query = query.Where(
			"(reports.site_id = ? OR EXISTS (SELECT 1 FROM reports AS children WHERE children.potential_duplicate_of_id = reports.id AND children.site_id = ?))",
			siteID, siteID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error counting duplicate groups: "+err.Error())
		return
	}

	var primaries []models.Report
	err := withGroupPreloads(query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit)).
		Find(&primaries).Error
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving duplicate groups: "+err.Error())
		return
	}

	groups := make([]models.DuplicateReportGroup, 0, len(primaries))
	for _, primary := range primaries {
		groups = append(groups, buildGroup(primary))
	}

	c.JSON(http.StatusOK, models.DuplicateReportGroupList{
		Data: groups,
		Meta: models.PaginationMeta{Page: page, Limit: limit, Total: total},
	})
}

// @Summary Get the duplicate group for a member report
// @Description Resolves the given report to its primary and returns the full group
// @Tags reports
// @Produce json
// @Param id path string true "Report ID (primary or child)"
// @Security BearerAuth
// @Success 200 {object} models.DuplicateReportGroup
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/{id}/duplicates [get]
func GetDuplicateGroupByReport(c *gin.Context) {
	reportID := c.Param("id")

	primaryID, err := resolvePrimaryReportID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error resolving primary report: "+err.Error())
		return
	}

	var primary models.Report
	if err := withGroupPreloads(db.DB).First(&primary, "id = ?", primaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving duplicate group: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, buildGroup(primary))
}

// @Summary Approve and merge child duplicate reports into a primary report
// @Description Unions media and co-reporters, approves the primary and marks the selected children DELETED, all in one transaction
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID (primary or child)"
// @Param merge body models.MergeDuplicateReports true "Child report IDs and optional reason"
// @Security BearerAuth
// @Success 200 {object} models.MergeResult
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /reports/{id}/merge [post]
func MergeDuplicateReports(c *gin.Context) {
	moderatorID, exists := c.Get("user_id")
	if !exists {
		utils.SendError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "User not found in token")
		return
	}

	var dto models.MergeDuplicateReports
	if !utils.ValidateRequestBody(c, &dto) {
		return
	}

	reportID := c.Param("id")

	primaryID, err := resolvePrimaryReportID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error resolving primary report: "+err.Error())
		return
	}

	var primary models.Report
	err = db.DB.
		Preload("CoReporters").
		Preload("PotentialDuplicates.CoReporters").
		First(&primary, "id = ?", primaryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendError(c, http.StatusNotFound, utils.CodeReportNotFound,
				fmt.Sprintf("Report with id '%s' was not found", reportID))
			return
		}
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error retrieving primary report: "+err.Error())
		return
	}

	if primary.Status == models.ReportDeleted {
		utils.SendError(c, http.StatusBadRequest, utils.CodePrimaryReportNotMergeable,
			fmt.Sprintf("Primary report '%s' is deleted and cannot be used as a merge target", primaryID))
		return
	}

	childIDsInGroup := make(map[string]models.Report, len(primary.PotentialDuplicates))
	for _, child := range primary.PotentialDuplicates {
		childIDsInGroup[child.ID] = child
	}

	var selectedIDs []string
	seenSelection := make(map[string]bool)
	for _, childID := range dto.ChildReportIds {
		if !seenSelection[childID] {
			seenSelection[childID] = true
			selectedIDs = append(selectedIDs, childID)
		}
	}

	var invalidIDs []string
	var selectedChildren []models.Report
	for _, childID := range selectedIDs {
		child, ok := childIDsInGroup[childID]
		if !ok {
			invalidIDs = append(invalidIDs, childID)
			continue
		}
		selectedChildren = append(selectedChildren, child)
	}

	if len(invalidIDs) > 0 {
		utils.SendErrorDetails(c, http.StatusBadRequest, utils.CodeInvalidDuplicateSelection,
			"One or more selected child reports do not belong to the duplicate group",
			gin.H{"invalidChildIds": invalidIDs})
		return
	}

	if len(selectedChildren) == 0 {
		utils.SendError(c, http.StatusBadRequest, utils.CodeEmptyMergeSelection,
			"At least one duplicate child report must be selected for merge")
		return
	}

	mergedMedia := mergeMediaURLs(primary.MediaUrls, selectedChildren)
	newCoReporterIDs := collectNewCoReporterIDs(primary, selectedChildren)

	now := time.Now()
	reason := defaultMergeReason
	if strings.TrimSpace(dto.Reason) != "" {
		reason = dto.Reason
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if len(newCoReporterIDs) > 0 {
			coReporters := make([]models.ReportCoReporter, 0, len(newCoReporterIDs))
			for _, userID := range newCoReporterIDs {
				coReporters = append(coReporters, models.ReportCoReporter{
					ReportID: primary.ID,
					UserID:   userID,
				})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&coReporters).Error; err != nil {
				return err
			}
		}

		primaryUpdates := map[string]interface{}{
			"status":                    models.ReportApproved,
			"moderated_at":              now,
			"moderated_by_id":           moderatorID,
			"moderation_reason":         reason,
			"media_urls":                pq.StringArray(mergedMedia),
			"potential_duplicate_of_id": nil,
		}
		if err := tx.Model(&models.Report{}).Where("id = ?", primary.ID).Updates(primaryUpdates).Error; err != nil {
			return err
		}

		childUpdates := map[string]interface{}{
			"potential_duplicate_of_id": primary.ID,
			"status":                    models.ReportDeleted,
			"moderated_at":              now,
			"moderated_by_id":           moderatorID,
			"moderation_reason":         reason,
		}
		return tx.Model(&models.Report{}).Where("id IN ?", selectedIDs).Updates(childUpdates).Error
	})
	if err != nil {
		utils.LogErrorWithUser(moderatorID, err, "Error merging duplicate reports in MergeDuplicateReports")
		utils.SendError(c, http.StatusInternalServerError, utils.CodeInternalError, "Error merging duplicate reports: "+err.Error())
		return
	}

	utils.LogSuccessWithUser(moderatorID,
		fmt.Sprintf("Merged %d duplicate report(s) into %s", len(selectedChildren), primary.ID))

	c.JSON(http.StatusOK, models.MergeResult{
		PrimaryReportID:       primary.ID,
		MergedChildCount:      len(selectedChildren),
		MergedMediaCount:      len(mergedMedia),
		MergedCoReporterCount: len(newCoReporterIDs),
		PrimaryStatus:         models.ReportApproved,
	})
}
