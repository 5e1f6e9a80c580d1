package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lib/pq"
)

type ReportStatus string

const (
	ReportNew      ReportStatus = "NEW"
	ReportInReview ReportStatus = "IN_REVIEW"
	ReportApproved ReportStatus = "APPROVED"
	ReportDeleted  ReportStatus = "DELETED"
)

// allowedReportStatusTransitions is the report moderation lifecycle.
// DELETED is terminal.
var allowedReportStatusTransitions = map[ReportStatus][]ReportStatus{
	ReportNew:      {ReportInReview, ReportApproved, ReportDeleted},
	ReportInReview: {ReportApproved, ReportDeleted},
	ReportApproved: {ReportDeleted},
	ReportDeleted:  {},
}

// AllowedReportTransitions returns the statuses a report may move to from
// the given status.
func AllowedReportTransitions(from ReportStatus) []ReportStatus {
	return allowedReportStatusTransitions[from]
}

func IsReportTransitionAllowed(from, to ReportStatus) bool {
	return slices.Contains(allowedReportStatusTransitions[from], to)
}

// BuildReportNumber derives the human-readable queue identifier shown in
// the admin console: R-{two-digit year}-{first 4 chars of the id,
// uppercased}. Display only, not a storage constraint.
func BuildReportNumber(id string, createdAt time.Time) string {
	shortID := id
	if len(shortID) > 4 {
		shortID = shortID[:4]
	}
	return fmt.Sprintf("R-%02d-%s", createdAt.Year()%100, strings.ToUpper(shortID))
}

type Report struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SiteID      string         `json:"siteId" gorm:"column:site_id;type:uuid"`
	Site        *Site          `json:"site,omitempty" gorm:"foreignKey:SiteID"`
	ReporterID  *string        `json:"reporterId" gorm:"column:reporter_id;type:uuid"`
	Reporter    *User          `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	Description *string        `json:"description"`
	MediaUrls   pq.StringArray `json:"mediaUrls" gorm:"column:media_urls;type:text[]"`
	Status      ReportStatus   `json:"status" gorm:"default:'NEW'"`

	ModeratedAt      *time.Time `json:"moderatedAt" gorm:"column:moderated_at"`
	ModeratedByID    *string    `json:"moderatedById" gorm:"column:moderated_by_id;type:uuid"`
	ModeratedBy      *User      `json:"moderatedBy,omitempty" gorm:"foreignKey:ModeratedByID"`
	ModerationReason *string    `json:"moderationReason" gorm:"column:moderation_reason"`

	// Self-referential duplicate pointer: a non-null value marks this
	// report as a child of the referenced primary. The inverse relation
	// holds the current children.
	PotentialDuplicateOfID *string  `json:"potentialDuplicateOfId" gorm:"column:potential_duplicate_of_id;type:uuid;index"`
	PotentialDuplicateOf   *Report  `json:"-" gorm:"foreignKey:PotentialDuplicateOfID"`
	PotentialDuplicates    []Report `json:"-" gorm:"foreignKey:PotentialDuplicateOfID"`

	CoReporters []ReportCoReporter `json:"coReporters,omitempty" gorm:"foreignKey:ReportID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Report) TableName() string {
	return "reports"
}

// ReportCoReporter links a primary report to an additional user who
// independently reported the same incident. The composite key keeps the
// (report, user) pair unique; inserts are upserts.
type ReportCoReporter struct {
	ReportID  string    `json:"reportId" gorm:"column:report_id;type:uuid;primaryKey"`
	UserID    string    `json:"userId" gorm:"column:user_id;type:uuid;primaryKey"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ReportCoReporter) TableName() string {
	return "report_co_reporters"
}

type ReportCreate struct {
	SiteID      string   `json:"siteId" binding:"required"`
	ReporterID  string   `json:"reporterId"`
	Description string   `json:"description" binding:"max=500"`
	MediaUrls   []string `json:"mediaUrls" binding:"omitempty,max=5,dive,url"`
}

type ReportStatusUpdate struct {
	Status ReportStatus `json:"status" binding:"required"`
	Reason string       `json:"reason" binding:"max=500"`
}

type MergeDuplicateReports struct {
	ChildReportIds []string `json:"childReportIds"`
	Reason         string   `json:"reason" binding:"max=500"`
}

type PaginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type AdminReportListItem struct {
	ID                   string       `json:"id"`
	ReportNumber         string       `json:"reportNumber"`
	Name                 string       `json:"name"`
	Location             string       `json:"location"`
	DateReportedAt       string       `json:"dateReportedAt"`
	Status               ReportStatus `json:"status"`
	IsPotentialDuplicate bool         `json:"isPotentialDuplicate"`
	CoReporterCount      int          `json:"coReporterCount"`
}

type AdminReportList struct {
	Data []AdminReportListItem `json:"data"`
	Meta PaginationMeta        `json:"meta"`
}

type UserReportListItem struct {
	ID                   string       `json:"id"`
	ReportNumber         string       `json:"reportNumber"`
	Title                string       `json:"title"`
	Location             string       `json:"location"`
	SubmittedAt          string       `json:"submittedAt"`
	Status               ReportStatus `json:"status"`
	IsPotentialDuplicate bool         `json:"isPotentialDuplicate"`
	CoReporterCount      int          `json:"coReporterCount"`
}

type DuplicateReportItem struct {
	ID              string       `json:"id"`
	ReportNumber    string       `json:"reportNumber"`
	Title           string       `json:"title"`
	Location        string       `json:"location"`
	SubmittedAt     string       `json:"submittedAt"`
	Status          ReportStatus `json:"status"`
	CoReporterCount int          `json:"coReporterCount"`
	MediaCount      int          `json:"mediaCount"`
}

type DuplicateReportGroup struct {
	PrimaryReport    DuplicateReportItem   `json:"primaryReport"`
	DuplicateReports []DuplicateReportItem `json:"duplicateReports"`
	TotalReports     int                   `json:"totalReports"`
}

type DuplicateReportGroupList struct {
	Data []DuplicateReportGroup `json:"data"`
	Meta PaginationMeta         `json:"meta"`
}

type MergeResult struct {
	PrimaryReportID       string       `json:"primaryReportId"`
	MergedChildCount      int          `json:"mergedChildCount"`
	MergedMediaCount      int          `json:"mergedMediaCount"`
	MergedCoReporterCount int          `json:"mergedCoReporterCount"`
	PrimaryStatus         ReportStatus `json:"primaryStatus"`
}

type ReportEvidence struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	UploadedAt string `json:"uploadedAt"`
	PreviewURL string `json:"previewUrl"`
	PreviewAlt string `json:"previewAlt"`
}

type ReportTimelineEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurredAt"`
	Tone       string `json:"tone"`
}

type ReportMapPin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

type AdminReportDetail struct {
	ID                               string                `json:"id"`
	ReportNumber                     string                `json:"reportNumber"`
	Status                           ReportStatus          `json:"status"`
	Priority                         string                `json:"priority"`
	Title                            string                `json:"title"`
	Description                      string                `json:"description"`
	Location                         string                `json:"location"`
	SubmittedAt                      string                `json:"submittedAt"`
	ReporterAlias                    string                `json:"reporterAlias"`
	Evidence                         []ReportEvidence      `json:"evidence"`
	Timeline                         []ReportTimelineEntry `json:"timeline"`
	MapPin                           ReportMapPin          `json:"mapPin"`
	IsPotentialDuplicate             bool                  `json:"isPotentialDuplicate"`
	CoReporters                      []string              `json:"coReporters"`
	PotentialDuplicateOfReportNumber *string               `json:"potentialDuplicateOfReportNumber"`
}
