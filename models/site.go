package models

import (
	"slices"
	"time"
)

type SiteStatus string

const (
	SiteReported         SiteStatus = "REPORTED"
	SiteVerified         SiteStatus = "VERIFIED"
	SiteCleanupScheduled SiteStatus = "CLEANUP_SCHEDULED"
	SiteInProgress       SiteStatus = "IN_PROGRESS"
	SiteCleaned          SiteStatus = "CLEANED"
	SiteDisputed         SiteStatus = "DISPUTED"
)

// allowedSiteStatusTransitions is the site lifecycle table. DISPUTED is
// reachable from every other state and can only go back to REPORTED or
// VERIFIED.
var allowedSiteStatusTransitions = map[SiteStatus][]SiteStatus{
	SiteReported:         {SiteVerified, SiteDisputed},
	SiteVerified:         {SiteCleanupScheduled, SiteDisputed},
	SiteCleanupScheduled: {SiteInProgress, SiteDisputed},
	SiteInProgress:       {SiteCleaned, SiteDisputed},
	SiteCleaned:          {SiteDisputed},
	SiteDisputed:         {SiteReported, SiteVerified},
}

// AllowedSiteTransitions returns the statuses a site may move to from the
// given status.
func AllowedSiteTransitions(from SiteStatus) []SiteStatus {
	return allowedSiteStatusTransitions[from]
}

func IsSiteTransitionAllowed(from, to SiteStatus) bool {
	return slices.Contains(allowedSiteStatusTransitions[from], to)
}

type Site struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Description *string    `json:"description"`
	Status      SiteStatus `json:"status" gorm:"default:'REPORTED'"`
	Reports     []Report   `json:"reports,omitempty" gorm:"foreignKey:SiteID"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type SiteCreate struct {
	Latitude    float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"min=-180,max=180"`
	Description string  `json:"description"`
}

type SiteStatusUpdate struct {
	Status SiteStatus `json:"status" binding:"required"`
	Reason string     `json:"reason"`
}

func (Site) TableName() string {
	return "sites"
}
