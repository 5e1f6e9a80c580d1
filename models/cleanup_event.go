package models

import "time"

// CleanupEvent tracks a scheduled cleanup for a site. An event with a nil
// CompletedAt is upcoming; a set CompletedAt marks it done.
type CleanupEvent struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SiteID      string     `json:"siteId" gorm:"column:site_id;type:uuid"`
	Site        *Site      `json:"site,omitempty" gorm:"foreignKey:SiteID"`
	ScheduledAt time.Time  `json:"scheduledAt" gorm:"column:scheduled_at"`
	CompletedAt *time.Time `json:"completedAt" gorm:"column:completed_at"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (CleanupEvent) TableName() string {
	return "cleanup_events"
}
