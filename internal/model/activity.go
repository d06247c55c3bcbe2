package model

import "time"

type ActivityType string

const (
	ActivityView     ActivityType = "view"
	ActivityClick    ActivityType = "click"
	ActivityDownload ActivityType = "download"
	ActivityComplete ActivityType = "complete"
)

// swagger:model LearningActivity
type LearningActivity struct {
	BaseModel
	StudentID       uint         `gorm:"index;not null" json:"studentId"`
	ContentID       uint         `gorm:"index" json:"contentId"`
	ActivityType    ActivityType `gorm:"size:20;index" json:"activityType"`
	DurationSeconds int          `gorm:"default:0" json:"durationSeconds"`
	SessionID       string       `gorm:"size:36;index" json:"sessionId"`
	DeviceType      string       `gorm:"size:20" json:"deviceType"`
	OccurredAt      time.Time    `gorm:"index" json:"occurredAt"`

	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

func (LearningActivity) TableName() string {
	return "learning_activities"
}
