package model

import "time"

// swagger:model Assessment
type Assessment struct {
	BaseModel
	StudentID        uint            `gorm:"index;not null" json:"studentId"`
	Subject          string          `gorm:"size:100;index" json:"subject"`
	Topic            string          `gorm:"size:100;index" json:"topic"`
	AssessmentType   string          `gorm:"size:50" json:"assessmentType"`
	Score            float64         `json:"score"`
	MaxScore         float64         `json:"maxScore"`
	Percentage       float64         `gorm:"index" json:"percentage"`
	DifficultyLevel  DifficultyLevel `gorm:"size:20" json:"difficultyLevel"`
	TimeTakenSeconds int             `gorm:"default:0" json:"timeTakenSeconds"`
	TakenAt          time.Time       `gorm:"index" json:"takenAt"`
}

func (Assessment) TableName() string {
	return "assessments"
}
