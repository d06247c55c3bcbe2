package model

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// DifficultyForScore maps a trailing average assessment percentage to the
// difficulty band a student should be served next.
func DifficultyForScore(avgScore float64) DifficultyLevel {
	switch {
	case avgScore >= 80:
		return DifficultyAdvanced
	case avgScore >= 60:
		return DifficultyIntermediate
	default:
		return DifficultyBeginner
	}
}

// TargetStyleAll marks content suitable for every learning style.
const TargetStyleAll = "all"

// swagger:model Content
type Content struct {
	BaseModel
	Title               string          `gorm:"size:255;not null" json:"title"`
	Description         string          `gorm:"type:text" json:"description"`
	Subject             string          `gorm:"size:100;index" json:"subject"`
	Topic               string          `gorm:"size:100;index" json:"topic"`
	GradeLevel          string          `gorm:"size:20;index" json:"gradeLevel"`
	ContentType         string          `gorm:"size:50" json:"contentType"`
	TargetLearningStyle string          `gorm:"size:20;index" json:"targetLearningStyle"`
	DifficultyLevel     DifficultyLevel `gorm:"size:20;index" json:"difficultyLevel"`
	DurationMinutes     int             `gorm:"default:0" json:"durationMinutes"`
	ViewsCount          int             `gorm:"default:0" json:"viewsCount"`
	Rating              float64         `gorm:"default:0" json:"rating"`
	IsActive            bool            `gorm:"default:true;index" json:"isActive"`
	CreatedBy           uint            `gorm:"index" json:"createdBy"`
}

func (Content) TableName() string {
	return "contents"
}

// SuitableForStyle reports whether the content targets the given style.
func (c *Content) SuitableForStyle(style Style) bool {
	return c.TargetLearningStyle == TargetStyleAll || c.TargetLearningStyle == string(style)
}
