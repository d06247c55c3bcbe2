package model

import "time"

// SurveyQuestion is one Likert item of a learning style survey. Answers are
// integers on a 1-5 scale.
type SurveyQuestion struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category Style  `json:"category"`
}

// ScoringRule maps a category to the items that feed it and the maximum raw
// score those items can produce together.
type ScoringRule struct {
	QuestionIDs []string `json:"questionIds"`
	Weight      float64  `json:"weight"`
	MaxRawScore float64  `json:"maxRawScore"`
}

// MaxLikertValue is the top of the answer scale.
const MaxLikertValue = 5

// swagger:model LearningStyleSurvey
type LearningStyleSurvey struct {
	BaseModel
	Title            string                 `gorm:"size:255;not null" json:"title"`
	Description      string                 `gorm:"type:text" json:"description"`
	Version          string                 `gorm:"size:20;default:'1.0'" json:"version"`
	Language         string                 `gorm:"size:10;default:'id';index" json:"language"`
	Questions        []SurveyQuestion       `gorm:"serializer:json" json:"questions"`
	ScoringRules     map[string]ScoringRule `gorm:"serializer:json" json:"scoringRules"`
	TimeLimitMinutes int                    `gorm:"default:0" json:"timeLimitMinutes"`
	IsActive         bool                   `gorm:"default:true;index" json:"isActive"`
	PublishedAt      *time.Time             `json:"publishedAt,omitempty"`
	CreatedBy        uint                   `gorm:"index" json:"createdBy"`
}

func (LearningStyleSurvey) TableName() string {
	return "learning_style_surveys"
}

func (s *LearningStyleSurvey) TotalQuestions() int {
	return len(s.Questions)
}

func (s *LearningStyleSurvey) QuestionByID(id string) (SurveyQuestion, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return SurveyQuestion{}, false
}

// QuestionsByCategory groups items by style category, preserving order.
func (s *LearningStyleSurvey) QuestionsByCategory() map[Style][]SurveyQuestion {
	grouped := make(map[Style][]SurveyQuestion, len(Categories))
	for _, q := range s.Questions {
		grouped[q.Category] = append(grouped[q.Category], q)
	}
	return grouped
}

type ResponseStatus string

const (
	ResponseStarted    ResponseStatus = "started"
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
	ResponseAbandoned  ResponseStatus = "abandoned"
)

// swagger:model SurveyResponse
type SurveyResponse struct {
	BaseModel
	SurveyID         uint            `gorm:"uniqueIndex:idx_response_survey_student;not null" json:"surveyId"`
	StudentID        uint            `gorm:"uniqueIndex:idx_response_survey_student;not null" json:"studentId"`
	Answers          map[string]int  `gorm:"serializer:json" json:"answers"`
	CalculatedScores *CategoryScores `gorm:"serializer:json" json:"calculatedScores,omitempty"`
	Status           ResponseStatus  `gorm:"size:20;default:'started';index" json:"status"`
	StartedAt        time.Time       `json:"startedAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
	TimeSpentSeconds int             `gorm:"default:0" json:"timeSpentSeconds"`
	SessionID        string          `gorm:"size:36" json:"sessionId"`

	Survey  *LearningStyleSurvey `gorm:"foreignKey:SurveyID" json:"survey,omitempty"`
	Student *Student             `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

func (r *SurveyResponse) IsCompleted() bool {
	return r.Status == ResponseCompleted
}

// CompletionPercentage is answered items over total items, on 0-100.
func (r *SurveyResponse) CompletionPercentage(survey *LearningStyleSurvey) float64 {
	if survey == nil || survey.TotalQuestions() == 0 || len(r.Answers) == 0 {
		return 0
	}
	return float64(len(r.Answers)) / float64(survey.TotalQuestions()) * 100
}
