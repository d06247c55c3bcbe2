package model

import "time"

// AIStyleAnalysis is the structured estimate the AI collaborator returns for
// a survey response. Field names follow the JSON the model is asked for.
type AIStyleAnalysis struct {
	VisualScore      float64  `json:"visual_score"`
	AuditoryScore    float64  `json:"auditory_score"`
	KinestheticScore float64  `json:"kinesthetic_score"`
	DominantStyle    string   `json:"dominant_style"`
	ConfidenceScore  float64  `json:"confidence_score"`
	Reasoning        string   `json:"reasoning"`
	Recommendations  []string `json:"recommendations"`
}

func (a *AIStyleAnalysis) Scores() CategoryScores {
	return CategoryScores{
		Visual:      a.VisualScore,
		Auditory:    a.AuditoryScore,
		Kinesthetic: a.KinestheticScore,
	}
}

// ProfileSnapshot preserves the raw inputs of a classification for audit.
type ProfileSnapshot struct {
	SurveyID              uint             `json:"surveyId"`
	Responses             map[string]int   `json:"responses"`
	AIAnalysis            *AIStyleAnalysis `json:"aiAnalysis,omitempty"`
	CompletionTimeSeconds int              `json:"completionTimeSeconds"`
}

// swagger:model LearningStyleProfile
type LearningStyleProfile struct {
	BaseModel
	StudentID         uint            `gorm:"uniqueIndex:idx_profile_student_response;not null" json:"studentId"`
	SurveyResponseID  uint            `gorm:"uniqueIndex:idx_profile_student_response;not null" json:"surveyResponseId"`
	VisualScore       float64         `gorm:"not null" json:"visualScore"`
	AuditoryScore     float64         `gorm:"not null" json:"auditoryScore"`
	KinestheticScore  float64         `gorm:"not null" json:"kinestheticScore"`
	DominantStyle     Style           `gorm:"size:20;index" json:"dominantStyle"`
	AIConfidenceScore float64         `json:"aiConfidenceScore"`
	SurveyData        ProfileSnapshot `gorm:"serializer:json" json:"surveyData"`
	AnalysisDate      time.Time       `gorm:"index" json:"analysisDate"`
	IsCurrent         bool            `gorm:"default:false;index" json:"isCurrent"`
}

func (LearningStyleProfile) TableName() string {
	return "learning_style_profiles"
}

func (p *LearningStyleProfile) Scores() CategoryScores {
	return CategoryScores{
		Visual:      p.VisualScore,
		Auditory:    p.AuditoryScore,
		Kinesthetic: p.KinestheticScore,
	}
}
