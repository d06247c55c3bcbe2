package model

import "time"

// AlgorithmVersion tags persisted recommendations with the generation
// algorithm that produced them.
const AlgorithmVersion = "1.0"

type RecommendationType string

const (
	RecommendationLearningStyle RecommendationType = "learning_style"
	RecommendationPerformance   RecommendationType = "performance"
	RecommendationHybrid        RecommendationType = "hybrid"
)

// swagger:model Recommendation
type Recommendation struct {
	BaseModel
	StudentID          uint               `gorm:"uniqueIndex:idx_recommendation_student_content;not null" json:"studentId"`
	ContentID          uint               `gorm:"uniqueIndex:idx_recommendation_student_content;not null" json:"contentId"`
	RecommendationType RecommendationType `gorm:"size:20;default:'hybrid'" json:"recommendationType"`
	RelevanceScore     float64            `gorm:"index" json:"relevanceScore"`
	Reason             string             `gorm:"type:text" json:"reason"`
	AlgorithmVersion   string             `gorm:"size:50" json:"algorithmVersion"`
	IsViewed           bool               `gorm:"default:false" json:"isViewed"`
	IsCompleted        bool               `gorm:"default:false" json:"isCompleted"`
	ViewedAt           *time.Time         `json:"viewedAt,omitempty"`

	Content *Content `gorm:"foreignKey:ContentID" json:"content,omitempty"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

// RecommendedContent is a scored catalog item as returned to callers.
type RecommendedContent struct {
	Content        Content `json:"content"`
	RelevanceScore float64 `json:"relevanceScore"`
	Reason         string  `json:"reason"`
}

// AIScoredContent is one entry of the AI collaborator's ranking response.
type AIScoredContent struct {
	ContentID      uint    `json:"content_id"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}

// AIRecommendationResult is the JSON document the AI collaborator is asked
// to produce when ranking candidate content.
type AIRecommendationResult struct {
	RecommendedContent []AIScoredContent `json:"recommended_content"`
	StudyStrategies    []string          `json:"study_strategies"`
	LearningTips       []string          `json:"learning_tips"`
}

// EffectivenessMetrics summarizes how a student interacts with what the
// engine recommends. All rates are percentages.
type EffectivenessMetrics struct {
	TotalRecommendations int64   `json:"totalRecommendations"`
	ViewRate             float64 `json:"viewRate"`
	CompletionRate       float64 `json:"completionRate"`
	EngagementScore      float64 `json:"engagementScore"`
}
