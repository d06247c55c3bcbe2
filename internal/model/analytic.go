package model

type AggregationPeriod string

const (
	PeriodDaily     AggregationPeriod = "daily"
	PeriodWeekly    AggregationPeriod = "weekly"
	PeriodMonthly   AggregationPeriod = "monthly"
	PeriodQuarterly AggregationPeriod = "quarterly"
)

type MetricType string

const (
	MetricEngagementScore    MetricType = "engagement_score"
	MetricSessionCount       MetricType = "session_count"
	MetricContentViews       MetricType = "content_views"
	MetricContentCompletions MetricType = "content_completions"
	MetricAvgAssessmentScore MetricType = "avg_assessment_score"
	MetricAssessmentCount    MetricType = "assessment_count"
	MetricImprovementTrend   MetricType = "improvement_trend"
	MetricTotalStudyTime     MetricType = "total_study_time"
	MetricAvgSessionDuration MetricType = "avg_session_duration"
)

// AnalyticContext carries bookkeeping about how a sample was produced.
type AnalyticContext struct {
	CalculatedAt string `json:"calculatedAt"`
	Version      string `json:"version"`
	PeriodEnd    string `json:"periodEnd,omitempty"`
	DataPoints   int    `json:"dataPoints,omitempty"`
}

// LearningAnalytic is one stored metric sample. A student has at most one
// sample per (metric type, date, period); recalculation overwrites.
type LearningAnalytic struct {
	BaseModel
	StudentID         uint              `gorm:"uniqueIndex:idx_analytic_natural;not null" json:"studentId"`
	MetricType        MetricType        `gorm:"size:50;uniqueIndex:idx_analytic_natural" json:"metricType"`
	MetricValue       float64           `json:"metricValue"`
	CalculationDate   string            `gorm:"size:10;uniqueIndex:idx_analytic_natural;index" json:"calculationDate"`
	AggregationPeriod AggregationPeriod `gorm:"size:20;uniqueIndex:idx_analytic_natural" json:"aggregationPeriod"`
	Context           AnalyticContext   `gorm:"serializer:json" json:"context"`
}

func (LearningAnalytic) TableName() string {
	return "learning_analytics"
}
