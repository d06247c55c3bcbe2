package model

// TrendPoint 单日趋势数据点
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// EngagementSummary 参与度汇总
type EngagementSummary struct {
	Score        float64 `json:"score"`
	Sessions     float64 `json:"sessions"`
	ContentViews float64 `json:"contentViews"`
	Completions  float64 `json:"completions"`
}

// PerformanceSummary 学习表现汇总
type PerformanceSummary struct {
	AvgScore         float64 `json:"avgScore"`
	TotalAssessments float64 `json:"totalAssessments"`
	ImprovementTrend float64 `json:"improvementTrend"`
}

// TimeSummary 学习时长汇总
type TimeSummary struct {
	TotalHours        float64 `json:"totalHours"`
	AvgSessionMinutes float64 `json:"avgSessionMinutes"`
}

// StudentAnalytics 学生分析汇总（按日期范围）
type StudentAnalytics struct {
	StudentID   uint                        `json:"studentId"`
	Engagement  EngagementSummary           `json:"engagement"`
	Performance PerformanceSummary          `json:"performance"`
	TimeMetrics TimeSummary                 `json:"timeMetrics"`
	Trends      map[MetricType][]TrendPoint `json:"trends"`
}

// ClassAverages 班级平均指标
type ClassAverages struct {
	EngagementScore  float64 `json:"engagementScore"`
	PerformanceScore float64 `json:"performanceScore"`
	StudyHours       float64 `json:"studyHours"`
	CompletionRate   float64 `json:"completionRate"`
}

// PerformanceRank 班级成绩排名条目
type PerformanceRank struct {
	StudentID uint    `json:"studentId"`
	Rank      int     `json:"rank"`
	Score     float64 `json:"score"`
}

type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
)

const (
	RiskFactorLowEngagement         = "low_engagement"
	RiskFactorLowPerformance        = "low_performance"
	RiskFactorInsufficientStudyTime = "insufficient_study_time"
)

// AtRiskStudent 风险学生标记
type AtRiskStudent struct {
	StudentID   uint      `json:"studentId"`
	RiskFactors []string  `json:"riskFactors"`
	RiskLevel   RiskLevel `json:"riskLevel"`
}

// ClassAnalytics 班级分析汇总
type ClassAnalytics struct {
	ClassAverage       ClassAverages      `json:"classAverage"`
	StyleDistribution  map[Style]float64  `json:"styleDistribution"`
	PerformanceRanking []PerformanceRank  `json:"performanceRanking"`
	AtRiskStudents     []AtRiskStudent    `json:"atRiskStudents"`
	Students           []StudentAnalytics `json:"students"`
}

// StyleEvolutionPoint 学习风格历史数据点
type StyleEvolutionPoint struct {
	Date        string  `json:"date"`
	Visual      float64 `json:"visual"`
	Auditory    float64 `json:"auditory"`
	Kinesthetic float64 `json:"kinesthetic"`
}

// PeerComparison 学生与同班级同年级群体的对比
type PeerComparison struct {
	Student           CategoryScores    `json:"student"`
	ClassAverage      CategoryScores    `json:"classAverage"`
	PercentileRanking map[Style]float64 `json:"percentileRanking"`
}

// StudentAIProfile is the student snapshot serialized into recommendation
// prompts. Field names follow the JSON the model is shown.
type StudentAIProfile struct {
	GradeLevel        string          `json:"grade_level"`
	Major             string          `json:"major,omitempty"`
	LearningInterests []string        `json:"learning_interests"`
	DominantStyle     Style           `json:"dominant_style,omitempty"`
	StyleScores       *CategoryScores `json:"style_scores,omitempty"`
	AvgScore          *float64        `json:"avg_score,omitempty"`
	RecentTopics      []string        `json:"recent_topics"`
	WeakAreas         []string        `json:"weak_areas"`
	StrongAreas       []string        `json:"strong_areas"`
}
