package service

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/pkg/logger"
	"sort"
	"time"

	"go.uber.org/zap"
)

// 活动类型参与度权重，complete 权重即满分基准
var activityWeights = map[model.ActivityType]float64{
	model.ActivityView:     1.0,
	model.ActivityClick:    1.5,
	model.ActivityDownload: 2.0,
	model.ActivityComplete: 3.0,
}

const maxActivityWeight = 3.0

// improvementWindow 计算进步趋势所用的最近测评条数
const improvementWindow = 5

// 周汇总的聚合方式按指标固定查表，不做推断
var weeklySumMetrics = []model.MetricType{
	model.MetricSessionCount,
	model.MetricContentViews,
	model.MetricContentCompletions,
	model.MetricAssessmentCount,
	model.MetricTotalStudyTime,
}

var weeklyAvgMetrics = []model.MetricType{
	model.MetricEngagementScore,
	model.MetricAvgAssessmentScore,
	model.MetricImprovementTrend,
	model.MetricAvgSessionDuration,
}

// 风险判定阈值
const (
	riskEngagementThreshold = 30.0
	riskScoreThreshold      = 60.0
	riskStudyHoursThreshold = 2.0
)

// AnalyticsService 把原始活动与测评日志加工为逐日指标样本、周汇总和
// 趋势视图。所有写入都是自然键上的幂等 upsert，重算覆盖旧值。
type AnalyticsService struct {
	ActivityRepo   *repository.ActivityRepository
	AssessmentRepo *repository.AssessmentRepository
	AnalyticRepo   *repository.AnalyticRepository
	ProfileRepo    *repository.ProfileRepository
	StudentRepo    *repository.StudentRepository

	now func() time.Time
}

func NewAnalyticsService(
	activityRepo *repository.ActivityRepository,
	assessmentRepo *repository.AssessmentRepository,
	analyticRepo *repository.AnalyticRepository,
	profileRepo *repository.ProfileRepository,
	studentRepo *repository.StudentRepository,
) *AnalyticsService {
	return &AnalyticsService{
		ActivityRepo:   activityRepo,
		AssessmentRepo: assessmentRepo,
		AnalyticRepo:   analyticRepo,
		ProfileRepo:    profileRepo,
		StudentRepo:    studentRepo,
		now:            time.Now,
	}
}

func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// CalculateDailyAnalytics 计算并落库某学生某天的全部日指标。当天既无
// 活动也无测评时不写任何样本。重跑同一天为覆盖而非追加。
func (s *AnalyticsService) CalculateDailyAnalytics(studentID uint, date time.Time) error {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	activities, err := s.ActivityRepo.InRange(studentID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	assessments, err := s.AssessmentRepo.InRange(studentID, dayStart, dayEnd)
	if err != nil {
		return err
	}
	if len(activities) == 0 && len(assessments) == 0 {
		return nil
	}

	samples := make(map[model.MetricType]float64)

	if len(activities) > 0 {
		samples[model.MetricEngagementScore] = activityEngagementScore(activities)
		samples[model.MetricSessionCount] = float64(countSessions(activities))
		samples[model.MetricContentViews] = float64(countByType(activities, model.ActivityView))
		samples[model.MetricContentCompletions] = float64(countByType(activities, model.ActivityComplete))

		totalSeconds := 0
		for _, a := range activities {
			totalSeconds += a.DurationSeconds
		}
		samples[model.MetricTotalStudyTime] = float64(totalSeconds) / 3600
		samples[model.MetricAvgSessionDuration] = avgSessionMinutes(activities)
	}

	// 表现类指标只在当天有测评时落样本，纯活动日不产生零趋势行
	if len(assessments) > 0 {
		sum := 0.0
		for _, a := range assessments {
			sum += a.Percentage
		}
		samples[model.MetricAvgAssessmentScore] = sum / float64(len(assessments))
		samples[model.MetricAssessmentCount] = float64(len(assessments))

		trend, err := s.improvementTrend(studentID, dayEnd)
		if err != nil {
			return err
		}
		samples[model.MetricImprovementTrend] = trend
	}

	return s.writeSamples(studentID, model.FormatDate(dayStart), model.PeriodDaily, samples)
}

// CalculateWeeklyAnalytics 把一周的日样本滚成周样本。计数类指标求和，
// 比率类指标取平均，聚合方式查固定表。
func (s *AnalyticsService) CalculateWeeklyAnalytics(studentID uint, weekStart time.Time) error {
	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	end := start.AddDate(0, 0, 6)

	daily, err := s.AnalyticRepo.InRange(studentID, model.PeriodDaily,
		model.FormatDate(start), model.FormatDate(end))
	if err != nil {
		return err
	}
	if len(daily) == 0 {
		return nil
	}

	byMetric := make(map[model.MetricType][]float64)
	for _, sample := range daily {
		byMetric[sample.MetricType] = append(byMetric[sample.MetricType], sample.MetricValue)
	}

	samples := make(map[model.MetricType]float64)
	for _, metric := range weeklySumMetrics {
		values, ok := byMetric[metric]
		if !ok {
			continue
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		samples[metric] = sum
	}
	for _, metric := range weeklyAvgMetrics {
		values, ok := byMetric[metric]
		if !ok {
			continue
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		samples[metric] = sum / float64(len(values))
	}

	return s.writeSamples(studentID, model.FormatDate(start), model.PeriodWeekly, samples)
}

func (s *AnalyticsService) writeSamples(studentID uint, date string, period model.AggregationPeriod, samples map[model.MetricType]float64) error {
	calculatedAt := s.now().Format(time.RFC3339)
	for metric, value := range samples {
		analytic := &model.LearningAnalytic{
			StudentID:         studentID,
			MetricType:        metric,
			MetricValue:       value,
			CalculationDate:   date,
			AggregationPeriod: period,
			Context: model.AnalyticContext{
				CalculatedAt: calculatedAt,
				Version:      model.AlgorithmVersion,
			},
		}
		if err := s.AnalyticRepo.Upsert(analytic); err != nil {
			return err
		}
	}
	return nil
}

// improvementTrend 最近 5 次测评按时间升序的相邻得分差均值，不足两次
// 时为 0
func (s *AnalyticsService) improvementTrend(studentID uint, before time.Time) (float64, error) {
	recent, err := s.AssessmentRepo.RecentBefore(studentID, before, improvementWindow)
	if err != nil {
		return 0, err
	}
	if len(recent) < 2 {
		return 0, nil
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].TakenAt.Before(recent[j].TakenAt)
	})

	deltaSum := 0.0
	for i := 1; i < len(recent); i++ {
		deltaSum += recent[i].Percentage - recent[i-1].Percentage
	}
	return deltaSum / float64(len(recent)-1), nil
}

// StudentAnalytics 返回学生在 [start, end]（含边界日）的汇总和逐日趋势。
// 趋势序列缺失日补 0，长度恒为天数+1。
func (s *AnalyticsService) StudentAnalytics(studentID uint, start, end time.Time) (*model.StudentAnalytics, error) {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())

	daily, err := s.AnalyticRepo.InRange(studentID, model.PeriodDaily,
		model.FormatDate(startDay), model.FormatDate(endDay))
	if err != nil {
		return nil, err
	}

	byMetric := make(map[model.MetricType]map[string]float64)
	for _, sample := range daily {
		if byMetric[sample.MetricType] == nil {
			byMetric[sample.MetricType] = make(map[string]float64)
		}
		byMetric[sample.MetricType][sample.CalculationDate] = sample.MetricValue
	}

	days := int(endDay.Sub(startDay).Hours() / 24)
	trends := make(map[model.MetricType][]model.TrendPoint)
	trendMetrics := []model.MetricType{
		model.MetricEngagementScore,
		model.MetricAvgAssessmentScore,
		model.MetricTotalStudyTime,
		model.MetricContentViews,
		model.MetricContentCompletions,
	}
	for _, metric := range trendMetrics {
		series := make([]model.TrendPoint, 0, days+1)
		for i := 0; i <= days; i++ {
			date := model.FormatDate(startDay.AddDate(0, 0, i))
			series = append(series, model.TrendPoint{Date: date, Value: byMetric[metric][date]})
		}
		trends[metric] = series
	}

	analytics := &model.StudentAnalytics{
		StudentID: studentID,
		Engagement: model.EngagementSummary{
			Score:        avgOf(byMetric[model.MetricEngagementScore]),
			Sessions:     sumOf(byMetric[model.MetricSessionCount]),
			ContentViews: sumOf(byMetric[model.MetricContentViews]),
			Completions:  sumOf(byMetric[model.MetricContentCompletions]),
		},
		Performance: model.PerformanceSummary{
			AvgScore:         avgOf(byMetric[model.MetricAvgAssessmentScore]),
			TotalAssessments: sumOf(byMetric[model.MetricAssessmentCount]),
			ImprovementTrend: avgOf(byMetric[model.MetricImprovementTrend]),
		},
		TimeMetrics: model.TimeSummary{
			TotalHours:        sumOf(byMetric[model.MetricTotalStudyTime]),
			AvgSessionMinutes: avgOf(byMetric[model.MetricAvgSessionDuration]),
		},
		Trends: trends,
	}
	return analytics, nil
}

// ClassAnalytics 对一组学生做逐个汇总，再算班级均值、风格分布、
// 成绩排名和风险名单
func (s *AnalyticsService) ClassAnalytics(studentIDs []uint, start, end time.Time) (*model.ClassAnalytics, error) {
	result := &model.ClassAnalytics{
		StyleDistribution:  make(map[model.Style]float64),
		PerformanceRanking: []model.PerformanceRank{},
		AtRiskStudents:     []model.AtRiskStudent{},
		Students:           []model.StudentAnalytics{},
	}
	if len(studentIDs) == 0 {
		return result, nil
	}

	for _, id := range studentIDs {
		sa, err := s.StudentAnalytics(id, start, end)
		if err != nil {
			logger.Log.Warn("skipping student in class analytics", zap.Uint("studentId", id), zap.Error(err))
			continue
		}
		result.Students = append(result.Students, *sa)
	}
	if len(result.Students) == 0 {
		return result, nil
	}

	n := float64(len(result.Students))
	var engagement, score, hours, totalViews, totalCompletions float64
	for _, sa := range result.Students {
		engagement += sa.Engagement.Score
		score += sa.Performance.AvgScore
		hours += sa.TimeMetrics.TotalHours
		totalViews += sa.Engagement.ContentViews
		totalCompletions += sa.Engagement.Completions
	}
	// 完成率按全班合并的浏览与完成总量计算，不是各学生完成率的平均
	completionRate := 0.0
	if totalViews > 0 {
		completionRate = totalCompletions / totalViews * 100
	}
	result.ClassAverage = model.ClassAverages{
		EngagementScore:  engagement / n,
		PerformanceScore: score / n,
		StudyHours:       hours / n,
		CompletionRate:   completionRate,
	}

	if err := s.fillStyleDistribution(result, studentIDs); err != nil {
		return nil, err
	}

	ranked := make([]model.StudentAnalytics, len(result.Students))
	copy(ranked, result.Students)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Performance.AvgScore > ranked[j].Performance.AvgScore
	})
	for i, sa := range ranked {
		result.PerformanceRanking = append(result.PerformanceRanking, model.PerformanceRank{
			StudentID: sa.StudentID,
			Rank:      i + 1,
			Score:     sa.Performance.AvgScore,
		})
	}

	for _, sa := range result.Students {
		if atRisk, ok := assessRisk(&sa); ok {
			result.AtRiskStudents = append(result.AtRiskStudents, atRisk)
		}
	}

	return result, nil
}

func (s *AnalyticsService) fillStyleDistribution(result *model.ClassAnalytics, studentIDs []uint) error {
	profiles, err := s.ProfileRepo.CurrentByStudentIDs(studentIDs)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return nil
	}
	for _, p := range profiles {
		result.StyleDistribution[p.DominantStyle]++
	}
	for style, count := range result.StyleDistribution {
		result.StyleDistribution[style] = count / float64(len(profiles)) * 100
	}
	return nil
}

// assessRisk 参与度低于 30、平均分低于 60 或周学习不足 2 小时任一命中
// 即入风险名单，命中两项及以上为高风险
func assessRisk(sa *model.StudentAnalytics) (model.AtRiskStudent, bool) {
	var factors []string
	if sa.Engagement.Score < riskEngagementThreshold {
		factors = append(factors, model.RiskFactorLowEngagement)
	}
	if sa.Performance.AvgScore < riskScoreThreshold {
		factors = append(factors, model.RiskFactorLowPerformance)
	}
	if sa.TimeMetrics.TotalHours < riskStudyHoursThreshold {
		factors = append(factors, model.RiskFactorInsufficientStudyTime)
	}
	if len(factors) == 0 {
		return model.AtRiskStudent{}, false
	}

	level := model.RiskMedium
	if len(factors) >= 2 {
		level = model.RiskHigh
	}
	return model.AtRiskStudent{
		StudentID:   sa.StudentID,
		RiskFactors: factors,
		RiskLevel:   level,
	}, true
}

// activityEngagementScore 加权活动分：按活动类型权重求和，除以
// 全部活动都是 complete 时的满分，换算为 0-100
func activityEngagementScore(activities []model.LearningActivity) float64 {
	if len(activities) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range activities {
		if w, ok := activityWeights[a.ActivityType]; ok {
			total += w
		}
	}
	return total / (float64(len(activities)) * maxActivityWeight) * 100
}

func countSessions(activities []model.LearningActivity) int {
	sessions := make(map[string]struct{})
	for _, a := range activities {
		if a.SessionID != "" {
			sessions[a.SessionID] = struct{}{}
		}
	}
	return len(sessions)
}

func countByType(activities []model.LearningActivity, t model.ActivityType) int {
	count := 0
	for _, a := range activities {
		if a.ActivityType == t {
			count++
		}
	}
	return count
}

// avgSessionMinutes 按会话分组求总时长，再对会话取平均，单位分钟
func avgSessionMinutes(activities []model.LearningActivity) float64 {
	perSession := make(map[string]int)
	for _, a := range activities {
		if a.SessionID != "" {
			perSession[a.SessionID] += a.DurationSeconds
		}
	}
	if len(perSession) == 0 {
		return 0
	}
	total := 0
	for _, seconds := range perSession {
		total += seconds
	}
	return float64(total) / float64(len(perSession)) / 60
}

func sumOf(values map[string]float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

func avgOf(values map[string]float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumOf(values) / float64(len(values))
}
