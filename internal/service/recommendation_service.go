package service

import (
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/pkg/cache"
	"edulytics_backend/pkg/logger"
	"edulytics_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	// candidateMultiplier 候选池相对返回条数的放大倍数，给 AI 排序留空间
	candidateMultiplier = 3

	ruleBaseScore       = 0.5
	ruleStyleBonus      = 0.3
	ruleDifficultyBonus = 0.2
	ruleRatingBonus     = 0.1
	rulePopularityBonus = 0.05

	ratingBonusThreshold = 3.0
	viewsBonusThreshold  = 100

	performanceWindowDays  = 30
	recentTopicsWindowDays = 7
	recentTopicsLimit      = 5
	weakSubjectThreshold   = 60.0
	strongSubjectThreshold = 80.0
)

// RecommendationService 为学生生成个性化内容推荐：候选检索逐级放宽，
// AI 排序失败时退回规则打分，整体失败时退回年级热门内容。
type RecommendationService struct {
	StudentRepo        *repository.StudentRepository
	ProfileRepo        *repository.ProfileRepository
	ContentRepo        *repository.ContentRepository
	ActivityRepo       *repository.ActivityRepository
	AssessmentRepo     *repository.AssessmentRepository
	RecommendationRepo *repository.RecommendationRepository
	AI                 TextGenerator
	Cache              cache.Cache
	Config             config.AnalyticsConfig

	now func() time.Time
}

func NewRecommendationService(
	studentRepo *repository.StudentRepository,
	profileRepo *repository.ProfileRepository,
	contentRepo *repository.ContentRepository,
	activityRepo *repository.ActivityRepository,
	assessmentRepo *repository.AssessmentRepository,
	recommendationRepo *repository.RecommendationRepository,
	ai TextGenerator,
	c cache.Cache,
	cfg config.AnalyticsConfig,
) *RecommendationService {
	return &RecommendationService{
		StudentRepo:        studentRepo,
		ProfileRepo:        profileRepo,
		ContentRepo:        contentRepo,
		ActivityRepo:       activityRepo,
		AssessmentRepo:     assessmentRepo,
		RecommendationRepo: recommendationRepo,
		AI:                 ai,
		Cache:              c,
		Config:             cfg,
		now:                time.Now,
	}
}

func (s *RecommendationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *RecommendationService) cacheKey(studentID uint, limit int) string {
	return fmt.Sprintf("recommendations_%d_%d", studentID, limit)
}

// Generate 生成（或从缓存返回）学生的前 limit 条推荐并落库
func (s *RecommendationService) Generate(ctx context.Context, studentID uint, limit int) ([]model.RecommendedContent, error) {
	if limit <= 0 {
		limit = 10
	}

	key := s.cacheKey(studentID, limit)
	if raw, ok := s.Cache.Get(ctx, key); ok {
		var cached []model.RecommendedContent
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	student, err := s.StudentRepo.FindByID(studentID)
	if err != nil {
		return nil, err
	}

	recommended, err := s.generateFor(ctx, student, limit)
	if err != nil {
		logger.Log.Warn("recommendation generation degraded to popular content",
			zap.Uint("studentId", studentID), zap.Error(err))
		recommended, err = s.popularFallback(student, limit)
		if err != nil {
			return nil, err
		}
	}

	s.persist(student.ID, recommended)

	if data, err := json.Marshal(recommended); err == nil {
		ttl := time.Duration(s.Config.RecommendationCacheTTLMinutes) * time.Minute
		s.Cache.Set(ctx, key, data, ttl)
	}

	return recommended, nil
}

func (s *RecommendationService) generateFor(ctx context.Context, student *model.Student, limit int) ([]model.RecommendedContent, error) {
	profile := s.buildProfile(student)

	candidates, err := s.retrieveCandidates(student, profile, limit*candidateMultiplier)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return s.popularFallback(student, limit)
	}

	scored := s.scoreCandidates(ctx, profile, candidates)
	sortByScoreDesc(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// buildProfile 汇总推荐所需的学生画像。画像各部分缺失时退为零值，
// 不阻塞推荐。
func (s *RecommendationService) buildProfile(student *model.Student) *model.StudentAIProfile {
	profile := &model.StudentAIProfile{
		GradeLevel:        student.GradeLevel,
		Major:             student.Major,
		LearningInterests: student.LearningInterests,
	}

	if style, err := s.ProfileRepo.Current(student.ID); err == nil {
		profile.DominantStyle = style.DominantStyle
		scores := style.Scores()
		profile.StyleScores = &scores
	}

	since := s.now().AddDate(0, 0, -performanceWindowDays)
	if avg, count, err := s.AssessmentRepo.AverageSince(student.ID, since); err == nil && count > 0 {
		profile.AvgScore = &avg
	}
	topicsSince := s.now().AddDate(0, 0, -recentTopicsWindowDays)
	if topics, err := s.ActivityRepo.RecentTopics(student.ID, topicsSince, recentTopicsLimit); err == nil {
		profile.RecentTopics = topics
	}
	if weak, err := s.AssessmentRepo.WeakSubjects(student.ID, since, weakSubjectThreshold, recentTopicsLimit); err == nil {
		profile.WeakAreas = weak
	}
	if strong, err := s.AssessmentRepo.StrongSubjects(student.ID, since, strongSubjectThreshold, recentTopicsLimit); err == nil {
		profile.StrongAreas = strong
	}

	return profile
}

// retrieveCandidates 逐级放宽检索条件：先按兴趣学科+难度+风格，再
// 依次放开兴趣、难度、风格，仍为空时由调用方兜底热门内容。
func (s *RecommendationService) retrieveCandidates(student *model.Student, profile *model.StudentAIProfile, limit int) ([]model.Content, error) {
	excluded, err := s.ActivityRepo.CompletedContentIDs(student.ID)
	if err != nil {
		return nil, err
	}

	var style *model.Style
	if profile.DominantStyle != "" && profile.DominantStyle != model.StyleMixed {
		st := profile.DominantStyle
		style = &st
	}
	var difficulty *model.DifficultyLevel
	if profile.AvgScore != nil {
		d := model.DifficultyForScore(*profile.AvgScore)
		difficulty = &d
	}

	filter := repository.CandidateFilter{
		GradeLevel: student.GradeLevel,
		Style:      style,
		Difficulty: difficulty,
		Subjects:   student.LearningInterests,
		ExcludeIDs: excluded,
		Limit:      limit,
	}

	candidates, err := s.ContentRepo.Candidates(filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 && len(filter.Subjects) > 0 {
		filter.Subjects = nil
		if candidates, err = s.ContentRepo.Candidates(filter); err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 && filter.Difficulty != nil {
		filter.Difficulty = nil
		if candidates, err = s.ContentRepo.Candidates(filter); err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 && filter.Style != nil {
		filter.Style = nil
		if candidates, err = s.ContentRepo.Candidates(filter); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// scoreCandidates 优先用 AI 排序，只保留 AI 认出并打分的候选；AI 不可
// 用或输出不可解析时整体退回规则打分。AI 全部漏评同样回退。
func (s *RecommendationService) scoreCandidates(ctx context.Context, profile *model.StudentAIProfile, candidates []model.Content) []model.RecommendedContent {
	if aiScores := s.aiScores(ctx, profile, candidates); len(aiScores) > 0 {
		scored := make([]model.RecommendedContent, 0, len(candidates))
		for _, content := range candidates {
			ai, ok := aiScores[content.ID]
			if !ok {
				continue
			}
			scored = append(scored, model.RecommendedContent{
				Content:        content,
				RelevanceScore: clamp(ai.RelevanceScore, 0, 1),
				Reason:         ai.Reason,
			})
		}
		if len(scored) > 0 {
			return scored
		}
	}

	scored := make([]model.RecommendedContent, 0, len(candidates))
	for _, content := range candidates {
		score, reason := s.ruleScore(profile, &content)
		scored = append(scored, model.RecommendedContent{
			Content:        content,
			RelevanceScore: score,
			Reason:         reason,
		})
	}
	return scored
}

func (s *RecommendationService) aiScores(ctx context.Context, profile *model.StudentAIProfile, candidates []model.Content) map[uint]model.AIScoredContent {
	prompt := BuildRecommendationPrompt(profile, candidates)

	text, err := s.AI.Generate(ctx, prompt)
	if err == nil {
		if result, ok := ParseRecommendationResult(text); ok {
			monitoring.AIRequestCounter.WithLabelValues("recommendation", monitoring.AIOutcomeSuccess).Inc()
			byID := make(map[uint]model.AIScoredContent, len(result.RecommendedContent))
			for _, item := range result.RecommendedContent {
				byID[item.ContentID] = item
			}
			return byID
		}
		logger.Log.Warn("AI recommendation output unparsable, using rule-based scoring")
	} else {
		logger.Log.Warn("AI recommendation failed, using rule-based scoring", zap.Error(err))
	}
	monitoring.AIRequestCounter.WithLabelValues("recommendation", monitoring.AIOutcomeFallback).Inc()
	return nil
}

// ruleScore 规则打分：基础 0.5，风格匹配 +0.3，难度匹配 +0.2，
// 评分超过 3 +0.1，浏览量过百 +0.05，上限 1.0
func (s *RecommendationService) ruleScore(profile *model.StudentAIProfile, content *model.Content) (float64, string) {
	score := ruleBaseScore
	reason := "Konten populer untuk tingkat kelasmu"

	if profile.DominantStyle != "" && content.SuitableForStyle(profile.DominantStyle) {
		score += ruleStyleBonus
		reason = fmt.Sprintf("Sesuai dengan gaya belajar %s kamu", profile.DominantStyle)
	}
	if profile.AvgScore != nil && content.DifficultyLevel == model.DifficultyForScore(*profile.AvgScore) {
		score += ruleDifficultyBonus
	}
	if content.Rating > ratingBonusThreshold {
		score += ruleRatingBonus
	}
	if content.ViewsCount > viewsBonusThreshold {
		score += rulePopularityBonus
	}

	return clamp(score, 0, 1), reason
}

func (s *RecommendationService) popularFallback(student *model.Student, limit int) ([]model.RecommendedContent, error) {
	contents, err := s.ContentRepo.PopularForGrade(student.GradeLevel, limit)
	if err != nil {
		return nil, err
	}
	recommended := make([]model.RecommendedContent, 0, len(contents))
	for _, content := range contents {
		recommended = append(recommended, model.RecommendedContent{
			Content:        content,
			RelevanceScore: ruleBaseScore,
			Reason:         "Konten populer untuk tingkat kelasmu",
		})
	}
	return recommended, nil
}

// persist 清理过期推荐后写入新一批。写库失败只记日志，推荐结果照常
// 返回给调用方。
func (s *RecommendationService) persist(studentID uint, recommended []model.RecommendedContent) {
	retention := time.Duration(s.Config.RecommendationRetentionHours) * time.Hour
	cutoff := s.now().Add(-retention)
	if err := s.RecommendationRepo.DeleteOlderThan(studentID, cutoff); err != nil {
		logger.Log.Warn("failed to prune stale recommendations",
			zap.Uint("studentId", studentID), zap.Error(err))
	}

	for _, item := range recommended {
		rec := &model.Recommendation{
			StudentID:          studentID,
			ContentID:          item.Content.ID,
			RecommendationType: model.RecommendationHybrid,
			RelevanceScore:     item.RelevanceScore,
			Reason:             item.Reason,
			AlgorithmVersion:   model.AlgorithmVersion,
		}
		if err := s.RecommendationRepo.Upsert(rec); err != nil {
			logger.Log.Warn("failed to persist recommendation",
				zap.Uint("studentId", studentID),
				zap.Uint("contentId", item.Content.ID),
				zap.Error(err))
		}
	}
}

// MarkViewed 记录学生查看了某条推荐，幂等
func (s *RecommendationService) MarkViewed(studentID, contentID uint) error {
	return s.RecommendationRepo.MarkViewed(studentID, contentID, s.now())
}

// MarkCompleted 记录学生完成了某条推荐内容，幂等
func (s *RecommendationService) MarkCompleted(studentID, contentID uint) error {
	return s.RecommendationRepo.MarkCompleted(studentID, contentID, s.now())
}

// Effectiveness 推荐效果：查看率、完成率和近 7 天参与度（活动数相对
// 新推荐数的比例，封顶 100）。任何分母为零时对应指标为 0。
func (s *RecommendationService) Effectiveness(studentID uint) (*model.EffectivenessMetrics, error) {
	counts, err := s.RecommendationRepo.Counts(studentID)
	if err != nil {
		return nil, err
	}

	metrics := &model.EffectivenessMetrics{TotalRecommendations: counts.Total}
	if counts.Total > 0 {
		metrics.ViewRate = float64(counts.Viewed) / float64(counts.Total) * 100
		metrics.CompletionRate = float64(counts.Completed) / float64(counts.Total) * 100
	}

	weekAgo := s.now().AddDate(0, 0, -7)
	recentRecs, err := s.RecommendationRepo.CountCreatedSince(studentID, weekAgo)
	if err != nil {
		return nil, err
	}
	if recentRecs > 0 {
		recentActivities, err := s.ActivityRepo.CountSince(studentID, weekAgo)
		if err != nil {
			return nil, err
		}
		metrics.EngagementScore = clamp(float64(recentActivities)/float64(recentRecs)*100, 0, 100)
	}

	return metrics, nil
}

func sortByScoreDesc(items []model.RecommendedContent) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})
}
