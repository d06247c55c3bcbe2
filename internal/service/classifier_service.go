package service

import (
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/util"
	"edulytics_backend/pkg/cache"
	"edulytics_backend/pkg/logger"
	"edulytics_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ClassifierService 把已完成的问卷作答加工为学习风格画像：确定性计分
// 与 AI 评估按权重混合，AI 失败时静默退化为纯确定性结果。
type ClassifierService struct {
	ResponseRepo *repository.ResponseRepository
	ProfileRepo  *repository.ProfileRepository
	StudentRepo  *repository.StudentRepository
	Scoring      *ScoringService
	AI           TextGenerator
	Cache        cache.Cache
	Config       config.AnalyticsConfig

	now func() time.Time
}

func NewClassifierService(
	responseRepo *repository.ResponseRepository,
	profileRepo *repository.ProfileRepository,
	studentRepo *repository.StudentRepository,
	scoring *ScoringService,
	ai TextGenerator,
	c cache.Cache,
	cfg config.AnalyticsConfig,
) *ClassifierService {
	return &ClassifierService{
		ResponseRepo: responseRepo,
		ProfileRepo:  profileRepo,
		StudentRepo:  studentRepo,
		Scoring:      scoring,
		AI:           ai,
		Cache:        c,
		Config:       cfg,
		now:          time.Now,
	}
}

// SetClock 覆盖时间源，便于测试
func (s *ClassifierService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ClassifierService) cacheKey(responseID uint) string {
	return fmt.Sprintf("learning_analysis_%d", responseID)
}

// AnalyzeResponse 对一份已完成作答做完整的风格分析并落库。同一份作答
// 的结果缓存一小时，重复调用直接命中。
func (s *ClassifierService) AnalyzeResponse(ctx context.Context, responseID uint) (*model.LearningStyleProfile, error) {
	key := s.cacheKey(responseID)
	if raw, ok := s.Cache.Get(ctx, key); ok {
		var cached model.LearningStyleProfile
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	response, err := s.ResponseRepo.FindByID(responseID)
	if err != nil {
		return nil, err
	}
	if !response.IsCompleted() {
		return nil, util.ErrResponseNotCompleted
	}
	survey := response.Survey
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}
	student := response.Student
	if student == nil {
		return nil, util.ErrStudentNotFound
	}

	deterministic := s.Scoring.CalculateScores(survey, response.Answers)
	if err := s.ResponseRepo.UpdateCalculatedScores(response.ID, deterministic); err != nil {
		return nil, err
	}

	aiAnalysis := s.aiEstimate(ctx, student, survey, response.Answers, deterministic)

	blended := blendScores(deterministic, aiAnalysis.Scores(),
		s.Config.DeterministicWeight, s.Config.AIWeight)
	dominant := model.DominantStyle(blended, s.Config.MixedThreshold)
	confidence := s.confidenceScore(blended, response, survey)

	profile := &model.LearningStyleProfile{
		StudentID:         student.ID,
		SurveyResponseID:  response.ID,
		VisualScore:       blended.Visual,
		AuditoryScore:     blended.Auditory,
		KinestheticScore:  blended.Kinesthetic,
		DominantStyle:     dominant,
		AIConfidenceScore: confidence,
		SurveyData: model.ProfileSnapshot{
			SurveyID:              survey.ID,
			Responses:             response.Answers,
			AIAnalysis:            aiAnalysis,
			CompletionTimeSeconds: response.TimeSpentSeconds,
		},
		AnalysisDate: s.now(),
		IsCurrent:    true,
	}

	if err := s.ProfileRepo.UpsertCurrent(profile); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		ttl := time.Duration(s.Config.ClassificationCacheTTLMinutes) * time.Minute
		s.Cache.Set(ctx, key, data, ttl)
	}

	return profile, nil
}

// aiEstimate 调 AI 做风格评估。任何失败（请求、超时、JSON 不可解析）
// 都退化为以确定性分数构造的评估，保证分析流程永不因 AI 中断。
func (s *ClassifierService) aiEstimate(ctx context.Context, student *model.Student, survey *model.LearningStyleSurvey, answers map[string]int, deterministic model.CategoryScores) *model.AIStyleAnalysis {
	prompt := BuildStyleAnalysisPrompt(student, survey, answers)

	text, err := s.AI.Generate(ctx, prompt)
	if err == nil {
		if analysis, ok := ParseStyleAnalysis(text); ok {
			monitoring.AIRequestCounter.WithLabelValues("style_analysis", monitoring.AIOutcomeSuccess).Inc()
			return analysis
		}
		logger.Log.Warn("AI style analysis unparsable, falling back to deterministic scores",
			zap.Uint("studentId", student.ID))
	} else {
		logger.Log.Warn("AI style analysis failed, falling back to deterministic scores",
			zap.Uint("studentId", student.ID), zap.Error(err))
	}
	monitoring.AIRequestCounter.WithLabelValues("style_analysis", monitoring.AIOutcomeFallback).Inc()

	return &model.AIStyleAnalysis{
		VisualScore:      deterministic.Visual,
		AuditoryScore:    deterministic.Auditory,
		KinestheticScore: deterministic.Kinesthetic,
		DominantStyle:    string(model.DominantStyle(deterministic, s.Config.MixedThreshold)),
	}
}

func blendScores(deterministic, ai model.CategoryScores, detWeight, aiWeight float64) model.CategoryScores {
	var blended model.CategoryScores
	for _, category := range model.Categories {
		v := deterministic.Get(category)*detWeight + ai.Get(category)*aiWeight
		blended.Set(category, clamp(v, 0, 100))
	}
	return blended
}

// confidenceScore 三个 0-100 分量的加权和：维度区分度（最高最低分差）、
// 作答完成率、作答一致性，权重来自配置，结果压到 [0,100]。
func (s *ClassifierService) confidenceScore(blended model.CategoryScores, response *model.SurveyResponse, survey *model.LearningStyleSurvey) float64 {
	spread := clamp(blended.Spread(), 0, 100)
	completion := response.CompletionPercentage(survey)
	consistency := s.Scoring.ConsistencyScore(survey, response.Answers)

	score := spread*s.Config.ConfidenceSpreadWeight +
		completion*s.Config.ConfidenceCompletionWeight +
		consistency*s.Config.ConfidenceConsistencyWeight
	return clamp(score, 0, 100)
}

// StyleEvolution 按时间顺序返回学生历次分析的维度得分
func (s *ClassifierService) StyleEvolution(studentID uint) ([]model.StyleEvolutionPoint, error) {
	history, err := s.ProfileRepo.History(studentID)
	if err != nil {
		return nil, err
	}

	points := make([]model.StyleEvolutionPoint, 0, len(history))
	for _, p := range history {
		points = append(points, model.StyleEvolutionPoint{
			Date:        model.FormatDate(p.AnalysisDate),
			Visual:      p.VisualScore,
			Auditory:    p.AuditoryScore,
			Kinesthetic: p.KinestheticScore,
		})
	}
	return points, nil
}

// PeerComparison 学生与同年级同班群体的维度均值对比和分位排名。
// 分位 = 低于该生的同伴数 / 同伴总数 × 100；无同伴时各维度取 50。
func (s *ClassifierService) PeerComparison(studentID uint) (*model.PeerComparison, error) {
	student, err := s.StudentRepo.FindByID(studentID)
	if err != nil {
		return nil, err
	}
	own, err := s.ProfileRepo.Current(studentID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.ProfileRepo.CurrentByGradeAndClass(student.GradeLevel, student.Class)
	if err != nil {
		return nil, err
	}

	peers := make([]model.LearningStyleProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.StudentID != studentID {
			peers = append(peers, p)
		}
	}

	comparison := &model.PeerComparison{
		Student:           own.Scores(),
		PercentileRanking: make(map[model.Style]float64, len(model.Categories)),
	}

	if len(peers) == 0 {
		for _, category := range model.Categories {
			comparison.PercentileRanking[category] = 50
		}
		comparison.ClassAverage = own.Scores()
		return comparison, nil
	}

	var avg model.CategoryScores
	for _, category := range model.Categories {
		sum := 0.0
		lower := 0
		for _, p := range peers {
			v := p.Scores().Get(category)
			sum += v
			if v < own.Scores().Get(category) {
				lower++
			}
		}
		avg.Set(category, sum/float64(len(peers)))
		comparison.PercentileRanking[category] = float64(lower) / float64(len(peers)) * 100
	}
	comparison.ClassAverage = avg

	return comparison, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
