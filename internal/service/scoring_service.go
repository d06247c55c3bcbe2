package service

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/pkg/logger"

	"go.uber.org/zap"
)

// ScoringService 依据问卷计分规则将 Likert 作答归一化为各维度 0-100 分。
// 纯计算，无外部依赖。
type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// CalculateScores 按维度汇总作答并归一化：
//
//	score = catSum / (5 × itemsInCategory) × 100
//
// 作答值越界（非 1-5）按 0 计入并记录告警，不中断计算。维度无题目时
// 该维度得分为 0。
func (s *ScoringService) CalculateScores(survey *model.LearningStyleSurvey, answers map[string]int) model.CategoryScores {
	var scores model.CategoryScores
	grouped := survey.QuestionsByCategory()

	for _, category := range model.Categories {
		questions := grouped[category]
		if len(questions) == 0 {
			continue
		}
		sum := 0
		for _, q := range questions {
			value, ok := answers[q.ID]
			if !ok {
				continue
			}
			if value < 1 || value > model.MaxLikertValue {
				logger.Log.Warn("answer out of Likert range, counted as zero",
					zap.String("questionId", q.ID),
					zap.Int("value", value))
				continue
			}
			sum += value
		}
		maxRaw := float64(model.MaxLikertValue * len(questions))
		scores.Set(category, float64(sum)/maxRaw*100)
	}

	return scores
}

// ConsistencyScore 衡量同一维度内作答的稳定性。对每个至少有两个作答的
// 维度计算方差，映射为 100 − (variance/4)×100 后取各维度平均。没有任何
// 维度满足条件时返回中性值 50。
func (s *ScoringService) ConsistencyScore(survey *model.LearningStyleSurvey, answers map[string]int) float64 {
	grouped := survey.QuestionsByCategory()

	total := 0.0
	counted := 0
	for _, category := range model.Categories {
		values := make([]float64, 0, len(grouped[category]))
		for _, q := range grouped[category] {
			if v, ok := answers[q.ID]; ok {
				values = append(values, float64(v))
			}
		}
		if len(values) < 2 {
			continue
		}
		score := 100 - variance(values)/4*100
		if score < 0 {
			score = 0
		}
		total += score
		counted++
	}

	if counted == 0 {
		return 50
	}
	return total / float64(counted)
}

func variance(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
