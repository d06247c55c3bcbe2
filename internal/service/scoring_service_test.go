package service

import (
	"edulytics_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateScoresNormalization(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	scoring := NewScoringService()

	// 满分作答每个维度都应到 100
	full := map[string]int{"q1": 5, "q2": 5, "q3": 5, "q4": 5, "q5": 5, "q6": 5}
	scores := scoring.CalculateScores(survey, full)
	assert.Equal(t, 100.0, scores.Visual)
	assert.Equal(t, 100.0, scores.Auditory)
	assert.Equal(t, 100.0, scores.Kinesthetic)

	// 维度两题 4+2=6，满分 10 → 60
	partial := map[string]int{"q1": 4, "q2": 2, "q3": 1, "q4": 1, "q5": 5, "q6": 3}
	scores = scoring.CalculateScores(survey, partial)
	assert.InDelta(t, 60, scores.Visual, 0.001)
	assert.InDelta(t, 20, scores.Auditory, 0.001)
	assert.InDelta(t, 80, scores.Kinesthetic, 0.001)
}

func TestCalculateScoresEmptyAnswersZeroFill(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	scoring := NewScoringService()

	scores := scoring.CalculateScores(survey, map[string]int{})
	assert.Equal(t, model.CategoryScores{}, scores)
}

func TestCalculateScoresOutOfRangeCountedAsZero(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	scoring := NewScoringService()

	scores := scoring.CalculateScores(survey, map[string]int{"q1": 9, "q2": 5, "q3": 0, "q4": 2})
	// q1 越界按 0 计：5/10 → 50
	assert.InDelta(t, 50, scores.Visual, 0.001)
	// q3 越界按 0 计：2/10 → 20
	assert.InDelta(t, 20, scores.Auditory, 0.001)
}

func TestCalculateScoresAlwaysWithinRange(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	scoring := NewScoringService()

	answerSets := []map[string]int{
		{"q1": 1, "q2": 1, "q3": 1, "q4": 1, "q5": 1, "q6": 1},
		{"q1": 5, "q2": 5},
		{"q3": 3},
		{},
	}
	for _, answers := range answerSets {
		scores := scoring.CalculateScores(survey, answers)
		for _, category := range model.Categories {
			v := scores.Get(category)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, 100.0)
		}
	}
}

func TestConsistencyScore(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	scoring := NewScoringService()

	// 每个维度两题同分，方差 0 → 一致性 100
	uniform := map[string]int{"q1": 4, "q2": 4, "q3": 2, "q4": 2, "q5": 5, "q6": 5}
	assert.InDelta(t, 100, scoring.ConsistencyScore(survey, uniform), 0.001)

	// 极端分裂 1/5，方差 4 → 一致性 0
	split := map[string]int{"q1": 1, "q2": 5, "q3": 1, "q4": 5, "q5": 1, "q6": 5}
	assert.InDelta(t, 0, scoring.ConsistencyScore(survey, split), 0.001)

	// 数据不足时中性值 50
	sparse := map[string]int{"q1": 3}
	assert.Equal(t, 50.0, scoring.ConsistencyScore(survey, sparse))
}
