package service

import (
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/util"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newClassifier(db *gorm.DB, ai TextGenerator) *ClassifierService {
	return NewClassifierService(
		repository.NewResponseRepository(db),
		repository.NewProfileRepository(db),
		repository.NewStudentRepository(db),
		NewScoringService(),
		ai,
		newMemoryCache(),
		config.DefaultAnalytics(),
	)
}

func TestAnalyzeResponseBlendsDeterministicAndAI(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Ani", "10", "A")
	answers := map[string]int{"q1": 5, "q2": 5, "q3": 1, "q4": 1, "q5": 3, "q6": 3}
	response := seedCompletedResponse(t, db, survey, student.ID, answers)

	ai := &fakeGenerator{responses: []string{
		`{"visual_score": 50, "auditory_score": 50, "kinesthetic_score": 50, "dominant_style": "visual"}`,
	}}
	classifier := newClassifier(db, ai)

	profile, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)

	// 确定性 {100,20,60} 与 AI {50,50,50} 按 0.6/0.4 混合
	assert.InDelta(t, 80, profile.VisualScore, 0.001)
	assert.InDelta(t, 32, profile.AuditoryScore, 0.001)
	assert.InDelta(t, 56, profile.KinestheticScore, 0.001)
	assert.Equal(t, model.StyleVisual, profile.DominantStyle)
	assert.True(t, profile.IsCurrent)

	assert.GreaterOrEqual(t, profile.AIConfidenceScore, 0.0)
	assert.LessOrEqual(t, profile.AIConfidenceScore, 100.0)

	// calculated_scores 同步落回作答
	var saved model.SurveyResponse
	require.NoError(t, db.First(&saved, response.ID).Error)
	require.NotNil(t, saved.CalculatedScores)
	assert.InDelta(t, 100, saved.CalculatedScores.Visual, 0.001)
}

func TestAnalyzeResponseAIFailureDegradesToDeterministic(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Budi", "10", "A")
	answers := map[string]int{"q1": 5, "q2": 5, "q3": 1, "q4": 1, "q5": 3, "q6": 3}
	response := seedCompletedResponse(t, db, survey, student.ID, answers)

	classifier := newClassifier(db, &fakeGenerator{err: errors.New("upstream timeout")})

	profile, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)

	// AI 不可用时评估退化为确定性分数，混合结果与纯确定性一致
	assert.InDelta(t, 100, profile.VisualScore, 0.001)
	assert.InDelta(t, 20, profile.AuditoryScore, 0.001)
	assert.InDelta(t, 60, profile.KinestheticScore, 0.001)
	assert.Equal(t, model.StyleVisual, profile.DominantStyle)
}

func TestAnalyzeResponseUnparsableAIEqualsFallback(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	answers := map[string]int{"q1": 4, "q2": 4, "q3": 4, "q4": 4, "q5": 2, "q6": 2}

	studentA := seedStudent(t, db, "Citra", "10", "A")
	responseA := seedCompletedResponse(t, db, survey, studentA.ID, answers)
	garbled := newClassifier(db, &fakeGenerator{responses: []string{"maaf, tidak ada JSON di sini"}})
	profileA, err := garbled.AnalyzeResponse(context.Background(), responseA.ID)
	require.NoError(t, err)

	studentB := seedStudent(t, db, "Dewi", "10", "A")
	responseB := seedCompletedResponse(t, db, survey, studentB.ID, answers)
	failed := newClassifier(db, &fakeGenerator{err: errors.New("unreachable")})
	profileB, err := failed.AnalyzeResponse(context.Background(), responseB.ID)
	require.NoError(t, err)

	assert.Equal(t, profileA.VisualScore, profileB.VisualScore)
	assert.Equal(t, profileA.AuditoryScore, profileB.AuditoryScore)
	assert.Equal(t, profileA.KinestheticScore, profileB.KinestheticScore)
	assert.Equal(t, profileA.DominantStyle, profileB.DominantStyle)
	assert.Equal(t, profileA.AIConfidenceScore, profileB.AIConfidenceScore)
}

func TestAnalyzeResponseScorelessAIReplyFallsBack(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Eka", "10", "A")
	answers := map[string]int{"q1": 5, "q2": 5, "q3": 1, "q4": 1, "q5": 3, "q6": 3}
	response := seedCompletedResponse(t, db, survey, student.ID, answers)

	// 合法 JSON 但缺少分数键，不能当成全零评估参与混合
	classifier := newClassifier(db, &fakeGenerator{responses: []string{
		`{"note": "tidak dapat menganalisis jawaban ini"}`,
	}})

	profile, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)

	assert.InDelta(t, 100, profile.VisualScore, 0.001)
	assert.InDelta(t, 20, profile.AuditoryScore, 0.001)
	assert.InDelta(t, 60, profile.KinestheticScore, 0.001)
}

func TestAnalyzeResponseMixedClassification(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Eka", "10", "A")
	// 确定性 {80,80,70}，全部在 10 分以内 → mixed
	answers := map[string]int{"q1": 4, "q2": 4, "q3": 4, "q4": 4, "q5": 4, "q6": 3}
	response := seedCompletedResponse(t, db, survey, student.ID, answers)

	classifier := newClassifier(db, &fakeGenerator{err: errors.New("down")})

	profile, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StyleMixed, profile.DominantStyle)
}

func TestAnalyzeResponseCachesSecondCall(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Fajar", "10", "A")
	answers := map[string]int{"q1": 5, "q2": 5, "q3": 1, "q4": 1, "q5": 3, "q6": 3}
	response := seedCompletedResponse(t, db, survey, student.ID, answers)

	ai := &fakeGenerator{err: errors.New("down")}
	classifier := newClassifier(db, ai)

	first, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)
	second, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, first.VisualScore, second.VisualScore)
}

func TestAnalyzeResponseRejectsIncompleteResponse(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Gita", "10", "A")

	response := &model.SurveyResponse{
		SurveyID:  survey.ID,
		StudentID: student.ID,
		Answers:   map[string]int{"q1": 3},
		Status:    model.ResponseInProgress,
		StartedAt: time.Now(),
	}
	require.NoError(t, db.Create(response).Error)

	classifier := newClassifier(db, &fakeGenerator{})
	_, err := classifier.AnalyzeResponse(context.Background(), response.ID)
	assert.ErrorIs(t, err, util.ErrResponseNotCompleted)
}

func TestStyleEvolutionOrdersByDate(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Hadi", "10", "A")
	profileRepo := repository.NewProfileRepository(db)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, visual := range []float64{40, 55, 70} {
		require.NoError(t, db.Create(&model.LearningStyleProfile{
			StudentID:        student.ID,
			SurveyResponseID: uint(i + 1),
			VisualScore:      visual,
			AuditoryScore:    50,
			KinestheticScore: 50,
			DominantStyle:    model.StyleVisual,
			AnalysisDate:     base.AddDate(0, i, 0),
			IsCurrent:        i == 2,
		}).Error)
	}

	classifier := NewClassifierService(
		repository.NewResponseRepository(db), profileRepo,
		repository.NewStudentRepository(db), NewScoringService(),
		&fakeGenerator{}, newMemoryCache(), config.DefaultAnalytics(),
	)

	points, err := classifier.StyleEvolution(student.ID)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2026-03-01", points[0].Date)
	assert.Equal(t, 40.0, points[0].Visual)
	assert.Equal(t, 70.0, points[2].Visual)
}

func TestPeerComparison(t *testing.T) {
	db := newTestDB(t)
	me := seedStudent(t, db, "Indra", "10", "A")
	peer1 := seedStudent(t, db, "Joko", "10", "A")
	peer2 := seedStudent(t, db, "Kiki", "10", "A")
	outsider := seedStudent(t, db, "Lina", "11", "B")

	mkProfile := func(studentID uint, visual float64, current bool) {
		require.NoError(t, db.Create(&model.LearningStyleProfile{
			StudentID:        studentID,
			SurveyResponseID: studentID * 100,
			VisualScore:      visual,
			AuditoryScore:    50,
			KinestheticScore: 50,
			DominantStyle:    model.StyleVisual,
			AnalysisDate:     time.Now(),
			IsCurrent:        current,
		}).Error)
	}
	mkProfile(me.ID, 70, true)
	mkProfile(peer1.ID, 60, true)
	mkProfile(peer2.ID, 80, true)
	mkProfile(outsider.ID, 99, true)

	classifier := newClassifier(db, &fakeGenerator{})

	comparison, err := classifier.PeerComparison(me.ID)
	require.NoError(t, err)

	// 同年级同班只有两名同伴，班外学生不参与
	assert.InDelta(t, 70, comparison.ClassAverage.Visual, 0.001)
	// 两名同伴中一人低于 70 → 50 分位
	assert.InDelta(t, 50, comparison.PercentileRanking[model.StyleVisual], 0.001)
}

func TestPeerComparisonNoPeersDefaultsToMedian(t *testing.T) {
	db := newTestDB(t)
	me := seedStudent(t, db, "Maya", "12", "C")
	require.NoError(t, db.Create(&model.LearningStyleProfile{
		StudentID:        me.ID,
		SurveyResponseID: 1,
		VisualScore:      65,
		AuditoryScore:    40,
		KinestheticScore: 55,
		DominantStyle:    model.StyleVisual,
		AnalysisDate:     time.Now(),
		IsCurrent:        true,
	}).Error)

	classifier := newClassifier(db, &fakeGenerator{})

	comparison, err := classifier.PeerComparison(me.ID)
	require.NoError(t, err)
	for _, category := range model.Categories {
		assert.Equal(t, 50.0, comparison.PercentileRanking[category])
	}
}
