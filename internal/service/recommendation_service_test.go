package service

import (
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecommender(db *gorm.DB, ai TextGenerator) *RecommendationService {
	return NewRecommendationService(
		repository.NewStudentRepository(db),
		repository.NewProfileRepository(db),
		repository.NewContentRepository(db),
		repository.NewActivityRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewRecommendationRepository(db),
		ai,
		newMemoryCache(),
		config.DefaultAnalytics(),
	)
}

func seedVisualProfile(t *testing.T, db *gorm.DB, studentID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.LearningStyleProfile{
		StudentID:        studentID,
		SurveyResponseID: studentID,
		VisualScore:      85,
		AuditoryScore:    30,
		KinestheticScore: 40,
		DominantStyle:    model.StyleVisual,
		AnalysisDate:     time.Now(),
		IsCurrent:        true,
	}).Error)
}

func TestBuildProfileCollectsPerformanceAreas(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Hana", "10", "A")
	student.LearningInterests = []string{"Fisika"}
	require.NoError(t, db.Save(student).Error)

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	mkAssessment := func(subject string, pct float64) {
		require.NoError(t, db.Create(&model.Assessment{
			StudentID: student.ID, Subject: subject, Percentage: pct,
			TakenAt: now.AddDate(0, 0, -5),
		}).Error)
	}
	mkAssessment("Kimia", 50)
	mkAssessment("Fisika", 90)

	recent := seedContent(t, db, "Materi listrik", "10", "visual", model.DifficultyBeginner, 4.0, 10)
	recent.Topic = "Listrik"
	require.NoError(t, db.Save(recent).Error)
	stale := seedContent(t, db, "Materi lama", "10", "visual", model.DifficultyBeginner, 4.0, 10)
	stale.Topic = "Optika"
	require.NoError(t, db.Save(stale).Error)

	mkActivity := func(contentID uint, at time.Time) {
		require.NoError(t, db.Create(&model.LearningActivity{
			StudentID:    student.ID,
			ContentID:    contentID,
			ActivityType: model.ActivityView,
			OccurredAt:   at,
		}).Error)
	}
	mkActivity(recent.ID, now.AddDate(0, 0, -2))
	// 超出 7 天窗口，不进最近主题
	mkActivity(stale.ID, now.AddDate(0, 0, -10))

	recommender := newRecommender(db, &fakeGenerator{err: errors.New("down")})
	recommender.SetClock(func() time.Time { return now })

	profile := recommender.buildProfile(student)
	assert.Equal(t, []string{"Fisika"}, profile.LearningInterests)
	assert.Equal(t, []string{"Kimia"}, profile.WeakAreas)
	assert.Equal(t, []string{"Fisika"}, profile.StrongAreas)
	assert.Equal(t, []string{"Listrik"}, profile.RecentTopics)
}

func TestRetrieveCandidatesInterestLadder(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Indra", "10", "A")
	student.LearningInterests = []string{"Fisika"}
	require.NoError(t, db.Save(student).Error)
	seedVisualProfile(t, db, student.ID)

	matched := seedContent(t, db, "Materi fisika", "10", "visual", model.DifficultyBeginner, 4.0, 50)
	matched.Subject = "Fisika"
	require.NoError(t, db.Save(matched).Error)
	seedContent(t, db, "Materi matematika", "10", "visual", model.DifficultyBeginner, 5.0, 500)

	recommender := newRecommender(db, &fakeGenerator{err: errors.New("down")})

	// 兴趣学科优先过滤
	recommended, err := recommender.Generate(context.Background(), student.ID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 1)
	assert.Equal(t, matched.ID, recommended[0].Content.ID)

	// 兴趣无命中时放开学科过滤
	other := seedStudent(t, db, "Joko", "10", "A")
	other.LearningInterests = []string{"Biologi"}
	require.NoError(t, db.Save(other).Error)
	seedVisualProfile(t, db, other.ID)

	recommended, err = recommender.Generate(context.Background(), other.ID, 10)
	require.NoError(t, err)
	assert.Len(t, recommended, 2)
}

func TestGenerateRuleFallbackScoring(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Nina", "10", "A")
	seedVisualProfile(t, db, student.ID)

	rich := seedContent(t, db, "Video diagram aljabar", "10", "visual", model.DifficultyBeginner, 4.5, 200)
	plain := seedContent(t, db, "Rangkuman umum", "10", model.TargetStyleAll, model.DifficultyBeginner, 2.0, 10)
	seedContent(t, db, "Podcast geometri", "10", "auditory", model.DifficultyBeginner, 5.0, 500)

	recommender := newRecommender(db, &fakeGenerator{err: errors.New("down")})

	recommended, err := recommender.Generate(context.Background(), student.ID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 2)

	// 0.5 基础 +0.3 风格 +0.1 评分>3 +0.05 浏览>100
	assert.Equal(t, rich.ID, recommended[0].Content.ID)
	assert.InDelta(t, 0.95, recommended[0].RelevanceScore, 0.001)
	// 0.5 基础 +0.3 风格（all 视为匹配）
	assert.Equal(t, plain.ID, recommended[1].Content.ID)
	assert.InDelta(t, 0.8, recommended[1].RelevanceScore, 0.001)
}

func TestGenerateCapsAtLimitAndExcludesCompleted(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Oka", "10", "A")
	seedVisualProfile(t, db, student.ID)

	done := seedContent(t, db, "Sudah selesai", "10", "visual", model.DifficultyBeginner, 5.0, 999)
	for i := 0; i < 5; i++ {
		seedContent(t, db, "Materi", "10", "visual", model.DifficultyBeginner, 4.0, 50)
	}
	require.NoError(t, db.Create(&model.LearningActivity{
		StudentID:    student.ID,
		ContentID:    done.ID,
		ActivityType: model.ActivityComplete,
		OccurredAt:   time.Now(),
	}).Error)

	recommender := newRecommender(db, &fakeGenerator{err: errors.New("down")})

	recommended, err := recommender.Generate(context.Background(), student.ID, 3)
	require.NoError(t, err)
	assert.Len(t, recommended, 3)
	for _, item := range recommended {
		assert.NotEqual(t, done.ID, item.Content.ID)
	}
}

func TestGenerateUsesAIScoresWhenParsable(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Putu", "10", "A")
	seedVisualProfile(t, db, student.ID)

	first := seedContent(t, db, "Materi satu", "10", "visual", model.DifficultyBeginner, 3.0, 10)
	second := seedContent(t, db, "Materi dua", "10", "visual", model.DifficultyBeginner, 5.0, 900)

	ai := &fakeGenerator{responses: []string{
		`Tentu! {"recommended_content": [
			{"content_id": ` + itoa(first.ID) + `, "relevance_score": 0.9, "reason": "cocok dengan gaya visual"},
			{"content_id": ` + itoa(second.ID) + `, "relevance_score": 0.4, "reason": "kurang relevan"}
		], "study_strategies": [], "learning_tips": []}`,
	}}
	recommender := newRecommender(db, ai)

	recommended, err := recommender.Generate(context.Background(), student.ID, 10)
	require.NoError(t, err)
	require.Len(t, recommended, 2)

	// AI 打分覆盖热度排序
	assert.Equal(t, first.ID, recommended[0].Content.ID)
	assert.InDelta(t, 0.9, recommended[0].RelevanceScore, 0.001)
	assert.Equal(t, "cocok dengan gaya visual", recommended[0].Reason)
}

func TestGenerateCachesPerLimit(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Rani", "10", "A")
	seedContent(t, db, "Materi", "10", model.TargetStyleAll, model.DifficultyBeginner, 4.0, 50)

	ai := &fakeGenerator{err: errors.New("down")}
	recommender := newRecommender(db, ai)

	_, err := recommender.Generate(context.Background(), student.ID, 5)
	require.NoError(t, err)
	calls := ai.calls

	_, err = recommender.Generate(context.Background(), student.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, calls, ai.calls)

	// 不同 limit 不复用缓存
	_, err = recommender.Generate(context.Background(), student.ID, 3)
	require.NoError(t, err)
	assert.Greater(t, ai.calls, calls)
}

func TestGeneratePreservesInteractionFlags(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Sari", "10", "A")
	content := seedContent(t, db, "Materi", "10", model.TargetStyleAll, model.DifficultyBeginner, 4.0, 50)

	recommender := newRecommender(db, &fakeGenerator{err: errors.New("down")})

	_, err := recommender.Generate(context.Background(), student.ID, 5)
	require.NoError(t, err)
	require.NoError(t, recommender.MarkViewed(student.ID, content.ID))

	// 换 limit 绕过缓存，触发重新生成和 upsert
	_, err = recommender.Generate(context.Background(), student.ID, 4)
	require.NoError(t, err)

	var rec model.Recommendation
	require.NoError(t, db.Where("student_id = ? AND content_id = ?", student.ID, content.ID).First(&rec).Error)
	assert.True(t, rec.IsViewed)
	assert.NotNil(t, rec.ViewedAt)
}

func TestMarkViewedIdempotentAndMissingRowIsNoop(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Tono", "10", "A")

	recommender := newRecommender(db, &fakeGenerator{})

	// 没有对应推荐行也不是错误
	require.NoError(t, recommender.MarkViewed(student.ID, 12345))

	content := seedContent(t, db, "Materi", "10", model.TargetStyleAll, model.DifficultyBeginner, 4.0, 50)
	require.NoError(t, db.Create(&model.Recommendation{
		StudentID: student.ID,
		ContentID: content.ID,
	}).Error)

	require.NoError(t, recommender.MarkViewed(student.ID, content.ID))
	var rec model.Recommendation
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&rec).Error)
	firstViewedAt := rec.ViewedAt
	require.NotNil(t, firstViewedAt)

	require.NoError(t, recommender.MarkViewed(student.ID, content.ID))
	require.NoError(t, db.Where("student_id = ?", student.ID).First(&rec).Error)
	assert.Equal(t, firstViewedAt.Unix(), rec.ViewedAt.Unix())
}

func TestEffectivenessZeroDenominators(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Umar", "10", "A")

	recommender := newRecommender(db, &fakeGenerator{})

	metrics, err := recommender.Effectiveness(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), metrics.TotalRecommendations)
	assert.Equal(t, 0.0, metrics.ViewRate)
	assert.Equal(t, 0.0, metrics.CompletionRate)
	assert.Equal(t, 0.0, metrics.EngagementScore)
}

func TestEffectivenessRates(t *testing.T) {
	db := newTestDB(t)
	student := seedStudent(t, db, "Vina", "10", "A")

	for i := 0; i < 4; i++ {
		content := seedContent(t, db, "Materi", "10", model.TargetStyleAll, model.DifficultyBeginner, 4.0, 50)
		require.NoError(t, db.Create(&model.Recommendation{
			StudentID:   student.ID,
			ContentID:   content.ID,
			IsViewed:    i < 2,
			IsCompleted: i < 1,
		}).Error)
	}

	recommender := newRecommender(db, &fakeGenerator{})

	metrics, err := recommender.Effectiveness(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), metrics.TotalRecommendations)
	assert.InDelta(t, 50, metrics.ViewRate, 0.001)
	assert.InDelta(t, 25, metrics.CompletionRate, 0.001)
}
