package service

import (
	"context"
	"edulytics_backend/internal/model"
	"edulytics_backend/pkg/cache"
	"edulytics_backend/pkg/database"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// fakeGenerator 脚本化的 TextGenerator，按序返回预置响应
type fakeGenerator struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	idx := f.calls - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func newMemoryCache() cache.Cache {
	return cache.NewMemoryCache()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// seedSurvey 六题 VAK 问卷，每个维度两题
func seedSurvey(t *testing.T, db *gorm.DB) *model.LearningStyleSurvey {
	t.Helper()

	survey := &model.LearningStyleSurvey{
		Title:    "Kuesioner Gaya Belajar",
		Language: "id",
		IsActive: true,
		Questions: []model.SurveyQuestion{
			{ID: "q1", Text: "Saya belajar dari diagram", Category: model.StyleVisual},
			{ID: "q2", Text: "Saya suka peta konsep", Category: model.StyleVisual},
			{ID: "q3", Text: "Saya belajar dari penjelasan lisan", Category: model.StyleAuditory},
			{ID: "q4", Text: "Saya suka diskusi kelompok", Category: model.StyleAuditory},
			{ID: "q5", Text: "Saya belajar sambil praktik", Category: model.StyleKinesthetic},
			{ID: "q6", Text: "Saya suka eksperimen langsung", Category: model.StyleKinesthetic},
		},
		ScoringRules: map[string]model.ScoringRule{
			string(model.StyleVisual):      {QuestionIDs: []string{"q1", "q2"}, Weight: 1, MaxRawScore: 10},
			string(model.StyleAuditory):    {QuestionIDs: []string{"q3", "q4"}, Weight: 1, MaxRawScore: 10},
			string(model.StyleKinesthetic): {QuestionIDs: []string{"q5", "q6"}, Weight: 1, MaxRawScore: 10},
		},
	}
	require.NoError(t, db.Create(survey).Error)
	return survey
}

func seedStudent(t *testing.T, db *gorm.DB, name, grade, class string) *model.Student {
	t.Helper()

	student := &model.Student{
		Name:       name,
		Email:      name + "@example.com",
		GradeLevel: grade,
		Class:      class,
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

func seedCompletedResponse(t *testing.T, db *gorm.DB, survey *model.LearningStyleSurvey, studentID uint, answers map[string]int) *model.SurveyResponse {
	t.Helper()

	completedAt := time.Now()
	response := &model.SurveyResponse{
		SurveyID:    survey.ID,
		StudentID:   studentID,
		Answers:     answers,
		Status:      model.ResponseCompleted,
		StartedAt:   completedAt.Add(-10 * time.Minute),
		CompletedAt: &completedAt,
	}
	require.NoError(t, db.Create(response).Error)
	return response
}

func seedContent(t *testing.T, db *gorm.DB, title, grade, style string, difficulty model.DifficultyLevel, rating float64, views int) *model.Content {
	t.Helper()

	content := &model.Content{
		Title:               title,
		Subject:             "Matematika",
		GradeLevel:          grade,
		TargetLearningStyle: style,
		DifficultyLevel:     difficulty,
		Rating:              rating,
		ViewsCount:          views,
		IsActive:            true,
	}
	require.NoError(t, db.Create(content).Error)
	return content
}
