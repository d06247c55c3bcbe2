package service

import (
	"context"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/util"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSurveyService(db *gorm.DB) *SurveyService {
	classifier := newClassifier(db, &fakeGenerator{err: errors.New("down")})
	return NewSurveyService(
		repository.NewSurveyRepository(db),
		repository.NewResponseRepository(db),
		repository.NewStudentRepository(db),
		classifier,
	)
}

func TestStartResponseFindOrCreate(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Fitri", "10", "A")
	svc := newSurveyService(db)

	first, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ResponseStarted, first.Status)
	assert.NotEmpty(t, first.SessionID)

	// 同一 (学生, 问卷) 再次领取返回已有作答
	second, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestStartResponseRejectsCompletedRetake(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Gilang", "10", "A")
	seedCompletedResponse(t, db, survey, student.ID, map[string]int{"q1": 3})

	svc := newSurveyService(db)
	_, err := svc.StartResponse(survey.ID, student.ID)
	assert.ErrorIs(t, err, util.ErrResponseCompleted)
}

func TestSaveProgressMergesAnswers(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Hana", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.SaveProgress(response.ID, student.ID, map[string]int{"q1": 4, "q2": 3})
	require.NoError(t, err)
	updated, err := svc.SaveProgress(response.ID, student.ID, map[string]int{"q2": 5, "q3": 2})
	require.NoError(t, err)

	assert.Equal(t, model.ResponseInProgress, updated.Status)
	assert.Equal(t, map[string]int{"q1": 4, "q2": 5, "q3": 2}, updated.Answers)
}

func TestSaveProgressRejectsForeignResponse(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	owner := seedStudent(t, db, "Ika", "10", "A")
	other := seedStudent(t, db, "Jaya", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, owner.ID)
	require.NoError(t, err)

	_, err = svc.SaveProgress(response.ID, other.ID, map[string]int{"q1": 3})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestSubmitResponseValidatesAnswerRange(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Kurnia", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)

	answers := map[string]int{"q1": 6, "q2": 3, "q3": 3, "q4": 3, "q5": 3, "q6": 3}
	_, err = svc.SubmitResponse(context.Background(), response.ID, student.ID, answers, 300)

	var vErr *util.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSubmitResponseRejectsUnknownQuestion(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Lia", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)

	answers := map[string]int{"q1": 3, "q2": 3, "q3": 3, "q4": 3, "q5": 3, "q99": 3}
	_, err = svc.SubmitResponse(context.Background(), response.ID, student.ID, answers, 300)

	var vErr *util.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSubmitResponseRequiresAllAnswers(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Mira", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.SubmitResponse(context.Background(), response.ID, student.ID, map[string]int{"q1": 3}, 300)

	var vErr *util.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestSubmitResponseCompletesAndAnalyzes(t *testing.T) {
	db := newTestDB(t)
	survey := seedSurvey(t, db)
	student := seedStudent(t, db, "Nadia", "10", "A")
	svc := newSurveyService(db)

	response, err := svc.StartResponse(survey.ID, student.ID)
	require.NoError(t, err)

	answers := map[string]int{"q1": 5, "q2": 5, "q3": 1, "q4": 1, "q5": 3, "q6": 3}
	profile, err := svc.SubmitResponse(context.Background(), response.ID, student.ID, answers, 420)
	require.NoError(t, err)
	assert.Equal(t, model.StyleVisual, profile.DominantStyle)

	var saved model.SurveyResponse
	require.NoError(t, db.First(&saved, response.ID).Error)
	assert.Equal(t, model.ResponseCompleted, saved.Status)
	assert.NotNil(t, saved.CompletedAt)
	assert.Equal(t, 420, saved.TimeSpentSeconds)

	// completed 为终态
	_, err = svc.SubmitResponse(context.Background(), response.ID, student.ID, answers, 420)
	assert.ErrorIs(t, err, util.ErrResponseCompleted)
}
