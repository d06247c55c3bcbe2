package service

import (
	"context"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/util"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SurveyService 问卷作答流程：领取、暂存、提交。提交成功后同步触发
// 风格分析。
type SurveyService struct {
	SurveyRepo   *repository.SurveyRepository
	ResponseRepo *repository.ResponseRepository
	StudentRepo  *repository.StudentRepository
	Classifier   *ClassifierService

	now func() time.Time
}

func NewSurveyService(
	surveyRepo *repository.SurveyRepository,
	responseRepo *repository.ResponseRepository,
	studentRepo *repository.StudentRepository,
	classifier *ClassifierService,
) *SurveyService {
	return &SurveyService{
		SurveyRepo:   surveyRepo,
		ResponseRepo: responseRepo,
		StudentRepo:  studentRepo,
		Classifier:   classifier,
		now:          time.Now,
	}
}

func (s *SurveyService) SetClock(now func() time.Time) {
	s.now = now
}

// ActiveSurvey 返回指定语言的当前启用问卷
func (s *SurveyService) ActiveSurvey(language string) (*model.LearningStyleSurvey, error) {
	return s.SurveyRepo.FindActiveByLanguage(language)
}

// StartResponse 领取作答。每个 (学生, 问卷) 至多一份作答：已有未完成
// 作答直接返回，已完成则拒绝重新开始。
func (s *SurveyService) StartResponse(surveyID, studentID uint) (*model.SurveyResponse, error) {
	if _, err := s.SurveyRepo.FindByID(surveyID); err != nil {
		return nil, err
	}
	if _, err := s.StudentRepo.FindByID(studentID); err != nil {
		return nil, err
	}

	existing, err := s.ResponseRepo.FindBySurveyAndStudent(surveyID, studentID)
	if err == nil {
		if existing.IsCompleted() {
			return nil, util.ErrResponseCompleted
		}
		return existing, nil
	}
	if !util.IsNotFound(err) {
		return nil, err
	}

	response := &model.SurveyResponse{
		SurveyID:  surveyID,
		StudentID: studentID,
		Answers:   map[string]int{},
		Status:    model.ResponseStarted,
		StartedAt: s.now(),
		SessionID: uuid.NewString(),
	}
	if err := s.ResponseRepo.Create(response); err != nil {
		return nil, err
	}
	return response, nil
}

// SaveProgress 合并增量作答并推进状态到 in_progress。状态只向前走，
// 已完成的作答不可再改。
func (s *SurveyService) SaveProgress(responseID, studentID uint, answers map[string]int) (*model.SurveyResponse, error) {
	response, err := s.ResponseRepo.FindByID(responseID)
	if err != nil {
		return nil, err
	}
	if response.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if response.IsCompleted() {
		return nil, util.ErrResponseCompleted
	}

	if err := s.validateAnswers(response.Survey, answers); err != nil {
		return nil, err
	}

	if response.Answers == nil {
		response.Answers = map[string]int{}
	}
	for id, value := range answers {
		response.Answers[id] = value
	}
	response.Status = model.ResponseInProgress

	if err := s.ResponseRepo.Save(response); err != nil {
		return nil, err
	}
	return response, nil
}

// SubmitResponse 校验全部作答后终态提交，随即做风格分析并返回画像。
// completed 为终态，重复提交拒绝。
func (s *SurveyService) SubmitResponse(ctx context.Context, responseID, studentID uint, answers map[string]int, timeSpentSeconds int) (*model.LearningStyleProfile, error) {
	response, err := s.ResponseRepo.FindByID(responseID)
	if err != nil {
		return nil, err
	}
	if response.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if response.IsCompleted() {
		return nil, util.ErrResponseCompleted
	}
	survey := response.Survey
	if survey == nil {
		return nil, util.ErrSurveyNotFound
	}

	if err := s.validateAnswers(survey, answers); err != nil {
		return nil, err
	}
	if len(answers) < survey.TotalQuestions() {
		return nil, util.NewValidationError("answers",
			fmt.Sprintf("expected %d answers, got %d", survey.TotalQuestions(), len(answers)))
	}

	completedAt := s.now()
	response.Answers = answers
	response.Status = model.ResponseCompleted
	response.CompletedAt = &completedAt
	response.TimeSpentSeconds = timeSpentSeconds

	if err := s.ResponseRepo.Save(response); err != nil {
		return nil, err
	}

	return s.Classifier.AnalyzeResponse(ctx, response.ID)
}

// validateAnswers 作答值必须在 1-5 之间且题目 ID 属于该问卷
func (s *SurveyService) validateAnswers(survey *model.LearningStyleSurvey, answers map[string]int) error {
	if survey == nil {
		return util.ErrSurveyNotFound
	}
	for id, value := range answers {
		if _, ok := survey.QuestionByID(id); !ok {
			return util.NewValidationError("answers", fmt.Sprintf("unknown question id %q", id))
		}
		if value < 1 || value > model.MaxLikertValue {
			return util.NewValidationError("answers",
				fmt.Sprintf("answer for %q must be between 1 and %d, got %d", id, model.MaxLikertValue, value))
		}
	}
	return nil
}
