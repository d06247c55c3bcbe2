package repository

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func (r *SurveyRepository) FindByID(id uint) (*model.LearningStyleSurvey, error) {
	var survey model.LearningStyleSurvey
	err := r.DB.First(&survey, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// FindActiveByLanguage 返回指定语言最新的启用问卷
func (r *SurveyRepository) FindActiveByLanguage(language string) (*model.LearningStyleSurvey, error) {
	var survey model.LearningStyleSurvey
	err := r.DB.Where("is_active = ? AND language = ?", true, language).
		Order("created_at DESC").
		First(&survey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSurveyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) Create(response *model.SurveyResponse) error {
	return r.DB.Create(response).Error
}

func (r *ResponseRepository) Save(response *model.SurveyResponse) error {
	return r.DB.Save(response).Error
}

func (r *ResponseRepository) FindByID(id uint) (*model.SurveyResponse, error) {
	var response model.SurveyResponse
	err := r.DB.Preload("Survey").Preload("Student").First(&response, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// FindBySurveyAndStudent 每个 (survey, student) 至多一条响应
func (r *ResponseRepository) FindBySurveyAndStudent(surveyID, studentID uint) (*model.SurveyResponse, error) {
	var response model.SurveyResponse
	err := r.DB.Where("survey_id = ? AND student_id = ?", surveyID, studentID).
		First(&response).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResponseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateCalculatedScores 把归一化得分快照写回响应。必须走结构体
// Updates，单列 Update 不经过 serializer:json，结构体值会直接下推给
// 驱动报错。
func (r *ResponseRepository) UpdateCalculatedScores(id uint, scores model.CategoryScores) error {
	return r.DB.Model(&model.SurveyResponse{BaseModel: model.BaseModel{ID: id}}).
		Updates(&model.SurveyResponse{CalculatedScores: &scores}).Error
}
