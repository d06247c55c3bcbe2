package repository

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) FindByID(id uint) (*model.Content, error) {
	var content model.Content
	err := r.DB.First(&content, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// CandidateFilter 推荐候选内容的检索条件。可选条件为 nil 时不参与过滤。
type CandidateFilter struct {
	GradeLevel string
	Style      *model.Style
	Difficulty *model.DifficultyLevel
	Subjects   []string
	ExcludeIDs []uint
	Limit      int
}

// Candidates 按评分和热度降序返回符合条件的启用内容
func (r *ContentRepository) Candidates(filter CandidateFilter) ([]model.Content, error) {
	query := r.DB.Where("is_active = ?", true)

	if filter.GradeLevel != "" {
		query = query.Where("grade_level = ?", filter.GradeLevel)
	}
	if filter.Style != nil {
		query = query.Where("target_learning_style = ? OR target_learning_style = ?",
			string(*filter.Style), model.TargetStyleAll)
	}
	if filter.Difficulty != nil {
		query = query.Where("difficulty_level = ?", *filter.Difficulty)
	}
	if len(filter.Subjects) > 0 {
		query = query.Where("subject IN ?", filter.Subjects)
	}
	if len(filter.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filter.ExcludeIDs)
	}

	var contents []model.Content
	err := query.
		Order("rating DESC").
		Order("views_count DESC").
		Limit(filter.Limit).
		Find(&contents).Error
	return contents, err
}

// PopularForGrade 年级内最热门的启用内容，作为推荐兜底
func (r *ContentRepository) PopularForGrade(gradeLevel string, limit int) ([]model.Content, error) {
	var contents []model.Content
	err := r.DB.Where("is_active = ? AND grade_level = ?", true, gradeLevel).
		Order("views_count DESC").
		Order("rating DESC").
		Limit(limit).
		Find(&contents).Error
	return contents, err
}
