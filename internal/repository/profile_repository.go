package repository

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/util"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Current 返回学生当前生效的学习风格档案
func (r *ProfileRepository) Current(studentID uint) (*model.LearningStyleProfile, error) {
	var profile model.LearningStyleProfile
	err := r.DB.Where("student_id = ? AND is_current = ?", studentID, true).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// History 按分析时间升序返回全部历史档案
func (r *ProfileRepository) History(studentID uint) ([]model.LearningStyleProfile, error) {
	var profiles []model.LearningStyleProfile
	err := r.DB.Where("student_id = ?", studentID).
		Order("analysis_date ASC").
		Find(&profiles).Error
	return profiles, err
}

// UpsertCurrent 以 (student_id, survey_response_id) 为自然键写入档案，
// 并保证该学生只有一条 is_current 记录。并发写入会收敛到同一行。
func (r *ProfileRepository) UpsertCurrent(profile *model.LearningStyleProfile) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LearningStyleProfile{}).
			Where("student_id = ? AND is_current = ?", profile.StudentID, true).
			Update("is_current", false).Error; err != nil {
			return err
		}

		profile.IsCurrent = true
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "survey_response_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"visual_score", "auditory_score", "kinesthetic_score",
				"dominant_style", "ai_confidence_score", "survey_data",
				"analysis_date", "is_current", "updated_at",
			}),
		}).Create(profile).Error
	})
}

// CurrentByGradeAndClass 返回同年级同班级学生的当前档案
func (r *ProfileRepository) CurrentByGradeAndClass(gradeLevel, class string) ([]model.LearningStyleProfile, error) {
	var profiles []model.LearningStyleProfile
	err := r.DB.
		Joins("JOIN students ON students.id = learning_style_profiles.student_id").
		Where("students.grade_level = ? AND students.class = ?", gradeLevel, class).
		Where("learning_style_profiles.is_current = ?", true).
		Find(&profiles).Error
	return profiles, err
}

// CurrentByStudentIDs 返回一组学生的当前档案
func (r *ProfileRepository) CurrentByStudentIDs(studentIDs []uint) ([]model.LearningStyleProfile, error) {
	var profiles []model.LearningStyleProfile
	if len(studentIDs) == 0 {
		return profiles, nil
	}
	err := r.DB.Where("student_id IN ? AND is_current = ?", studentIDs, true).
		Find(&profiles).Error
	return profiles, err
}
