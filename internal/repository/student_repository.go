package repository

import (
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) FindByIDs(ids []uint) ([]model.Student, error) {
	var students []model.Student
	if len(ids) == 0 {
		return students, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&students).Error
	return students, err
}

func (r *StudentRepository) FindByGradeAndClass(gradeLevel, class string) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("grade_level = ? AND class = ?", gradeLevel, class).Find(&students).Error
	return students, err
}

func (r *StudentRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Student{}).Pluck("id", &ids).Error
	return ids, err
}
