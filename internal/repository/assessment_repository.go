package repository

import (
	"edulytics_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(assessment *model.Assessment) error {
	return r.DB.Create(assessment).Error
}

// InRange 返回学生在 [from, to) 区间内的测评记录
func (r *AssessmentRepository) InRange(studentID uint, from, to time.Time) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.DB.Where("student_id = ? AND taken_at >= ? AND taken_at < ?", studentID, from, to).
		Order("taken_at ASC").
		Find(&assessments).Error
	return assessments, err
}

// AverageSince 自 since 起的平均得分率。无记录时返回 (0, 0, nil)。
func (r *AssessmentRepository) AverageSince(studentID uint, since time.Time) (avg float64, count int64, err error) {
	row := struct {
		Avg   float64
		Count int64
	}{}
	err = r.DB.Model(&model.Assessment{}).
		Select("COALESCE(AVG(percentage), 0) AS avg, COUNT(*) AS count").
		Where("student_id = ? AND taken_at >= ?", studentID, since).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

// RecentBefore 截止时刻之前按时间倒序的最近 limit 条测评
func (r *AssessmentRepository) RecentBefore(studentID uint, before time.Time, limit int) ([]model.Assessment, error) {
	var assessments []model.Assessment
	err := r.DB.Where("student_id = ? AND taken_at < ?", studentID, before).
		Order("taken_at DESC").
		Limit(limit).
		Find(&assessments).Error
	return assessments, err
}

type subjectAverage struct {
	Subject string
	Avg     float64
}

// WeakSubjects 自 since 起平均得分率低于 threshold 的学科，按得分升序
func (r *AssessmentRepository) WeakSubjects(studentID uint, since time.Time, threshold float64, limit int) ([]string, error) {
	var rows []subjectAverage
	err := r.DB.Model(&model.Assessment{}).
		Select("subject, AVG(percentage) AS avg").
		Where("student_id = ? AND taken_at >= ?", studentID, since).
		Group("subject").
		Having("AVG(percentage) < ?", threshold).
		Order("avg ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.Subject)
	}
	return subjects, nil
}

// StrongSubjects 自 since 起平均得分率不低于 threshold 的学科，按得分降序
func (r *AssessmentRepository) StrongSubjects(studentID uint, since time.Time, threshold float64, limit int) ([]string, error) {
	var rows []subjectAverage
	err := r.DB.Model(&model.Assessment{}).
		Select("subject, AVG(percentage) AS avg").
		Where("student_id = ? AND taken_at >= ?", studentID, since).
		Group("subject").
		Having("AVG(percentage) >= ?", threshold).
		Order("avg DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.Subject)
	}
	return subjects, nil
}
