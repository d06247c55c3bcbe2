package repository

import (
	"edulytics_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(activity *model.LearningActivity) error {
	return r.DB.Create(activity).Error
}

// InRange 返回学生在 [from, to) 区间内的全部学习活动
func (r *ActivityRepository) InRange(studentID uint, from, to time.Time) ([]model.LearningActivity, error) {
	var activities []model.LearningActivity
	err := r.DB.Where("student_id = ? AND occurred_at >= ? AND occurred_at < ?", studentID, from, to).
		Order("occurred_at ASC").
		Find(&activities).Error
	return activities, err
}

// CompletedContentIDs 学生已完成内容的 ID 集合，用于在推荐候选中剔除
func (r *ActivityRepository) CompletedContentIDs(studentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LearningActivity{}).
		Where("student_id = ? AND activity_type = ?", studentID, model.ActivityComplete).
		Distinct().
		Pluck("content_id", &ids).Error
	return ids, err
}

// RecentTopics 自 since 起访问内容的主题列表，按最后一次访问时间
// 倒序去重
func (r *ActivityRepository) RecentTopics(studentID uint, since time.Time, limit int) ([]string, error) {
	var topics []string
	err := r.DB.Model(&model.LearningActivity{}).
		Select("contents.topic").
		Joins("JOIN contents ON contents.id = learning_activities.content_id").
		Where("learning_activities.student_id = ? AND learning_activities.occurred_at >= ?", studentID, since).
		Where("contents.topic <> ''").
		Group("contents.topic").
		Order("MAX(learning_activities.occurred_at) DESC").
		Limit(limit).
		Pluck("contents.topic", &topics).Error
	return topics, err
}

// CountSince 统计学生自 since 起的活动数，用于判断无数据时跳过重算
func (r *ActivityRepository) CountSince(studentID uint, since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LearningActivity{}).
		Where("student_id = ? AND occurred_at >= ?", studentID, since).
		Count(&count).Error
	return count, err
}
