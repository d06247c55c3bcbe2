package repository

import (
	"edulytics_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecommendationRepository struct {
	DB *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{DB: db}
}

// DeleteOlderThan 清理超过保留期的历史推荐（硬删除，便于重新生成）
func (r *RecommendationRepository) DeleteOlderThan(studentID uint, cutoff time.Time) error {
	return r.DB.Unscoped().
		Where("student_id = ? AND created_at < ?", studentID, cutoff).
		Delete(&model.Recommendation{}).Error
}

// Upsert 按 (student_id, content_id) 写入推荐。已有记录只刷新评分、
// 理由和算法版本，保留 is_viewed / is_completed 等互动状态。
func (r *RecommendationRepository) Upsert(rec *model.Recommendation) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"recommendation_type", "relevance_score", "reason", "algorithm_version", "updated_at",
		}),
	}).Create(rec).Error
}

// ForStudent 返回学生当前的推荐列表，按相关度降序，预加载内容
func (r *RecommendationRepository) ForStudent(studentID uint, limit int) ([]model.Recommendation, error) {
	var recs []model.Recommendation
	err := r.DB.Preload("Content").
		Where("student_id = ?", studentID).
		Order("relevance_score DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// MarkViewed 标记推荐已被查看，幂等：首次标记时记录时间
func (r *RecommendationRepository) MarkViewed(studentID, contentID uint, at time.Time) error {
	return r.DB.Model(&model.Recommendation{}).
		Where("student_id = ? AND content_id = ? AND is_viewed = ?", studentID, contentID, false).
		Updates(map[string]interface{}{"is_viewed": true, "viewed_at": at}).Error
}

// MarkCompleted 标记推荐已完成，同时视为已查看
func (r *RecommendationRepository) MarkCompleted(studentID, contentID uint, at time.Time) error {
	return r.DB.Model(&model.Recommendation{}).
		Where("student_id = ? AND content_id = ?", studentID, contentID).
		Updates(map[string]interface{}{
			"is_completed": true,
			"is_viewed":    true,
			"viewed_at":    gorm.Expr("COALESCE(viewed_at, ?)", at),
		}).Error
}

// RecommendationCounts 效果统计的原始计数
type RecommendationCounts struct {
	Total     int64
	Viewed    int64
	Completed int64
}

func (r *RecommendationRepository) Counts(studentID uint) (RecommendationCounts, error) {
	var counts RecommendationCounts
	base := r.DB.Model(&model.Recommendation{}).Where("student_id = ?", studentID)
	if err := base.Session(&gorm.Session{}).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_viewed = ?", true).Count(&counts.Viewed).Error; err != nil {
		return counts, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_completed = ?", true).Count(&counts.Completed).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// CountCreatedSince 统计保留期内已生成的推荐数，决定是否需要重新生成
func (r *RecommendationRepository) CountCreatedSince(studentID uint, since time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Recommendation{}).
		Where("student_id = ? AND created_at >= ?", studentID, since).
		Count(&count).Error
	return count, err
}
