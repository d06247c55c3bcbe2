package repository

import (
	"edulytics_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalyticRepository struct {
	DB *gorm.DB
}

func NewAnalyticRepository(db *gorm.DB) *AnalyticRepository {
	return &AnalyticRepository{DB: db}
}

// Upsert 按 (student_id, metric_type, calculation_date, aggregation_period)
// 写入指标样本，重算覆盖旧值
func (r *AnalyticRepository) Upsert(analytic *model.LearningAnalytic) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "student_id"},
			{Name: "metric_type"},
			{Name: "calculation_date"},
			{Name: "aggregation_period"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"metric_value", "context", "updated_at"}),
	}).Create(analytic).Error
}

func (r *AnalyticRepository) UpsertBatch(analytics []model.LearningAnalytic) error {
	for i := range analytics {
		if err := r.Upsert(&analytics[i]); err != nil {
			return err
		}
	}
	return nil
}

// InRange 返回学生在日期区间（闭区间，ISO 日期字符串）内指定周期的样本
func (r *AnalyticRepository) InRange(studentID uint, period model.AggregationPeriod, fromDate, toDate string) ([]model.LearningAnalytic, error) {
	var analytics []model.LearningAnalytic
	err := r.DB.Where(
		"student_id = ? AND aggregation_period = ? AND calculation_date >= ? AND calculation_date <= ?",
		studentID, period, fromDate, toDate).
		Order("calculation_date ASC").
		Find(&analytics).Error
	return analytics, err
}

// MetricInRange 同 InRange，但只取单一指标
func (r *AnalyticRepository) MetricInRange(studentID uint, metric model.MetricType, period model.AggregationPeriod, fromDate, toDate string) ([]model.LearningAnalytic, error) {
	var analytics []model.LearningAnalytic
	err := r.DB.Where(
		"student_id = ? AND metric_type = ? AND aggregation_period = ? AND calculation_date >= ? AND calculation_date <= ?",
		studentID, metric, period, fromDate, toDate).
		Order("calculation_date ASC").
		Find(&analytics).Error
	return analytics, err
}
