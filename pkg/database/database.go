package database

import (
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedDefaultSurvey(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate 同步表结构，测试里用于 sqlite 内存库
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Student{},
		&model.LearningStyleSurvey{},
		&model.SurveyResponse{},
		&model.LearningStyleProfile{},
		&model.Content{},
		&model.LearningActivity{},
		&model.Assessment{},
		&model.Recommendation{},
		&model.LearningAnalytic{},
	)
}

// seedDefaultSurvey 库为空时插入默认 VAK 学习风格问卷
func seedDefaultSurvey(db *gorm.DB) error {
	var count int64
	db.Model(&model.LearningStyleSurvey{}).Count(&count)
	if count > 0 {
		return nil
	}

	questions := []model.SurveyQuestion{
		{ID: "q1", Text: "Saya lebih mudah memahami materi lewat diagram dan gambar.", Category: model.StyleVisual},
		{ID: "q2", Text: "Saya suka membuat catatan berwarna dan peta konsep.", Category: model.StyleVisual},
		{ID: "q3", Text: "Saya mengingat wajah lebih baik daripada nama.", Category: model.StyleVisual},
		{ID: "q4", Text: "Saya lebih paham ketika guru menjelaskan secara lisan.", Category: model.StyleAuditory},
		{ID: "q5", Text: "Saya suka berdiskusi untuk memahami pelajaran.", Category: model.StyleAuditory},
		{ID: "q6", Text: "Saya mengingat lagu atau irama dengan mudah.", Category: model.StyleAuditory},
		{ID: "q7", Text: "Saya belajar paling baik dengan praktik langsung.", Category: model.StyleKinesthetic},
		{ID: "q8", Text: "Saya sulit duduk diam dalam waktu lama saat belajar.", Category: model.StyleKinesthetic},
		{ID: "q9", Text: "Saya suka eksperimen dan kegiatan lapangan.", Category: model.StyleKinesthetic},
	}

	rules := map[string]model.ScoringRule{
		string(model.StyleVisual):      {QuestionIDs: []string{"q1", "q2", "q3"}, Weight: 1.0, MaxRawScore: 15},
		string(model.StyleAuditory):    {QuestionIDs: []string{"q4", "q5", "q6"}, Weight: 1.0, MaxRawScore: 15},
		string(model.StyleKinesthetic): {QuestionIDs: []string{"q7", "q8", "q9"}, Weight: 1.0, MaxRawScore: 15},
	}

	survey := &model.LearningStyleSurvey{
		Title:        "Kuesioner Gaya Belajar VAK",
		Description:  "Survei untuk mengenali gaya belajar visual, auditori, dan kinestetik.",
		Version:      "1.0",
		Language:     "id",
		Questions:    questions,
		ScoringRules: rules,
		IsActive:     true,
	}

	return db.Create(survey).Error
}
