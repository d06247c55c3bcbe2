// 手动触发学习指标重算脚本
//
// 核心不做进程内调度，日指标与周汇总由外部调度器逐个学生触发。
// 此脚本供 cron 或手动执行，重算指定日期（默认昨天）的日指标，
// 周一时顺带滚上一周的周汇总。
//
// 用法: go run scripts/recompute_analytics.go [-date 2026-08-30]

package main

import (
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/model"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/service"
	"edulytics_backend/pkg/database"
	"edulytics_backend/pkg/logger"
	"flag"
	"log"
	"time"
)

func main() {
	dateFlag := flag.String("date", "", "重算日期 YYYY-MM-DD，默认昨天")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	date := time.Now().AddDate(0, 0, -1)
	if *dateFlag != "" {
		parsed, err := time.Parse(model.DateString, *dateFlag)
		if err != nil {
			log.Fatalf("日期格式错误: %v", err)
		}
		date = parsed
	}

	studentRepo := repository.NewStudentRepository(db)
	analytics := service.NewAnalyticsService(
		repository.NewActivityRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewAnalyticRepository(db),
		repository.NewProfileRepository(db),
		studentRepo,
	)

	ids, err := studentRepo.AllIDs()
	if err != nil {
		log.Fatalf("读取学生列表失败: %v", err)
	}

	log.Printf("开始重算 %d 名学生 %s 的日指标...", len(ids), model.FormatDate(date))
	failures := 0
	for _, id := range ids {
		if err := analytics.CalculateDailyAnalytics(id, date); err != nil {
			log.Printf("学生 %d 日指标重算失败: %v", id, err)
			failures++
			continue
		}
		if date.Weekday() == time.Monday {
			weekStart := date.AddDate(0, 0, -7)
			if err := analytics.CalculateWeeklyAnalytics(id, weekStart); err != nil {
				log.Printf("学生 %d 周汇总失败: %v", id, err)
				failures++
			}
		}
	}
	log.Printf("完成，失败 %d 条", failures)
}
