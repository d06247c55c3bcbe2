package app

import (
	"context"
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/controller"
	"edulytics_backend/internal/repository"
	"edulytics_backend/internal/service"
	"edulytics_backend/pkg/cache"
	"edulytics_backend/pkg/database"
	"edulytics_backend/pkg/logger"
	"edulytics_backend/pkg/monitoring"
	"edulytics_backend/pkg/security"
	"edulytics_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	student        *repository.StudentRepository
	survey         *repository.SurveyRepository
	response       *repository.ResponseRepository
	profile        *repository.ProfileRepository
	content        *repository.ContentRepository
	activity       *repository.ActivityRepository
	assessment     *repository.AssessmentRepository
	recommendation *repository.RecommendationRepository
	analytic       *repository.AnalyticRepository
}

type services struct {
	ai             *service.AIService
	scoring        *service.ScoringService
	classifier     *service.ClassifierService
	survey         *service.SurveyService
	recommendation *service.RecommendationService
	analytics      *service.AnalyticsService
}

type controllers struct {
	survey         *controller.SurveyController
	profile        *controller.ProfileController
	recommendation *controller.RecommendationController
	analytics      *controller.AnalyticsController
	health         *controller.HealthController
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, repos, db)

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edulytics", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		student:        repository.NewStudentRepository(db),
		survey:         repository.NewSurveyRepository(db),
		response:       repository.NewResponseRepository(db),
		profile:        repository.NewProfileRepository(db),
		content:        repository.NewContentRepository(db),
		activity:       repository.NewActivityRepository(db),
		assessment:     repository.NewAssessmentRepository(db),
		recommendation: repository.NewRecommendationRepository(db),
		analytic:       repository.NewAnalyticRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	resultCache := cache.NewRedisCache(rdb)

	s.ai = service.NewAIService(cfg.AI)
	s.scoring = service.NewScoringService()
	s.classifier = service.NewClassifierService(
		repos.response,
		repos.profile,
		repos.student,
		s.scoring,
		s.ai,
		resultCache,
		cfg.Analytics,
	)
	s.survey = service.NewSurveyService(repos.survey, repos.response, repos.student, s.classifier)
	s.recommendation = service.NewRecommendationService(
		repos.student,
		repos.profile,
		repos.content,
		repos.activity,
		repos.assessment,
		repos.recommendation,
		s.ai,
		resultCache,
		cfg.Analytics,
	)
	s.analytics = service.NewAnalyticsService(
		repos.activity,
		repos.assessment,
		repos.analytic,
		repos.profile,
		repos.student,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		survey:         controller.NewSurveyController(s.survey),
		profile:        controller.NewProfileController(s.classifier, repos.profile),
		recommendation: controller.NewRecommendationController(s.recommendation),
		analytics:      controller.NewAnalyticsController(s.analytics, repos.student),
		health:         controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
