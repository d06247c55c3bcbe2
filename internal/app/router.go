package app

import (
	"edulytics_backend/internal/config"
	"edulytics_backend/internal/middleware"
	"edulytics_backend/internal/model"
	"edulytics_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Check)
		public.GET("/surveys/active", c.survey.GetActive)
	}

	// 学生接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.POST("/surveys/:id/responses", c.survey.StartResponse)
		authGroup.PUT("/surveys/responses/:id", c.survey.SaveProgress)
		authGroup.POST("/surveys/responses/:id/submit", c.survey.SubmitResponse)

		authGroup.GET("/learning-style/profile", c.profile.GetProfile)
		authGroup.GET("/learning-style/evolution", c.profile.GetEvolution)
		authGroup.GET("/learning-style/peer-comparison", c.profile.GetPeerComparison)

		authGroup.GET("/recommendations", c.recommendation.GetRecommendations)
		authGroup.POST("/recommendations/:contentId/viewed", c.recommendation.MarkViewed)
		authGroup.POST("/recommendations/:contentId/completed", c.recommendation.MarkCompleted)
		authGroup.GET("/recommendations/effectiveness", c.recommendation.GetEffectiveness)

		authGroup.GET("/analytics/summary", c.analytics.GetSummary)
		authGroup.POST("/analytics/recalculate", c.analytics.Recalculate)

		// 教师接口
		authGroup.GET("/analytics/class",
			middleware.RoleMiddleware(model.RoleTeacher),
			c.analytics.GetClassAnalytics)
	}
}
