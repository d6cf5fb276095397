package app

import (
	"lingua_edu_backend/docs"
	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/middleware"
	"lingua_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 积分与进度，身份由网关签发的 Token 确定
	gamification := router.Group("/api/gamification")
	gamification.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		gamification.POST("/award", c.gamification.AwardPoints)
		gamification.GET("/awards", c.gamification.ListAwards)
		gamification.GET("/activity-types", c.gamification.ListActivityTypes)
		gamification.GET("/progress", c.gamification.GetMyProgress)
		gamification.GET("/progress/:learnerId", c.gamification.GetProgress)
	}
}
