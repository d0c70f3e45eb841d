package app

import (
	"quizhub_backend/docs"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	// 公共路由(无需登录)
	{
		api.POST("/auth/register", c.auth.Register)
		api.POST("/auth/login", c.auth.Login)
		api.POST("/auth/logout", c.auth.Logout)

		api.GET("/quizzes/active", c.quiz.ListActive)
		api.GET("/quizzes/by-code/:code", c.quiz.GetByCode)
		api.GET("/quizzes/verify/:code", c.quiz.Verify)

		// 会话ID本身即凭证，更新与清理不经过登录态
		api.PATCH("/quiz-sessions/update", c.session.Update)
		api.POST("/quiz-sessions/cleanup", c.session.Cleanup)
	}

	// 需要登录的通用路由
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/auth/me", c.auth.GetCurrentUser)
	}

	// 学生侧路由
	studentGroup := api.Group("")
	studentGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Student))
	{
		studentGroup.POST("/quiz-sessions/join", c.session.Join)
		studentGroup.POST("/quizzes/submit", c.submission.Submit)
		studentGroup.GET("/quizzes/results/:id", c.submission.StudentResult)
		studentGroup.GET("/student/submissions", c.submission.MySubmissions)
	}

	// 教师侧路由
	teacherGroup := api.Group("")
	teacherGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Teacher))
	{
		teacherGroup.POST("/quizzes", c.quiz.Create)
		teacherGroup.GET("/quizzes", c.quiz.ListMine)
		teacherGroup.GET("/quizzes/:id", c.quiz.Get)
		teacherGroup.PATCH("/quizzes/:id/activate", c.quiz.Activate)
		teacherGroup.PATCH("/quizzes/:id/end", c.quiz.End)
		teacherGroup.GET("/quizzes/:id/participants", c.session.Participants)
		teacherGroup.GET("/quizzes/:id/results", c.submission.TeacherResults)
	}
}
