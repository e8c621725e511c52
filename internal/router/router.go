package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/handler"
	"github.com/stemsi/exstem-quiz/internal/i18n"
	"github.com/stemsi/exstem-quiz/internal/middleware"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/response"
	"github.com/stemsi/exstem-quiz/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Quiz      *handler.QuizHandler
	Attempt   *handler.AttemptHandler
	Reference *handler.ReferenceHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	tr *i18n.Translator,
	limiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "Accept-Language", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Language"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())
	router.Use(middleware.Locale(tr))

	router.GET("/health", handlers.System.Health)

	api := router.Group("/api/v1")

	// ─── 1. Teacher Group (quiz authoring) ─────────────────────────────
	teacherAPI := api.Group("/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/me", handlers.Auth.Me)

		quizzes := teacherAPI.Group("/quizzes")
		quizzes.Use(middleware.NoStore())
		{
			quizzes.GET("", middleware.RequirePermission(model.PermissionQuizzesRead), handlers.Quiz.ListQuizzes)
			quizzes.POST("", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Quiz.CreateQuiz)
			quizzes.GET("/:quiz_id", middleware.RequirePermission(model.PermissionQuizzesRead), handlers.Quiz.GetQuiz)
			quizzes.PUT("/:quiz_id", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Quiz.UpdateQuiz)
			quizzes.DELETE("/:quiz_id", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Quiz.DeleteQuiz)
			quizzes.PATCH("/:quiz_id/status", middleware.RequirePermission(model.PermissionQuizzesPublish), handlers.Quiz.UpdateQuizStatus)
			quizzes.GET("/:quiz_id/results", middleware.RequirePermission(model.PermissionResultsRead), handlers.Quiz.ListQuizResults)
		}

		refs := teacherAPI.Group("/references/:kind")
		{
			refs.GET("",
				middleware.RequireAnyPermission(model.PermissionQuizzesRead, model.PermissionQuizzesWrite),
				middleware.CacheControl(60),
				handlers.Reference.ListReferences)
			refs.POST("", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Reference.CreateReference)
			refs.PUT("/:id", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Reference.RenameReference)
			refs.DELETE("/:id", middleware.RequirePermission(model.PermissionQuizzesWrite), handlers.Reference.DeleteReference)
		}
	}

	// ─── 2. Student Group (attempts) ───────────────────────────────────
	studentAPI := api.Group("/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/me", handlers.Auth.Me)
		studentAPI.GET("/quizzes", middleware.CacheControl(15), handlers.Attempt.ListActiveQuizzes)

		attempt := studentAPI.Group("/quizzes/:quiz_id/attempt")
		attempt.Use(middleware.NoStore(), limiter.Middleware())
		{
			attempt.POST("", handlers.Attempt.StartAttempt)
			attempt.PUT("/answers", handlers.Attempt.RecordAnswer)
			attempt.POST("/submit", handlers.Attempt.SubmitAttempt)
			attempt.POST("/reset", handlers.Attempt.ResetAttempt)
		}
	}

	return router
}
