package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	"github.com/yukikurage/goal-boards-api/internal/middleware"
	"github.com/yukikurage/goal-boards-api/internal/services"
)

// Services groups the use cases served over HTTP.
type Services struct {
	Auth       *services.AuthService
	Boards     *services.BoardService
	Categories *services.CategoryService
	Goals      *services.GoalService
	Comments   *services.CommentService
	BotUsers   *services.BotUserService
	Drafter    services.GoalDrafter
}

// NewRouter wires middleware and routes. db is only used by the health check.
func NewRouter(svc Services, sessionStore sessions.Store, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	authHandler := NewAuthHandler(svc.Auth)
	boardHandler := NewBoardHandler(svc.Boards)
	categoryHandler := NewCategoryHandler(svc.Categories)
	goalHandler := NewGoalHandler(svc.Goals, svc.Drafter)
	commentHandler := NewCommentHandler(svc.Comments)
	botHandler := NewBotHandler(svc.BotUsers)

	r.GET("/health", healthCheck(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		boards := api.Group("/boards")
		boards.Use(middleware.RequireAuth())
		{
			boards.POST("", boardHandler.CreateBoard)
			boards.GET("", boardHandler.ListBoards)
			boards.GET("/:id", middleware.RequireIDParam("board"), boardHandler.GetBoard)
			boards.PUT("/:id", middleware.RequireIDParam("board"), boardHandler.UpdateBoard)
			boards.DELETE("/:id", middleware.RequireIDParam("board"), boardHandler.DeleteBoard)
		}

		categories := api.Group("/goal_categories")
		categories.Use(middleware.RequireAuth())
		{
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("", categoryHandler.ListCategories)
			categories.GET("/:id", middleware.RequireIDParam("category"), categoryHandler.GetCategory)
			categories.PATCH("/:id", middleware.RequireIDParam("category"), categoryHandler.UpdateCategory)
			categories.DELETE("/:id", middleware.RequireIDParam("category"), categoryHandler.DeleteCategory)
		}

		goals := api.Group("/goals")
		goals.Use(middleware.RequireAuth())
		{
			goals.POST("", goalHandler.CreateGoal)
			goals.GET("", goalHandler.ListGoals)
			goals.POST("/generate", goalHandler.GenerateGoals)
			goals.GET("/:id", middleware.RequireIDParam("goal"), goalHandler.GetGoal)
			goals.PATCH("/:id", middleware.RequireIDParam("goal"), goalHandler.UpdateGoal)
			goals.DELETE("/:id", middleware.RequireIDParam("goal"), goalHandler.DeleteGoal)
		}

		comments := api.Group("/goal_comments")
		comments.Use(middleware.RequireAuth())
		{
			comments.POST("", commentHandler.CreateComment)
			comments.GET("", commentHandler.ListComments)
			comments.GET("/:id", middleware.RequireIDParam("comment"), commentHandler.GetComment)
			comments.PATCH("/:id", middleware.RequireIDParam("comment"), commentHandler.UpdateComment)
			comments.DELETE("/:id", middleware.RequireIDParam("comment"), commentHandler.DeleteComment)
		}

		api.PATCH("/bot/verify", middleware.RequireAuth(), botHandler.Verify)
	}

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unavailable",
					"message": "Database is not reachable",
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Goal Boards API is running",
		})
	}
}
