package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/bizsim-server/controllers"
	"github.com/vnkhanh/bizsim-server/metrics"
	"github.com/vnkhanh/bizsim-server/middleware"
)

// Deps là các middleware phụ thuộc cấu hình, main dựng rồi truyền vào.
type Deps struct {
	Auth          middleware.Authenticator
	Metrics       *metrics.Metrics
	LoginLimiter  *middleware.IPRateLimiter
	ImportLimiter *middleware.IPRateLimiter
}

func SetupRoutes(r *gin.Engine, h *controllers.Handlers, d Deps) {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", h.HealthCheck)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	authed := middleware.AuthJWT(d.Auth)
	admin := middleware.RequireAdmin()

	var loginLimit gin.HandlerFunc = passThrough
	if d.LoginLimiter != nil {
		loginLimit = middleware.RateLimitByIP(d.LoginLimiter)
	}
	var importLimit gin.HandlerFunc = passThrough
	if d.ImportLimiter != nil {
		importLimit = middleware.RateLimitByIP(d.ImportLimiter)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Login)
			auth.POST("/google", loginLimit, h.GoogleLogin)
			auth.POST("/logout", h.Logout)
			auth.GET("/me", authed, h.Me)
		}

		// file đã upload được phục vụ công khai (link nhúng trong câu hỏi)
		api.GET("/files/*path", h.ServeFile)

		protected := api.Group("")
		protected.Use(authed)
		{
			protected.GET("/game-sessions", h.ListGameSessions)
			protected.GET("/game-sessions/:id", h.GetGameSession)
			protected.GET("/rounds", h.ListRounds)
			protected.GET("/questions", h.ListQuestions)
			protected.GET("/teams", h.ListTeams)
			protected.GET("/leaderboards", h.Leaderboards)

			protected.POST("/submissions", h.CreateSubmission)
			protected.GET("/submissions", h.ListSubmissions)
		}

		adm := protected.Group("")
		adm.Use(admin)
		{
			users := adm.Group("/users")
			{
				users.GET("", h.ListUsers)
				users.GET("/:id", h.GetUser)
				users.POST("", h.CreateUser)
				users.PUT("/:id", h.UpdateUser)
				users.DELETE("/:id", h.DeleteUser)
			}

			adm.GET("/teams/:id", h.GetTeam)
			adm.POST("/teams", h.CreateTeam)
			adm.PUT("/teams/:id", h.UpdateTeam)
			adm.DELETE("/teams/:id", h.DeleteTeam)

			adm.POST("/game-sessions", h.CreateGameSession)
			adm.PUT("/game-sessions/:id", h.UpdateGameSession)
			adm.POST("/game-sessions/:id/start", h.StartGameSession)

			adm.POST("/rounds", h.CreateRound)
			adm.PUT("/rounds/:id", h.UpdateRound)
			adm.POST("/rounds/:id/activate", h.ActivateRound)

			adm.GET("/questions/:id", h.GetQuestion)
			adm.POST("/questions", h.CreateQuestion)
			adm.PUT("/questions/:id", h.UpdateQuestion)
			adm.DELETE("/questions/:id", h.DeleteQuestion)

			categories := adm.Group("/question-categories")
			{
				categories.GET("", h.ListCategories)
				categories.POST("", h.CreateCategory)
				categories.PUT("/:id", h.UpdateCategory)
				categories.DELETE("/:id", h.DeleteCategory)
			}
			adm.GET("/question-tags", h.ListTags)
			adm.POST("/question-tags", h.CreateTag)

			caseFiles := adm.Group("/case-files")
			{
				caseFiles.GET("", h.ListCaseFiles)
				caseFiles.POST("", h.RegisterCaseFile)
				caseFiles.PUT("/:id", h.UpdateCaseFile)
				caseFiles.DELETE("/:id", h.DeleteCaseFile)
			}
			adm.POST("/upload/case-file", h.UploadCaseFile)
			adm.POST("/upload", h.UploadFile)

			adm.GET("/analytics/dashboard", h.Dashboard)

			bulk := adm.Group("/bulk-operations")
			{
				bulk.GET("", h.ListBulkOperations)
				bulk.POST("", h.CreateBulkOperation)
				bulk.PUT("/:id", h.UpdateBulkOperation)
			}
			adm.POST("/import/users", importLimit, h.ImportUsers)
			adm.POST("/import/users/file", importLimit, h.ImportUsersFile)
			adm.GET("/export/users", h.ExportUsers)
		}
	}
}

func passThrough(c *gin.Context) { c.Next() }
