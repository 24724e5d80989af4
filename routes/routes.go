package routes

import (
	"coaching-platform-api/controllers"
	"coaching-platform-api/middleware"
	"coaching-platform-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Coaching Platform API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/refresh", controllers.RefreshToken)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Skill catalog (all authenticated users)
			protected.GET("/skills", controllers.GetSkills)

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)

				// Only athletes upload clips
				submissions.POST("", middleware.RequireRole(models.RoleAthlete), controllers.CreateSubmission)

				// Review workflow (coach side)
				submissions.POST("/:id/claim", middleware.RequireRole(models.RoleCoach), controllers.ClaimSubmission)
				submissions.POST("/:id/release", middleware.RequireRole(models.RoleCoach), controllers.ReleaseSubmission)
				submissions.POST("/:id/decline", middleware.RequireRole(models.RoleCoach, models.RoleAdmin, models.RoleSuperadmin), controllers.DeclineSubmission)
				submissions.PUT("/:id/review", middleware.RequireRole(models.RoleCoach), controllers.SaveDraftReview)
				submissions.POST("/:id/review/publish", middleware.RequireRole(models.RoleCoach), controllers.PublishReview)
			}

			// Reviews and comments
			reviews := protected.Group("/reviews")
			{
				reviews.GET("/:id", controllers.GetReview)
				reviews.GET("/:id/comments", controllers.GetComments)
				reviews.POST("/:id/comments", controllers.CreateComment)
			}
			protected.DELETE("/comments/:id", middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin), controllers.DeleteComment)

			// Coach queues
			queue := protected.Group("/queue")
			queue.Use(middleware.RequireRole(models.RoleCoach, models.RoleAdmin, models.RoleSuperadmin))
			{
				queue.GET("/unclaimed", controllers.GetUnclaimedQueue)
				queue.GET("/mine", controllers.GetMyQueue)
				queue.GET("/events", controllers.StreamQueueEvents)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin surface
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperadmin))
			{
				admin.GET("/submissions", controllers.AdminGetSubmissions)
				admin.POST("/users", controllers.AdminCreateUser)
			}
		}
	}
}
