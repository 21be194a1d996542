package routes

import (
	"handwriting-dataset-api/controllers"
	"handwriting-dataset-api/middleware"
	"handwriting-dataset-api/models"

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
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)

			// Community dataset progress
			public.GET("/stats", controllers.GetCommunityStats)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Handwriting Dataset API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Draft transcription for a captured image
			protected.POST("/recognize", controllers.RecognizeImage)

			// Contributions
			samples := protected.Group("/samples")
			{
				samples.POST("", controllers.CreateSample)
				samples.GET("", controllers.GetMySamples)
				samples.GET("/stats", controllers.GetMyStats)
				samples.GET("/:id", controllers.GetSample)
			}

			// Review workflow (reviewers only)
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleReviewer))
			{
				admin.GET("/samples", controllers.ListSamples)
				admin.POST("/samples/:id/approve", controllers.ApproveSample)
				admin.POST("/samples/:id/reject", controllers.RejectSample)
				admin.PUT("/samples/:id/text", controllers.UpdateSampleText)
				admin.GET("/samples/export", controllers.ExportDataset)
			}
		}
	}
}
