package api

import (
	"net/http"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler onto the router.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	scheduleService service.ScheduleService,
	completionService service.CompletionService,
	streakService service.StreakService,
	catalogService service.CatalogService,
	dietService service.DietService,
	trainerService service.TrainerService,
	friendService service.FriendService,
	accessService service.AccessService,
) {
	authHandler := NewAuthHandler(authService)
	scheduleHandler := NewScheduleHandler(scheduleService, completionService, streakService)
	catalogHandler := NewCatalogHandler(catalogService)
	dietHandler := NewDietHandler(dietService)
	trainerHandler := NewTrainerHandler(trainerService)
	friendHandler := NewFriendHandler(friendService)
	accessHandler := NewAccessHandler(accessService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Turnstile endpoint; consumed by the door controller, no JWT.
	apiV1.GET("/access/verify/:memberId", accessHandler.VerifyMembership)

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Catalog ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("", catalogHandler.ListWorkouts)
			workoutGroup.POST("", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), catalogHandler.CreateWorkout)
			workoutGroup.PUT("/:workoutId", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), catalogHandler.UpdateWorkout)
			workoutGroup.DELETE("/:workoutId", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), catalogHandler.DeleteWorkout)

			workoutGroup.POST("/:workoutId/videos/upload-url", RoleMiddleware(domain.RoleTrainer), catalogHandler.RequestVideoUploadURL)
			workoutGroup.POST("/:workoutId/videos/confirm", RoleMiddleware(domain.RoleTrainer), catalogHandler.ConfirmVideoUpload)
			workoutGroup.GET("/:workoutId/videos/download-url", catalogHandler.GetVideoDownloadURL)
		}

		splitGroup := protected.Group("/splits")
		{
			splitGroup.GET("", catalogHandler.ListSplits)
			splitGroup.POST("", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), catalogHandler.CreateSplit)
			splitGroup.DELETE("/:splitId", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), catalogHandler.DeleteSplit)
			splitGroup.POST("/:splitId/assign", RoleMiddleware(domain.RoleOwner, domain.RoleTrainer), scheduleHandler.AssignSplit)
		}

		// --- Schedule ---
		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.GET("", scheduleHandler.GetDaySchedule)
			scheduleGroup.GET("/range", scheduleHandler.GetRangeSchedule)
			scheduleGroup.GET("/logs", scheduleHandler.GetWorkoutLog)
			scheduleGroup.POST("/events", scheduleHandler.AddEvent)
			scheduleGroup.DELETE("/:entryId", scheduleHandler.DeleteEntry)
			scheduleGroup.POST("/:itemId/complete", scheduleHandler.CompleteItem)
			scheduleGroup.PATCH("/:itemId/sets", scheduleHandler.UpdateSet)
			scheduleGroup.POST("/coop-complete", RoleMiddleware(domain.RoleClient), scheduleHandler.CompleteCoop)
		}

		protected.GET("/streak", scheduleHandler.GetStreak)

		// --- Diet ---
		dietGroup := protected.Group("/diet", RoleMiddleware(domain.RoleClient))
		{
			dietGroup.GET("", dietHandler.GetSettings)
			dietGroup.PUT("/targets", dietHandler.UpdateTargets)
			dietGroup.POST("/intake", dietHandler.AddIntake)
			dietGroup.GET("/score", dietHandler.GetHealthScore)
			dietGroup.GET("/score/week", dietHandler.GetWeeklyHealthScores)
		}

		// --- Friends ---
		friendGroup := protected.Group("/friends")
		{
			friendGroup.GET("", friendHandler.ListFriends)
			friendGroup.POST("/requests", friendHandler.RequestFriend)
			friendGroup.POST("/accept", friendHandler.AcceptFriend)
		}

		// --- Trainer ---
		trainerGroup := protected.Group("/trainer", RoleMiddleware(domain.RoleTrainer))
		{
			trainerGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerGroup.GET("/clients/:clientId/logs", trainerHandler.GetClientLogs)
		}

		// --- Membership administration ---
		protected.PUT("/access/members/:memberId", RoleMiddleware(domain.RoleOwner), accessHandler.SetMembership)
	}
}
