package api

import (
	"net/http"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	routineService service.RoutineService,
	generatedService service.RoutineService,
	trackingService service.TrackingService,
	plannerService service.PlannerService,
	patientService service.PatientService,
	mediaService service.MediaService,
) {

	authHandler := NewAuthHandler(authService)
	routineHandler := NewRoutineHandler(routineService)
	generatedHandler := NewGeneratedPlanHandler(generatedService)
	trackingHandler := NewTrackingHandler(trackingService)
	plannerHandler := NewPlannerHandler(plannerService)
	patientHandler := NewPatientHandler(patientService, authService)
	mediaHandler := NewMediaHandler(mediaService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/me/onboarding", authHandler.CompleteOnboarding)

		// --- Routine Routes ---
		routineGroup := protected.Group("/routines")
		{
			routineGroup.POST("", routineHandler.Create)
			routineGroup.GET("", routineHandler.List)
			routineGroup.GET("/:id", routineHandler.Get)
			routineGroup.PUT("/:id", routineHandler.Update)
		}

		// --- Generated Plan Routes ---
		// Same surface as routines, backed by the generatedPlans collection.
		generatedGroup := protected.Group("/plans/generated")
		{
			generatedGroup.GET("", generatedHandler.List)
			generatedGroup.GET("/:id", generatedHandler.Get)
			generatedGroup.PUT("/:id", generatedHandler.Update)
			// Creation goes through the planner, not a raw POST.
			generatedGroup.POST("/generate", plannerHandler.GeneratePlan)
		}

		// --- Tracking Routes (patients only) ---
		trackingGroup := protected.Group("/tracking")
		trackingGroup.Use(RoleMiddleware(domain.RolePatient))
		{
			trackingGroup.GET("/session", trackingHandler.GetSession)
			trackingGroup.GET("/today", trackingHandler.GetToday)
			trackingGroup.POST("/start", trackingHandler.StartPlan)
			trackingGroup.PATCH("/entries/:date/status", trackingHandler.UpdateStatus)
			trackingGroup.GET("/stats", trackingHandler.GetStats)
		}

		// --- Doctor Routes ---
		doctorGroup := protected.Group("/doctor")
		doctorGroup.Use(RoleMiddleware(domain.RoleDoctor))
		{
			doctorGroup.POST("/patients", patientHandler.InvitePatient)
			doctorGroup.GET("/patients", patientHandler.ListPatients)
		}

		// --- Patient-side Invite Routes ---
		inviteGroup := protected.Group("/invites")
		inviteGroup.Use(RoleMiddleware(domain.RolePatient))
		{
			inviteGroup.GET("", patientHandler.PendingInvites)
			inviteGroup.POST("/:id/accept", patientHandler.AcceptInvite)
			inviteGroup.POST("/:id/decline", patientHandler.DeclineInvite)
		}

		// --- Media Routes ---
		mediaGroup := protected.Group("/media")
		{
			mediaGroup.POST("/videos/upload-url", mediaHandler.RequestUploadURL)
			mediaGroup.GET("/videos/download-url", mediaHandler.GetDownloadURL)
			mediaGroup.DELETE("/videos", mediaHandler.DeleteVideo)
		}
	}
}
