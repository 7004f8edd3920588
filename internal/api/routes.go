package api

import (
	"alcyxob/fitness-planner/internal/logger"
	"alcyxob/fitness-planner/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth           service.AuthService
	Plans          service.PlanService
	Customizations service.CustomizationService
	Routines       service.RoutineService
	History        service.HistoryService
	Exports        service.ExportService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, log *logger.Logger) {
	authHandler := NewAuthHandler(svc.Auth, log)
	planHandler := NewPlanHandler(svc.Plans, log)
	customizationHandler := NewCustomizationHandler(svc.Customizations, log)
	routineHandler := NewRoutineHandler(svc.Routines, log)
	historyHandler := NewHistoryHandler(svc.History, svc.Exports, log)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.Use(MetricsMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

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
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := currentUser(c)
			if !ok {
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID})
		})

		protected.GET("/history", historyHandler.ListHistory)

		// --- Plans ---
		plans := protected.Group("/plans")
		{
			plans.POST("", planHandler.CreatePlan)
			plans.GET("", planHandler.ListPlans)
			plans.GET("/:planId", planHandler.GetPlan)
			plans.PATCH("/:planId", planHandler.UpdatePlan)
			plans.DELETE("/:planId", planHandler.Delete())

			plans.PUT("/:planId/slots", planHandler.SetDaySlot)
			plans.DELETE("/:planId/slots/:dayNumber", planHandler.ClearDaySlot)

			plans.POST("/:planId/activate", planHandler.Activate())
			plans.POST("/:planId/deactivate", planHandler.Deactivate())
			plans.POST("/:planId/archive", planHandler.Archive())
			plans.POST("/:planId/unarchive", planHandler.Unarchive())
			plans.POST("/:planId/reset-start", planHandler.ResetStart)

			// --- Day views and customizations ---
			plans.GET("/:planId/today", customizationHandler.GetTodayView)
			plans.GET("/:planId/microcycles/:microcycle", customizationHandler.GetMicrocycleOverview)
			plans.GET("/:planId/customizations", customizationHandler.ListCustomizedDays)
			plans.DELETE("/:planId/customizations", customizationHandler.ResetAll)
			plans.GET("/:planId/days/:day", customizationHandler.GetDayView)
			plans.PUT("/:planId/days/:day/customizations", customizationHandler.ApplyCustomizations)
			plans.DELETE("/:planId/days/:day/customizations", customizationHandler.ResetDay)
			plans.DELETE("/:planId/days/:day/customizations/:setId", customizationHandler.ResetSet)

			// --- History and exports ---
			plans.POST("/:planId/days/:day/complete", historyHandler.CompleteDay)
			plans.POST("/:planId/exports", historyHandler.ExportPlan)
			plans.GET("/:planId/exports", historyHandler.ListExports)
		}

		// --- Routines ---
		routines := protected.Group("/routines")
		{
			routines.POST("", routineHandler.CreateRoutine)
			routines.GET("", routineHandler.ListRoutines)
			routines.GET("/:routineId", routineHandler.GetRoutine)
			routines.PATCH("/:routineId", routineHandler.RenameRoutine)
			routines.DELETE("/:routineId", routineHandler.DeleteRoutine)
			routines.POST("/:routineId/duplicate", routineHandler.DuplicateRoutine)
			routines.PUT("/:routineId/sets/:setId", routineHandler.UpdateSet)
		}
	}
}
