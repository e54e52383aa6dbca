package api

import (
	"net/http"

	"github.com/NickBalanda/GymTracker/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes mounts the view-facing API on the router.
func SetupRoutes(router *gin.Engine, tracker *service.TrackerService) {
	planHandler := NewPlanHandler(tracker)
	weightHandler := NewWeightHandler(tracker)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		plans := apiV1.Group("/plans")
		{
			plans.GET("", planHandler.ListPlans)
			plans.POST("/generate", planHandler.GeneratePlan)

			// Draft routes must register before the wildcard :id routes.
			plans.POST("/draft", planHandler.CreateDraft)
			plans.GET("/draft", planHandler.GetDraft)
			plans.DELETE("/draft", planHandler.DiscardDraft)
			plans.POST("/draft/save", planHandler.SaveDraft)
			plans.POST("/draft/exercises", planHandler.AddDraftExercise)
			plans.PATCH("/draft/exercises/:id", planHandler.UpdateDraftExercise)
			plans.DELETE("/draft/exercises/:id", planHandler.RemoveDraftExercise)

			plans.GET("/:id", planHandler.GetPlan)
			plans.DELETE("/:id", planHandler.DeletePlan)
			plans.POST("/:id/draft", planHandler.BeginEdit)
		}

		weight := apiV1.Group("/weight")
		{
			weight.GET("", weightHandler.ListEntries)
			weight.POST("", weightHandler.LogWeight)
		}
	}
}

// abortWithError sends a JSON error payload and stops the handler chain.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
