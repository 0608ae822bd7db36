package handler

import (
	"net/http"

	"github.com/furqan-uddin/SkillForge-Backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Routes bundles everything RegisterRoutes mounts. AILimiter may be nil.
type Routes struct {
	JWTSecret string
	Auth      *AuthHandler
	Roadmaps  *RoadmapHandler
	AI        *AIHandler
	Profile   *ProfileHandler
	Stream    *ProgressStreamHandler
	AILimiter gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, r Routes) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.NoRoute(middleware.NotFound())

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", r.Auth.Register)
	auth.POST("/login", r.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(r.JWTSecret))

	roadmaps := protected.Group("/roadmaps")
	{
		roadmaps.POST("", r.Roadmaps.Create)
		roadmaps.GET("", r.Roadmaps.List)
		// registered before /:id so it is not read as an ID
		roadmaps.GET("/streak", r.Roadmaps.Streak)
		roadmaps.GET("/:id", r.Roadmaps.Get)
		roadmaps.PATCH("/:id/step", r.Roadmaps.ToggleStep)
		roadmaps.GET("/:id/logs", r.Roadmaps.Logs)
		roadmaps.GET("/:id/streak", r.Roadmaps.RoadmapStreak)
		roadmaps.DELETE("/:id", r.Roadmaps.Delete)
	}

	ai := protected.Group("")
	if r.AILimiter != nil {
		ai.Use(r.AILimiter)
	}
	{
		ai.POST("/generate-roadmap", r.AI.GenerateRoadmap)
		ai.POST("/analyze-resume", r.AI.AnalyzeResume)
		ai.POST("/match-jd", r.AI.MatchJD)
		ai.POST("/interview", r.AI.Interview)
		ai.POST("/skill-gap", r.AI.SkillGap)
		ai.POST("/insights", r.AI.Insights)
	}

	profile := protected.Group("/profile")
	{
		profile.GET("/me", r.Profile.Me)
		profile.PUT("/update", r.Profile.Update)
		profile.GET("/interests", r.Profile.GetInterests)
		profile.POST("/interests", r.Profile.SaveInterests)
	}

	protected.GET("/dashboard", r.Profile.Dashboard)
	protected.GET("/ws/progress", r.Stream.HandleWebSocket)
}
