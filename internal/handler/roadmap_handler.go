package handler

import (
	"encoding/json"
	"net/http"

	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

type RoadmapHandler struct {
	roadmapService *service.RoadmapService
}

func NewRoadmapHandler(roadmapService *service.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{roadmapService: roadmapService}
}

// CreateRoadmapRequest keeps weeks raw; both the map and the array shape are
// accepted and normalized by the service.
type CreateRoadmapRequest struct {
	Interest string          `json:"interest"`
	Weeks    json.RawMessage `json:"weeks"`
}

type ToggleStepRequest struct {
	WeekIndex *int  `json:"weekIndex"`
	StepIndex *int  `json:"stepIndex"`
	Completed *bool `json:"completed"`
}

func (h *RoadmapHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateRoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	var weeks any
	if len(req.Weeks) > 0 {
		if err := json.Unmarshal(req.Weeks, &weeks); err != nil {
			badRequest(c, "weeks must be an object or an array")
			return
		}
	}

	roadmap, err := h.roadmapService.CreateOrReplace(c.Request.Context(), userID, req.Interest, weeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roadmap": roadmap})
}

func (h *RoadmapHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	roadmaps, err := h.roadmapService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roadmaps": roadmaps})
}

func (h *RoadmapHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	roadmap, err := h.roadmapService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roadmap": roadmap})
}

func (h *RoadmapHandler) ToggleStep(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ToggleStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.WeekIndex == nil || req.StepIndex == nil {
		badRequest(c, "weekIndex and stepIndex are required")
		return
	}

	roadmap, err := h.roadmapService.ToggleStep(c.Request.Context(), userID, c.Param("id"), *req.WeekIndex, *req.StepIndex, req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roadmap": roadmap})
}

func (h *RoadmapHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.roadmapService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Roadmap deleted"})
}

func (h *RoadmapHandler) Logs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	logs, err := h.roadmapService.Logs(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Streak reports the streak across all of the caller's roadmaps.
func (h *RoadmapHandler) Streak(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	streak, err := h.roadmapService.Streak(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}

func (h *RoadmapHandler) RoadmapStreak(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	streak, err := h.roadmapService.RoadmapStreak(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, streak)
}
