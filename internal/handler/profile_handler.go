package handler

import (
	"net/http"

	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService   *service.ProfileService
	dashboardService *service.DashboardService
}

func NewProfileHandler(profileService *service.ProfileService, dashboardService *service.DashboardService) *ProfileHandler {
	return &ProfileHandler{
		profileService:   profileService,
		dashboardService: dashboardService,
	}
}

type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	ProfilePic *string `json:"profilePic"`
}

type InterestsRequest struct {
	Interests []string `json:"interests"`
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.profileService.Update(c.Request.Context(), userID, service.ProfileUpdate{
		Name:       req.Name,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    userResponse(user),
	})
}

func (h *ProfileHandler) GetInterests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	interests, err := h.profileService.GetInterests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

func (h *ProfileHandler) SaveInterests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req InterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Interests == nil {
		badRequest(c, "interests must be an array")
		return
	}

	interests, err := h.profileService.SaveInterests(c.Request.Context(), userID, req.Interests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "Interests saved",
		"interests": interests,
	})
}

func (h *ProfileHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.dashboardService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
