package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/resume"
	"github.com/furqan-uddin/SkillForge-Backend/internal/service"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const DefaultMaxUploadBytes = 5 << 20

type AIHandler struct {
	aiService      *service.AIService
	maxUploadBytes int64
}

func NewAIHandler(aiService *service.AIService, maxUploadBytes int64) *AIHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &AIHandler{
		aiService:      aiService,
		maxUploadBytes: maxUploadBytes,
	}
}

type GenerateRoadmapRequest struct {
	Interests []string `json:"interests"`
	Save      bool     `json:"save"`
}

type MatchJDRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type InterviewRequest struct {
	Role string `json:"role"`
}

type SkillGapRequest struct {
	Skills        []string `json:"skills"`
	CurrentSkills []string `json:"currentSkills"`
	TargetRole    string   `json:"targetRole"`
}

type InsightsRequest struct {
	Interests []string `json:"interests"`
}

type resumeTextRequest struct {
	Text string `json:"text" form:"text"`
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return false
	}
	return true
}

func (h *AIHandler) GenerateRoadmap(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req GenerateRoadmapRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.aiService.GenerateRoadmaps(c.Request.Context(), userID, req.Interests, req.Save)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeResume takes either a multipart "file" (PDF, DOCX or TXT) or a
// "text" field sent as JSON or form data.
func (h *AIHandler) AnalyzeResume(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	text, err := h.resumeText(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.aiService.AnalyzeResume(c.Request.Context(), userID, text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AIHandler) resumeText(c *gin.Context) (string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req resumeTextRequest
		if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", apperr.Validation("Invalid request body")
		}
		return req.Text, nil
	}

	// Leave room for the multipart envelope around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperr.Validation("File too large (max %d MB)", h.maxUploadBytes>>20)
		}
		return c.PostForm("text"), nil
	}
	if fh.Size > h.maxUploadBytes {
		return "", apperr.Validation("File too large (max %d MB)", h.maxUploadBytes>>20)
	}

	mime, err := resume.DetectType(fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		return "", apperr.New(apperr.KindValidation, err.Error(), err)
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	text, err := resume.ExtractText(mime, data)
	if err != nil {
		logger.Log.Warn("Resume extraction failed",
			zap.String("filename", fh.Filename),
			zap.String("mime", mime),
			zap.Error(err),
		)
		return "", apperr.New(apperr.KindValidation, "Could not read text from the uploaded file", err)
	}
	return text, nil
}

func (h *AIHandler) MatchJD(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req MatchJDRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.aiService.MatchJD(c.Request.Context(), userID, req.ResumeText, req.JobDescription)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AIHandler) Interview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req InterviewRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.aiService.Interview(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AIHandler) SkillGap(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SkillGapRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	skills := req.Skills
	if len(skills) == 0 {
		skills = req.CurrentSkills
	}

	result, err := h.aiService.SkillGap(c.Request.Context(), userID, skills, req.TargetRole)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AIHandler) Insights(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req InsightsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.aiService.Insights(c.Request.Context(), userID, req.Interests)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
