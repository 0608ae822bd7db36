package handler

import (
	"net/http"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError writes the {"error", "code"} envelope for err. Errors that are
// not *apperr.Error are logged and reported as a bare 500.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		status := appErr.Status()
		if status >= http.StatusInternalServerError {
			logger.Log.Error("Request failed",
				zap.String("path", c.FullPath()),
				zap.String("code", string(appErr.Kind)),
				zap.Error(err),
			)
		}
		c.JSON(status, gin.H{
			"error": appErr.Error(),
			"code":  appErr.Kind,
		})
		return
	}

	logger.Log.Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": msg,
		"code":  apperr.KindValidation,
	})
}

// currentUserID returns the user ID stored by AuthMiddleware. It writes a 401
// and returns false when the request is not authenticated.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if id, ok := v.(uuid.UUID); exists && ok && id != uuid.Nil {
		return id, true
	}
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Not authorized, no token",
		"code":  apperr.KindUnauthorized,
	})
	return uuid.Nil, false
}
