package middleware

import (
	"net/http"
	"strings"

	"github.com/furqan-uddin/SkillForge-Backend/internal/apperr"
	"github.com/furqan-uddin/SkillForge-Backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts "Authorization: Bearer <token>" and falls back to the
// "token" cookie set at login.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not authorized, no token",
				"code":  apperr.KindUnauthorized,
			})
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not authorized, token failed",
				"code":  apperr.KindUnauthorized,
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("claims", claims)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie("token")
	if err != nil {
		return ""
	}
	return token
}
