package middleware

import (
	"net/http"
	"strings"

	"apptdesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthStaffMiddleware guards staff-only endpoints with a bearer token signed by JWT_SECRET.
func JWTAuthStaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		staffID, err := utils.ValidateStaffToken(tokenString)
		if err != nil {
			zap.L().Warn("Rejected staff token", zap.String("ip", getClientIP(c)), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized staff access"})
			return
		}

		c.Set("staffID", staffID)
		c.Next()
	}
}
