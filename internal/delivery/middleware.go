package delivery

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/domain"
	"github.com/workstationexperts-creator/Backend-jolkhabar/internal/usecase"
)

const userContextKey = "currentUser"

// AuthMiddleware resolves the bearer token to a stored user and puts it
// on the request context.
func AuthMiddleware(auth *usecase.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Middleware: Invalid Authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}
		user, err := auth.Verify(parts[1])
		if err != nil {
			log.Warnf("Middleware: token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminOnly requires an authenticated user with the ADMIN role. Must be
// installed after AuthMiddleware.
func AdminOnly(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != domain.RoleAdmin {
			log.Warn("Middleware: admin access denied")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		}).Info("Request completed")
	}
}
