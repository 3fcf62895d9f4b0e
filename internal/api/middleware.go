package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/suppleflow/internal/logger"
)

// requestLogger writes one line per request through the application logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			keyvals = append(keyvals, "error", c.Errors.String())
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("HTTP request", keyvals...)
			return
		}
		logger.Debug("HTTP request", keyvals...)
	}
}

// requireUser resolves the X-User-ID header to a profile and stores its ID.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		ref := c.GetHeader(UserHeader)
		if ref == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UserHeader + " header required"})
			return
		}
		profile, err := s.svc.ResolveUser(ref)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userKey, profile.ID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}
