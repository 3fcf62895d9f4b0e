package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/tracker"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case storage.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, tracker.ErrNoUser):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
