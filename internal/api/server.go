// Package api exposes the tracker as a JSON HTTP API. The acting user is taken
// from the X-User-ID header (an ID or a username).
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/tracker"
)

const (
	UserHeader = "X-User-ID"
	userKey    = "userID"

	shutdownTimeout = 10 * time.Second
)

type Server struct {
	svc    *tracker.Service
	router *gin.Engine
}

func NewServer(svc *tracker.Service) *Server {
	s := &Server{svc: svc}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	api.GET("/guidelines", s.getGuidelines)
	api.GET("/profiles", s.listProfiles)
	api.POST("/profiles", s.createProfile)

	user := api.Group("")
	user.Use(s.requireUser())
	{
		user.GET("/supplements", s.listSupplements)
		user.POST("/supplements", s.createSupplement)
		user.PUT("/supplements/:id", s.updateSupplement)
		user.DELETE("/supplements/:id", s.deleteSupplement)

		user.GET("/intakes", s.listIntakes)
		user.POST("/intakes", s.createIntake)
		user.PUT("/intakes/:id", s.updateIntake)
		user.DELETE("/intakes/:id", s.deleteIntake)

		user.GET("/dashboard/today", s.today)
		user.GET("/calendar/day/:date", s.calendarDay)
		user.GET("/calendar/:year/:month", s.calendarMonth)
		user.GET("/insight", s.insight)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": constants.Version})
}
