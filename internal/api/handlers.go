package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/suppleflow/internal/calendar"
	"github.com/julianstephens/suppleflow/internal/dosage"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/tracker"
	"github.com/julianstephens/suppleflow/internal/utils"
)

func (s *Server) getGuidelines(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Guidelines())
}

func (s *Server) listProfiles(c *gin.Context) {
	profiles, err := s.svc.Profiles()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) createProfile(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.svc.CreateProfile(body.Username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) listSupplements(c *gin.Context) {
	supplements, err := s.svc.Supplements(userID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, supplements)
}

func (s *Server) createSupplement(c *gin.Context) {
	var body tracker.SupplementInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	sup, err := s.svc.AddSupplement(userID(c), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sup)
}

func (s *Server) updateSupplement(c *gin.Context) {
	var body tracker.SupplementInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	sup, err := s.svc.UpdateSupplement(userID(c), c.Param("id"), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (s *Server) deleteSupplement(c *gin.Context) {
	if err := s.svc.DeleteSupplement(userID(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listIntakes(c *gin.Context) {
	filter := models.IntakeFilter{SupplementID: c.Query("supplement_id")}
	if v := c.Query("start"); v != "" {
		start, err := parseBound(v, s.svc.Location(), false)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.Start = &start
	}
	if v := c.Query("end"); v != "" {
		end, err := parseBound(v, s.svc.Location(), true)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.End = &end
	}

	intakes, err := s.svc.Intakes(userID(c), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, intakes)
}

// parseBound accepts an RFC 3339 timestamp or a YYYY-MM-DD date. A date bound
// covers the whole day: its start for a lower bound, its end for an upper one.
func parseBound(v string, loc *time.Location, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	day, err := utils.ParseDateInLocation(v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time bound %q: expected RFC 3339 or YYYY-MM-DD", v)
	}
	if upper {
		return utils.EndOfDay(day, loc), nil
	}
	return day, nil
}

func (s *Server) createIntake(c *gin.Context) {
	var body tracker.IntakeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	in, err := s.svc.LogIntake(userID(c), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (s *Server) updateIntake(c *gin.Context) {
	var body tracker.IntakeInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	in, err := s.svc.EditIntake(userID(c), c.Param("id"), body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}

func (s *Server) deleteIntake(c *gin.Context) {
	if err := s.svc.DeleteIntake(userID(c), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type dashboardResponse struct {
	tracker.Dashboard
	Exceeded       []dosage.DailyAggregate `json:"exceeded"`
	KratomWarnings []string                `json:"kratom_warnings"`
}

func (s *Server) today(c *gin.Context) {
	d, err := s.svc.Today(c.Request.Context(), userID(c), s.svc.Now())
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := dashboardResponse{
		Dashboard:      d,
		Exceeded:       d.Exceeded(),
		KratomWarnings: []string{},
	}
	if resp.Exceeded == nil {
		resp.Exceeded = []dosage.DailyAggregate{}
	}
	if d.Kratom != nil {
		resp.KratomWarnings = append(resp.KratomWarnings, d.Kratom.Warnings()...)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) calendarMonth(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		badRequest(c, fmt.Errorf("invalid year %q", c.Param("year")))
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		badRequest(c, fmt.Errorf("invalid month %q", c.Param("month")))
		return
	}

	m, err := s.svc.Month(userID(c), year, time.Month(month))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthResponse(m))
}

func monthResponse(m calendar.Month) gin.H {
	return gin.H{
		"year":   m.Year,
		"month":  int(m.Month),
		"counts": m.Counts,
		"latest": m.Latest,
		"total":  m.Total(),
		"weeks":  m.Weeks(),
	}
}

func (s *Server) calendarDay(c *gin.Context) {
	intakes, err := s.svc.Day(userID(c), c.Param("date"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Param("date"), "intakes": intakes})
}

func (s *Server) insight(c *gin.Context) {
	text, ok := s.svc.Insight(c.Request.Context(), userID(c), s.svc.Now())
	if !ok {
		c.JSON(http.StatusOK, gin.H{"insight": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": text})
}
