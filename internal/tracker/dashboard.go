package tracker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/suppleflow/internal/calendar"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/dosage"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/utils"
)

// Dashboard is one day's view of a user's intake.
type Dashboard struct {
	Date        string                  `json:"date"`
	Supplements []models.Supplement     `json:"supplements"`
	Intakes     []models.Intake         `json:"intakes"`
	Aggregates  []dosage.DailyAggregate `json:"aggregates"`
	// Kratom is nil when the guideline set has no kratom entry.
	Kratom *dosage.KratomReport `json:"kratom,omitempty"`
}

// Exceeded returns the aggregates whose maximum daily dose was passed. A
// maximum of 0 allows nothing, so any intake of it is over the limit.
func (d Dashboard) Exceeded() []dosage.DailyAggregate {
	var out []dosage.DailyAggregate
	for _, a := range d.Aggregates {
		if a.Exceeded() {
			out = append(out, a)
		}
	}
	return out
}

// Today loads the calendar day containing now. Supplements and intakes are
// fetched concurrently; aggregation runs only when both succeed.
func (s *Service) Today(ctx context.Context, userID string, now time.Time) (Dashboard, error) {
	window := dosage.DayWindow(now, s.loc)

	var supplements []models.Supplement
	var intakes []models.Intake
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		supplements, err = s.store.GetAllSupplements(userID)
		if err != nil {
			return fmt.Errorf("failed to load supplements: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		intakes, err = s.store.GetIntakes(userID, window.Filter())
		if err != nil {
			return fmt.Errorf("failed to load intakes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Date:        now.In(s.loc).Format(constants.DateFormat),
		Supplements: supplements,
		Intakes:     intakes,
		Aggregates:  dosage.AggregateWindow(supplements, intakes, window),
	}
	if k, err := s.guidelines.Kratom(); err == nil {
		report := dosage.Kratom(supplements, intakes, k)
		d.Kratom = &report
	}
	return d, nil
}

// Month counts the user's intakes per day of the given month.
func (s *Service) Month(userID string, year int, month time.Month) (calendar.Month, error) {
	m := calendar.Build(year, month, s.loc, nil)
	intakes, err := s.store.GetIntakes(userID, m.Filter())
	if err != nil {
		return calendar.Month{}, err
	}
	return calendar.Build(year, month, s.loc, intakes), nil
}

// Day returns the intakes of a YYYY-MM-DD date, most recent first.
func (s *Service) Day(userID, date string) ([]models.Intake, error) {
	day, err := utils.ParseDateInLocation(date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}
	intakes, err := s.store.GetIntakes(userID, dosage.DayWindow(day, s.loc).Filter())
	if err != nil {
		return nil, err
	}
	return calendar.Day(date, s.loc, intakes), nil
}

// Insight summarises the day containing now. Any failure, including a failure
// to load the data, yields no insight.
func (s *Service) Insight(ctx context.Context, userID string, now time.Time) (string, bool) {
	if !s.summarizer.Enabled() {
		return "", false
	}
	d, err := s.Today(ctx, userID, now)
	if err != nil {
		logger.Warn("Failed to load data for insight", "user", userID, "error", err)
		return "", false
	}
	in := insight.Input{
		Now:         now,
		Location:    s.loc,
		Supplements: d.Supplements,
		Intakes:     d.Intakes,
	}
	if d.Kratom != nil {
		k := d.Kratom.Guideline
		in.Kratom = &k
	}
	return s.summarizer.Summarize(ctx, in)
}
