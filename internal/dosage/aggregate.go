// Package dosage turns logged intakes into per-supplement daily totals and
// substance-specific guideline comparisons. Everything here is pure: no I/O,
// no clock, no failure modes.
package dosage

import (
	"sort"
	"time"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/utils"
)

// DailyAggregate summarises one supplement's intakes over a window.
type DailyAggregate struct {
	Supplement models.Supplement `json:"supplement"`
	Total      float64           `json:"total"`
	Remaining  float64           `json:"remaining"`
	LastTaken  *models.Intake    `json:"last_taken"`
	Intakes    []models.Intake   `json:"intakes"`
}

// Exceeded reports whether more than the maximum daily dose was taken.
func (a DailyAggregate) Exceeded() bool {
	return a.Remaining < 0
}

// Exhausted reports whether nothing of the maximum daily dose is left.
func (a DailyAggregate) Exhausted() bool {
	return a.Remaining <= 0
}

// Window is an inclusive time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Filter returns the bounds as an intake filter for storage queries.
func (w Window) Filter() models.IntakeFilter {
	start, end := w.Start, w.End
	return models.IntakeFilter{Start: &start, End: &end}
}

// DayWindow returns the calendar day containing day in loc, from midnight to
// one nanosecond before the next midnight.
func DayWindow(day time.Time, loc *time.Location) Window {
	return Window{
		Start: utils.StartOfDay(day, loc),
		End:   utils.EndOfDay(day, loc),
	}
}

// Aggregate builds one DailyAggregate per supplement, in the supplements'
// order. Intakes referencing a supplement not in the list are ignored.
func Aggregate(supplements []models.Supplement, intakes []models.Intake) []DailyAggregate {
	bySupplement := make(map[string][]models.Intake, len(supplements))
	for _, s := range supplements {
		bySupplement[s.ID] = nil
	}
	for _, in := range intakes {
		if _, ok := bySupplement[in.SupplementID]; !ok {
			continue
		}
		bySupplement[in.SupplementID] = append(bySupplement[in.SupplementID], in)
	}

	out := make([]DailyAggregate, 0, len(supplements))
	for _, s := range supplements {
		matched := bySupplement[s.ID]
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].TakenAt.Before(matched[j].TakenAt)
		})

		agg := DailyAggregate{Supplement: s, Intakes: matched}
		for _, in := range matched {
			agg.Total += in.Dosage
		}
		agg.Remaining = s.MaxDosage - agg.Total
		if n := len(matched); n > 0 {
			last := matched[n-1]
			agg.LastTaken = &last
		}
		if agg.Intakes == nil {
			agg.Intakes = []models.Intake{}
		}
		out = append(out, agg)
	}
	return out
}

// AggregateWindow aggregates only the intakes taken inside w.
func AggregateWindow(supplements []models.Supplement, intakes []models.Intake, w Window) []DailyAggregate {
	inside := make([]models.Intake, 0, len(intakes))
	for _, in := range intakes {
		if w.Contains(in.TakenAt) {
			inside = append(inside, in)
		}
	}
	return Aggregate(supplements, inside)
}
