// Package calendar groups intakes by calendar day for a month view and
// supports drill-down into a single day.
package calendar

import (
	"sort"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
)

type Month struct {
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`
	Location *time.Location `json:"-"`
	// Counts maps a YYYY-MM-DD date to the number of intakes taken that day.
	Counts map[string]int `json:"counts"`
	// Latest is the greatest date key in Counts, or "" when the month is empty.
	Latest string `json:"latest"`
}

// Build counts the intakes falling inside the given month, bucketed by their
// calendar date in loc. Intakes outside the month are ignored.
func Build(year int, month time.Month, loc *time.Location, intakes []models.Intake) Month {
	if loc == nil {
		loc = time.Local
	}
	m := Month{Year: year, Month: month, Location: loc, Counts: make(map[string]int)}
	for _, in := range intakes {
		local := in.TakenAt.In(loc)
		if local.Year() != year || local.Month() != month {
			continue
		}
		key := local.Format(constants.DateFormat)
		m.Counts[key]++
		// Zero-padded ISO dates order lexicographically.
		if key > m.Latest {
			m.Latest = key
		}
	}
	return m
}

// Start returns midnight of the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, m.loc())
}

// End returns the last instant of the month.
func (m Month) End() time.Time {
	return m.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Filter returns the month bounds as an intake filter.
func (m Month) Filter() models.IntakeFilter {
	start, end := m.Start(), m.End()
	return models.IntakeFilter{Start: &start, End: &end}
}

func (m Month) Total() int {
	total := 0
	for _, n := range m.Counts {
		total += n
	}
	return total
}

// Dates lists the dates with at least one intake, ascending.
func (m Month) Dates() []string {
	dates := make([]string, 0, len(m.Counts))
	for d := range m.Counts {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Day returns the intakes taken on date (YYYY-MM-DD, in the month's location),
// most recent first.
func (m Month) Day(date string, intakes []models.Intake) []models.Intake {
	return Day(date, m.loc(), intakes)
}

// Day returns the intakes whose local date in loc is date, most recent first.
func Day(date string, loc *time.Location, intakes []models.Intake) []models.Intake {
	out := []models.Intake{}
	for _, in := range intakes {
		if in.TakenAt.In(loc).Format(constants.DateFormat) == date {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})
	return out
}

// Weeks lays the month out as Monday-first rows of seven dates. Cells outside
// the month are empty strings.
func (m Month) Weeks() [][]string {
	start := m.Start()
	daysInMonth := m.End().Day()
	// time.Weekday is Sunday=0; shift so Monday=0.
	offset := (int(start.Weekday()) + 6) % 7

	var weeks [][]string
	week := make([]string, 7)
	col := offset
	for d := 1; d <= daysInMonth; d++ {
		week[col] = time.Date(m.Year, m.Month, d, 0, 0, 0, 0, m.loc()).Format(constants.DateFormat)
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = make([]string, 7)
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// Prev returns the year and month preceding m.
func (m Month) Prev() (int, time.Month) {
	t := m.Start().AddDate(0, -1, 0)
	return t.Year(), t.Month()
}

// Next returns the year and month following m.
func (m Month) Next() (int, time.Month) {
	t := m.Start().AddDate(0, 1, 0)
	return t.Year(), t.Month()
}

// JumpLatest selects the most recent date with any intake, falling back to
// the first of the month when the month is empty.
func (m Month) JumpLatest() string {
	if m.Latest != "" {
		return m.Latest
	}
	return m.Start().Format(constants.DateFormat)
}

// Today returns now's date in loc along with its year and month, for
// selecting the current month.
func Today(now time.Time, loc *time.Location) (string, int, time.Month) {
	local := now.In(loc)
	return local.Format(constants.DateFormat), local.Year(), local.Month()
}

func (m Month) loc() *time.Location {
	if m.Location == nil {
		return time.Local
	}
	return m.Location
}
