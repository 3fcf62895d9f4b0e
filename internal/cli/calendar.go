package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/suppleflow/internal/calendar"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/utils"
)

type CalendarCmd struct {
	Month  string `help:"Month to show (YYYY-MM), defaults to the current month." placeholder:"YYYY-MM"`
	Day    string `help:"Show the intakes of one day (YYYY-MM-DD)." placeholder:"YYYY-MM-DD" xor:"day"`
	Latest bool   `help:"Show the intakes of the most recent day with any intake in the month." xor:"day"`
}

func (c *CalendarCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	_, year, month := calendar.Today(svc.Now(), svc.Location())
	if c.Month != "" {
		if year, month, err = utils.ParseMonth(c.Month); err != nil {
			return err
		}
	}
	if c.Day != "" {
		day, err := parseDate(c.Day, svc.Location())
		if err != nil {
			return err
		}
		year, month = day.Year(), day.Month()
	}

	m, err := svc.Month(user.ID, year, month)
	if err != nil {
		return err
	}
	ctx.printMonth(m)

	date := c.Day
	if c.Latest {
		if m.Latest == "" {
			ctx.println("\nNo intakes this month.")
			return nil
		}
		date = m.Latest
	}
	if date == "" {
		return nil
	}

	intakes, err := svc.Day(user.ID, date)
	if err != nil {
		return err
	}
	supplements, err := svc.Supplements(user.ID)
	if err != nil {
		return err
	}
	ctx.printf("\n%s\n", date)
	ctx.printDay(intakes, supplements, svc.Location())
	return nil
}

func (c *Context) printMonth(m calendar.Month) {
	c.printf("%s (%d intakes)\n", m.Start().Format("January 2006"), m.Total())
	rows := make([][]string, 0, 6)
	for _, week := range m.Weeks() {
		row := make([]string, len(week))
		for i, date := range week {
			if date == "" {
				continue
			}
			label := strings.TrimLeft(date[len(date)-2:], "0")
			if n := m.Counts[date]; n > 0 {
				label = fmt.Sprintf("%s (%d)", label, n)
			}
			row[i] = label
		}
		rows = append(rows, row)
	}
	c.printTable([]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, rows)
}

func (c *Context) printDay(intakes []models.Intake, supplements []models.Supplement, loc *time.Location) {
	if len(intakes) == 0 {
		c.println("  no intakes")
		return
	}
	byID := make(map[string]models.Supplement, len(supplements))
	for _, s := range supplements {
		byID[s.ID] = s
	}
	for _, in := range intakes {
		s := byID[in.SupplementID]
		line := fmt.Sprintf("  %s  %s %s %s", in.TakenAt.In(loc).Format(constants.TimeFormat), s.Name, formatAmount(in.Dosage), s.Unit)
		if in.Notes != "" {
			line += "  (" + in.Notes + ")"
		}
		c.println(line)
	}
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	day, err := utils.ParseDateInLocation(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return day, nil
}
