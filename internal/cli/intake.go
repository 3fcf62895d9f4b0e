package cli

import (
	"context"
	"fmt"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/tracker"
	"github.com/julianstephens/suppleflow/internal/utils"
)

type IntakeCmd struct {
	Log    IntakeLogCmd    `cmd:"" help:"Log an intake."`
	Edit   IntakeEditCmd   `cmd:"" help:"Edit an intake."`
	Delete IntakeDeleteCmd `cmd:"" help:"Delete an intake."`
	List   IntakeListCmd   `cmd:"" help:"List intakes, newest first."`
}

type IntakeLogCmd struct {
	Supplement string  `arg:"" help:"Supplement ID or name."`
	Dosage     float64 `arg:"" help:"Amount taken, in the supplement's unit."`
	Date       string  `help:"Date taken (YYYY-MM-DD), defaults to today."`
	Time       string  `help:"Time taken (HH:MM), defaults to now."`
	Notes      string  `help:"Free-form notes."`
}

func (c *IntakeLogCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := svc.ResolveSupplement(user.ID, c.Supplement)
	if err != nil {
		return err
	}
	takenAt, err := utils.ResolveTakenAt(c.Date, c.Time, svc.Now(), svc.Location())
	if err != nil {
		return err
	}

	in, err := svc.LogIntake(user.ID, tracker.IntakeInput{
		SupplementID: s.ID,
		Dosage:       c.Dosage,
		TakenAt:      takenAt,
		Notes:        c.Notes,
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Logged %s %s of %s at %s (%s)\n", formatAmount(in.Dosage), s.Unit, s.Name,
		in.TakenAt.In(svc.Location()).Format(constants.DateFormat+" "+constants.TimeFormat), in.ID)
	return ctx.printDayStatus(svc, user.ID, s.ID)
}

// printDayStatus reports what is left of a supplement's maximum for today.
func (c *Context) printDayStatus(svc *tracker.Service, userID, supplementID string) error {
	d, err := svc.Today(context.Background(), userID, svc.Now())
	if err != nil {
		return err
	}
	for _, a := range d.Aggregates {
		if a.Supplement.ID != supplementID {
			continue
		}
		if a.Exceeded() {
			c.println(warnStyle.Render(fmt.Sprintf("⚠ %s is %s %s over its daily maximum", a.Supplement.Name, formatAmount(-a.Remaining), a.Supplement.Unit)))
		} else {
			c.printf("  %s %s remaining today\n", formatAmount(a.Remaining), a.Supplement.Unit)
		}
	}
	return nil
}

// IntakeEditCmd replaces an intake. Flags that are not given keep their
// current values.
type IntakeEditCmd struct {
	ID         string   `arg:"" help:"Intake ID."`
	Supplement string   `help:"Move the intake to another supplement (ID or name)."`
	Dosage     *float64 `help:"Amount taken."`
	Date       string   `help:"Date taken (YYYY-MM-DD)."`
	Time       string   `help:"Time taken (HH:MM)."`
	Notes      *string  `help:"Notes; pass an empty string to clear."`
}

func (c *IntakeEditCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	current, err := svc.Intake(user.ID, c.ID)
	if err != nil {
		return err
	}

	in := tracker.IntakeInput{
		SupplementID: current.SupplementID,
		Dosage:       current.Dosage,
		TakenAt:      current.TakenAt,
		Notes:        current.Notes,
	}
	if c.Supplement != "" {
		s, err := svc.ResolveSupplement(user.ID, c.Supplement)
		if err != nil {
			return err
		}
		in.SupplementID = s.ID
	}
	if c.Dosage != nil {
		in.Dosage = *c.Dosage
	}
	if c.Notes != nil {
		in.Notes = *c.Notes
	}
	if c.Date != "" || c.Time != "" {
		// Missing parts come from the current timestamp, not from now.
		if in.TakenAt, err = utils.ResolveTakenAt(c.Date, c.Time, current.TakenAt, svc.Location()); err != nil {
			return err
		}
	}

	updated, err := svc.EditIntake(user.ID, c.ID, in)
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated intake %s: %s at %s\n", updated.ID, formatAmount(updated.Dosage),
		updated.TakenAt.In(svc.Location()).Format(constants.DateFormat+" "+constants.TimeFormat))
	return nil
}

type IntakeDeleteCmd struct {
	ID string `arg:"" help:"Intake ID."`
}

func (c *IntakeDeleteCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := svc.DeleteIntake(user.ID, c.ID); err != nil {
		return err
	}
	ctx.printf("✓ Deleted intake %s\n", c.ID)
	return nil
}

type IntakeListCmd struct {
	From       string `help:"First day to include (YYYY-MM-DD)."`
	To         string `help:"Last day to include (YYYY-MM-DD)."`
	Supplement string `help:"Only this supplement (ID or name)."`
	Limit      int    `help:"Show at most this many intakes." default:"50"`
}

func (c *IntakeListCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	var filter models.IntakeFilter
	if c.From != "" {
		day, err := utils.ParseDateInLocation(c.From, svc.Location())
		if err != nil {
			return err
		}
		start := utils.StartOfDay(day, svc.Location())
		filter.Start = &start
	}
	if c.To != "" {
		day, err := utils.ParseDateInLocation(c.To, svc.Location())
		if err != nil {
			return err
		}
		end := utils.EndOfDay(day, svc.Location())
		filter.End = &end
	}

	supplements, err := svc.Supplements(user.ID)
	if err != nil {
		return err
	}
	if c.Supplement != "" {
		s, err := svc.ResolveSupplement(user.ID, c.Supplement)
		if err != nil {
			return err
		}
		filter.SupplementID = s.ID
	}

	intakes, err := svc.Intakes(user.ID, filter)
	if err != nil {
		return err
	}
	if len(intakes) == 0 {
		ctx.println("No intakes found")
		return nil
	}
	if c.Limit > 0 && len(intakes) > c.Limit {
		intakes = intakes[:c.Limit]
	}

	byID := make(map[string]models.Supplement, len(supplements))
	for _, s := range supplements {
		byID[s.ID] = s
	}
	rows := make([][]string, 0, len(intakes))
	for _, in := range intakes {
		s := byID[in.SupplementID]
		rows = append(rows, []string{
			in.TakenAt.In(svc.Location()).Format(constants.DateFormat + " " + constants.TimeFormat),
			s.Name,
			formatAmount(in.Dosage) + " " + s.Unit,
			in.Notes,
			in.ID,
		})
	}
	ctx.printTable([]string{"Taken", "Supplement", "Dosage", "Notes", "ID"}, rows)
	return nil
}
