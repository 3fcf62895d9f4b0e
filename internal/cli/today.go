package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/dosage"
)

type TodayCmd struct {
	JSON bool `help:"Print the dashboard as JSON."`
}

func (c *TodayCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	d, err := svc.Today(context.Background(), user.ID, svc.Now())
	if err != nil {
		return err
	}
	if c.JSON {
		return ctx.printJSON(d)
	}

	ctx.printf("%s, %s\n\n", user.Username, d.Date)
	if len(d.Aggregates) == 0 {
		ctx.println("No supplements yet. Add one with 'suppleflow supplement add'.")
		return nil
	}

	rows := make([][]string, 0, len(d.Aggregates))
	for _, a := range d.Aggregates {
		last := "-"
		if a.LastTaken != nil {
			last = a.LastTaken.TakenAt.In(svc.Location()).Format(constants.TimeFormat)
		}
		rows = append(rows, []string{
			a.Supplement.Name,
			formatAmount(a.Total),
			formatAmount(a.Supplement.MaxDosage),
			formatAmount(a.Remaining),
			a.Supplement.Unit,
			last,
		})
	}
	ctx.printTable([]string{"Supplement", "Taken", "Max", "Remaining", "Unit", "Last"}, rows)

	for _, a := range d.Exceeded() {
		ctx.println(warnStyle.Render(fmt.Sprintf("⚠ %s exceeds its daily maximum by %s %s",
			a.Supplement.Name, formatAmount(-a.Remaining), a.Supplement.Unit)))
	}
	if d.Kratom != nil && d.Kratom.Any() {
		ctx.println()
		ctx.printKratom(*d.Kratom)
	}
	return nil
}

func (c *Context) printKratom(r dosage.KratomReport) {
	g := r.Guideline
	c.printf("%s: %s capsules, %.1f g, ~%.1f doses (largest dose %s capsules)\n",
		g.Name, formatAmount(r.Capsules), r.Grams, r.Doses, formatAmount(r.LargestDose))
	c.printf("  guideline: %s g/day, ceiling %s capsules, %s capsules per dose\n",
		g.GramsPerDay, formatAmount(g.CapsuleCeiling), g.PerDoseCapsules)
	for _, msg := range r.Messages() {
		if r.Warn() {
			c.println(warnStyle.Render("  ⚠ " + msg))
		} else {
			c.println("  " + msg)
		}
	}
}

func (c *Context) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.println(string(data))
	return nil
}

type KratomCmd struct {
	Date string `help:"Day to report (YYYY-MM-DD), defaults to today."`
}

func (c *KratomCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	now := svc.Now()
	if c.Date != "" {
		day, err := parseDate(c.Date, svc.Location())
		if err != nil {
			return err
		}
		now = day
	}
	d, err := svc.Today(context.Background(), user.ID, now)
	if err != nil {
		return err
	}
	if d.Kratom == nil {
		return fmt.Errorf("guideline set %s has no kratom entry", svc.Guidelines().Version)
	}
	if !d.Kratom.Any() {
		ctx.printf("No %s intakes on %s.\n", d.Kratom.Guideline.Name, d.Date)
		return nil
	}
	ctx.printKratom(*d.Kratom)
	return nil
}

type GuidelinesCmd struct {
	JSON bool `help:"Print the guideline set as JSON."`
}

func (c *GuidelinesCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	set := svc.Guidelines()
	if c.JSON {
		return ctx.printJSON(set)
	}

	ctx.printf("Guidelines %s\n\n", set.Version)
	keys := make([]string, 0, len(set.Substances))
	for key := range set.Substances {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		s := set.Substances[key]
		ctx.printf("%s (%s mg capsules)\n", s.Name, formatAmount(s.CapsuleMg))
		rows := make([][]string, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, []string{r.Category, r.Value})
		}
		ctx.printTable([]string{"Category", "Value"}, rows)
		for _, w := range s.Warnings {
			ctx.println(warnStyle.Render("⚠ " + w))
		}
		ctx.println()
	}
	return nil
}

type InsightCmd struct{}

func (c *InsightCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if !svc.InsightEnabled() {
		ctx.println("Insight generation is not configured. Set SUPPLEFLOW_INSIGHT_PROVIDER and an API key.")
		return nil
	}
	text, ok := svc.Insight(context.Background(), user.ID, svc.Now())
	if !ok {
		ctx.println("No insight available right now.")
		return nil
	}
	ctx.println(text)
	return nil
}
