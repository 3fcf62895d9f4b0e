package cli

import (
	"github.com/julianstephens/suppleflow/internal/tracker"
)

type SupplementCmd struct {
	Add    SupplementAddCmd    `cmd:"" help:"Add a supplement."`
	Edit   SupplementEditCmd   `cmd:"" help:"Edit a supplement."`
	Delete SupplementDeleteCmd `cmd:"" help:"Delete a supplement and all of its intakes."`
	List   SupplementListCmd   `cmd:"" help:"List supplements."`
}

type SupplementAddCmd struct {
	Name        string   `arg:"" help:"Supplement name."`
	Max         float64  `required:"" help:"Maximum daily dosage."`
	Unit        string   `help:"Dosage unit." default:"mg"`
	Recommended float64  `help:"Recommended single dosage."`
	CapsuleMg   *float64 `name:"capsule-mg" help:"Milligrams per capsule."`
	Description string   `help:"Free-form description."`
}

func (c *SupplementAddCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := svc.AddSupplement(user.ID, tracker.SupplementInput{
		Name:              c.Name,
		Description:       c.Description,
		Unit:              c.Unit,
		RecommendedDosage: c.Recommended,
		MaxDosage:         c.Max,
		CapsuleMg:         c.CapsuleMg,
	})
	if err != nil {
		return err
	}
	ctx.printf("✓ Added %s (%s), max %s %s/day\n", s.Name, s.ID, formatAmount(s.MaxDosage), s.Unit)
	return nil
}

// SupplementEditCmd changes only the flags that were given.
type SupplementEditCmd struct {
	Supplement  string   `arg:"" help:"Supplement ID or name."`
	Name        *string  `help:"New name."`
	Max         *float64 `help:"Maximum daily dosage."`
	Unit        *string  `help:"Dosage unit."`
	Recommended *float64 `help:"Recommended single dosage."`
	CapsuleMg   *float64 `name:"capsule-mg" help:"Milligrams per capsule."`
	NoCapsule   bool     `help:"Clear the capsule size."`
	Description *string  `help:"Free-form description."`
}

func (c *SupplementEditCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := svc.ResolveSupplement(user.ID, c.Supplement)
	if err != nil {
		return err
	}

	in := tracker.SupplementInput{
		Name:              s.Name,
		Description:       s.Description,
		Unit:              s.Unit,
		RecommendedDosage: s.RecommendedDosage,
		MaxDosage:         s.MaxDosage,
		CapsuleMg:         s.CapsuleMg,
	}
	if c.Name != nil {
		in.Name = *c.Name
	}
	if c.Description != nil {
		in.Description = *c.Description
	}
	if c.Unit != nil {
		in.Unit = *c.Unit
	}
	if c.Recommended != nil {
		in.RecommendedDosage = *c.Recommended
	}
	if c.Max != nil {
		in.MaxDosage = *c.Max
	}
	if c.CapsuleMg != nil {
		in.CapsuleMg = c.CapsuleMg
	}
	if c.NoCapsule {
		in.CapsuleMg = nil
	}

	updated, err := svc.UpdateSupplement(user.ID, s.ID, in)
	if err != nil {
		return err
	}
	ctx.printf("✓ Updated %s\n", updated.Name)
	return nil
}

type SupplementDeleteCmd struct {
	Supplement string `arg:"" help:"Supplement ID or name."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *SupplementDeleteCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := svc.ResolveSupplement(user.ID, c.Supplement)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.confirm("Delete " + s.Name + " and all of its intakes?")
		if err != nil || !ok {
			return err
		}
	}
	if err := svc.DeleteSupplement(user.ID, s.ID); err != nil {
		return err
	}
	ctx.printf("✓ Deleted %s\n", s.Name)
	return nil
}

type SupplementListCmd struct{}

func (c *SupplementListCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	supplements, err := svc.Supplements(user.ID)
	if err != nil {
		return err
	}
	if len(supplements) == 0 {
		ctx.println("No supplements found")
		return nil
	}

	rows := make([][]string, 0, len(supplements))
	for _, s := range supplements {
		rows = append(rows, []string{
			s.Name,
			formatAmount(s.MaxDosage) + " " + s.Unit,
			formatAmount(s.RecommendedDosage),
			formatOptional(s.CapsuleMg),
			s.ID,
		})
	}
	ctx.printTable([]string{"Name", "Max/day", "Recommended", "Capsule mg", "ID"}, rows)
	return nil
}
