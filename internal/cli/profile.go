package cli

import (
	"github.com/julianstephens/suppleflow/internal/constants"
)

type ProfileCmd struct {
	Add    ProfileAddCmd    `cmd:"" help:"Create a profile."`
	List   ProfileListCmd   `cmd:"" help:"List profiles."`
	Rename ProfileRenameCmd `cmd:"" help:"Rename a profile."`
	Delete ProfileDeleteCmd `cmd:"" help:"Delete a profile with all of its data."`
}

type ProfileAddCmd struct {
	Username string `arg:"" help:"Unique username."`
}

func (c *ProfileAddCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	p, err := svc.CreateProfile(c.Username)
	if err != nil {
		return err
	}
	ctx.printf("✓ Created profile %s (%s)\n", p.Username, p.ID)
	return nil
}

type ProfileListCmd struct{}

func (c *ProfileListCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	profiles, err := svc.Profiles()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		ctx.println("No profiles found. Create one with 'suppleflow profile add <username>'.")
		return nil
	}

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{p.Username, p.ID, p.CreatedAt.In(svc.Location()).Format(constants.DateFormat)})
	}
	ctx.printTable([]string{"Username", "ID", "Created"}, rows)
	return nil
}

type ProfileRenameCmd struct {
	User     string `arg:"" help:"Profile ID or current username."`
	Username string `arg:"" help:"New username."`
}

func (c *ProfileRenameCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	p, err := svc.ResolveUser(c.User)
	if err != nil {
		return err
	}
	renamed, err := svc.RenameProfile(p.ID, c.Username)
	if err != nil {
		return err
	}
	ctx.printf("✓ Renamed %s to %s\n", p.Username, renamed.Username)
	return nil
}

type ProfileDeleteCmd struct {
	User string `arg:"" help:"Profile ID or username."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ProfileDeleteCmd) Run(ctx *Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	p, err := svc.ResolveUser(c.User)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.confirm("Delete profile " + p.Username + " and all of its supplements and intakes?")
		if err != nil || !ok {
			return err
		}
	}
	if err := svc.DeleteProfile(p.ID); err != nil {
		return err
	}
	ctx.printf("✓ Deleted profile %s\n", p.Username)
	return nil
}
