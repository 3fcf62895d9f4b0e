package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/suppleflow/internal/storage"
)

type ExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
	All    bool   `help:"Export every profile instead of the current user."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	userID := ""
	if !c.All {
		_, user, err := ctx.CurrentUser()
		if err != nil {
			return err
		}
		userID = user.ID
	}

	snap, err := storage.Export(ctx.Store, userID)
	if err != nil {
		return err
	}

	var w io.Writer = ctx.out()
	if c.Output != "" {
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", c.Output, err)
		}
		defer f.Close()
		w = f
	}
	if err := storage.WriteSnapshot(w, snap); err != nil {
		return err
	}
	if c.Output != "" {
		ctx.printf("✓ Exported %d profile(s), %d supplement(s), %d intake(s) to %s\n",
			len(snap.Profiles), len(snap.Supplements), len(snap.Intakes), c.Output)
	}
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Snapshot file written by 'suppleflow export'." type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	snap, err := storage.ReadSnapshot(f)
	if err != nil {
		return err
	}
	stats, err := storage.Import(ctx.Store, snap)
	if err != nil {
		return fmt.Errorf("import failed after %s: %w", stats, err)
	}
	ctx.printf("✓ %s\n", stats)
	return nil
}
