package cli

import (
	"fmt"

	"github.com/julianstephens/suppleflow/internal/storage"
)

type DebugCmd struct {
	DBPath         DebugDBPathCmd         `cmd:"" help:"Show database path."`
	DumpSupplement DebugDumpSupplementCmd `cmd:"" help:"Dump supplement data as JSON."`
	DumpIntake     DebugDumpIntakeCmd     `cmd:"" help:"Dump intake data as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	return ctx.printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpSupplementCmd struct {
	ID string `arg:"" help:"ID of the supplement to dump."`
}

func (cmd *DebugDumpSupplementCmd) Run(ctx *Context) error {
	_, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	s, err := ctx.Store.GetSupplement(user.ID, cmd.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("supplement not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get supplement: %w", err)
	}
	return ctx.printJSON(s)
}

type DebugDumpIntakeCmd struct {
	ID string `arg:"" help:"ID of the intake to dump."`
}

func (cmd *DebugDumpIntakeCmd) Run(ctx *Context) error {
	_, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	in, err := ctx.Store.GetIntake(user.ID, cmd.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return fmt.Errorf("intake not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get intake: %w", err)
	}
	return ctx.printJSON(in)
}
