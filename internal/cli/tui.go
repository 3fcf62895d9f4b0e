package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/suppleflow/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *Context) error {
	svc, user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(svc, user), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}
