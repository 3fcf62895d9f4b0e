package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func (c *Context) printTable(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	c.println(t.Render())
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatAmount(*v)
}
