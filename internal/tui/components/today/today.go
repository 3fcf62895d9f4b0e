package today

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/dosage"
	"github.com/julianstephens/suppleflow/internal/tracker"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(22)

	amountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(26)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	overStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport  viewport.Model
	dashboard *tracker.Dashboard
	loc       *time.Location
}

func New(width, height int, loc *time.Location) Model {
	return Model{viewport: viewport.New(width, height), loc: loc}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.dashboard == nil {
		return "Loading today's intake..."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetDashboard(d tracker.Dashboard) {
	m.dashboard = &d
	m.render()
}

func (m *Model) render() {
	if m.dashboard == nil {
		return
	}
	m.viewport.SetContent(Render(*m.dashboard, m.loc))
}

// Render draws a dashboard as plain styled text.
func Render(d tracker.Dashboard, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", mutedStyle.Render(d.Date))

	if len(d.Aggregates) == 0 {
		b.WriteString("No supplements yet. Add one on the Supplements tab.\n")
	}
	for _, a := range d.Aggregates {
		b.WriteString(line(a, loc))
		b.WriteByte('\n')
	}

	if k := d.Kratom; k != nil && k.Any() {
		fmt.Fprintf(&b, "\n%s %g capsules, %.1f g, ~%.1f doses\n", nameStyle.Render(k.Guideline.Name), k.Capsules, k.Grams, k.Doses)
		for _, msg := range k.Messages() {
			b.WriteString(overStyle.Render("  ! "+msg) + "\n")
		}
	}
	return b.String()
}

func line(a dosage.DailyAggregate, loc *time.Location) string {
	s := a.Supplement
	amount := fmt.Sprintf("%g / %g %s", a.Total, s.MaxDosage, s.Unit)

	var status string
	switch {
	case a.Exceeded():
		status = overStyle.Render(fmt.Sprintf("over by %g", -a.Remaining))
	case a.Exhausted():
		status = okStyle.Render("done for today")
	default:
		status = okStyle.Render(fmt.Sprintf("%g left", a.Remaining))
	}
	if a.LastTaken != nil {
		status += mutedStyle.Render("  last " + a.LastTaken.TakenAt.In(loc).Format(constants.TimeFormat))
	}
	return nameStyle.Render(s.Name) + amountStyle.Render(amount) + status
}
