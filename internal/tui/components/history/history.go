package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/suppleflow/internal/calendar"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
)

// MonthChangedMsg asks the parent to load a different month. The selected
// date has already moved into it.
type MonthChangedMsg struct {
	Year  int
	Month time.Month
}

// DaySelectedMsg asks the parent to load the intakes of the newly selected date.
type DaySelectedMsg struct {
	Date string
}

type DeleteIntakeMsg struct {
	Intake models.Intake
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cellStyle     = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	activeStyle   = cellStyle.Foreground(lipgloss.Color("42")).Bold(true)
	selectedStyle = cellStyle.Background(lipgloss.Color("236")).Foreground(lipgloss.Color("205"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type KeyMap struct {
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Latest    key.Binding
	Up        key.Binding
	Down      key.Binding
	Delete    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevDay:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next day")),
		PrevMonth: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next month")),
		Latest:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "latest day")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete intake")),
	}
}

type Model struct {
	keys        KeyMap
	month       calendar.Month
	selected    string
	intakes     []models.Intake
	cursor      int
	supplements map[string]models.Supplement
}

func New(month calendar.Month, selected string) Model {
	return Model{
		keys:        DefaultKeyMap(),
		month:       month,
		selected:    selected,
		supplements: map[string]models.Supplement{},
	}
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Selected() string { return m.selected }

func (m Model) Month() calendar.Month { return m.month }

func (m *Model) SetMonth(month calendar.Month) {
	m.month = month
	if !strings.HasPrefix(m.selected, fmt.Sprintf("%04d-%02d", month.Year, int(month.Month))) {
		m.selected = month.JumpLatest()
	}
}

func (m *Model) SetDay(date string, intakes []models.Intake) {
	m.selected = date
	m.intakes = intakes
	if m.cursor >= len(intakes) {
		m.cursor = max(len(intakes)-1, 0)
	}
}

func (m *Model) SetSupplements(supplements []models.Supplement) {
	m.supplements = make(map[string]models.Supplement, len(supplements))
	for _, s := range supplements {
		m.supplements[s.ID] = s
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.PrevDay):
		return m.moveDay(-1)
	case key.Matches(keyMsg, m.keys.NextDay):
		return m.moveDay(1)
	case key.Matches(keyMsg, m.keys.PrevMonth):
		y, mo := m.month.Prev()
		return m, func() tea.Msg { return MonthChangedMsg{Year: y, Month: mo} }
	case key.Matches(keyMsg, m.keys.NextMonth):
		y, mo := m.month.Next()
		return m, func() tea.Msg { return MonthChangedMsg{Year: y, Month: mo} }
	case key.Matches(keyMsg, m.keys.Latest):
		if latest := m.month.Latest; latest != "" {
			m.selected = latest
			return m, func() tea.Msg { return DaySelectedMsg{Date: latest} }
		}
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.intakes)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Delete):
		if m.cursor < len(m.intakes) {
			in := m.intakes[m.cursor]
			return m, func() tea.Msg { return DeleteIntakeMsg{Intake: in} }
		}
	}
	return m, nil
}

// moveDay selects the neighbouring date, crossing into the adjacent month when needed.
func (m Model) moveDay(delta int) (Model, tea.Cmd) {
	day, err := time.ParseInLocation(constants.DateFormat, m.selected, m.month.Start().Location())
	if err != nil {
		return m, nil
	}
	next := day.AddDate(0, 0, delta)
	m.selected = next.Format(constants.DateFormat)
	if next.Year() != m.month.Year || next.Month() != m.month.Month {
		return m, func() tea.Msg { return MonthChangedMsg{Year: next.Year(), Month: next.Month()} }
	}
	date := m.selected
	return m, func() tea.Msg { return DaySelectedMsg{Date: date} }
}

func (m Model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s   %s\n\n", headerStyle.Render(m.month.Start().Format("January 2006")),
		mutedStyle.Render(fmt.Sprintf("%d intakes", m.month.Total())))

	for _, d := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		b.WriteString(cellStyle.Render(d))
	}
	b.WriteByte('\n')
	for _, week := range m.month.Weeks() {
		for _, date := range week {
			b.WriteString(m.cell(date))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\n%s\n", headerStyle.Render(m.selected))
	if len(m.intakes) == 0 {
		b.WriteString(mutedStyle.Render("  no intakes") + "\n")
	}
	for i, in := range m.intakes {
		name := "unknown supplement"
		unit := constants.DefaultUnit
		if s, ok := m.supplements[in.SupplementID]; ok {
			name, unit = s.Name, s.Unit
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s  %-20s %g %s", cursor, in.TakenAt.In(m.month.Start().Location()).Format(constants.TimeFormat), name, in.Dosage, unit)
		if in.Notes != "" {
			line += mutedStyle.Render("  " + in.Notes)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) cell(date string) string {
	if date == "" {
		return cellStyle.Render("")
	}
	label := strings.TrimLeft(date[len(date)-2:], "0")
	if n := m.month.Counts[date]; n > 0 {
		label = fmt.Sprintf("%s·%d", label, n)
	}
	switch {
	case date == m.selected:
		return selectedStyle.Render(label)
	case m.month.Counts[date] > 0:
		return activeStyle.Render(label)
	default:
		return cellStyle.Render(label)
	}
}
