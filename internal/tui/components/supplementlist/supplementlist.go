package supplementlist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/suppleflow/internal/models"
)

type AddSupplementMsg struct{}

type DeleteSupplementMsg struct {
	Supplement models.Supplement
}

type LogIntakeMsg struct {
	Supplement models.Supplement
}

type Item struct {
	Supplement models.Supplement
}

func (i Item) Title() string { return i.Supplement.Name }

func (i Item) Description() string {
	s := i.Supplement
	parts := []string{fmt.Sprintf("max %g %s/day", s.MaxDosage, s.Unit)}
	if s.RecommendedDosage > 0 {
		parts = append(parts, fmt.Sprintf("recommended %g %s", s.RecommendedDosage, s.Unit))
	}
	if s.CapsuleMg != nil {
		parts = append(parts, fmt.Sprintf("%g mg capsules", *s.CapsuleMg))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Supplement.Name }

type KeyMap struct {
	Add    key.Binding
	Log    key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Log: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter", "log intake"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(supplements []models.Supplement, width, height int) Model {
	l := list.New(items(supplements), list.NewDefaultDelegate(), width, height)
	l.Title = "Supplements"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Log, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

func items(supplements []models.Supplement) []list.Item {
	out := make([]list.Item, len(supplements))
	for i, s := range supplements {
		out[i] = Item{Supplement: s}
	}
	return out
}

func (m *Model) SetSupplements(supplements []models.Supplement) {
	m.list.SetItems(items(supplements))
}

// Selected returns the highlighted supplement, if any.
func (m Model) Selected() (models.Supplement, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Supplement, ok
}

// Filtering reports whether the filter input is capturing keys.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddSupplementMsg{} }
		case key.Matches(msg, m.keys.Log):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return LogIntakeMsg{Supplement: s} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if s, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteSupplementMsg{Supplement: s} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No supplements yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
