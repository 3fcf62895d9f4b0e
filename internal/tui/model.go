package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/suppleflow/internal/calendar"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/tracker"
	"github.com/julianstephens/suppleflow/internal/tui/components/history"
	"github.com/julianstephens/suppleflow/internal/tui/components/supplementlist"
	"github.com/julianstephens/suppleflow/internal/tui/components/today"
)

// statusTTL is how long a status line stays visible.
var statusTTL = 4 * time.Second

var tabs = []constants.SessionState{
	constants.StateToday,
	constants.StateSupplements,
	constants.StateHistory,
	constants.StateInsight,
}

var tabTitles = map[constants.SessionState]string{
	constants.StateToday:       "Today",
	constants.StateSupplements: "Supplements",
	constants.StateHistory:     "History",
	constants.StateInsight:     "Insight",
}

type IntakeFormModel struct {
	Supplement models.Supplement
	Dosage     string
	Time       string
	Notes      string
}

type SupplementFormModel struct {
	Name        string
	Description string
	Unit        string
	Recommended string
	Max         string
	CapsuleMg   string
}

type deleteTarget struct {
	kind  string
	id    string
	label string
}

type (
	dashboardMsg struct {
		dashboard tracker.Dashboard
		err       error
	}
	monthMsg struct {
		month calendar.Month
		err   error
	}
	dayMsg struct {
		date    string
		intakes []models.Intake
		err     error
	}
	insightMsg struct {
		text string
		ok   bool
	}
	clearStatusMsg struct {
		seq int
	}
)

type Model struct {
	svc            *tracker.Service
	profile        models.Profile
	state          constants.SessionState
	previousState  constants.SessionState
	keys           KeyMap
	help           help.Model
	todayModel     today.Model
	supplementList supplementlist.Model
	historyModel   history.Model
	form           *huh.Form
	intakeForm     *IntakeFormModel
	supplementForm *SupplementFormModel
	pendingDelete  *deleteTarget
	insight        string
	insightLoading bool
	insightTried   bool
	status         string
	statusIsError  bool
	statusSeq      int
	quitting       bool
	width          int
	height         int
}

func NewModel(svc *tracker.Service, profile models.Profile) Model {
	date, year, month := calendar.Today(svc.Now(), svc.Location())
	return Model{
		svc:            svc,
		profile:        profile,
		state:          constants.StateToday,
		keys:           DefaultKeyMap(),
		help:           help.New(),
		todayModel:     today.New(0, 0, svc.Location()),
		supplementList: supplementlist.New(nil, 0, 0),
		historyModel:   history.New(calendar.Build(year, month, svc.Location(), nil), date),
	}
}

func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	if m.state == constants.StateInsight {
		keys = append(keys, m.keys.Generate)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	var actions []key.Binding
	switch m.state {
	case constants.StateSupplements:
		k := supplementlist.DefaultKeyMap()
		actions = []key.Binding{k.Add, k.Log, k.Delete}
	case constants.StateHistory:
		k := m.historyModel.Keys()
		actions = []key.Binding{k.PrevDay, k.NextDay, k.PrevMonth, k.NextMonth, k.Latest, k.Delete}
	case constants.StateInsight:
		actions = []key.Binding{m.keys.Generate}
	}
	return [][]key.Binding{global, actions}
}

// refresh reloads today's dashboard and the month and day shown in History.
func (m Model) refresh() tea.Cmd {
	month := m.historyModel.Month()
	return tea.Batch(
		m.loadToday(),
		m.loadMonth(month.Year, month.Month),
		m.loadDay(m.historyModel.Selected()),
	)
}

func (m Model) loadToday() tea.Cmd {
	svc, userID := m.svc, m.profile.ID
	return func() tea.Msg {
		d, err := svc.Today(context.Background(), userID, svc.Now())
		return dashboardMsg{dashboard: d, err: err}
	}
}

func (m Model) loadMonth(year int, month time.Month) tea.Cmd {
	svc, userID := m.svc, m.profile.ID
	return func() tea.Msg {
		cal, err := svc.Month(userID, year, month)
		return monthMsg{month: cal, err: err}
	}
}

func (m Model) loadDay(date string) tea.Cmd {
	svc, userID := m.svc, m.profile.ID
	return func() tea.Msg {
		intakes, err := svc.Day(userID, date)
		return dayMsg{date: date, intakes: intakes, err: err}
	}
}

func (m Model) loadInsight() tea.Cmd {
	svc, userID := m.svc, m.profile.ID
	return func() tea.Msg {
		text, ok := svc.Insight(context.Background(), userID, svc.Now())
		return insightMsg{text: text, ok: ok}
	}
}

// setStatus shows msg until statusTTL passes or another status replaces it.
func (m *Model) setStatus(msg string, isError bool) tea.Cmd {
	m.statusSeq++
	m.status = msg
	m.statusIsError = isError
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) setError(err error) tea.Cmd {
	return m.setStatus("Error: "+err.Error(), true)
}
