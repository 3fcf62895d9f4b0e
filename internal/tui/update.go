package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/tui/components/history"
	"github.com/julianstephens/suppleflow/internal/tui/components/supplementlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-6, 1)
		m.todayModel.SetSize(msg.Width, h)
		m.supplementList.SetSize(msg.Width, h)
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil

	// Load failures leave whatever was shown before in place.
	case dashboardMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		m.todayModel.SetDashboard(msg.dashboard)
		m.supplementList.SetSupplements(msg.dashboard.Supplements)
		m.historyModel.SetSupplements(msg.dashboard.Supplements)
		return m, nil

	case monthMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		m.historyModel.SetMonth(msg.month)
		return m, m.loadDay(m.historyModel.Selected())

	case dayMsg:
		if msg.err != nil {
			return m, m.setError(msg.err)
		}
		if msg.date != m.historyModel.Selected() {
			return m, nil
		}
		m.historyModel.SetDay(msg.date, msg.intakes)
		return m, nil

	case insightMsg:
		m.insightLoading = false
		m.insightTried = true
		if msg.ok {
			m.insight = msg.text
		}
		return m, nil

	case supplementlist.AddSupplementMsg:
		return m.openSupplementForm()

	case supplementlist.LogIntakeMsg:
		return m.openIntakeForm(msg.Supplement)

	case supplementlist.DeleteSupplementMsg:
		return m.confirmDelete(deleteTarget{
			kind:  "supplement",
			id:    msg.Supplement.ID,
			label: msg.Supplement.Name + " and all of its intakes",
		}), nil

	case history.DeleteIntakeMsg:
		return m.confirmDelete(deleteTarget{
			kind:  "intake",
			id:    msg.Intake.ID,
			label: fmt.Sprintf("the intake of %g logged at %s", msg.Intake.Dosage, msg.Intake.TakenAt.In(m.svc.Location()).Format(constants.TimeFormat)),
		}), nil

	case history.MonthChangedMsg:
		return m, m.loadMonth(msg.Year, msg.Month)

	case history.DaySelectedMsg:
		return m, m.loadDay(msg.Date)
	}

	switch m.state {
	case constants.StateLogIntake, constants.StateAddSupplement:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || (m.state == constants.StateSupplements && m.supplementList.Filtering()) {
		return m.updateActiveTab(msg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Tab):
		m.state = nextTab(m.state, 1)
		return m, nil
	case key.Matches(keyMsg, m.keys.ShiftTab):
		m.state = nextTab(m.state, -1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(keyMsg, m.keys.Refresh):
		return m, m.refresh()
	case m.state == constants.StateInsight && key.Matches(keyMsg, m.keys.Generate):
		if !m.svc.InsightEnabled() || m.insightLoading {
			return m, nil
		}
		m.insightLoading = true
		return m, m.loadInsight()
	}

	return m.updateActiveTab(msg)
}

func (m Model) updateActiveTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case constants.StateSupplements:
		m.supplementList, cmd = m.supplementList.Update(msg)
	case constants.StateHistory:
		m.historyModel, cmd = m.historyModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.closeForm()
		return m, nil
	}
	if m.form == nil {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateLogIntake {
			return m.submitIntake()
		}
		return m.submitSupplement()
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m Model) confirmDelete(target deleteTarget) Model {
	m.pendingDelete = &target
	m.previousState = m.state
	m.state = constants.StateConfirmDelete
	return m
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		target := m.pendingDelete
		m.pendingDelete = nil
		m.state = m.previousState
		if target == nil {
			return m, nil
		}

		var err error
		switch target.kind {
		case "supplement":
			err = m.svc.DeleteSupplement(m.profile.ID, target.id)
		case "intake":
			err = m.svc.DeleteIntake(m.profile.ID, target.id)
		}
		if err != nil {
			return m, m.setError(err)
		}
		return m, tea.Batch(m.setStatus("Deleted "+target.kind, false), m.refresh())

	case key.Matches(keyMsg, m.keys.Cancel):
		m.pendingDelete = nil
		m.state = m.previousState
	}
	return m, nil
}

func nextTab(state constants.SessionState, step int) constants.SessionState {
	for i, s := range tabs {
		if s == state {
			return tabs[(i+step+len(tabs))%len(tabs)]
		}
	}
	return constants.StateToday
}
