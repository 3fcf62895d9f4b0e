package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/suppleflow/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = docStyle.Render(m.todayModel.View())
	case constants.StateSupplements:
		content = docStyle.Render(m.supplementList.View())
	case constants.StateHistory:
		content = docStyle.Render(m.historyModel.View())
	case constants.StateInsight:
		content = docStyle.Render(m.viewInsight())
	case constants.StateLogIntake, constants.StateAddSupplement:
		if m.form != nil {
			content = docStyle.Render(m.form.View())
		}
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active > constants.StateInsight {
		active = m.previousState
	}
	var rendered []string
	for _, state := range tabs {
		if state == active {
			rendered = append(rendered, activeTabStyle.Render(tabTitles[state]))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tabTitles[state]))
		}
	}
	rendered = append(rendered, userStyle.Render("  "+m.profile.Username))
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) viewInsight() string {
	switch {
	case !m.svc.InsightEnabled():
		return "Insight generation is not configured.\nSet SUPPLEFLOW_INSIGHT_PROVIDER and an API key to enable it."
	case m.insightLoading:
		return "Generating insight..."
	case m.insight != "":
		return insightStyle.Render(m.insight)
	case m.insightTried:
		return "No insight available. Log some intakes today and try again."
	default:
		return "Press 'g' to generate an insight for today."
	}
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusIsError {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	label := ""
	if m.pendingDelete != nil {
		label = m.pendingDelete.label
	}
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+label+"?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
