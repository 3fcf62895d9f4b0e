package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage/sqlite"
	"github.com/julianstephens/suppleflow/internal/tracker"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

type stubGenerator struct{ reply string }

func (g stubGenerator) Name() string { return "stub" }

func (g stubGenerator) Generate(context.Context, string, insight.Options) (string, error) {
	return g.reply, nil
}

type fixture struct {
	svc         *tracker.Service
	profile     models.Profile
	magnesium   models.Supplement
	morningDose models.Intake
}

func setup(t *testing.T, opts ...tracker.Option) fixture {
	t.Helper()
	statusTTL = time.Millisecond

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	n := 0
	base := []tracker.Option{
		tracker.WithClock(func() time.Time { return time.Date(2026, 3, 1, 21, 0, 0, 0, testLoc) }),
		tracker.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}
	svc, err := tracker.New(store, testLoc, append(base, opts...)...)
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}

	profile, err := svc.CreateProfile("alice")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	mg, err := svc.AddSupplement(profile.ID, tracker.SupplementInput{Name: "Magnesium", MaxDosage: 400})
	if err != nil {
		t.Fatalf("AddSupplement: %v", err)
	}
	dose, err := svc.LogIntake(profile.ID, tracker.IntakeInput{
		SupplementID: mg.ID,
		Dosage:       300,
		TakenAt:      time.Date(2026, 3, 1, 8, 0, 0, 0, testLoc),
	})
	if err != nil {
		t.Fatalf("LogIntake: %v", err)
	}
	return fixture{svc: svc, profile: profile, magnesium: mg, morningDose: dose}
}

// run executes cmd and feeds every resulting message back into the model
// until no commands remain. Status expiry is dropped so assertions can see it.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, clearStatusMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, more := m.Update(msg)
			m = next.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return run(t, next.(Model), cmd)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func start(t *testing.T, f fixture) Model {
	t.Helper()
	m := NewModel(f.svc, f.profile)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return run(t, m, m.Init())
}

func TestInitLoadsData(t *testing.T) {
	m := start(t, setup(t))

	if view := m.View(); !strings.Contains(view, "Magnesium") || !strings.Contains(view, "300 / 400 mg") {
		t.Errorf("today view missing the aggregate:\n%s", view)
	}
	if got := m.historyModel.Month().Total(); got != 1 {
		t.Errorf("month total = %d, want 1", got)
	}
	if got := m.historyModel.Selected(); got != "2026-03-01" {
		t.Errorf("selected day = %q, want 2026-03-01", got)
	}
	if sel, ok := m.supplementList.Selected(); !ok || sel.Name != "Magnesium" {
		t.Errorf("supplement list selection = %+v, %v", sel, ok)
	}
}

func TestTabCycling(t *testing.T) {
	m := start(t, setup(t))

	want := []constants.SessionState{constants.StateSupplements, constants.StateHistory, constants.StateInsight, constants.StateToday}
	for _, w := range want {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.state != w {
			t.Fatalf("state = %v, want %v", m.state, w)
		}
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != constants.StateInsight {
		t.Errorf("shift+tab from Today = %v, want Insight", m.state)
	}
}

func TestDeleteSupplementRequiresConfirmation(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateSupplements

	m = send(t, m, keyRunes("d"))
	if m.state != constants.StateConfirmDelete || m.pendingDelete == nil {
		t.Fatalf("expected confirmation, state = %v", m.state)
	}
	if !strings.Contains(m.View(), "Delete Magnesium and all of its intakes?") {
		t.Errorf("confirmation prompt missing:\n%s", m.View())
	}

	m = send(t, m, keyRunes("n"))
	if m.state != constants.StateSupplements || m.pendingDelete != nil {
		t.Fatalf("cancel did not return to the list, state = %v", m.state)
	}
	if _, err := f.svc.Supplement(f.profile.ID, f.magnesium.ID); err != nil {
		t.Fatalf("supplement deleted after cancel: %v", err)
	}

	m = send(t, m, keyRunes("d"))
	m = send(t, m, keyRunes("y"))
	if m.state != constants.StateSupplements {
		t.Errorf("state after delete = %v", m.state)
	}
	if m.status != "Deleted supplement" || m.statusIsError {
		t.Errorf("status = %q (error %v)", m.status, m.statusIsError)
	}
	if _, ok := m.supplementList.Selected(); ok {
		t.Error("list still shows the deleted supplement")
	}
	if got := m.historyModel.Month().Total(); got != 0 {
		t.Errorf("month total after cascade = %d, want 0", got)
	}
}

func TestFailedDeleteKeepsData(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateSupplements
	m = send(t, m, keyRunes("d"))

	// Removed behind the model's back, so the confirmed delete fails.
	if err := f.svc.DeleteSupplement(f.profile.ID, f.magnesium.ID); err != nil {
		t.Fatalf("DeleteSupplement: %v", err)
	}
	next, _ := m.Update(keyRunes("y"))
	m = next.(Model)

	if !m.statusIsError || !strings.HasPrefix(m.status, "Error: ") {
		t.Errorf("expected an error status, got %q", m.status)
	}
	if m.state != constants.StateSupplements {
		t.Errorf("state = %v, want Supplements", m.state)
	}
	if sel, ok := m.supplementList.Selected(); !ok || sel.ID != f.magnesium.ID {
		t.Error("displayed list changed after a failed delete")
	}
}

func TestStatusExpires(t *testing.T) {
	m := start(t, setup(t))
	m.setStatus("first", false)
	stale := clearStatusMsg{seq: m.statusSeq}
	m.setStatus("second", false)

	next, _ := m.Update(stale)
	m = next.(Model)
	if m.status != "second" {
		t.Errorf("stale expiry cleared a newer status: %q", m.status)
	}

	next, _ = m.Update(clearStatusMsg{seq: m.statusSeq})
	if m = next.(Model); m.status != "" {
		t.Errorf("status = %q, want cleared", m.status)
	}
}

func TestSubmitIntake(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateSupplements

	m, _ = m.openIntakeForm(f.magnesium)
	if m.state != constants.StateLogIntake {
		t.Fatalf("state = %v, want LogIntake", m.state)
	}
	m.intakeForm.Dosage = "200"
	m.intakeForm.Time = "12:30"
	m.intakeForm.Notes = "  with lunch "

	m, cmd := m.submitIntake()
	m = run(t, m, cmd)

	if m.state != constants.StateSupplements || m.form != nil {
		t.Errorf("form not closed, state = %v", m.state)
	}
	if m.status != "Logged 200 mg of Magnesium" {
		t.Errorf("status = %q", m.status)
	}

	intakes, err := f.svc.Intakes(f.profile.ID, models.IntakeFilter{})
	if err != nil {
		t.Fatalf("Intakes: %v", err)
	}
	if len(intakes) != 2 {
		t.Fatalf("expected 2 intakes, got %d", len(intakes))
	}
	latest := intakes[0]
	if got := latest.TakenAt.In(testLoc).Format(constants.TimeFormat); got != "12:30" {
		t.Errorf("taken at %s, want 12:30", got)
	}
	if latest.Notes != "with lunch" {
		t.Errorf("notes = %q", latest.Notes)
	}
	// The form returns to the supplement list; the refreshed totals live on the Today tab.
	m.state = constants.StateToday
	if view := m.View(); !strings.Contains(view, "500 / 400 mg") {
		t.Errorf("today view not refreshed:\n%s", view)
	}
}

func TestSubmitIntakeRejectsBadInput(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateSupplements

	m, _ = m.openIntakeForm(f.magnesium)
	m.intakeForm.Dosage = "lots"
	m, _ = m.submitIntake()

	if !m.statusIsError {
		t.Errorf("expected an error status, got %q", m.status)
	}
	intakes, _ := f.svc.Intakes(f.profile.ID, models.IntakeFilter{})
	if len(intakes) != 1 {
		t.Errorf("expected no new intake, got %d total", len(intakes))
	}
}

func TestSubmitSupplement(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateSupplements

	m, _ = m.openSupplementForm()
	if m.supplementForm.Unit != constants.DefaultUnit {
		t.Errorf("default unit = %q", m.supplementForm.Unit)
	}
	m.supplementForm.Name = "Kratom"
	m.supplementForm.Unit = "capsules"
	m.supplementForm.Max = "16"
	m.supplementForm.CapsuleMg = "500"

	m, cmd := m.submitSupplement()
	m = run(t, m, cmd)

	s, err := f.svc.ResolveSupplement(f.profile.ID, "kratom")
	if err != nil {
		t.Fatalf("ResolveSupplement: %v", err)
	}
	if s.MaxDosage != 16 || s.CapsuleMg == nil || *s.CapsuleMg != 500 {
		t.Errorf("unexpected supplement %+v", s)
	}
	if m.status != "Added Kratom" {
		t.Errorf("status = %q", m.status)
	}
}

func TestEscCancelsForm(t *testing.T) {
	m := start(t, setup(t))
	m.state = constants.StateSupplements

	m, _ = m.openSupplementForm()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != constants.StateSupplements || m.form != nil || m.supplementForm != nil {
		t.Errorf("form still open, state = %v", m.state)
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := start(t, setup(t))
	m.state = constants.StateHistory

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if got := m.historyModel.Month().Month; got != time.February {
		t.Errorf("month = %v, want February", got)
	}
	if got := m.historyModel.Selected(); got != "2026-02-28" {
		t.Errorf("selected = %q, want 2026-02-28", got)
	}

	m = send(t, m, keyRunes("]"))
	if got := m.historyModel.Month().Month; got != time.March {
		t.Errorf("month = %v, want March", got)
	}
	m = send(t, m, keyRunes("L"))
	if got := m.historyModel.Selected(); got != "2026-03-01" {
		t.Errorf("latest = %q, want 2026-03-01", got)
	}
	if !strings.Contains(m.View(), "08:00") {
		t.Errorf("day drill-down missing the intake:\n%s", m.View())
	}
}

func TestDeleteIntakeFromHistory(t *testing.T) {
	f := setup(t)
	m := start(t, f)
	m.state = constants.StateHistory

	m = send(t, m, keyRunes("d"))
	if m.pendingDelete == nil || m.pendingDelete.id != f.morningDose.ID {
		t.Fatalf("pending delete = %+v", m.pendingDelete)
	}
	m = send(t, m, keyRunes("y"))

	if _, err := f.svc.Intake(f.profile.ID, f.morningDose.ID); err == nil {
		t.Error("intake still stored")
	}
	if got := m.historyModel.Month().Total(); got != 0 {
		t.Errorf("month total = %d, want 0", got)
	}
}

func TestInsight(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		m := start(t, setup(t))
		m.state = constants.StateInsight
		m = send(t, m, keyRunes("g"))
		if m.insightLoading || !strings.Contains(m.View(), "not configured") {
			t.Errorf("unexpected insight view:\n%s", m.View())
		}
	})

	t.Run("generated", func(t *testing.T) {
		sum := insight.NewSummarizer(stubGenerator{reply: "Magnesium is close to its limit."}, insight.WithRetries(0, time.Millisecond))
		m := start(t, setup(t, tracker.WithSummarizer(sum)))
		m.state = constants.StateInsight
		m = send(t, m, keyRunes("g"))
		if m.insight != "Magnesium is close to its limit." {
			t.Errorf("insight = %q", m.insight)
		}
		if !strings.Contains(m.View(), "close to its limit") {
			t.Errorf("insight not rendered:\n%s", m.View())
		}
	})
}
