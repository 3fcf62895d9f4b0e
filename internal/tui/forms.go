package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/tracker"
	"github.com/julianstephens/suppleflow/internal/utils"
)

func (m Model) openIntakeForm(s models.Supplement) (Model, tea.Cmd) {
	m.intakeForm = &IntakeFormModel{Supplement: s}
	if s.RecommendedDosage > 0 {
		m.intakeForm.Dosage = strconv.FormatFloat(s.RecommendedDosage, 'g', -1, 64)
	}
	f := m.intakeForm
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Dosage of %s (%s)", s.Name, s.Unit)).
				Value(&f.Dosage).
				Validate(validateAmount(true)),
			huh.NewInput().
				Title("Time taken (HH:MM, blank for now)").
				Value(&f.Time).
				Validate(validateClock),
			huh.NewText().
				Title("Notes").
				Value(&f.Notes),
		),
	).WithShowHelp(true)
	m.previousState = m.state
	m.state = constants.StateLogIntake
	return m, m.form.Init()
}

func (m Model) openSupplementForm() (Model, tea.Cmd) {
	m.supplementForm = &SupplementFormModel{Unit: constants.DefaultUnit}
	f := m.supplementForm
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&f.Description),
			huh.NewInput().
				Title("Dosage unit").
				Value(&f.Unit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Maximum daily dosage").
				Value(&f.Max).
				Validate(validateAmount(true)),
			huh.NewInput().
				Title("Recommended dosage (optional)").
				Value(&f.Recommended).
				Validate(validateAmount(false)),
			huh.NewInput().
				Title("Milligrams per capsule (optional)").
				Value(&f.CapsuleMg).
				Validate(validateAmount(false)),
		),
	).WithShowHelp(true)
	m.previousState = m.state
	m.state = constants.StateAddSupplement
	return m, m.form.Init()
}

// closeForm returns to the tab the form was opened from.
func (m *Model) closeForm() {
	m.form = nil
	m.intakeForm = nil
	m.supplementForm = nil
	m.state = m.previousState
}

func (m Model) submitIntake() (Model, tea.Cmd) {
	f := m.intakeForm
	m.closeForm()
	if f == nil {
		return m, nil
	}

	dosage, err := parseAmount(f.Dosage)
	if err != nil {
		return m, m.setError(err)
	}
	takenAt, err := utils.ResolveTakenAt("", strings.TrimSpace(f.Time), m.svc.Now(), m.svc.Location())
	if err != nil {
		return m, m.setError(err)
	}

	intake, err := m.svc.LogIntake(m.profile.ID, tracker.IntakeInput{
		SupplementID: f.Supplement.ID,
		Dosage:       dosage,
		TakenAt:      takenAt,
		Notes:        strings.TrimSpace(f.Notes),
	})
	if err != nil {
		return m, m.setError(err)
	}
	status := m.setStatus(fmt.Sprintf("Logged %g %s of %s", intake.Dosage, f.Supplement.Unit, f.Supplement.Name), false)
	return m, tea.Batch(status, m.refresh())
}

func (m Model) submitSupplement() (Model, tea.Cmd) {
	f := m.supplementForm
	m.closeForm()
	if f == nil {
		return m, nil
	}

	input := tracker.SupplementInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Unit:        strings.TrimSpace(f.Unit),
	}
	var err error
	if input.MaxDosage, err = parseAmount(f.Max); err != nil {
		return m, m.setError(err)
	}
	if strings.TrimSpace(f.Recommended) != "" {
		if input.RecommendedDosage, err = parseAmount(f.Recommended); err != nil {
			return m, m.setError(err)
		}
	}
	if strings.TrimSpace(f.CapsuleMg) != "" {
		mg, err := parseAmount(f.CapsuleMg)
		if err != nil {
			return m, m.setError(err)
		}
		input.CapsuleMg = &mg
	}

	s, err := m.svc.AddSupplement(m.profile.ID, input)
	if err != nil {
		return m, m.setError(err)
	}
	return m, tea.Batch(m.setStatus("Added "+s.Name, false), m.refresh())
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if v < 0 {
		return 0, errors.New("amount cannot be negative")
	}
	return v, nil
}

func validateAmount(required bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if required {
				return errors.New("required")
			}
			return nil
		}
		v, err := parseAmount(s)
		if err != nil {
			return err
		}
		if required && v == 0 {
			return errors.New("must be greater than zero")
		}
		return nil
	}
}

func validateClock(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s)); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}
