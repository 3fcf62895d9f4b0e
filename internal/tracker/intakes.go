package tracker

import (
	"strings"
	"time"

	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
)

// IntakeInput describes a dose. A zero TakenAt means "now" when logging and
// "unchanged" when editing.
type IntakeInput struct {
	SupplementID string    `json:"supplement_id"`
	Dosage       float64   `json:"dosage"`
	TakenAt      time.Time `json:"taken_at"`
	Notes        string    `json:"notes"`
}

func (s *Service) Intakes(userID string, filter models.IntakeFilter) ([]models.Intake, error) {
	return s.store.GetIntakes(userID, filter)
}

func (s *Service) Intake(userID, id string) (models.Intake, error) {
	return s.store.GetIntake(userID, id)
}

func (s *Service) LogIntake(userID string, in IntakeInput) (models.Intake, error) {
	if _, err := s.store.GetSupplement(userID, in.SupplementID); err != nil {
		return models.Intake{}, err
	}
	now := s.timestamp()
	takenAt := in.TakenAt
	if takenAt.IsZero() {
		takenAt = now
	}
	intake := models.Intake{
		ID:           s.newID(),
		UserID:       userID,
		SupplementID: in.SupplementID,
		Dosage:       in.Dosage,
		TakenAt:      models.NormalizeTime(takenAt),
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
	}
	if err := intake.Validate(); err != nil {
		return models.Intake{}, err
	}
	if err := s.store.AddIntake(intake); err != nil {
		return models.Intake{}, err
	}
	logger.Debug("Logged intake", "user", userID, "id", intake.ID, "supplement", intake.SupplementID, "dosage", intake.Dosage)
	return intake, nil
}

// EditIntake replaces an intake wholesale under the same ID. CreatedAt is kept.
func (s *Service) EditIntake(userID, id string, in IntakeInput) (models.Intake, error) {
	existing, err := s.store.GetIntake(userID, id)
	if err != nil {
		return models.Intake{}, err
	}
	if _, err := s.store.GetSupplement(userID, in.SupplementID); err != nil {
		return models.Intake{}, err
	}
	takenAt := existing.TakenAt
	if !in.TakenAt.IsZero() {
		takenAt = models.NormalizeTime(in.TakenAt)
	}
	replaced := models.Intake{
		ID:           existing.ID,
		UserID:       userID,
		SupplementID: in.SupplementID,
		Dosage:       in.Dosage,
		TakenAt:      takenAt,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    existing.CreatedAt,
	}
	if err := replaced.Validate(); err != nil {
		return models.Intake{}, err
	}
	if err := s.store.ReplaceIntake(replaced); err != nil {
		return models.Intake{}, err
	}
	return replaced, nil
}

func (s *Service) DeleteIntake(userID, id string) error {
	return s.store.DeleteIntake(userID, id)
}
