package tracker

import (
	"fmt"
	"strings"

	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

// SupplementInput holds the user-editable fields of a supplement.
type SupplementInput struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Unit              string   `json:"dosage_unit"`
	RecommendedDosage float64  `json:"recommended_dosage"`
	MaxDosage         float64  `json:"max_dosage"`
	CapsuleMg         *float64 `json:"capsule_mg"`
}

func (in SupplementInput) apply(sup *models.Supplement) {
	sup.Name = strings.TrimSpace(in.Name)
	sup.Description = strings.TrimSpace(in.Description)
	sup.Unit = unitOrDefault(in.Unit)
	sup.RecommendedDosage = in.RecommendedDosage
	sup.MaxDosage = in.MaxDosage
	sup.CapsuleMg = in.CapsuleMg
}

// Supplements lists the user's supplements, newest first.
func (s *Service) Supplements(userID string) ([]models.Supplement, error) {
	return s.store.GetAllSupplements(userID)
}

func (s *Service) Supplement(userID, id string) (models.Supplement, error) {
	return s.store.GetSupplement(userID, id)
}

// ResolveSupplement finds a supplement by ID, falling back to a
// case-insensitive name match.
func (s *Service) ResolveSupplement(userID, ref string) (models.Supplement, error) {
	sup, err := s.store.GetSupplement(userID, ref)
	if err == nil || !storage.IsNotFound(err) {
		return sup, err
	}
	all, err := s.store.GetAllSupplements(userID)
	if err != nil {
		return models.Supplement{}, err
	}
	var found []models.Supplement
	for _, candidate := range all {
		if strings.EqualFold(candidate.Name, strings.TrimSpace(ref)) {
			found = append(found, candidate)
		}
	}
	switch len(found) {
	case 0:
		return models.Supplement{}, storage.NotFound(storage.KindSupplement, ref)
	case 1:
		return found[0], nil
	default:
		return models.Supplement{}, fmt.Errorf("%w: %d supplements are named %q, use the ID", models.ErrInvalid, len(found), ref)
	}
}

func (s *Service) AddSupplement(userID string, in SupplementInput) (models.Supplement, error) {
	now := s.timestamp()
	sup := models.Supplement{
		ID:        s.newID(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(&sup)
	if err := sup.Validate(); err != nil {
		return models.Supplement{}, err
	}
	if err := s.store.AddSupplement(sup); err != nil {
		return models.Supplement{}, err
	}
	logger.Info("Added supplement", "user", userID, "id", sup.ID, "name", sup.Name)
	return sup, nil
}

func (s *Service) UpdateSupplement(userID, id string, in SupplementInput) (models.Supplement, error) {
	sup, err := s.store.GetSupplement(userID, id)
	if err != nil {
		return models.Supplement{}, err
	}
	in.apply(&sup)
	sup.UpdatedAt = s.timestamp()
	if err := sup.Validate(); err != nil {
		return models.Supplement{}, err
	}
	if err := s.store.UpdateSupplement(sup); err != nil {
		return models.Supplement{}, err
	}
	return sup, nil
}

// DeleteSupplement removes the supplement and every intake logged against it.
func (s *Service) DeleteSupplement(userID, id string) error {
	if err := s.store.DeleteSupplement(userID, id); err != nil {
		return err
	}
	logger.Info("Deleted supplement", "user", userID, "id", id)
	return nil
}
