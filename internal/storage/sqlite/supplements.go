package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/utils"
)

const supplementColumns = `id, user_id, name, description, dosage_unit, recommended_dosage, max_dosage, capsule_mg, created_at, updated_at`

func scanSupplement(row scanner) (models.Supplement, error) {
	var sup models.Supplement
	var capsuleMg sql.NullFloat64
	var createdAt, updatedAt string
	err := row.Scan(&sup.ID, &sup.UserID, &sup.Name, &sup.Description, &sup.Unit,
		&sup.RecommendedDosage, &sup.MaxDosage, &capsuleMg, &createdAt, &updatedAt)
	if err != nil {
		return models.Supplement{}, err
	}
	if capsuleMg.Valid {
		sup.CapsuleMg = &capsuleMg.Float64
	}
	if sup.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.Supplement{}, err
	}
	if sup.UpdatedAt, err = utils.ParseTimestamp(updatedAt); err != nil {
		return models.Supplement{}, err
	}
	return sup, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *Store) AddSupplement(sup models.Supplement) error {
	_, err := s.db.Exec(`INSERT INTO supplements (`+supplementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sup.ID, sup.UserID, sup.Name, sup.Description, sup.Unit, sup.RecommendedDosage, sup.MaxDosage,
		nullFloat(sup.CapsuleMg), utils.FormatTimestamp(sup.CreatedAt), utils.FormatTimestamp(sup.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert supplement: %w", err)
	}
	return nil
}

func (s *Store) GetSupplement(userID, id string) (models.Supplement, error) {
	sup, err := scanSupplement(s.db.QueryRow(
		`SELECT `+supplementColumns+` FROM supplements WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Supplement{}, storage.NotFound(storage.KindSupplement, id)
	}
	return sup, err
}

func (s *Store) GetAllSupplements(userID string) ([]models.Supplement, error) {
	rows, err := s.db.Query(
		`SELECT `+supplementColumns+` FROM supplements WHERE user_id = ? ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	supplements := []models.Supplement{}
	for rows.Next() {
		sup, err := scanSupplement(rows)
		if err != nil {
			return nil, err
		}
		supplements = append(supplements, sup)
	}
	return supplements, rows.Err()
}

func (s *Store) UpdateSupplement(sup models.Supplement) error {
	res, err := s.db.Exec(`
		UPDATE supplements
		SET name = ?, description = ?, dosage_unit = ?, recommended_dosage = ?, max_dosage = ?,
		    capsule_mg = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		sup.Name, sup.Description, sup.Unit, sup.RecommendedDosage, sup.MaxDosage,
		nullFloat(sup.CapsuleMg), utils.FormatTimestamp(sup.UpdatedAt), sup.UserID, sup.ID)
	if err != nil {
		return fmt.Errorf("failed to update supplement: %w", err)
	}
	return requireRow(res, storage.KindSupplement, sup.ID)
}

func (s *Store) DeleteSupplement(userID, id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM supplements WHERE user_id = ? AND id = ?`, userID, id)
		if err != nil {
			return fmt.Errorf("failed to delete supplement: %w", err)
		}
		if err := requireRow(res, storage.KindSupplement, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM intakes WHERE user_id = ? AND supplement_id = ?`, userID, id); err != nil {
			return fmt.Errorf("failed to delete intakes: %w", err)
		}
		return nil
	})
}
