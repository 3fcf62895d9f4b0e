package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

const supplementColumns = `id, user_id, name, description, dosage_unit, recommended_dosage, max_dosage, capsule_mg, created_at, updated_at`

func scanSupplement(row scanner) (models.Supplement, error) {
	var sup models.Supplement
	var capsuleMg sql.NullFloat64
	err := row.Scan(&sup.ID, &sup.UserID, &sup.Name, &sup.Description, &sup.Unit,
		&sup.RecommendedDosage, &sup.MaxDosage, &capsuleMg, &sup.CreatedAt, &sup.UpdatedAt)
	if err != nil {
		return models.Supplement{}, err
	}
	if capsuleMg.Valid {
		sup.CapsuleMg = &capsuleMg.Float64
	}
	sup.CreatedAt = models.NormalizeTime(sup.CreatedAt)
	sup.UpdatedAt = models.NormalizeTime(sup.UpdatedAt)
	return sup, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *Store) AddSupplement(sup models.Supplement) error {
	_, err := s.db.Exec(`INSERT INTO supplements (`+supplementColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sup.ID, sup.UserID, sup.Name, sup.Description, sup.Unit, sup.RecommendedDosage, sup.MaxDosage,
		nullFloat(sup.CapsuleMg), sup.CreatedAt.UTC(), sup.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert supplement: %w", err)
	}
	return nil
}

func (s *Store) GetSupplement(userID, id string) (models.Supplement, error) {
	sup, err := scanSupplement(s.db.QueryRow(
		`SELECT `+supplementColumns+` FROM supplements WHERE user_id = $1 AND id = $2`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Supplement{}, storage.NotFound(storage.KindSupplement, id)
	}
	return sup, err
}

func (s *Store) GetAllSupplements(userID string) ([]models.Supplement, error) {
	rows, err := s.db.Query(
		`SELECT `+supplementColumns+` FROM supplements WHERE user_id = $1 ORDER BY created_at DESC, id ASC`, userID)
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
		SET name = $1, description = $2, dosage_unit = $3, recommended_dosage = $4, max_dosage = $5,
		    capsule_mg = $6, updated_at = $7
		WHERE user_id = $8 AND id = $9`,
		sup.Name, sup.Description, sup.Unit, sup.RecommendedDosage, sup.MaxDosage,
		nullFloat(sup.CapsuleMg), sup.UpdatedAt.UTC(), sup.UserID, sup.ID)
	if err != nil {
		return fmt.Errorf("failed to update supplement: %w", err)
	}
	return requireRow(res, storage.KindSupplement, sup.ID)
}

func (s *Store) DeleteSupplement(userID, id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM supplements WHERE user_id = $1 AND id = $2`, userID, id)
		if err != nil {
			return fmt.Errorf("failed to delete supplement: %w", err)
		}
		if err := requireRow(res, storage.KindSupplement, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM intakes WHERE user_id = $1 AND supplement_id = $2`, userID, id); err != nil {
			return fmt.Errorf("failed to delete intakes: %w", err)
		}
		return nil
	})
}
