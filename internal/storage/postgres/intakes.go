package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

const intakeColumns = `id, user_id, supplement_id, dosage, taken_at, notes, created_at`

func scanIntake(row scanner) (models.Intake, error) {
	var in models.Intake
	err := row.Scan(&in.ID, &in.UserID, &in.SupplementID, &in.Dosage, &in.TakenAt, &in.Notes, &in.CreatedAt)
	if err != nil {
		return models.Intake{}, err
	}
	in.TakenAt = models.NormalizeTime(in.TakenAt)
	in.CreatedAt = models.NormalizeTime(in.CreatedAt)
	return in, nil
}

func (s *Store) AddIntake(in models.Intake) error {
	_, err := s.db.Exec(`INSERT INTO intakes (`+intakeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.ID, in.UserID, in.SupplementID, in.Dosage, in.TakenAt.UTC(), in.Notes, in.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert intake: %w", err)
	}
	return nil
}

func (s *Store) GetIntake(userID, id string) (models.Intake, error) {
	in, err := scanIntake(s.db.QueryRow(
		`SELECT `+intakeColumns+` FROM intakes WHERE user_id = $1 AND id = $2`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Intake{}, storage.NotFound(storage.KindIntake, id)
	}
	return in, err
}

func (s *Store) GetIntakes(userID string, filter models.IntakeFilter) ([]models.Intake, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Start != nil {
		add("taken_at >= $%d", filter.Start.UTC())
	}
	if filter.End != nil {
		add("taken_at <= $%d", filter.End.UTC())
	}
	if filter.SupplementID != "" {
		add("supplement_id = $%d", filter.SupplementID)
	}

	rows, err := s.db.Query(`SELECT `+intakeColumns+` FROM intakes WHERE `+
		strings.Join(conds, " AND ")+` ORDER BY taken_at DESC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intakes := []models.Intake{}
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, err
		}
		intakes = append(intakes, in)
	}
	return intakes, rows.Err()
}

func (s *Store) ReplaceIntake(in models.Intake) error {
	res, err := s.db.Exec(`
		UPDATE intakes SET supplement_id = $1, dosage = $2, taken_at = $3, notes = $4
		WHERE user_id = $5 AND id = $6`,
		in.SupplementID, in.Dosage, in.TakenAt.UTC(), in.Notes, in.UserID, in.ID)
	if err != nil {
		return fmt.Errorf("failed to replace intake: %w", err)
	}
	return requireRow(res, storage.KindIntake, in.ID)
}

func (s *Store) DeleteIntake(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM intakes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete intake: %w", err)
	}
	return requireRow(res, storage.KindIntake, id)
}
