package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/utils"
)

const intakeColumns = `id, user_id, supplement_id, dosage, taken_at, notes, created_at`

func scanIntake(row scanner) (models.Intake, error) {
	var in models.Intake
	var takenAt, createdAt string
	err := row.Scan(&in.ID, &in.UserID, &in.SupplementID, &in.Dosage, &takenAt, &in.Notes, &createdAt)
	if err != nil {
		return models.Intake{}, err
	}
	if in.TakenAt, err = utils.ParseTimestamp(takenAt); err != nil {
		return models.Intake{}, err
	}
	if in.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.Intake{}, err
	}
	return in, nil
}

func (s *Store) AddIntake(in models.Intake) error {
	_, err := s.db.Exec(`INSERT INTO intakes (`+intakeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.SupplementID, in.Dosage,
		utils.FormatTimestamp(in.TakenAt), in.Notes, utils.FormatTimestamp(in.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert intake: %w", err)
	}
	return nil
}

func (s *Store) GetIntake(userID, id string) (models.Intake, error) {
	in, err := scanIntake(s.db.QueryRow(
		`SELECT `+intakeColumns+` FROM intakes WHERE user_id = ? AND id = ?`, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Intake{}, storage.NotFound(storage.KindIntake, id)
	}
	return in, err
}

// GetIntakes lists a user's intakes, most recent first. Timestamps are stored
// as fixed-width UTC text, so string comparison orders them chronologically.
func (s *Store) GetIntakes(userID string, filter models.IntakeFilter) ([]models.Intake, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Start != nil {
		conds = append(conds, "taken_at >= ?")
		args = append(args, utils.FormatTimestamp(*filter.Start))
	}
	if filter.End != nil {
		conds = append(conds, "taken_at <= ?")
		args = append(args, utils.FormatTimestamp(*filter.End))
	}
	if filter.SupplementID != "" {
		conds = append(conds, "supplement_id = ?")
		args = append(args, filter.SupplementID)
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
		UPDATE intakes SET supplement_id = ?, dosage = ?, taken_at = ?, notes = ?
		WHERE user_id = ? AND id = ?`,
		in.SupplementID, in.Dosage, utils.FormatTimestamp(in.TakenAt), in.Notes, in.UserID, in.ID)
	if err != nil {
		return fmt.Errorf("failed to replace intake: %w", err)
	}
	return requireRow(res, storage.KindIntake, in.ID)
}

func (s *Store) DeleteIntake(userID, id string) error {
	res, err := s.db.Exec(`DELETE FROM intakes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete intake: %w", err)
	}
	return requireRow(res, storage.KindIntake, id)
}
