package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/utils"
)

const profileColumns = `id, username, created_at, updated_at`

func scanProfile(row scanner) (models.Profile, error) {
	var p models.Profile
	var createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Username, &createdAt, &updatedAt); err != nil {
		return models.Profile{}, err
	}
	var err error
	if p.CreatedAt, err = utils.ParseTimestamp(createdAt); err != nil {
		return models.Profile{}, err
	}
	if p.UpdatedAt, err = utils.ParseTimestamp(updatedAt); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) AddProfile(p models.Profile) error {
	_, err := s.db.Exec(`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?)`,
		p.ID, p.Username, utils.FormatTimestamp(p.CreatedAt), utils.FormatTimestamp(p.UpdatedAt))
	if isUniqueViolation(err, "profiles.username") {
		return storage.DuplicateUsername(p.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(id string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.NotFound(storage.KindProfile, id)
	}
	return p, err
}

func (s *Store) GetProfileByUsername(username string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.NotFound(storage.KindProfile, username)
	}
	return p, err
}

func (s *Store) GetAllProfiles() ([]models.Profile, error) {
	rows, err := s.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) UpdateProfile(p models.Profile) error {
	res, err := s.db.Exec(`UPDATE profiles SET username = ?, updated_at = ? WHERE id = ?`,
		p.Username, utils.FormatTimestamp(p.UpdatedAt), p.ID)
	if isUniqueViolation(err, "profiles.username") {
		return storage.DuplicateUsername(p.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRow(res, storage.KindProfile, p.ID)
}

func (s *Store) DeleteProfile(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM intakes WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete intakes: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM supplements WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete supplements: %w", err)
		}
		res, err := tx.Exec(`DELETE FROM profiles WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		return requireRow(res, storage.KindProfile, id)
	})
}

// requireRow turns a zero-row write into a not-found error.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.NotFound(kind, id)
	}
	return nil
}
