package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
)

const profileColumns = `id, username, created_at, updated_at`

func scanProfile(row scanner) (models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Username, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	p.CreatedAt = models.NormalizeTime(p.CreatedAt)
	p.UpdatedAt = models.NormalizeTime(p.UpdatedAt)
	return p, nil
}

func (s *Store) AddProfile(p models.Profile) error {
	_, err := s.db.Exec(`INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4)`,
		p.ID, p.Username, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return storage.DuplicateUsername(p.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(id string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, storage.NotFound(storage.KindProfile, id)
	}
	return p, err
}

func (s *Store) GetProfileByUsername(username string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE username = $1`, username))
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
	res, err := s.db.Exec(`UPDATE profiles SET username = $1, updated_at = $2 WHERE id = $3`,
		p.Username, p.UpdatedAt.UTC(), p.ID)
	if isUniqueViolation(err) {
		return storage.DuplicateUsername(p.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRow(res, storage.KindProfile, p.ID)
}

func (s *Store) DeleteProfile(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM intakes WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete intakes: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM supplements WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete supplements: %w", err)
		}
		res, err := tx.Exec(`DELETE FROM profiles WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		return requireRow(res, storage.KindProfile, id)
	})
}
