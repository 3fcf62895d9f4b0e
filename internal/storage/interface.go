package storage

import "github.com/julianstephens/suppleflow/internal/models"

// Provider is the persistence collaborator. Every data call names its user
// explicitly; nothing is scoped by ambient state.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	GetConfigPath() string

	// Profiles, listed by creation time ascending
	AddProfile(models.Profile) error
	GetProfile(id string) (models.Profile, error)
	GetProfileByUsername(username string) (models.Profile, error)
	GetAllProfiles() ([]models.Profile, error)
	UpdateProfile(models.Profile) error
	// DeleteProfile also removes the profile's supplements and intakes.
	DeleteProfile(id string) error

	// Supplements, listed by creation time descending
	AddSupplement(models.Supplement) error
	GetSupplement(userID, id string) (models.Supplement, error)
	GetAllSupplements(userID string) ([]models.Supplement, error)
	UpdateSupplement(models.Supplement) error
	// DeleteSupplement also removes the supplement's intakes, atomically.
	DeleteSupplement(userID, id string) error

	// Intakes, listed by taken_at descending
	AddIntake(models.Intake) error
	GetIntake(userID, id string) (models.Intake, error)
	GetIntakes(userID string, filter models.IntakeFilter) ([]models.Intake, error)
	// ReplaceIntake overwrites every field of an existing intake except CreatedAt.
	ReplaceIntake(models.Intake) error
	DeleteIntake(userID, id string) error
}
