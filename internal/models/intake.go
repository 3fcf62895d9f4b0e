package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure in this package.
var ErrInvalid = errors.New("invalid")

type Intake struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SupplementID string    `json:"supplement_id"`
	Dosage       float64   `json:"dosage"`
	TakenAt      time.Time `json:"taken_at"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IntakeFilter narrows an intake listing. Start and End are inclusive bounds on TakenAt.
type IntakeFilter struct {
	Start        *time.Time
	End          *time.Time
	SupplementID string
}

// Matches reports whether the intake passes every set criterion.
func (f IntakeFilter) Matches(i Intake) bool {
	if f.Start != nil && i.TakenAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && i.TakenAt.After(*f.End) {
		return false
	}
	if f.SupplementID != "" && i.SupplementID != f.SupplementID {
		return false
	}
	return true
}

// Validate checks the intake invariants.
func (i Intake) Validate() error {
	if i.UserID == "" {
		return fmt.Errorf("%w: intake must belong to a user", ErrInvalid)
	}
	if i.SupplementID == "" {
		return fmt.Errorf("%w: intake must reference a supplement", ErrInvalid)
	}
	if !finite(i.Dosage) || i.Dosage <= 0 {
		return fmt.Errorf("%w: dosage must be a number greater than zero", ErrInvalid)
	}
	if i.TakenAt.IsZero() {
		return fmt.Errorf("%w: taken_at is required", ErrInvalid)
	}
	return nil
}

// NormalizeTime converts t to UTC at microsecond precision, the finest
// resolution every storage backend keeps.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
