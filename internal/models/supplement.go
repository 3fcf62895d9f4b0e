package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Supplement struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Unit              string    `json:"dosage_unit"`
	RecommendedDosage float64   `json:"recommended_dosage"`
	MaxDosage         float64   `json:"max_dosage"`
	CapsuleMg         *float64  `json:"capsule_mg,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks the supplement invariants.
func (s Supplement) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplement name is required", ErrInvalid)
	}
	if s.UserID == "" {
		return fmt.Errorf("%w: supplement must belong to a user", ErrInvalid)
	}
	if !finite(s.MaxDosage) || s.MaxDosage < 0 {
		return fmt.Errorf("%w: max dosage must be a non-negative number", ErrInvalid)
	}
	if !finite(s.RecommendedDosage) || s.RecommendedDosage < 0 {
		return fmt.Errorf("%w: recommended dosage must be a non-negative number", ErrInvalid)
	}
	if s.CapsuleMg != nil && (!finite(*s.CapsuleMg) || *s.CapsuleMg <= 0) {
		return fmt.Errorf("%w: capsule weight must be greater than zero", ErrInvalid)
	}
	return nil
}

// HasCapsules reports whether the supplement declares a per-capsule weight.
func (s Supplement) HasCapsules() bool {
	return s.CapsuleMg != nil
}

// finite rejects NaN and both infinities, which every comparison-based check
// would otherwise let through.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
