package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/models"
)

// Snapshot is a flat JSON document of stored data, used for export, import
// and copying between backends.
type Snapshot struct {
	Version     int                 `json:"version"`
	ExportedAt  time.Time           `json:"exported_at"`
	Profiles    []models.Profile    `json:"profiles"`
	Supplements []models.Supplement `json:"supplements"`
	Intakes     []models.Intake     `json:"intakes"`
}

// ImportStats counts what an import added and what it skipped.
type ImportStats struct {
	Profiles    int `json:"profiles"`
	Supplements int `json:"supplements"`
	Intakes     int `json:"intakes"`
	Skipped     int `json:"skipped"`
}

func (s ImportStats) String() string {
	return fmt.Sprintf("%d profile(s), %d supplement(s), %d intake(s) imported; %d already present or orphaned",
		s.Profiles, s.Supplements, s.Intakes, s.Skipped)
}

// Export collects every record of one user, or of all users when userID is empty.
func Export(p Provider, userID string) (Snapshot, error) {
	snap := Snapshot{
		Version:     constants.SnapshotVersion,
		ExportedAt:  models.NormalizeTime(time.Now()),
		Profiles:    []models.Profile{},
		Supplements: []models.Supplement{},
		Intakes:     []models.Intake{},
	}

	var profiles []models.Profile
	if userID == "" {
		all, err := p.GetAllProfiles()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to list profiles: %w", err)
		}
		profiles = all
	} else {
		profile, err := p.GetProfile(userID)
		if err != nil {
			return Snapshot{}, err
		}
		profiles = []models.Profile{profile}
	}

	for _, profile := range profiles {
		snap.Profiles = append(snap.Profiles, profile)

		supplements, err := p.GetAllSupplements(profile.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to list supplements for %s: %w", profile.Username, err)
		}
		snap.Supplements = append(snap.Supplements, supplements...)

		intakes, err := p.GetIntakes(profile.ID, models.IntakeFilter{})
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to list intakes for %s: %w", profile.Username, err)
		}
		snap.Intakes = append(snap.Intakes, intakes...)
	}
	return snap, nil
}

// Import adds every record of snap that p does not already hold, matching by
// ID across all users. Running it twice with the same snapshot adds nothing
// the second time. Intakes whose supplement exists in neither snap nor p under
// the same user are skipped.
func Import(p Provider, snap Snapshot) (ImportStats, error) {
	var stats ImportStats
	if snap.Version > constants.SnapshotVersion {
		return stats, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, constants.SnapshotVersion)
	}

	supplementIDs, intakeIDs, err := existingIDs(p)
	if err != nil {
		return stats, err
	}

	for _, profile := range snap.Profiles {
		if err := profile.Validate(); err != nil {
			return stats, fmt.Errorf("profile %s: %w", profile.ID, err)
		}
		_, err := p.GetProfile(profile.ID)
		switch {
		case err == nil:
			stats.Skipped++
			continue
		case !errors.Is(err, ErrNotFound):
			return stats, fmt.Errorf("failed to check profile %s: %w", profile.ID, err)
		}
		if err := p.AddProfile(profile); err != nil {
			return stats, fmt.Errorf("failed to import profile %s: %w", profile.Username, err)
		}
		stats.Profiles++
	}

	for _, s := range snap.Supplements {
		if err := s.Validate(); err != nil {
			return stats, fmt.Errorf("supplement %s: %w", s.ID, err)
		}
		if _, ok := supplementIDs[s.ID]; ok {
			stats.Skipped++
			continue
		}
		if err := p.AddSupplement(s); err != nil {
			return stats, fmt.Errorf("failed to import supplement %s: %w", s.Name, err)
		}
		supplementIDs[s.ID] = struct{}{}
		stats.Supplements++
	}

	for _, in := range snap.Intakes {
		if err := in.Validate(); err != nil {
			return stats, fmt.Errorf("intake %s: %w", in.ID, err)
		}
		if _, err := p.GetSupplement(in.UserID, in.SupplementID); err != nil {
			if errors.Is(err, ErrNotFound) {
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("failed to check supplement %s: %w", in.SupplementID, err)
		}
		if _, ok := intakeIDs[in.ID]; ok {
			stats.Skipped++
			continue
		}
		if err := p.AddIntake(in); err != nil {
			return stats, fmt.Errorf("failed to import intake %s: %w", in.ID, err)
		}
		intakeIDs[in.ID] = struct{}{}
		stats.Intakes++
	}

	return stats, nil
}

// existingIDs collects the supplement and intake IDs held by every profile in
// p. IDs are primary keys across all users, so a per-user lookup would miss a
// collision with another user's record.
func existingIDs(p Provider) (supplements, intakes map[string]struct{}, err error) {
	profiles, err := p.GetAllProfiles()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	supplements = make(map[string]struct{})
	intakes = make(map[string]struct{})
	for _, profile := range profiles {
		sups, err := p.GetAllSupplements(profile.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list supplements for %s: %w", profile.Username, err)
		}
		for _, s := range sups {
			supplements[s.ID] = struct{}{}
		}
		ins, err := p.GetIntakes(profile.ID, models.IntakeFilter{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list intakes for %s: %w", profile.Username, err)
		}
		for _, in := range ins {
			intakes[in.ID] = struct{}{}
		}
	}
	return supplements, intakes, nil
}

// Copy imports everything held by src into dst.
func Copy(src, dst Provider) (ImportStats, error) {
	snap, err := Export(src, "")
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to export source: %w", err)
	}
	return Import(dst, snap)
}

func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version == 0 {
		return Snapshot{}, fmt.Errorf("snapshot has no version")
	}
	return snap, nil
}
