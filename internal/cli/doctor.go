package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/suppleflow/internal/backup"
	"github.com/julianstephens/suppleflow/internal/guidelines"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/keyring"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage/sqlite"
)

// ErrDoctorFailed is returned when at least one required check fails.
var ErrDoctorFailed = errors.New("one or more health checks failed")

type check struct {
	name string
	run  func(*Context) error
	// warnOnly checks never fail the command.
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
}

var doctorChecks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Data integrity", run: checkDataIntegrity, needsDB: true},
	{name: "Guidelines", run: checkGuidelines},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Insight provider", run: checkInsightProvider, warnOnly: true},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	dbReachable := true
	for i, chk := range doctorChecks {
		if chk.needsDB && !dbReachable {
			ctx.printf("⊘ %s: SKIPPED (database not reachable)\n", chk.name)
			continue
		}
		err := chk.run(ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", chk.name)
		case chk.warnOnly:
			ctx.printf("⚠ %s: WARNING\n   %v\n", chk.name, err)
		default:
			ctx.printf("❌ %s: FAIL\n   Error: %v\n", chk.name, err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
	}

	ctx.println()
	if hasError {
		return ErrDoctorFailed
	}
	ctx.println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.GetAllProfiles()
	return err
}

func checkSchemaVersion(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	current, pending, err := m.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("schema version %d has %d pending migration(s), run 'suppleflow migrate'", current, pending)
	}
	return nil
}

// checkDataIntegrity validates every stored record and looks for intakes
// whose supplement is gone.
func checkDataIntegrity(ctx *Context) error {
	profiles, err := ctx.Store.GetAllProfiles()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}
	for _, p := range profiles {
		supplements, err := ctx.Store.GetAllSupplements(p.ID)
		if err != nil {
			return fmt.Errorf("failed to list supplements for %s: %w", p.Username, err)
		}
		known := make(map[string]bool, len(supplements))
		for _, s := range supplements {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("supplement %s: %w", s.ID, err)
			}
			known[s.ID] = true
		}

		intakes, err := ctx.Store.GetIntakes(p.ID, models.IntakeFilter{})
		if err != nil {
			return fmt.Errorf("failed to list intakes for %s: %w", p.Username, err)
		}
		for _, in := range intakes {
			if err := in.Validate(); err != nil {
				return fmt.Errorf("intake %s: %w", in.ID, err)
			}
			if !known[in.SupplementID] {
				return fmt.Errorf("intake %s references missing supplement %s", in.ID, in.SupplementID)
			}
		}
	}
	return nil
}

func checkGuidelines(ctx *Context) error {
	set, err := guidelines.Resolve(ctx.Config.Guidelines, ctx.Config.GuidelineVersion)
	if err != nil {
		return err
	}
	if _, err := set.Kratom(); err != nil {
		return fmt.Errorf("guideline set %s: %w", set.Version, err)
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if err := ctx.Config.Validate(); err != nil {
		return err
	}
	if ctx.Config.Location() == time.UTC {
		ctx.println("   Note: timezone is UTC")
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'suppleflow backup create'")
	}
	return nil
}

func checkInsightProvider(ctx *Context) error {
	cfg := ctx.Config
	if cfg.InsightProvider == insight.ProviderNone {
		return fmt.Errorf("insights are disabled")
	}
	if cfg.APIKey() != "" {
		return nil
	}
	if _, err := keyring.Get(cfg.KeyringUser()); err != nil {
		return fmt.Errorf("no API key for %s in the environment or keyring", cfg.InsightProvider)
	}
	return nil
}
