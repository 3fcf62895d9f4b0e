package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/suppleflow/internal/cli"
	"github.com/julianstephens/suppleflow/internal/config"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/errors"
	"github.com/julianstephens/suppleflow/internal/keyring"
	"github.com/julianstephens/suppleflow/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded here; use SUPPLEFLOW_DB_CONNECTION, .pgpass or 'suppleflow keyring set db'." type:"string" default:"${default_config}"`
	User    string `short:"u" help:"Profile ID or username to act as (overrides SUPPLEFLOW_USER)."`
	Verbose bool   `help:"Enable debug logging to stderr."`

	Init       cli.InitCmd       `cmd:"" help:"Initialize suppleflow storage."`
	Migrate    cli.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor     cli.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui        cli.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today      cli.TodayCmd      `cmd:"" help:"Show today's totals against each supplement's maximum."`
	Calendar   cli.CalendarCmd   `cmd:"" help:"Show a month of intake history."`
	Kratom     cli.KratomCmd     `cmd:"" help:"Compare a day's kratom intake with the guidelines."`
	Guidelines cli.GuidelinesCmd `cmd:"" help:"Show the dosage guideline table."`
	Insight    cli.InsightCmd    `cmd:"" help:"Generate an insight about today's intake."`
	Profile    cli.ProfileCmd    `cmd:"" help:"Manage profiles."`
	Supplement cli.SupplementCmd `cmd:"" help:"Manage supplements."`
	Intake     cli.IntakeCmd     `cmd:"" help:"Manage intakes."`
	Export     cli.ExportCmd     `cmd:"" help:"Export data as JSON."`
	Import     cli.ImportCmd     `cmd:"" help:"Import a JSON export."`
	Backup     cli.BackupCmd     `cmd:"" help:"Manage database backups."`
	Keyring    cli.KeyringCmd    `cmd:"" help:"Manage secrets in the OS keyring."`
	Serve      cli.ServeCmd      `cmd:"" help:"Serve the JSON API over HTTP."`
	Debug      cli.DebugCmd      `cmd:"" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Supplement intake tracker with daily dosage limits"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Verbose,
		ConfigDir: cli.ConfigDir(CLI.Config, constants.DefaultConfigPath),
	}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		errors.Fatal(err)
	}

	ref, trusted := resolveStoreRef(cfg)
	store, err := cli.OpenStore(ref, trusted)
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	appCtx := &cli.Context{
		Store:   store,
		Config:  cfg,
		UserRef: CLI.User,
	}

	// init creates the store itself; keyring and doctor work without one.
	command := strings.Fields(ctx.Command())
	if len(command) > 0 {
		switch command[0] {
		case "init", "keyring", "doctor":
		default:
			if err := store.Load(); err != nil {
				errors.Fatal(err)
			}
		}
	}

	errors.Fatal(ctx.Run(appCtx))
}

// resolveStoreRef picks the database. An explicit --config wins, then
// SUPPLEFLOW_DB_CONNECTION, then a connection string in the OS keyring, then
// the default sqlite path. Only the command line is untrusted.
func resolveStoreRef(cfg config.Config) (string, bool) {
	if CLI.Config != constants.DefaultConfigPath {
		return CLI.Config, false
	}
	if cfg.DBConnection != "" {
		return cfg.DBConnection, true
	}
	if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
		logger.Debug("Using connection string from OS keyring")
		return connStr, true
	}
	return CLI.Config, false
}
