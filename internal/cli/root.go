package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/suppleflow/internal/backup"
	"github.com/julianstephens/suppleflow/internal/config"
	"github.com/julianstephens/suppleflow/internal/guidelines"
	"github.com/julianstephens/suppleflow/internal/insight"
	"github.com/julianstephens/suppleflow/internal/keyring"
	"github.com/julianstephens/suppleflow/internal/logger"
	"github.com/julianstephens/suppleflow/internal/models"
	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/storage/postgres"
	"github.com/julianstephens/suppleflow/internal/storage/sqlite"
	"github.com/julianstephens/suppleflow/internal/tracker"
)

// GeneratorFactory builds the insight backend for a configuration. A nil
// Generator disables insights.
type GeneratorFactory func(ctx context.Context, cfg config.Config) (insight.Generator, error)

type Context struct {
	Store   storage.Provider
	Config  config.Config
	UserRef string
	Out     io.Writer
	In      io.Reader

	// NewGenerator defaults to DefaultGenerator.
	NewGenerator GeneratorFactory
	// Options are passed to tracker.New after the defaults.
	Options []tracker.Option

	svc *tracker.Service
}

// DefaultGenerator builds the configured provider, reading its API key from
// the environment or the OS keyring.
func DefaultGenerator(ctx context.Context, cfg config.Config) (insight.Generator, error) {
	if cfg.InsightProvider == insight.ProviderNone {
		return nil, nil
	}
	return insight.New(ctx, cfg.InsightProvider, insight.BackendConfig{
		APIKey: keyring.APIKey(cfg.APIKey(), cfg.KeyringUser()),
		Model:  cfg.InsightModel,
	})
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Service builds the tracker on first use. Insight setup problems are logged
// and leave insights disabled.
func (c *Context) Service() (*tracker.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}

	set, err := guidelines.Resolve(c.Config.Guidelines, c.Config.GuidelineVersion)
	if err != nil {
		return nil, err
	}
	opts := []tracker.Option{tracker.WithGuidelines(set)}

	factory := c.NewGenerator
	if factory == nil {
		factory = DefaultGenerator
	}
	gen, err := factory(context.Background(), c.Config)
	switch {
	case err != nil:
		logger.Warn("Insight generation disabled", "provider", c.Config.InsightProvider, "error", err)
	case gen != nil:
		opts = append(opts, tracker.WithSummarizer(insight.NewSummarizer(gen)))
	}

	svc, err := tracker.New(c.Store, c.Config.Location(), append(opts, c.Options...)...)
	if err != nil {
		return nil, err
	}
	c.svc = svc
	return svc, nil
}

// CurrentUser resolves --user (or SUPPLEFLOW_USER) to a profile.
func (c *Context) CurrentUser() (*tracker.Service, models.Profile, error) {
	svc, err := c.Service()
	if err != nil {
		return nil, models.Profile{}, err
	}
	ref := c.UserRef
	if ref == "" {
		ref = c.Config.User
	}
	profile, err := svc.ResolveUser(ref)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, models.Profile{}, fmt.Errorf("unknown user %q, create it with 'suppleflow profile add %s'", ref, ref)
		}
		return nil, models.Profile{}, err
	}
	return svc, profile, nil
}

// PerformAutomaticBackup creates an automatic backup of a sqlite store and
// silently handles errors.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ErrEmbeddedCredentials is returned for a Postgres URL passed on the command
// line with a password in it.
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed on the command line; " +
	"use 'suppleflow keyring set db <url>', SUPPLEFLOW_DB_CONNECTION or a .pgpass file")

// OpenStore picks the storage adapter for ref: a Postgres connection string
// or a sqlite file path. Passwords are only accepted when trusted is set,
// i.e. when ref came from the keyring or the environment.
func OpenStore(ref string, trusted bool) (storage.Provider, error) {
	if postgres.IsConnString(ref) || strings.Contains(ref, "host=") {
		if _, err := postgres.ValidateConnString(ref); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, err
			}
			if !trusted {
				return nil, ErrEmbeddedCredentials
			}
		}
		return postgres.New(ref), nil
	}
	path, err := ExpandHome(ref)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDir is the directory logs and backups live in for a store reference.
// Postgres stores fall back to the default sqlite location.
func ConfigDir(ref, defaultRef string) string {
	if postgres.IsConnString(ref) || strings.Contains(ref, "host=") {
		ref = defaultRef
	}
	path, err := ExpandHome(ref)
	if err != nil {
		return os.TempDir()
	}
	return filepath.Dir(path)
}
