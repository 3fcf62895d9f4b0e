package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/suppleflow/internal/storage"
	"github.com/julianstephens/suppleflow/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting an existing sqlite database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized suppleflow storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.printf("Copying data from: %s\n", c.Source)
		stats, err := c.copyFrom(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.printf("✓ %s\n", stats)
	}
	return nil
}

func (c *InitCmd) reset(ctx *Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force only applies to sqlite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *Context) (storage.ImportStats, error) {
	source, err := OpenStore(c.Source, false)
	if err != nil {
		return storage.ImportStats{}, err
	}
	if err := source.Load(); err != nil {
		return storage.ImportStats{}, fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	return storage.Copy(source, ctx.Store)
}
