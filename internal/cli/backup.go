package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/suppleflow/internal/backup"
	"github.com/julianstephens/suppleflow/internal/constants"
	"github.com/julianstephens/suppleflow/internal/errors"
	"github.com/julianstephens/suppleflow/internal/storage/sqlite"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
}

func (c *Context) backupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for sqlite databases; use 'suppleflow export' or pg_dump for PostgreSQL")
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	path, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.printf("✓ Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.println("No backups found.")
		ctx.printf("Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	ctx.printf("Available backups (%d total, keeping most recent %d):\n", len(backups), constants.MaxBackups)
	rows := make([][]string, 0, len(backups))
	for _, b := range backups {
		rows = append(rows, []string{
			b.Timestamp.Local().Format("2006-01-02 15:04:05"),
			b.Name(),
			fmt.Sprintf("%.1f KB", float64(b.Size)/1024.0),
		})
	}
	ctx.printTable([]string{"Created", "File", "Size"}, rows)
	ctx.printf("Backup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	path := mgr.ResolveBackup(c.BackupFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup file not found: %s", path)
	}

	if !c.Yes {
		ctx.println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.println("A backup of your current database will be created before restoring.")
		ctx.printf("\nRestore from: %s\n", path)
		ok, err := ctx.confirm("Continue?")
		if err != nil || !ok {
			return err
		}
	}

	if err := ctx.Store.Close(); err != nil {
		errors.Warn(os.Stderr, fmt.Errorf("failed to close database connection: %w", err))
	}

	safety, err := mgr.RestoreBackup(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if safety != "" {
		ctx.printf("Previous database saved as: %s\n", safety)
	}
	ctx.println("✓ Database restored successfully!")
	ctx.println("Restart any running suppleflow processes to use the restored database.")
	return nil
}
