package cli

import "fmt"

// migrator is implemented by both storage adapters.
type migrator interface {
	Migrate(logFn func(string)) (int, error)
	SchemaStatus() (current, pending int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	count, err := m.Migrate(func(msg string) { ctx.println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.println("No migrations to apply. Database is up to date.")
	} else {
		ctx.printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
