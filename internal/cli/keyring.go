package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/suppleflow/internal/keyring"
	"github.com/julianstephens/suppleflow/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
}

type KeyringSetCmd struct {
	Entry  string `arg:"" enum:"db,openai,gemini,anthropic" help:"Entry to set: db, openai, gemini or anthropic."`
	Secret string `arg:"" help:"Connection string or API key."`
}

func (cmd *KeyringSetCmd) Run(ctx *Context) error {
	user, err := keyring.ResolveEntry(cmd.Entry)
	if err != nil {
		return err
	}

	if cmd.Entry == "db" {
		if _, err := postgres.ValidateConnString(cmd.Secret); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			ctx.println("⚠️  Warning: Connection string contains embedded credentials.")
			ctx.println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(user, cmd.Secret); err != nil {
		return err
	}
	ctx.printf("✓ %s stored in OS keyring\n", cmd.Entry)
	if cmd.Entry == "db" {
		ctx.println("  suppleflow will use it whenever --config is left at its default")
	}
	return nil
}

type KeyringGetCmd struct {
	Entry string `arg:"" enum:"db,openai,gemini,anthropic" help:"Entry to show."`
}

func (cmd *KeyringGetCmd) Run(ctx *Context) error {
	user, err := keyring.ResolveEntry(cmd.Entry)
	if err != nil {
		return err
	}
	secret, err := keyring.Get(user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s secret found in keyring, use 'suppleflow keyring set %s' to store one", cmd.Entry, cmd.Entry)
		}
		return err
	}
	if cmd.Entry == "db" {
		ctx.println(maskPassword(secret))
	} else {
		ctx.println(maskKey(secret))
	}
	return nil
}

type KeyringDeleteCmd struct {
	Entry string `arg:"" enum:"db,openai,gemini,anthropic" help:"Entry to delete."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *Context) error {
	user, err := keyring.ResolveEntry(cmd.Entry)
	if err != nil {
		return err
	}
	if err := keyring.Delete(user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s secret found in keyring", cmd.Entry)
		}
		return err
	}
	ctx.printf("✓ %s deleted from OS keyring\n", cmd.Entry)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *Context) error {
	if !keyring.IsAvailable() {
		ctx.println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.println("✓ OS keyring is available")

	names := make([]string, 0, len(keyring.Entries))
	for name := range keyring.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := keyring.Get(keyring.Entries[name]); err == nil {
			ctx.printf("✓ %s is stored\n", name)
		} else {
			ctx.printf("ℹ %s is not stored\n", name)
		}
	}
	return nil
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		scheme := strings.Index(connStr, "://") + 3
		at := strings.LastIndex(connStr, "@")
		if at < scheme {
			return connStr
		}
		userInfo := connStr[scheme:at]
		colon := strings.Index(userInfo, ":")
		if colon < 0 {
			return connStr
		}
		return connStr[:scheme] + userInfo[:colon] + ":****" + connStr[at:]
	}

	if !strings.Contains(connStr, "password=") {
		return connStr
	}
	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}

// maskKey keeps the last four characters of an API key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
